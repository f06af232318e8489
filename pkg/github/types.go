// Package github retrieves pull requests from the GitHub REST API.
//
// FetchPR validates the web URL of a pull request before any network call,
// then fetches the pull request, its changed files and its commits, each
// bounded so that downstream prompts stay small.
package github

import "time"

// PR states as reported after normalization.
const (
	StateOpen   = "open"
	StateClosed = "closed"
	StateMerged = "merged"
)

// PullRequest is the normalized snapshot of a pull request returned by FetchPR.
type PullRequest struct {
	URL        string
	Number     int
	Title      string
	Body       string
	State      string // open, closed or merged
	Author     string
	Repository string // owner/repo
	CreatedAt  time.Time
	UpdatedAt  time.Time

	HeadBranch string
	BaseBranch string
	HeadSHA    string
	BaseSHA    string

	FilesChanged   int
	Additions      int
	Deletions      int
	Comments       int
	ReviewComments int

	Draft     bool
	Mergeable *bool // nil while GitHub is still computing it
	Merged    bool

	HTMLURL string
	DiffURL string
	Labels  []string

	Files   []FileChange // first max_files files
	Commits []Commit     // last max_commits commits
}

// FileChange is one changed file with its (truncated) patch.
type FileChange struct {
	Filename  string
	Status    string // added, modified, removed, renamed...
	Additions int
	Deletions int
	Patch     string
}

// Commit is one commit on the pull request.
type Commit struct {
	SHA     string
	Message string
	Author  string
	Date    time.Time
}
