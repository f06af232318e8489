// Package integration holds the request-scoped context that aggregates data
// from every source a summary draws on.
//
// An IntegrationContext owns exactly one GitHubPRContext, at most one
// JiraTicketContext and any number of ConfluencePageContext values. Contexts
// are built once per request by the builders in this package and are not
// shared between requests.
package integration

import (
	"time"

	"github.com/google/uuid"
)

// DataSource identifies where a record was retrieved from.
type DataSource string

// Known data sources.
const (
	SourceGitHub     DataSource = "github"
	SourceJira       DataSource = "jira"
	SourceConfluence DataSource = "confluence"
)

// SourceMetadata describes one successful retrieval. It is created once and
// never modified.
type SourceMetadata struct {
	Source             DataSource `json:"source"`
	RetrievedAt        time.Time  `json:"retrieved_at"`
	ResponseTimeMS     int64      `json:"response_time_ms"`
	CacheHit           bool       `json:"cache_hit"`
	APIVersion         string     `json:"api_version,omitempty"`
	RateLimitRemaining *int       `json:"rate_limit_remaining,omitempty"`
}

// NewSourceMetadata records a retrieval from source that started at started.
func NewSourceMetadata(source DataSource, started time.Time) SourceMetadata {
	now := time.Now()
	return SourceMetadata{
		Source:         source,
		RetrievedAt:    now,
		ResponseTimeMS: now.Sub(started).Milliseconds(),
	}
}

// FileChange is a changed file as presented to the summarizer.
type FileChange struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Patch     string `json:"patch,omitempty"`
}

// CommitDetail is a commit as presented to the summarizer.
type CommitDetail struct {
	SHA     string    `json:"sha"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date,omitzero"`
}

// GitHubPRContext is the normalized pull request snapshot.
type GitHubPRContext struct {
	Number      int    `json:"pr_number"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Author      string `json:"author"`
	Repository  string `json:"repository"`

	// State is always open, closed or merged.
	State     string `json:"state"`
	Draft     bool   `json:"draft"`
	Mergeable *bool  `json:"mergeable,omitempty"`
	Merged    bool   `json:"merged"`

	HeadBranch string `json:"head_branch"`
	BaseBranch string `json:"base_branch"`
	HeadSHA    string `json:"head_sha"`
	BaseSHA    string `json:"base_sha"`

	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	ChangedFiles int `json:"changed_files"`
	Commits      int `json:"commits"`

	FileChanges   []FileChange   `json:"file_changes"`
	CommitDetails []CommitDetail `json:"commit_details"`

	ReviewComments int      `json:"review_comments"`
	Comments       int      `json:"comments"`
	Labels         []string `json:"labels"`

	HTMLURL string `json:"html_url"`
	DiffURL string `json:"diff_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Metadata SourceMetadata `json:"metadata"`
}

// Person is a Jira user reduced to name and email.
type Person struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// JiraTicketContext is the normalized Jira ticket snapshot.
type JiraTicketContext struct {
	Key            string  `json:"key"`
	URL            string  `json:"url,omitempty"`
	Summary        string  `json:"summary"`
	Description    string  `json:"description,omitempty"`
	Status         string  `json:"status"`
	StatusCategory string  `json:"status_category,omitempty"`
	Resolution     string  `json:"resolution,omitempty"`
	IssueType      string  `json:"issue_type"`
	Priority       string  `json:"priority"`
	Assignee       *Person `json:"assignee,omitempty"`
	Reporter       *Person `json:"reporter,omitempty"`

	ProjectKey  string `json:"project_key"`
	ProjectName string `json:"project_name"`

	Components  []string `json:"components"`
	Labels      []string `json:"labels"`
	FixVersions []string `json:"fix_versions"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	StoryPoints *float64 `json:"story_points,omitempty"`
	EpicLink    string   `json:"epic_link,omitempty"`
	Sprint      string   `json:"sprint,omitempty"`

	Metadata SourceMetadata `json:"metadata"`
}

// ConfluencePageContext is a related Confluence page. No retriever produces
// these yet; they only contribute to the completeness score.
type ConfluencePageContext struct {
	PageID    string   `json:"page_id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	SpaceKey  string   `json:"space_key"`
	SpaceName string   `json:"space_name"`
	PageURL   string   `json:"page_url"`
	Version   int      `json:"version"`
	Labels    []string `json:"labels"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Metadata SourceMetadata `json:"metadata"`
}

// IntegrationContext aggregates everything known about one pull request.
// Scores are set once by New and are always within [0, 1].
type IntegrationContext struct {
	ID        string    `json:"integration_id"`
	CreatedAt time.Time `json:"created_at"`

	GitHub          *GitHubPRContext        `json:"github"`
	Jira            *JiraTicketContext      `json:"jira,omitempty"`
	ConfluencePages []ConfluencePageContext `json:"confluence_pages,omitempty"`

	CompletenessScore float64 `json:"completeness_score"`
	ConfidenceScore   float64 `json:"confidence_score"`

	FocusAreas       []string `json:"focus_areas,omitempty"`
	ExcludedSections []string `json:"excluded_sections,omitempty"`
}

// Sources lists the sources that contributed data, GitHub first.
func (c *IntegrationContext) Sources() []DataSource {
	sources := []DataSource{SourceGitHub}
	if c.Jira != nil {
		sources = append(sources, SourceJira)
	}
	if len(c.ConfluencePages) > 0 {
		sources = append(sources, SourceConfluence)
	}
	return sources
}

// Params are the inputs to New.
type Params struct {
	// ID defaults to a random UUID.
	ID         string
	GitHub     *GitHubPRContext
	Jira       *JiraTicketContext
	Confluence []ConfluencePageContext
	FocusAreas []string
}

// New assembles an IntegrationContext and computes both scores. GitHub is
// required.
func New(p Params) (*IntegrationContext, error) {
	if p.GitHub == nil {
		return nil, errMissing("github", "GitHub context is required")
	}

	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}

	c := &IntegrationContext{
		ID:              id,
		CreatedAt:       time.Now(),
		GitHub:          p.GitHub,
		Jira:            p.Jira,
		ConfluencePages: p.Confluence,
		FocusAreas:      p.FocusAreas,
	}
	c.CompletenessScore = CompletenessScore(c)
	c.ConfidenceScore = ConfidenceScore(c)
	return c, nil
}
