package integration

import (
	"strings"

	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/github"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/jira"
)

var validStates = map[string]bool{
	github.StateOpen:   true,
	github.StateClosed: true,
	github.StateMerged: true,
}

// FromPullRequest builds a GitHubPRContext. It fails with a ValidationError
// when a required field is missing or the state is not open, closed or merged.
func FromPullRequest(pr *github.PullRequest, meta SourceMetadata) (*GitHubPRContext, error) {
	if pr == nil {
		return nil, errMissing("github", "pull request is required")
	}

	state := strings.ToLower(strings.TrimSpace(pr.State))
	switch {
	case pr.Number <= 0:
		return nil, errMissing("pr_number", "pull request number is required")
	case pr.Title == "":
		return nil, errMissing("title", "pull request title is required")
	case pr.Author == "":
		return nil, errMissing("author", "pull request author is required")
	case state == "":
		return nil, errMissing("state", "pull request state is required")
	case !validStates[state]:
		return nil, prserrors.NewValidationError("state", pr.State, "invalid PR state: "+pr.State)
	case pr.HeadBranch == "" || pr.BaseBranch == "":
		return nil, errMissing("head_branch", "head and base branches are required")
	}

	ctx := &GitHubPRContext{
		Number:         pr.Number,
		Title:          pr.Title,
		Description:    pr.Body,
		Author:         pr.Author,
		Repository:     pr.Repository,
		State:          state,
		Draft:          pr.Draft,
		Mergeable:      pr.Mergeable,
		Merged:         pr.Merged,
		HeadBranch:     pr.HeadBranch,
		BaseBranch:     pr.BaseBranch,
		HeadSHA:        pr.HeadSHA,
		BaseSHA:        pr.BaseSHA,
		Additions:      pr.Additions,
		Deletions:      pr.Deletions,
		ChangedFiles:   pr.FilesChanged,
		Commits:        len(pr.Commits),
		ReviewComments: pr.ReviewComments,
		Comments:       pr.Comments,
		Labels:         nonNil(pr.Labels),
		HTMLURL:        pr.HTMLURL,
		DiffURL:        pr.DiffURL,
		CreatedAt:      pr.CreatedAt,
		UpdatedAt:      pr.UpdatedAt,
		Metadata:       meta,
		FileChanges:    make([]FileChange, 0, len(pr.Files)),
		CommitDetails:  make([]CommitDetail, 0, len(pr.Commits)),
	}

	for _, f := range pr.Files {
		ctx.FileChanges = append(ctx.FileChanges, FileChange{
			Filename:  f.Filename,
			Status:    f.Status,
			Additions: f.Additions,
			Deletions: f.Deletions,
			Patch:     f.Patch,
		})
	}
	for _, c := range pr.Commits {
		ctx.CommitDetails = append(ctx.CommitDetails, CommitDetail{
			SHA:     c.SHA,
			Message: c.Message,
			Author:  c.Author,
			Date:    c.Date,
		})
	}

	return ctx, nil
}

// FromTicket builds a JiraTicketContext. Key, summary and status are required.
func FromTicket(t *jira.Ticket, meta SourceMetadata) (*JiraTicketContext, error) {
	if t == nil {
		return nil, errMissing("jira", "ticket is required")
	}

	switch {
	case t.Key == "":
		return nil, errMissing("key", "ticket key is required")
	case t.Summary == "":
		return nil, errMissing("summary", "ticket summary is required")
	case t.Status == "":
		return nil, errMissing("status", "ticket status is required")
	}

	projectKey := t.ProjectKey
	if projectKey == "" {
		projectKey = jira.ProjectKey(t.Key)
	}

	return &JiraTicketContext{
		Key:            t.Key,
		URL:            t.URL,
		Summary:        t.Summary,
		Description:    t.Description,
		Status:         t.Status,
		StatusCategory: t.StatusCategory,
		Resolution:     t.Resolution,
		IssueType:      t.IssueType,
		Priority:       t.Priority,
		Assignee:       personFrom(t.Assignee),
		Reporter:       personFrom(t.Reporter),
		ProjectKey:     projectKey,
		ProjectName:    t.ProjectName,
		Components:     nonNil(t.Components),
		Labels:         nonNil(t.Labels),
		FixVersions:    nonNil(t.FixVersions),
		CreatedAt:      t.Created,
		UpdatedAt:      t.Updated,
		StoryPoints:    t.StoryPoints,
		EpicLink:       t.Epic,
		Sprint:         t.Sprint,
		Metadata:       meta,
	}, nil
}

func personFrom(p *jira.Person) *Person {
	if p == nil {
		return nil
	}
	return &Person{Name: p.Name, Email: p.Email}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func errMissing(field, message string) *prserrors.ValidationError {
	return prserrors.NewValidationError(field, "", message)
}
