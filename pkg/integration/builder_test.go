package integration

import (
	"testing"
	"time"

	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/github"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/jira"
)

func samplePR() *github.PullRequest {
	return &github.PullRequest{
		Number:         42,
		Title:          "Cache widget lookups",
		Body:           "Adds an LRU in front of the widget store.",
		State:          "OPEN",
		Author:         "octocat",
		Repository:     "acme/widgets",
		HeadBranch:     "feature/cache",
		BaseBranch:     "main",
		HeadSHA:        "abc123",
		BaseSHA:        "def456",
		FilesChanged:   1,
		Additions:      10,
		Deletions:      2,
		ReviewComments: 3,
		HTMLURL:        "https://github.com/acme/widgets/pull/42",
		Files: []github.FileChange{
			{Filename: "cache.go", Status: "added", Additions: 10, Deletions: 2, Patch: "@@ -0,0 +1,10 @@"},
		},
		Commits: []github.Commit{
			{SHA: "abc123", Message: "add cache", Author: "Octo Cat"},
		},
	}
}

func TestFromPullRequest(t *testing.T) {
	meta := NewSourceMetadata(SourceGitHub, time.Now().Add(-25*time.Millisecond))

	ctx, err := FromPullRequest(samplePR(), meta)
	if err != nil {
		t.Fatalf("FromPullRequest() error = %v", err)
	}

	if ctx.State != github.StateOpen {
		t.Errorf("State = %q, want normalized %q", ctx.State, github.StateOpen)
	}
	if ctx.Number != 42 || ctx.Author != "octocat" || ctx.Repository != "acme/widgets" {
		t.Errorf("identity = %d %q %q", ctx.Number, ctx.Author, ctx.Repository)
	}
	if ctx.ChangedFiles != 1 || ctx.Additions != 10 || ctx.Deletions != 2 || ctx.Commits != 1 {
		t.Errorf("stats = %d files +%d -%d, %d commits", ctx.ChangedFiles, ctx.Additions, ctx.Deletions, ctx.Commits)
	}
	if len(ctx.FileChanges) != 1 || ctx.FileChanges[0].Filename != "cache.go" {
		t.Errorf("FileChanges = %+v", ctx.FileChanges)
	}
	if len(ctx.CommitDetails) != 1 || ctx.CommitDetails[0].Author != "Octo Cat" {
		t.Errorf("CommitDetails = %+v", ctx.CommitDetails)
	}
	if ctx.Labels == nil {
		t.Error("Labels should be an empty slice, not nil")
	}
	if ctx.Metadata.Source != SourceGitHub || ctx.Metadata.ResponseTimeMS < 25 {
		t.Errorf("Metadata = %+v", ctx.Metadata)
	}
}

func TestFromPullRequest_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*github.PullRequest)
		field  string
	}{
		{"missing state", func(pr *github.PullRequest) { pr.State = "" }, "state"},
		{"unknown state", func(pr *github.PullRequest) { pr.State = "draft" }, "state"},
		{"missing number", func(pr *github.PullRequest) { pr.Number = 0 }, "pr_number"},
		{"missing title", func(pr *github.PullRequest) { pr.Title = "" }, "title"},
		{"missing author", func(pr *github.PullRequest) { pr.Author = "" }, "author"},
		{"missing branch", func(pr *github.PullRequest) { pr.BaseBranch = "" }, "head_branch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr := samplePR()
			tt.mutate(pr)

			_, err := FromPullRequest(pr, SourceMetadata{})
			var valErr *prserrors.ValidationError
			if !prserrors.As(err, &valErr) {
				t.Fatalf("FromPullRequest() error = %v, want ValidationError", err)
			}
			if valErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", valErr.Field, tt.field)
			}
		})
	}

	if _, err := FromPullRequest(nil, SourceMetadata{}); !prserrors.IsValidationError(err) {
		t.Errorf("FromPullRequest(nil) error = %v, want ValidationError", err)
	}
}

func TestFromPullRequest_MergedState(t *testing.T) {
	pr := samplePR()
	pr.State = "Merged"
	pr.Merged = true

	ctx, err := FromPullRequest(pr, SourceMetadata{})
	if err != nil {
		t.Fatalf("FromPullRequest() error = %v", err)
	}
	if ctx.State != github.StateMerged || !ctx.Merged {
		t.Errorf("State = %q, Merged = %v", ctx.State, ctx.Merged)
	}
}

func sampleTicket() *jira.Ticket {
	points := 5.0
	return &jira.Ticket{
		Key:            "PROJ-7",
		Summary:        "Cache widgets",
		Description:    "Widgets are slow",
		Status:         "In Review",
		StatusCategory: jira.CategoryInProgress,
		IssueType:      "Story",
		Priority:       "High",
		Assignee:       &jira.Person{Name: "Ada", Email: "ada@example.com"},
		ProjectName:    "Project",
		Components:     []string{"backend"},
		StoryPoints:    &points,
		Epic:           "PROJ-1",
		Sprint:         "Sprint 12",
	}
}

func TestFromTicket(t *testing.T) {
	ctx, err := FromTicket(sampleTicket(), NewSourceMetadata(SourceJira, time.Now()))
	if err != nil {
		t.Fatalf("FromTicket() error = %v", err)
	}

	if ctx.ProjectKey != "PROJ" {
		t.Errorf("ProjectKey = %q, want derived PROJ", ctx.ProjectKey)
	}
	if ctx.Assignee == nil || ctx.Assignee.Email != "ada@example.com" {
		t.Errorf("Assignee = %+v", ctx.Assignee)
	}
	if ctx.Reporter != nil {
		t.Errorf("Reporter = %+v, want nil", ctx.Reporter)
	}
	if ctx.Labels == nil || ctx.FixVersions == nil {
		t.Error("sequences should be empty slices, not nil")
	}
	if ctx.StoryPoints == nil || *ctx.StoryPoints != 5 || ctx.EpicLink != "PROJ-1" || ctx.Sprint != "Sprint 12" {
		t.Errorf("agile fields = %v %q %q", ctx.StoryPoints, ctx.EpicLink, ctx.Sprint)
	}
	if ctx.Metadata.Source != SourceJira {
		t.Errorf("Metadata.Source = %q", ctx.Metadata.Source)
	}
}

func TestFromTicket_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*jira.Ticket)
		field  string
	}{
		{"missing key", func(tk *jira.Ticket) { tk.Key = "" }, "key"},
		{"missing summary", func(tk *jira.Ticket) { tk.Summary = "" }, "summary"},
		{"missing status", func(tk *jira.Ticket) { tk.Status = "" }, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := sampleTicket()
			tt.mutate(tk)

			_, err := FromTicket(tk, SourceMetadata{})
			var valErr *prserrors.ValidationError
			if !prserrors.As(err, &valErr) {
				t.Fatalf("FromTicket() error = %v, want ValidationError", err)
			}
			if valErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", valErr.Field, tt.field)
			}
		})
	}
}
