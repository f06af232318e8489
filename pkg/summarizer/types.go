// Package summarizer turns pull request and ticket data into a six-section
// PR summary using an LLM.
//
// The model's output is treated as untrusted text. ParseResponse extracts a
// JSON object when it can and fills any missing section with a default; when
// no object can be parsed it builds a fallback summary instead. Either way
// every section of the result is non-empty.
package summarizer

import (
	"context"
	"time"
)

// ProcessingStatus is the lifecycle state of a summary.
type ProcessingStatus string

// Processing states.
const (
	StatusPending    ProcessingStatus = "pending"
	StatusInProgress ProcessingStatus = "in_progress"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
	StatusCancelled  ProcessingStatus = "cancelled"
)

// IsTerminal reports whether no further transition is allowed.
func (s ProcessingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Valid reports whether s is a known status.
func (s ProcessingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a summary may move from s to next.
func (s ProcessingStatus) CanTransition(next ProcessingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusInProgress || next == StatusCancelled
	case StatusInProgress:
		return next == StatusCompleted || next == StatusFailed || next == StatusCancelled
	}
	return false
}

// Sections are the six parts of every summary.
type Sections struct {
	BusinessContext    string   `json:"business_context" yaml:"business_context"`
	CodeChangeSummary  string   `json:"code_change_summary" yaml:"code_change_summary"`
	BusinessCodeImpact string   `json:"business_code_impact" yaml:"business_code_impact"`
	SuggestedTestCases []string `json:"suggested_test_cases" yaml:"suggested_test_cases"`
	RiskComplexity     string   `json:"risk_complexity" yaml:"risk_complexity"`
	ReviewerGuidance   string   `json:"reviewer_guidance" yaml:"reviewer_guidance"`
}

// PRSummary is the result returned to callers and stored in history.
type PRSummary struct {
	ID           string `json:"id" yaml:"id"`
	RequestID    string `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	GitHubPRURL  string `json:"github_pr_url" yaml:"github_pr_url"`
	JiraTicketID string `json:"jira_ticket_id,omitempty" yaml:"jira_ticket_id,omitempty"`

	Sections `yaml:",inline"`

	Status           ProcessingStatus `json:"status" yaml:"status"`
	CreatedAt        time.Time        `json:"created_at" yaml:"created_at"`
	ProcessingTimeMS *int64           `json:"processing_time_ms,omitempty" yaml:"processing_time_ms,omitempty"`

	// Error is set when an async summary failed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// FileData is a changed file as the prompt sees it.
type FileData struct {
	Filename  string
	Status    string
	Additions int
	Deletions int
	Patch     string
}

// CommitData is a commit as the prompt sees it.
type CommitData struct {
	SHA     string
	Message string
	Author  string
}

// PRData is the flattened pull request the prompt is built from.
type PRData struct {
	Number         int
	Title          string
	Body           string
	State          string
	Author         string
	Repository     string
	HeadBranch     string
	BaseBranch     string
	FilesChanged   int
	Additions      int
	Deletions      int
	Files          []FileData
	Commits        []CommitData
	HTMLURL        string
	CreatedAt      time.Time
	Labels         []string
	Comments       int
	ReviewComments int
}

// JiraData is the flattened ticket the prompt is built from.
type JiraData struct {
	Key         string
	Summary     string
	Description string
	Status      string
	Priority    string
	IssueType   string
	ProjectKey  string
	ProjectName string
	Components  []string
	Labels      []string
	Assignee    string
	Reporter    string
}

// ConfluenceData is a related documentation page.
type ConfluenceData struct {
	Title   string
	Content string
}

// Detail levels.
const (
	DetailLow    = "low"
	DetailMedium = "medium"
	DetailHigh   = "high"
)

// Options adjust a single generation.
type Options struct {
	RequestID   string
	GitHubPRURL string
	FocusAreas  []string
	DetailLevel string

	// BriefTestCases asks for a short test case list.
	BriefTestCases bool

	// StartedAt, when set, is used to stamp ProcessingTimeMS.
	StartedAt time.Time
}

// Summarizer generates a summary from prepared data.
type Summarizer interface {
	GenerateSummary(ctx context.Context, pr *PRData, jira *JiraData, confluence []ConfluenceData, opts Options) (*PRSummary, error)
}
