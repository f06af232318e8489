package errors

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ValidationError
		expected string
	}{
		{
			name:     "with field",
			err:      NewValidationError("pr_url", "https://example.com", "invalid GitHub PR URL format"),
			expected: "pr_url: invalid GitHub PR URL format",
		},
		{
			name:     "without field",
			err:      &ValidationError{Message: "empty request"},
			expected: "validation failed: empty request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestGitHubError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *GitHubError
		expected string
	}{
		{
			name:     "with status",
			err:      NewGitHubErrorWithStatus("GetPR", 404, "Not Found"),
			expected: "github GetPR failed (HTTP 404): Not Found",
		},
		{
			name:     "without status",
			err:      NewGitHubError("FetchPR", "token is required"),
			expected: "github FetchPR failed: token is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestJiraError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *JiraError
		expected string
	}{
		{
			name:     "ticket and status",
			err:      NewJiraErrorWithStatus("FetchTicket", "PROJ-7", 404, "Issue does not exist"),
			expected: "jira FetchTicket for PROJ-7 failed (HTTP 404): Issue does not exist",
		},
		{
			name:     "ticket only",
			err:      &JiraError{Operation: "FetchTicket", Ticket: "PROJ-7", Message: "timeout"},
			expected: "jira FetchTicket for PROJ-7 failed: timeout",
		},
		{
			name:     "status only",
			err:      &JiraError{Operation: "Ping", StatusCode: 503, Message: "unavailable"},
			expected: "jira Ping failed (HTTP 503): unavailable",
		},
		{
			name:     "bare",
			err:      NewJiraError("NewAPIClient", "base_url is required"),
			expected: "jira NewAPIClient failed: base_url is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSummaryGenerationError(t *testing.T) {
	cause := NewAIError("gemini", "Chat", "quota exhausted")
	err := NewSummaryGenerationError(cause)

	if err.Message != cause.Error() {
		t.Errorf("Message = %q, want %q", err.Message, cause.Error())
	}
	if !IsSummaryGenerationError(errors.Wrap(err, "generate")) {
		t.Error("IsSummaryGenerationError() should see through wrapping")
	}
	if !IsAIError(err) {
		t.Error("cause should remain reachable through Unwrap")
	}

	nilCause := NewSummaryGenerationError(nil)
	if nilCause.Message != "unknown error" {
		t.Errorf("Message = %q, want %q", nilCause.Message, "unknown error")
	}
}

func TestNewGitHubErrorWithStatus_Retryable(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{400, false},
		{403, false},
		{404, false},
		{408, true},
		{429, true},
		{500, true},
		{502, true},
		{503, true},
		{504, true},
	}

	for _, tt := range tests {
		err := NewGitHubErrorWithStatus("GetPR", tt.status, "failed")
		if err.Retryable != tt.want {
			t.Errorf("status %d: Retryable = %v, want %v", tt.status, err.Retryable, tt.want)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"plain error", errors.New("boom"), false},
		{"retryable GitHubError", NewGitHubErrorWithStatus("GetPR", 503, "unavailable"), true},
		{"non-retryable GitHubError", NewGitHubErrorWithStatus("GetPR", 404, "missing"), false},
		{"wrapped retryable JiraError", errors.Wrap(NewJiraErrorWithStatus("FetchTicket", "A-1", 429, "slow down"), "fetch"), true},
		{"AIError with retryable cause", NewAIErrorWithCause("gemini", "Chat", "failed", NewGitHubErrorWithStatus("x", 502, "y")), true},
		{"validation error", NewValidationError("pr_url", "", "required"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.expected {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestErrorsAs_ThroughWrapping(t *testing.T) {
	base := NewValidationError("jira_ticket_id", "lowercase-1", "invalid Jira ticket format")
	wrapped := errors.Wrap(base, "building request")

	var valErr *ValidationError
	if !errors.As(wrapped, &valErr) {
		t.Fatal("errors.As should find ValidationError")
	}
	if valErr.Field != "jira_ticket_id" {
		t.Errorf("Field = %q, want %q", valErr.Field, "jira_ticket_id")
	}
	if !IsValidationError(wrapped) {
		t.Error("IsValidationError() = false, want true")
	}
	if IsGitHubError(wrapped) {
		t.Error("IsGitHubError() = true, want false")
	}
}

func TestStoreError_Error(t *testing.T) {
	err := NewStoreError("Get", "abc", "not found", nil)
	if got, want := err.Error(), "store Get for abc failed: not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err = NewStoreError("Open", "", "cannot open database", errors.New("disk full"))
	if got, want := err.Error(), "store Open failed: cannot open database"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if errors.Cause(err).Error() != "disk full" {
		t.Errorf("Cause() = %v, want disk full", errors.Cause(err))
	}
}
