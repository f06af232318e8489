package summarizer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/ai"
	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
)

type fakeProvider struct {
	content  string
	err      error
	messages []ai.Message
}

func (f *fakeProvider) Name() string      { return "fake" }
func (f *fakeProvider) IsAvailable() bool { return true }
func (f *fakeProvider) Chat(_ context.Context, messages []ai.Message) (*ai.Response, error) {
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	return &ai.Response{Content: f.content}, nil
}

func TestAdapter_GenerateSummary(t *testing.T) {
	provider := &fakeProvider{content: `{"business_context": "Faster widgets", "suggested_test_cases": ["hit", "miss"]}`}
	adapter := NewAdapter(provider)

	fixed := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	adapter.now = func() time.Time { return fixed }

	summary, err := adapter.GenerateSummary(t.Context(), samplePRData(), &JiraData{Key: "PROJ-7", Summary: "Cache"}, nil, Options{
		RequestID:   "req-1",
		GitHubPRURL: "https://github.com/acme/widgets/pull/42",
		StartedAt:   fixed.Add(-1500 * time.Millisecond),
	})
	if err != nil {
		t.Fatalf("GenerateSummary() error = %v", err)
	}

	if summary.ID == "" || summary.RequestID != "req-1" {
		t.Errorf("ids = %q %q", summary.ID, summary.RequestID)
	}
	if summary.Status != StatusCompleted {
		t.Errorf("Status = %q", summary.Status)
	}
	if summary.JiraTicketID != "PROJ-7" {
		t.Errorf("JiraTicketID = %q", summary.JiraTicketID)
	}
	if summary.BusinessContext != "Faster widgets" {
		t.Errorf("BusinessContext = %q", summary.BusinessContext)
	}
	if summary.CodeChangeSummary != "Technical analysis of 12 files changed" {
		t.Errorf("CodeChangeSummary = %q", summary.CodeChangeSummary)
	}
	if summary.ProcessingTimeMS == nil || *summary.ProcessingTimeMS != 1500 {
		t.Errorf("ProcessingTimeMS = %v", summary.ProcessingTimeMS)
	}
	if !summary.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v", summary.CreatedAt)
	}

	if len(provider.messages) != 1 || provider.messages[0].Role != "user" {
		t.Fatalf("messages = %+v", provider.messages)
	}
	if !strings.Contains(provider.messages[0].Content, "Key: PROJ-7") {
		t.Error("prompt should include the Jira ticket")
	}
}

func TestAdapter_GenerateSummary_Defaults(t *testing.T) {
	adapter := NewAdapter(&fakeProvider{content: "no json here"})

	summary, err := adapter.GenerateSummary(t.Context(), samplePRData(), nil, nil, Options{})
	if err != nil {
		t.Fatalf("GenerateSummary() error = %v", err)
	}
	if summary.GitHubPRURL != "https://github.com/acme/widgets/pull/42" {
		t.Errorf("GitHubPRURL = %q, want PR HTML URL", summary.GitHubPRURL)
	}
	if !strings.HasPrefix(summary.RequestID, "req-") {
		t.Errorf("RequestID = %q", summary.RequestID)
	}
	if summary.JiraTicketID != "" || summary.ProcessingTimeMS != nil {
		t.Errorf("optional fields = %q %v", summary.JiraTicketID, summary.ProcessingTimeMS)
	}
	if !strings.HasPrefix(summary.BusinessContext, "AI Analysis: no json here") {
		t.Errorf("BusinessContext = %q", summary.BusinessContext)
	}
}

func TestAdapter_GenerateSummary_ProviderError(t *testing.T) {
	adapter := NewAdapter(&fakeProvider{err: prserrors.NewAIError("gemini", "Chat", "quota exceeded")})

	_, err := adapter.GenerateSummary(t.Context(), samplePRData(), nil, nil, Options{})
	if !prserrors.IsAIError(err) {
		t.Errorf("GenerateSummary() error = %v, want AIError", err)
	}
}

func TestAdapter_GenerateSummary_Preconditions(t *testing.T) {
	if _, err := NewAdapter(&fakeProvider{}).GenerateSummary(t.Context(), nil, nil, nil, Options{}); !prserrors.IsValidationError(err) {
		t.Errorf("nil PR error = %v, want ValidationError", err)
	}
	if _, err := NewAdapter(nil).GenerateSummary(t.Context(), samplePRData(), nil, nil, Options{}); !prserrors.IsAIError(err) {
		t.Errorf("nil provider error = %v, want AIError", err)
	}
}

func TestProcessingStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to ProcessingStatus
		want     bool
	}{
		{StatusPending, StatusInProgress, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusFailed, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusInProgress, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusFailed, StatusInProgress, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}

	if !StatusCancelled.IsTerminal() || StatusInProgress.IsTerminal() {
		t.Error("IsTerminal mismatch")
	}
	if ProcessingStatus("bogus").Valid() || !StatusPending.Valid() {
		t.Error("Valid mismatch")
	}
}

func TestFormatMarkdown(t *testing.T) {
	ms := int64(1200)
	s := &PRSummary{
		GitHubPRURL:      "https://github.com/acme/widgets/pull/42",
		JiraTicketID:     "PROJ-7",
		CreatedAt:        time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
		ProcessingTimeMS: &ms,
		Sections: Sections{
			BusinessContext:    "Why",
			CodeChangeSummary:  "What",
			BusinessCodeImpact: "Impact",
			SuggestedTestCases: []string{"one", "two"},
			RiskComplexity:     "Low",
			ReviewerGuidance:   "Look here",
		},
	}

	md := s.FormatMarkdown()
	for _, want := range []string{
		"**Jira ticket:** PROJ-7",
		"**Generated:** 2025-01-15 10:30 in 1200 ms",
		"## Business Context\n\nWhy",
		"- [ ] one\n- [ ] two\n",
		"## Reviewer Guidance\n\nLook here",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}
