package summarizer

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/ai"
	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
)

// Compile-time interface check
var _ Summarizer = (*Adapter)(nil)

// Adapter generates summaries with an ai.Provider.
type Adapter struct {
	provider ai.Provider
	logger   *slog.Logger
	now      func() time.Time
}

// AdapterOption is a functional option for configuring Adapter.
type AdapterOption func(*Adapter)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) AdapterOption {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// NewAdapter creates a summarizer backed by provider.
func NewAdapter(provider ai.Provider, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		provider: provider,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Provider returns the underlying provider.
func (a *Adapter) Provider() ai.Provider {
	return a.provider
}

// GenerateSummary prompts the model and parses its answer. Provider errors
// are returned as is; unparsable output is never an error.
func (a *Adapter) GenerateSummary(ctx context.Context, pr *PRData, jira *JiraData, confluence []ConfluenceData, opts Options) (*PRSummary, error) {
	if pr == nil {
		return nil, prserrors.NewValidationError("pr_data", "", "pull request data is required")
	}
	if a.provider == nil {
		return nil, prserrors.NewAIError(ai.ProviderGemini, "GenerateSummary", "no AI provider configured")
	}

	prompt := BuildPrompt(pr, jira, confluence, opts)
	a.logger.Debug("generating summary", "provider", a.provider.Name(), "prompt_chars", len(prompt), "request_id", opts.RequestID)

	resp, err := a.provider.Chat(ctx, []ai.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return nil, err
	}

	sections := ParseResponse(resp.Content, pr.FilesChanged)

	url := opts.GitHubPRURL
	if url == "" {
		url = pr.HTMLURL
	}
	requestID := opts.RequestID
	if requestID == "" {
		requestID = "req-" + uuid.NewString()
	}

	now := a.now()
	summary := &PRSummary{
		ID:          uuid.NewString(),
		RequestID:   requestID,
		GitHubPRURL: url,
		Sections:    sections,
		Status:      StatusCompleted,
		CreatedAt:   now.UTC(),
	}
	if jira != nil {
		summary.JiraTicketID = jira.Key
	}
	if !opts.StartedAt.IsZero() {
		ms := now.Sub(opts.StartedAt).Milliseconds()
		summary.ProcessingTimeMS = &ms
	}

	return summary, nil
}
