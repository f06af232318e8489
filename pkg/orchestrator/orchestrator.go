// Package orchestrator drives summary generation: it retrieves the pull
// request and optional Jira ticket concurrently, assembles the integration
// context and hands it to the summarizer.
//
// GitHub is a mandatory source; any GitHub failure fails the request with
// the original error. Jira is optional; a Jira failure is logged and the
// summary is produced without the ticket.
package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/github"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/integration"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/jira"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/summarizer"
)

// Orchestrator coordinates the source clients and the summarizer. It holds
// no per-request state and is safe for concurrent use.
type Orchestrator struct {
	github     github.Client
	jira       jira.Client // nil when Jira is not configured
	summarizer summarizer.Summarizer
	logger     *slog.Logger
	version    string
	checks     []namedCheck
	metrics    *metrics
}

// Option is a functional option for configuring Orchestrator.
type Option func(*Orchestrator)

// WithJira enables the optional Jira source.
func WithJira(client jira.Client) Option {
	return func(o *Orchestrator) {
		o.jira = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithVersion sets the version reported by HealthCheck.
func WithVersion(version string) Option {
	return func(o *Orchestrator) {
		o.version = version
	}
}

// WithHealthCheck adds a named dependency probe to HealthCheck. A failing
// probe degrades health without making it unhealthy.
func WithHealthCheck(name string, check func(context.Context) error) Option {
	return func(o *Orchestrator) {
		o.checks = append(o.checks, namedCheck{name: name, check: check})
	}
}

// New creates an Orchestrator. The GitHub client and summarizer are required.
func New(gh github.Client, sum summarizer.Summarizer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		github:     gh,
		summarizer: sum,
		logger:     slog.Default(),
		version:    "dev",
		metrics:    newMetrics(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// result is the outcome of one concurrent retrieval.
type result[T any] struct {
	value T
	err   error
}

// BuildContext retrieves every source for req concurrently and assembles
// the integration context. All retrievals are awaited before the outcome is
// inspected. A GitHub failure is returned unchanged when it is a GitHubError
// or ValidationError and wrapped in a GitHubError otherwise.
func (o *Orchestrator) BuildContext(ctx context.Context, req Request) (*integration.IntegrationContext, error) {
	integrationID := "int-" + req.RequestID
	ticket := jira.NormalizeTicketID(req.JiraTicketID)

	var (
		g      errgroup.Group
		ghRes  result[*integration.GitHubPRContext]
		jirRes result[*integration.JiraTicketContext]
	)

	g.Go(func() error {
		ghRes.value, ghRes.err = o.retrieveGitHub(ctx, req.PRURL)
		return nil
	})

	wantJira := ticket != ""
	if wantJira && o.jira != nil {
		g.Go(func() error {
			jirRes.value, jirRes.err = o.retrieveJira(ctx, ticket)
			return nil
		})
	}

	_ = g.Wait()

	if ghRes.err != nil {
		o.logger.Error("GitHub retrieval failed", "integration_id", integrationID, "pr_url", req.PRURL, "error", ghRes.err)
		return nil, ghRes.err
	}

	switch {
	case wantJira && o.jira == nil:
		o.metrics.jiraDegraded.Add(1)
		o.logger.Warn("Jira is not configured; continuing without ticket", "ticket", ticket)
	case jirRes.err != nil:
		o.metrics.jiraDegraded.Add(1)
		o.logger.Warn("Jira retrieval failed; continuing without ticket", "ticket", ticket, "error", jirRes.err)
		jirRes.value = nil
	}

	ic, err := integration.New(integration.Params{
		ID:         integrationID,
		GitHub:     ghRes.value,
		Jira:       jirRes.value,
		FocusAreas: req.Options.FocusAreas,
	})
	if err != nil {
		return nil, prserrors.NewOrchestrationError("build_context", "assemble context", err)
	}

	o.logger.Info("integration context built",
		"integration_id", ic.ID,
		"sources", ic.Sources(),
		"completeness_score", ic.CompletenessScore,
		"confidence_score", ic.ConfidenceScore,
	)
	return ic, nil
}

func (o *Orchestrator) retrieveGitHub(ctx context.Context, prURL string) (*integration.GitHubPRContext, error) {
	started := time.Now()

	pr, err := o.github.FetchPR(ctx, prURL)
	if err != nil {
		if prserrors.IsGitHubError(err) || prserrors.IsValidationError(err) {
			return nil, err
		}
		return nil, prserrors.NewGitHubErrorWithCause("FetchPR", "data retrieval failed", err)
	}

	ghCtx, err := integration.FromPullRequest(pr, integration.NewSourceMetadata(integration.SourceGitHub, started))
	if err != nil {
		return nil, prserrors.NewGitHubErrorWithCause("FetchPR", "incomplete pull request data", err)
	}
	return ghCtx, nil
}

func (o *Orchestrator) retrieveJira(ctx context.Context, ticket string) (*integration.JiraTicketContext, error) {
	started := time.Now()

	t, err := o.jira.FetchTicket(ctx, ticket)
	if err != nil {
		return nil, err
	}
	return integration.FromTicket(t, integration.NewSourceMetadata(integration.SourceJira, started))
}

// Generate runs the summarizer on an assembled context. Any summarizer
// error is wrapped in a SummaryGenerationError. ProcessingTimeMS is the
// time elapsed since started.
func (o *Orchestrator) Generate(ctx context.Context, ic *integration.IntegrationContext, req Request, started time.Time) (*summarizer.PRSummary, error) {
	opts := summarizer.Options{
		RequestID:   req.RequestID,
		GitHubPRURL: req.PRURL,
		FocusAreas:  req.Options.FocusAreas,
		DetailLevel: req.Options.DetailLevel,
		StartedAt:   started,
	}
	if req.Options.IncludeTestCases != nil && !*req.Options.IncludeTestCases {
		opts.BriefTestCases = true
	}

	summary, err := o.summarizer.GenerateSummary(ctx, FlattenPR(ic.GitHub), FlattenJira(ic.Jira), nil, opts)
	if err != nil {
		o.logger.Error("summary generation failed", "integration_id", ic.ID, "error", err)
		return nil, prserrors.NewSummaryGenerationError(err)
	}

	ms := time.Since(started).Milliseconds()
	summary.ProcessingTimeMS = &ms
	return summary, nil
}

// Summarize validates req, builds its context and generates the summary.
func (o *Orchestrator) Summarize(ctx context.Context, req Request) (*summarizer.PRSummary, error) {
	started := time.Now()
	o.metrics.total.Add(1)

	summary, err := o.summarize(ctx, req, started)
	if err != nil {
		o.metrics.failed.Add(1)
		return nil, err
	}

	o.metrics.succeeded.Add(1)
	o.metrics.processingMS.Add(*summary.ProcessingTimeMS)
	o.logger.Info("summary generated",
		"summary_id", summary.ID,
		"request_id", summary.RequestID,
		"processing_time_ms", *summary.ProcessingTimeMS,
	)
	return summary, nil
}

func (o *Orchestrator) summarize(ctx context.Context, req Request, started time.Time) (*summarizer.PRSummary, error) {
	req, err := req.Validate()
	if err != nil {
		return nil, err
	}

	o.logger.Info("starting summary generation", "request_id", req.RequestID, "pr_url", req.PRURL, "jira_ticket_id", req.JiraTicketID)

	ic, err := o.BuildContext(ctx, req)
	if err != nil {
		return nil, err
	}
	return o.Generate(ctx, ic, req, started)
}

// FlattenPR converts a GitHub context to the summarizer's input.
func FlattenPR(c *integration.GitHubPRContext) *summarizer.PRData {
	if c == nil {
		return nil
	}

	pr := &summarizer.PRData{
		Number:         c.Number,
		Title:          c.Title,
		Body:           c.Description,
		State:          c.State,
		Author:         c.Author,
		Repository:     c.Repository,
		HeadBranch:     c.HeadBranch,
		BaseBranch:     c.BaseBranch,
		FilesChanged:   c.ChangedFiles,
		Additions:      c.Additions,
		Deletions:      c.Deletions,
		HTMLURL:        c.HTMLURL,
		CreatedAt:      c.CreatedAt,
		Labels:         c.Labels,
		Comments:       c.Comments,
		ReviewComments: c.ReviewComments,
		Files:          make([]summarizer.FileData, len(c.FileChanges)),
		Commits:        make([]summarizer.CommitData, len(c.CommitDetails)),
	}
	for i, f := range c.FileChanges {
		pr.Files[i] = summarizer.FileData(f)
	}
	for i, cm := range c.CommitDetails {
		pr.Commits[i] = summarizer.CommitData{SHA: cm.SHA, Message: cm.Message, Author: cm.Author}
	}
	return pr
}

// FlattenJira converts a Jira context to the summarizer's input. A nil
// context yields nil.
func FlattenJira(c *integration.JiraTicketContext) *summarizer.JiraData {
	if c == nil {
		return nil
	}

	d := &summarizer.JiraData{
		Key:         c.Key,
		Summary:     c.Summary,
		Description: c.Description,
		Status:      c.Status,
		Priority:    c.Priority,
		IssueType:   c.IssueType,
		ProjectKey:  c.ProjectKey,
		ProjectName: c.ProjectName,
		Components:  c.Components,
		Labels:      c.Labels,
	}
	if c.Assignee != nil {
		d.Assignee = c.Assignee.Name
	}
	if c.Reporter != nil {
		d.Reporter = c.Reporter.Name
	}
	return d
}
