package cmd

import (
	"context"
	"log/slog"

	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/ai"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/config"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/github"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/jira"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/orchestrator"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/summarizer"
)

// newOrchestrator wires the GitHub, Jira and Gemini clients from cfg.
// GitHub and Gemini are required; Jira is attached only when configured,
// and a Jira client that cannot be built leaves the service running without it.
func newOrchestrator(cfg *config.Config, logger *slog.Logger, opts ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	gh, err := github.NewClient(&cfg.GitHub, logger)
	if err != nil {
		return nil, err
	}

	provider, err := ai.NewProvider(&cfg.AI, logger)
	if err != nil {
		return nil, err
	}

	all := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithVersion(GetVersion()),
	}

	if cfg.JiraConfigured() {
		jc, err := jira.NewAPIClient(&cfg.Jira, jira.WithLogger(logger))
		if err != nil {
			logger.Warn("Jira disabled", "error", err)
		} else {
			all = append(all, orchestrator.WithJira(jc))
		}
	} else {
		logger.Debug("Jira not configured")
	}

	all = append(all, opts...)
	return orchestrator.New(gh, summarizer.NewAdapter(provider, summarizer.WithLogger(logger)), all...), nil
}

// storeCheck adapts a store ping to an orchestrator health check.
func storeCheck(ping func(context.Context) error) orchestrator.Option {
	return orchestrator.WithHealthCheck("store", ping)
}
