package github

import (
	"context"
	"log/slog"
	"os"

	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/config"
	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
)

// Client defines the GitHub operations the summarizer needs.
type Client interface {
	// FetchPR retrieves the pull request identified by its web URL.
	FetchPR(ctx context.Context, prURL string) (*PullRequest, error)

	// Ping checks that the API is reachable and the token is accepted.
	Ping(ctx context.Context) error
}

// TokenSource names where a token was found.
type TokenSource string

const (
	TokenFromEnv    TokenSource = "GITHUB_TOKEN"
	TokenFromPrefix TokenSource = "PRSUM_GITHUB_TOKEN"
	TokenFromConfig TokenSource = "config"
	TokenFromCache  TokenSource = "cache"
)

// ResolveToken finds a GitHub token.
//
// Resolution order:
//  1. GITHUB_TOKEN environment variable
//  2. PRSUM_GITHUB_TOKEN environment variable
//  3. Token from config (github.token)
//  4. Cached OAuth token from 'pr-summarizer auth login'
func ResolveToken(cfg *config.GitHubConfig, cache TokenCache) (string, TokenSource, error) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token, TokenFromEnv, nil
	}
	if token := os.Getenv("PRSUM_GITHUB_TOKEN"); token != "" {
		return token, TokenFromPrefix, nil
	}
	if cfg != nil && cfg.Token != "" {
		return cfg.Token, TokenFromConfig, nil
	}

	if cache != nil {
		cached, err := cache.Get()
		if err != nil {
			slog.Debug("failed to read cached token", "error", err)
		}
		if cached != nil && cached.Valid() {
			return cached.AccessToken, TokenFromCache, nil
		}
	}

	return "", "", prserrors.NewGitHubError("NewClient",
		"no GitHub token found; set GITHUB_TOKEN or run 'pr-summarizer auth login'")
}

// NewClient creates a GitHub client from configuration.
func NewClient(cfg *config.GitHubConfig, logger *slog.Logger) (*APIClient, error) {
	if cfg == nil {
		return nil, prserrors.NewGitHubError("NewClient", "github config is required")
	}

	token, source, err := ResolveToken(cfg, NewTokenCache())
	if err != nil {
		return nil, err
	}

	opts := []APIClientOption{
		WithTimeout(cfg.Timeout),
		WithRetryConfig(prserrors.DefaultRetryConfig().WithMaxRetries(cfg.MaxRetries)),
		WithLimits(cfg.MaxFiles, cfg.MaxCommits, cfg.MaxPatchChars),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}
	if logger != nil {
		opts = append(opts, WithAPILogger(logger))
		logger.Debug("using GitHub token", "source", string(source))
	}

	return NewAPIClient(token, opts...)
}
