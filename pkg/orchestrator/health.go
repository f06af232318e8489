package orchestrator

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/ai"
	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
)

// Dependency and overall health states.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	StatusDisabled  = "disabled"
)

const healthTimeout = 5 * time.Second

// healthRetry retries a transient ping failure once.
var healthRetry = prserrors.RetryConfig{
	MaxRetries: 1,
	BaseDelay:  200 * time.Millisecond,
	MaxDelay:   time.Second,
	Jitter:     prserrors.DefaultJitter,
}

type namedCheck struct {
	name  string
	check func(context.Context) error
}

// DependencyHealth is the state of one dependency.
type DependencyHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Health is the aggregated service health.
type Health struct {
	Status       string                      `json:"status"`
	Version      string                      `json:"version"`
	Dependencies map[string]DependencyHealth `json:"dependencies"`
	CheckedAt    time.Time                   `json:"checked_at"`
}

// providerSource is implemented by summarizers that expose their LLM
// provider.
type providerSource interface {
	Provider() ai.Provider
}

// HealthCheck probes every dependency concurrently. The LLM is never called;
// Gemini is healthy when its provider is configured. GitHub or Gemini
// failures make the service unhealthy, any other failure degrades it.
func (o *Orchestrator) HealthCheck(ctx context.Context) Health {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	h := Health{
		Status:       StatusHealthy,
		Version:      o.version,
		Dependencies: make(map[string]DependencyHealth),
		CheckedAt:    time.Now().UTC(),
	}

	checks := []namedCheck{{name: "github", check: o.github.Ping}}
	if o.jira != nil {
		checks = append(checks, namedCheck{name: "jira", check: o.jira.Ping})
	} else {
		h.Dependencies["jira"] = DependencyHealth{Status: StatusDisabled}
	}
	checks = append(checks, o.checks...)

	results := make([]DependencyHealth, len(checks))
	var g errgroup.Group
	for i, c := range checks {
		g.Go(func() error {
			err := prserrors.Retry(ctx, healthRetry, func() error { return c.check(ctx) })
			results[i] = DependencyHealth{Status: StatusHealthy}
			if err != nil {
				o.logger.Warn("health check failed", "dependency", c.name, "error", err)
				results[i] = DependencyHealth{Status: StatusUnhealthy, Error: healthDetail(c.name, err)}
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, c := range checks {
		h.Dependencies[c.name] = results[i]
	}

	h.Dependencies["gemini"] = o.geminiHealth()

	for name, dh := range h.Dependencies {
		if dh.Status != StatusUnhealthy {
			continue
		}
		if name == "github" || name == "gemini" {
			h.Status = StatusUnhealthy
			break
		}
		h.Status = StatusDegraded
	}

	return h
}

func (o *Orchestrator) geminiHealth() DependencyHealth {
	ps, ok := o.summarizer.(providerSource)
	if !ok {
		return DependencyHealth{Status: StatusHealthy}
	}
	if p := ps.Provider(); p == nil || !p.IsAvailable() {
		return DependencyHealth{Status: StatusUnhealthy, Error: "LLM provider is not configured"}
	}
	return DependencyHealth{Status: StatusHealthy}
}

// healthDetail is the public error text for a failed check. Only upstream
// errors are described; anything else is reported by name.
func healthDetail(name string, err error) string {
	if prserrors.IsGitHubError(err) || prserrors.IsJiraError(err) {
		return prserrors.Detail(err)
	}
	return name + " check failed"
}
