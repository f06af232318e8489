package jira

import (
	"context"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	jira "github.com/andygrunwald/go-jira"

	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/config"
	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
)

// Custom field names looked up in config.JiraConfig.CustomFields.
const (
	FieldStoryPoints = "story_points"
	FieldEpic        = "epic"
	FieldSprint      = "sprint"
)

const defaultTimeout = 30 * time.Second

// Compile-time interface check
var _ Client = (*APIClient)(nil)

// APIClient implements Client with the Jira REST API.
type APIClient struct {
	client       *jira.Client
	baseURL      string
	customFields map[string]string
	retry        prserrors.RetryConfig
	logger       *slog.Logger
}

// APIClientOption is a functional option for configuring APIClient.
type APIClientOption func(*APIClient)

// WithLogger sets a custom logger for the API client.
func WithLogger(logger *slog.Logger) APIClientOption {
	return func(c *APIClient) {
		c.logger = logger
	}
}

// WithRetryConfig sets the retry policy for ticket fetches.
func WithRetryConfig(cfg prserrors.RetryConfig) APIClientOption {
	return func(c *APIClient) {
		c.retry = cfg
	}
}

// NewAPIClient creates a Jira client using basic auth (email + API token).
// Token lookup precedence: JIRA_TOKEN env var > config token.
func NewAPIClient(cfg *config.JiraConfig, opts ...APIClientOption) (*APIClient, error) {
	if cfg == nil {
		return nil, prserrors.NewJiraError("NewAPIClient", "jira config is required")
	}

	token := os.Getenv("JIRA_TOKEN")
	if token == "" {
		token = cfg.Token
	}

	switch {
	case cfg.BaseURL == "":
		return nil, prserrors.NewJiraError("NewAPIClient", "jira base_url is required")
	case cfg.Email == "":
		return nil, prserrors.NewJiraError("NewAPIClient", "jira email is required")
	case token == "":
		return nil, prserrors.NewJiraError("NewAPIClient", "jira token is required (set JIRA_TOKEN or jira.token)")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	tp := jira.BasicAuthTransport{Username: cfg.Email, Password: token}
	httpClient := tp.Client()
	httpClient.Timeout = timeout

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	client, err := jira.NewClient(httpClient, baseURL+"/")
	if err != nil {
		return nil, prserrors.NewJiraErrorWithCause("NewAPIClient", "", "invalid base_url", err)
	}

	c := &APIClient{
		client:       client,
		baseURL:      baseURL,
		customFields: cfg.CustomFields,
		retry:        prserrors.DefaultRetryConfig().WithMaxRetries(cfg.MaxRetries),
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	onRetry := c.retry.OnRetry
	c.retry.OnRetry = func(attempt int, delay time.Duration, err error) {
		c.logger.Warn("retrying Jira request", "attempt", attempt, "delay", delay, "error", err)
		if onRetry != nil {
			onRetry(attempt, delay, err)
		}
	}

	return c, nil
}

// FetchTicket normalizes and validates key, then retrieves the ticket.
func (c *APIClient) FetchTicket(ctx context.Context, key string) (*Ticket, error) {
	key, err := ValidateTicketID(NormalizeTicketID(key))
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetching Jira ticket", "ticket", key)

	issue, err := prserrors.RetryWithResult(ctx, c.retry, func() (*jira.Issue, error) {
		issue, resp, err := c.client.Issue.GetWithContext(ctx, key, nil)
		if err != nil {
			return nil, toJiraError("FetchTicket", key, resp, err)
		}
		return issue, nil
	})
	if err != nil {
		return nil, err
	}

	return c.ticketFromIssue(key, issue), nil
}

// Ping fetches the authenticated user.
func (c *APIClient) Ping(ctx context.Context) error {
	_, resp, err := c.client.User.GetSelfWithContext(ctx)
	if err != nil {
		return toJiraError("Ping", "", resp, err)
	}
	return nil
}

func (c *APIClient) ticketFromIssue(key string, issue *jira.Issue) *Ticket {
	t := &Ticket{
		Key: key,
		URL: c.baseURL + "/browse/" + key,
	}
	if issue.Key != "" {
		t.Key = issue.Key
	}

	f := issue.Fields
	if f == nil {
		t.StatusCategory = CategoryToDo
		return t
	}

	t.Summary = f.Summary
	t.Description = f.Description
	t.IssueType = f.Type.Name
	t.ProjectKey = f.Project.Key
	t.ProjectName = f.Project.Name
	t.Labels = f.Labels
	t.Created = time.Time(f.Created)
	t.Updated = time.Time(f.Updated)

	if f.Status != nil {
		t.Status = f.Status.Name
		t.StatusCategory = ResolveStatusCategory(f.Status.StatusCategory.Key, f.Status.StatusCategory.Name, f.Status.Name)
	} else {
		t.StatusCategory = CategoryForStatus("")
	}
	if f.Resolution != nil {
		t.Resolution = f.Resolution.Name
	}
	if f.Priority != nil {
		t.Priority = f.Priority.Name
	}
	t.Assignee = personFromUser(f.Assignee)
	t.Reporter = personFromUser(f.Reporter)

	for _, comp := range f.Components {
		if comp != nil {
			t.Components = append(t.Components, comp.Name)
		}
	}
	for _, v := range f.FixVersions {
		if v != nil {
			t.FixVersions = append(t.FixVersions, v.Name)
		}
	}

	if t.ProjectKey == "" {
		t.ProjectKey = ProjectKey(t.Key)
	}
	if f.Epic != nil {
		t.Epic = f.Epic.Name
	}
	if f.Sprint != nil {
		t.Sprint = f.Sprint.Name
	}

	c.applyCustomFields(t, f.Unknowns)
	return t
}

// applyCustomFields resolves configured custom fields from the fields Jira
// returned outside the standard schema.
func (c *APIClient) applyCustomFields(t *Ticket, unknowns map[string]any) {
	if len(c.customFields) == 0 || len(unknowns) == 0 {
		return
	}

	t.CustomFields = make(map[string]string)
	for name, fieldID := range c.customFields {
		raw, ok := unknowns[fieldID]
		if !ok || raw == nil {
			continue
		}
		if value := customFieldValue(raw); value != "" {
			t.CustomFields[name] = value
		}
	}

	if v, ok := t.CustomFields[FieldStoryPoints]; ok {
		if points, err := strconv.ParseFloat(v, 64); err == nil {
			t.StoryPoints = &points
		}
	}
	if v, ok := t.CustomFields[FieldEpic]; ok && t.Epic == "" {
		t.Epic = v
	}
	if v, ok := t.CustomFields[FieldSprint]; ok && t.Sprint == "" {
		t.Sprint = v
	}
}

// customFieldValue converts a decoded custom field value to a string.
// Handles strings, numbers, objects with value/name and arrays of either.
func customFieldValue(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case map[string]any:
		for _, k := range []string{"value", "name", "displayName"} {
			if s, ok := v[k].(string); ok && s != "" {
				return s
			}
		}
	case []any:
		var values []string
		for _, item := range v {
			if s := customFieldValue(item); s != "" {
				values = append(values, s)
			}
		}
		return strings.Join(values, ", ")
	}
	return ""
}

func personFromUser(u *jira.User) *Person {
	if u == nil || (u.DisplayName == "" && u.EmailAddress == "") {
		return nil
	}
	return &Person{Name: u.DisplayName, Email: u.EmailAddress}
}

func toJiraError(operation, key string, resp *jira.Response, err error) error {
	if resp != nil && resp.Response != nil && resp.StatusCode > 0 {
		var msg string
		switch resp.StatusCode {
		case 401:
			msg = "authentication failed: check jira.email and JIRA_TOKEN"
		case 403:
			msg = "access denied: check your permissions"
		case 404:
			msg = "ticket not found"
		case 429:
			msg = "rate limit exceeded"
		default:
			msg = err.Error()
		}
		return prserrors.NewJiraErrorWithStatus(operation, key, resp.StatusCode, msg)
	}

	jiraErr := prserrors.NewJiraErrorWithCause(operation, key, "request failed", err)
	var netErr net.Error
	if prserrors.As(err, &netErr) && netErr.Timeout() {
		jiraErr.Retryable = true
	}
	return jiraErr
}
