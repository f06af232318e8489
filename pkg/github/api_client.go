package github

import (
	"context"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
)

// UserAgent is sent with every GitHub API request.
const UserAgent = "PR-Summarizer/1.0"

// Default retrieval limits.
const (
	DefaultMaxFiles      = 20
	DefaultMaxCommits    = 10
	DefaultMaxPatchChars = 1000
	DefaultTimeout       = 30 * time.Second
)

// maxPerPage is the largest page size the GitHub REST API accepts.
const maxPerPage = 100

// APIClient implements Client using the GitHub REST API.
type APIClient struct {
	client *gh.Client
	logger *slog.Logger

	baseURL       string
	timeout       time.Duration
	retry         prserrors.RetryConfig
	maxFiles      int
	maxCommits    int
	maxPatchChars int
}

// Compile-time check that APIClient implements Client.
var _ Client = (*APIClient)(nil)

// APIClientOption is a functional option for configuring APIClient.
type APIClientOption func(*APIClient)

// WithAPILogger sets a custom logger for the API client.
func WithAPILogger(logger *slog.Logger) APIClientOption {
	return func(c *APIClient) {
		c.logger = logger
	}
}

// WithBaseURL points the client at a different API root, such as GitHub
// Enterprise ("https://ghe.example.com/api/v3/") or a test server.
func WithBaseURL(baseURL string) APIClientOption {
	return func(c *APIClient) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) APIClientOption {
	return func(c *APIClient) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRetryConfig sets the retry policy applied to each API call.
func WithRetryConfig(cfg prserrors.RetryConfig) APIClientOption {
	return func(c *APIClient) {
		c.retry = cfg
	}
}

// WithLimits bounds the number of files and commits retrieved and the size of
// each patch. Non-positive values keep the defaults.
func WithLimits(maxFiles, maxCommits, maxPatchChars int) APIClientOption {
	return func(c *APIClient) {
		if maxFiles > 0 {
			c.maxFiles = maxFiles
		}
		if maxCommits > 0 {
			c.maxCommits = maxCommits
		}
		if maxPatchChars > 0 {
			c.maxPatchChars = maxPatchChars
		}
	}
}

// NewAPIClient creates a GitHub API client with the given token.
func NewAPIClient(token string, opts ...APIClientOption) (*APIClient, error) {
	if token == "" {
		return nil, prserrors.NewGitHubError("NewAPIClient", "token is required")
	}

	c := &APIClient{
		logger:        slog.Default(),
		timeout:       DefaultTimeout,
		retry:         prserrors.DefaultRetryConfig(),
		maxFiles:      DefaultMaxFiles,
		maxCommits:    DefaultMaxCommits,
		maxPatchChars: DefaultMaxPatchChars,
	}

	for _, opt := range opts {
		opt(c)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = c.timeout

	client := gh.NewClient(tc)
	client.UserAgent = UserAgent

	if c.baseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(c.baseURL, "/") + "/")
		if err != nil {
			return nil, prserrors.NewGitHubErrorWithCause("NewAPIClient", "invalid base URL", err)
		}
		client.BaseURL = u
	}

	c.client = client
	c.retry.OnRetry = func(attempt int, delay time.Duration, err error) {
		c.logger.Warn("retrying GitHub request", "attempt", attempt, "delay", delay, "error", err)
	}

	return c, nil
}

// IsAuthenticated checks if the client is authenticated with GitHub.
func (c *APIClient) IsAuthenticated(ctx context.Context) bool {
	return c.Ping(ctx) == nil
}

// Ping verifies the token by fetching the authenticated user.
func (c *APIClient) Ping(ctx context.Context) error {
	_, resp, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return toGitHubError("Ping", resp, err)
	}
	return nil
}

// FetchPR validates prURL and retrieves the pull request with its changed
// files and commits. The URL is validated before any network call.
func (c *APIClient) FetchPR(ctx context.Context, prURL string) (*PullRequest, error) {
	ref, err := ParsePRURL(prURL)
	if err != nil {
		return nil, err
	}

	c.logDebug("fetching PR", "pr", ref.String())

	pr, err := prserrors.RetryWithResult(ctx, c.retry, func() (*gh.PullRequest, error) {
		pr, resp, err := c.client.PullRequests.Get(ctx, ref.Owner, ref.Repo, ref.Number)
		if err != nil {
			return nil, c.mapFetchError("GetPR", ref, resp, err)
		}
		return pr, nil
	})
	if err != nil {
		return nil, err
	}

	files, err := c.listFiles(ctx, ref)
	if err != nil {
		return nil, err
	}

	commits, err := c.listCommits(ctx, ref)
	if err != nil {
		return nil, err
	}

	result := c.pullRequestFromGitHub(ref, pr, files, commits)
	c.logDebug("fetched PR", "pr", ref.String(), "files", len(result.Files), "commits", len(result.Commits), "state", result.State)

	return result, nil
}

func (c *APIClient) listFiles(ctx context.Context, ref PRRef) ([]*gh.CommitFile, error) {
	opts := &gh.ListOptions{PerPage: min(c.maxFiles, maxPerPage)}

	files, err := prserrors.RetryWithResult(ctx, c.retry, func() ([]*gh.CommitFile, error) {
		files, resp, err := c.client.PullRequests.ListFiles(ctx, ref.Owner, ref.Repo, ref.Number, opts)
		if err != nil {
			return nil, c.mapFetchError("ListFiles", ref, resp, err)
		}
		return files, nil
	})
	if err != nil {
		return nil, err
	}

	if len(files) > c.maxFiles {
		files = files[:c.maxFiles]
	}
	return files, nil
}

// listCommits returns enough of the tail of the commit list to take the last
// maxCommits commits. The API lists commits oldest first.
func (c *APIClient) listCommits(ctx context.Context, ref PRRef) ([]*gh.RepositoryCommit, error) {
	commits, lastPage, err := c.listCommitsPage(ctx, ref, 1)
	if err != nil {
		return nil, err
	}

	if lastPage > 1 {
		tail, _, err := c.listCommitsPage(ctx, ref, lastPage)
		if err != nil {
			return nil, err
		}
		if lastPage > 2 && len(tail) < c.maxCommits {
			prev, _, err := c.listCommitsPage(ctx, ref, lastPage-1)
			if err != nil {
				return nil, err
			}
			commits = prev
		}
		commits = append(commits, tail...)
	}

	if len(commits) > c.maxCommits {
		commits = commits[len(commits)-c.maxCommits:]
	}
	return commits, nil
}

func (c *APIClient) listCommitsPage(ctx context.Context, ref PRRef, page int) ([]*gh.RepositoryCommit, int, error) {
	opts := &gh.ListOptions{PerPage: maxPerPage, Page: page}

	type result struct {
		commits  []*gh.RepositoryCommit
		lastPage int
	}

	r, err := prserrors.RetryWithResult(ctx, c.retry, func() (result, error) {
		commits, resp, err := c.client.PullRequests.ListCommits(ctx, ref.Owner, ref.Repo, ref.Number, opts)
		if err != nil {
			return result{}, c.mapFetchError("ListCommits", ref, resp, err)
		}
		return result{commits: commits, lastPage: resp.LastPage}, nil
	})
	return r.commits, r.lastPage, err
}

func (c *APIClient) pullRequestFromGitHub(ref PRRef, pr *gh.PullRequest, files []*gh.CommitFile, commits []*gh.RepositoryCommit) *PullRequest {
	result := &PullRequest{
		URL:            ref.URL(),
		Number:         pr.GetNumber(),
		Title:          pr.GetTitle(),
		Body:           pr.GetBody(),
		State:          strings.ToLower(pr.GetState()),
		Author:         pr.GetUser().GetLogin(),
		Repository:     ref.Repository(),
		CreatedAt:      pr.GetCreatedAt().Time,
		UpdatedAt:      pr.GetUpdatedAt().Time,
		HeadBranch:     pr.GetHead().GetRef(),
		BaseBranch:     pr.GetBase().GetRef(),
		HeadSHA:        pr.GetHead().GetSHA(),
		BaseSHA:        pr.GetBase().GetSHA(),
		FilesChanged:   pr.GetChangedFiles(),
		Additions:      pr.GetAdditions(),
		Deletions:      pr.GetDeletions(),
		Comments:       pr.GetComments(),
		ReviewComments: pr.GetReviewComments(),
		Draft:          pr.GetDraft(),
		Mergeable:      pr.Mergeable,
		Merged:         pr.GetMerged(),
		HTMLURL:        pr.GetHTMLURL(),
		DiffURL:        pr.GetDiffURL(),
	}

	if result.Number == 0 {
		result.Number = ref.Number
	}
	if result.Merged {
		result.State = StateMerged
	}
	if result.HTMLURL == "" {
		result.HTMLURL = result.URL
	}
	if result.DiffURL == "" {
		result.DiffURL = result.HTMLURL + ".diff"
	}
	if result.FilesChanged == 0 {
		result.FilesChanged = len(files)
	}

	for _, label := range pr.Labels {
		result.Labels = append(result.Labels, label.GetName())
	}

	result.Files = make([]FileChange, 0, len(files))
	for _, f := range files {
		result.Files = append(result.Files, FileChange{
			Filename:  f.GetFilename(),
			Status:    f.GetStatus(),
			Additions: f.GetAdditions(),
			Deletions: f.GetDeletions(),
			Patch:     truncate(f.GetPatch(), c.maxPatchChars),
		})
	}

	result.Commits = make([]Commit, 0, len(commits))
	for _, rc := range commits {
		author := rc.GetCommit().GetAuthor()
		result.Commits = append(result.Commits, Commit{
			SHA:     rc.GetSHA(),
			Message: rc.GetCommit().GetMessage(),
			Author:  author.GetName(),
			Date:    author.GetDate().Time,
		})
	}

	return result
}

// mapFetchError turns a go-github failure into a GitHubError whose message
// suits the HTTP detail for the common 404 and 403 cases.
func (c *APIClient) mapFetchError(operation string, ref PRRef, resp *gh.Response, err error) error {
	var rateErr *gh.RateLimitError
	if prserrors.As(err, &rateErr) {
		return prserrors.NewGitHubErrorWithStatus(operation, 429,
			"rate limit exceeded, resets at "+rateErr.Rate.Reset.Format(time.RFC3339))
	}

	if resp != nil {
		switch resp.StatusCode {
		case 404:
			return prserrors.NewGitHubErrorWithStatus(operation, 404, ref.URL())
		case 403:
			return prserrors.NewGitHubErrorWithStatus(operation, 403, "check token permissions for "+ref.Repository())
		}
	}

	ghErr := toGitHubError(operation, resp, err)
	c.logger.Debug("GitHub request failed", "operation", operation, "pr", ref.String(), "error", ghErr)
	return ghErr
}

func (c *APIClient) logDebug(msg string, args ...any) {
	c.logger.Debug(msg, args...)
}

func toGitHubError(operation string, resp *gh.Response, err error) error {
	if resp != nil && resp.StatusCode > 0 {
		msg := err.Error()
		var errResp *gh.ErrorResponse
		if prserrors.As(err, &errResp) && errResp.Message != "" {
			msg = errResp.Message
		}
		return prserrors.NewGitHubErrorWithStatus(operation, resp.StatusCode, msg)
	}

	ghErr := prserrors.NewGitHubErrorWithCause(operation, "request failed", err)
	var netErr net.Error
	if prserrors.As(err, &netErr) && netErr.Timeout() {
		ghErr.Retryable = true
	}
	return ghErr
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
