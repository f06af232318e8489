package github

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cli/oauth"
	"github.com/cli/oauth/api"

	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
)

const (
	// DefaultGitHubHost is the default GitHub web host.
	DefaultGitHubHost = "https://github.com"

	// DefaultScope lets the token read private repositories.
	DefaultScope = "repo"
)

// OAuthConfig holds settings for the device flow.
type OAuthConfig struct {
	ClientID string   // OAuth app client ID
	Scopes   []string // defaults to DefaultScope
	HostURL  string   // defaults to DefaultGitHubHost
	Stdin    io.Reader
}

// DeviceAuth runs the OAuth device flow: it prints a one-time code for the
// user to enter at GitHub, then polls until the user authorizes the app.
func DeviceAuth(ctx context.Context, cfg OAuthConfig, stdout io.Writer) (*api.AccessToken, error) {
	if cfg.ClientID == "" {
		return nil, prserrors.NewGitHubError("DeviceAuth", "client_id is required for OAuth device flow; set github.client_id")
	}
	if err := ctx.Err(); err != nil {
		return nil, prserrors.NewGitHubErrorWithCause("DeviceAuth", "cancelled", err)
	}

	hostURL := cfg.HostURL
	if hostURL == "" {
		hostURL = DefaultGitHubHost
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{DefaultScope}
	}

	stdin := cfg.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}

	host, err := oauth.NewGitHubHost(hostURL)
	if err != nil {
		return nil, prserrors.NewGitHubErrorWithCause("DeviceAuth", "invalid GitHub host URL", err)
	}

	flow := &oauth.Flow{
		Host:     host,
		ClientID: cfg.ClientID,
		Scopes:   scopes,
		Stdout:   stdout,
		Stdin:    stdin,
		DisplayCode: func(code, verificationURL string) error {
			fmt.Fprintf(stdout, "\nOne-time code: %s\n", code)
			fmt.Fprintf(stdout, "Open %s and enter the code to authorize pr-summarizer.\n", verificationURL)
			return nil
		},
	}

	token, err := flow.DeviceFlow()
	if err != nil {
		return nil, prserrors.NewGitHubErrorWithCause("DeviceAuth", "device flow failed", err)
	}

	return token, nil
}
