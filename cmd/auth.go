package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/term"

	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/github"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/logging"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/server"
)

// Replaced in tests.
var (
	newTokenCache   = github.NewTokenCache
	stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

func init() {
	rootCmd.AddCommand(newAuthCmd())
}

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage GitHub and API credentials",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthTokenCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize pr-summarizer with GitHub",
		Long: `Authorize pr-summarizer with GitHub using the OAuth device flow.

A one-time code is printed; enter it at the GitHub verification page. The
resulting token is cached in the OS keychain, or in a 0600 file under
~/.config/pr-summarizer when no keychain is available.

GITHUB_TOKEN and github.token take precedence over the cached token.
Requires github.client_id to name an OAuth app with device flow enabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !stdinIsTerminal() {
				return errors.New("auth login needs an interactive terminal; set GITHUB_TOKEN instead")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			token, err := github.DeviceAuth(cmd.Context(), github.OAuthConfig{
				ClientID: cfg.GitHub.ClientID,
				Stdin:    cmd.InOrStdin(),
			}, out)
			if err != nil {
				return err
			}

			cache := newTokenCache()
			if err := cache.Set(&oauth2.Token{AccessToken: token.Token, TokenType: token.Type}); err != nil {
				return err
			}

			fmt.Fprintf(out, "Logged in. Token stored in %s\n", cache.Location())
			return nil
		},
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the cached GitHub token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache := newTokenCache()
			if err := cache.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged out. Removed token from %s\n", cache.Location())
			return nil
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which GitHub token is in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			token, source, err := github.ResolveToken(&cfg.GitHub, newTokenCache())
			if err != nil {
				fmt.Fprintln(out, "Not logged in.")
				return nil
			}

			fmt.Fprintf(out, "GitHub token: %s (from %s)\n", logging.MaskSensitive(token), source)
			return nil
		},
	}
}

func newAuthTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the /api/v1 routes",
		Long: `Issue an HS256 bearer token signed with server.jwt_secret.

Clients send it as "Authorization: Bearer <token>" when the server has
server.jwt_secret set.

Examples:
  pr-summarizer auth token --subject ci --ttl 24h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			token, err := server.IssueToken([]byte(cfg.Server.JWTSecret), tokenSubject, tokenTTL)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&tokenSubject, "subject", "pr-summarizer-cli", "token subject")
	cmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")

	return cmd
}
