package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/bootstrap"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/config"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/logging"
)

var configForce bool

func init() {
	rootCmd.AddCommand(newConfigCmd())
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect the configuration file",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default settings",
		Long: `Write a config file with default settings.

The file is written to --config when given, otherwise to
$HOME/.config/pr-summarizer/config.toml. Secrets are left empty; supply
them through GITHUB_TOKEN, JIRA_TOKEN and GOOGLE_API_KEY.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfgFile
			if path == "" {
				var err error
				if path, err = bootstrap.DefaultConfigPath(); err != nil {
					return err
				}
			}

			if _, err := os.Stat(path); err == nil && !configForce {
				return errors.Newf("%s already exists (use --force to overwrite)", path)
			}

			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return errors.Wrap(err, "failed to create config directory")
			}

			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
			if err != nil {
				return errors.Wrap(err, "failed to create config file")
			}
			if err := writeConfig(f, config.Default(), false); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return errors.Wrap(err, "failed to write config file")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return writeConfig(cmd.OutOrStdout(), cfg, true)
		},
	}
}

// writeConfig renders cfg as TOML. Durations are written in their string
// form so the file round-trips through viper.
func writeConfig(w io.Writer, cfg *config.Config, mask bool) error {
	secret := func(s string) string {
		if mask && s != "" {
			return logging.MaskSensitive(s)
		}
		return s
	}

	doc := map[string]any{
		"server": map[string]any{
			"host":                cfg.Server.Host,
			"port":                cfg.Server.Port,
			"grpc_port":           cfg.Server.GRPCPort,
			"read_timeout":        cfg.Server.ReadTimeout.String(),
			"write_timeout":       cfg.Server.WriteTimeout.String(),
			"shutdown_timeout":    cfg.Server.ShutdownTimeout.String(),
			"cors_origins":        cfg.Server.CORSOrigins,
			"max_concurrent_jobs": cfg.Server.MaxConcurrentJobs,
			"jwt_secret":          secret(cfg.Server.JWTSecret),
		},
		"github": map[string]any{
			"token":           secret(cfg.GitHub.Token),
			"base_url":        cfg.GitHub.BaseURL,
			"client_id":       cfg.GitHub.ClientID,
			"timeout":         cfg.GitHub.Timeout.String(),
			"max_retries":     cfg.GitHub.MaxRetries,
			"max_files":       cfg.GitHub.MaxFiles,
			"max_commits":     cfg.GitHub.MaxCommits,
			"max_patch_chars": cfg.GitHub.MaxPatchChars,
		},
		"jira": map[string]any{
			"enabled":       cfg.Jira.Enabled,
			"base_url":      cfg.Jira.BaseURL,
			"email":         cfg.Jira.Email,
			"token":         secret(cfg.Jira.Token),
			"timeout":       cfg.Jira.Timeout.String(),
			"max_retries":   cfg.Jira.MaxRetries,
			"custom_fields": cfg.Jira.CustomFields,
		},
		"ai": map[string]any{
			"provider":          cfg.AI.Provider,
			"model":             cfg.AI.Model,
			"api_key":           secret(cfg.AI.APIKey),
			"temperature":       cfg.AI.Temperature,
			"max_output_tokens": cfg.AI.MaxOutputTokens,
			"timeout":           cfg.AI.Timeout.String(),
		},
		"store": map[string]any{
			"path": cfg.Store.Path,
		},
		"logging": map[string]any{
			"level": cfg.Logging.Level,
			"json":  cfg.Logging.JSON,
		},
	}

	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "failed to encode config")
	}
	return nil
}
