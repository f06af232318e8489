package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/bootstrap"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/config"
	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/logging"
)

var cfgFile string
var verbose bool
var appConfig *config.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pr-summarizer",
	Short: "PR Summarizer - AI summaries of GitHub pull requests",
	Long: `PR Summarizer aggregates a GitHub pull request and, optionally, its linked
Jira ticket, then asks Gemini for a six-section summary: business context,
code change summary, business impact, suggested test cases, risk and
complexity, and reviewer guidance.

Run it as an HTTP service with 'serve', or summarize a single pull request
from the terminal with 'summarize'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, prserrors.FormatUserError(err))
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for configuration problems and 1 for everything else.
func exitCode(err error) int {
	if prserrors.IsConfigError(err) {
		return 2
	}
	return 1
}

func init() {
	cobra.OnInitialize(func() {
		_ = initConfig()
	})

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "C", "", "config file (default is $HOME/.config/pr-summarizer/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	var err error
	appConfig, verbose, err = bootstrap.InitConfig(cfgFile, verbose)
	return err
}

// loadConfig returns the loaded configuration, reporting the load error
// that OnInitialize had to swallow.
func loadConfig() (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	if err := initConfig(); err != nil {
		return nil, err
	}
	return appConfig, nil
}

// newLogger builds the process logger. --verbose forces debug level.
func newLogger(cfg *config.Config) *slog.Logger {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	return logging.New(os.Stderr, level, cfg.Logging.JSON)
}

// resetConfig clears the cached configuration.
// This is primarily used in tests to ensure each test starts with a fresh config.
func resetConfig() {
	appConfig = nil
	bootstrap.Reset()
	viper.Reset()
}
