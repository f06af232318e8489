package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/orchestrator"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/summarizer"
)

// Output formats for the summarize command.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

var (
	summarizeJira    string
	summarizeFormat  string
	summarizeFocus   []string
	summarizeDetail  string
	summarizeNoTests bool
)

// summarizeCmd generates one summary in-process.
var summarizeCmd = &cobra.Command{
	Use:   "summarize <pr-url>",
	Short: "Summarize a GitHub pull request",
	Long: `Summarize a GitHub pull request without running the server.

The pull request is fetched from GitHub and, when --jira is given and Jira
is configured, the ticket is fetched alongside it. A Jira failure never
fails the summary; it is reported as a warning and the summary is built
from the pull request alone.

Examples:
  pr-summarizer summarize https://github.com/org/repo/pull/42
  pr-summarizer summarize https://github.com/org/repo/pull/42 --jira PROJ-123
  pr-summarizer summarize https://github.com/org/repo/pull/42 --focus security --detail high
  pr-summarizer summarize https://github.com/org/repo/pull/42 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSummarize(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().StringVar(&summarizeJira, "jira", "", "Jira ticket id, e.g. PROJ-123")
	summarizeCmd.Flags().StringVarP(&summarizeFormat, "format", "f", FormatMarkdown, "output format: markdown, json or yaml")
	summarizeCmd.Flags().StringSliceVar(&summarizeFocus, "focus", nil, "focus area (repeatable): "+strings.Join(orchestrator.FocusAreas, ", "))
	summarizeCmd.Flags().StringVar(&summarizeDetail, "detail", summarizer.DetailMedium, "detail level: low, medium or high")
	summarizeCmd.Flags().BoolVar(&summarizeNoTests, "no-tests", false, "keep suggested test cases brief")
}

func runSummarize(cmd *cobra.Command, prURL string) error {
	// Reject a bad format before spending API calls.
	if err := checkFormat(summarizeFormat); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	orch, err := newOrchestrator(cfg, logger)
	if err != nil {
		return err
	}

	req := orchestrator.Request{
		PRURL:        prURL,
		JiraTicketID: summarizeJira,
		Options: orchestrator.Options{
			FocusAreas:  summarizeFocus,
			DetailLevel: summarizeDetail,
		},
	}
	if summarizeNoTests {
		include := false
		req.Options.IncludeTestCases = &include
	}

	summary, err := orch.Summarize(cmd.Context(), req)
	if err != nil {
		return err
	}

	return writeSummary(cmd.OutOrStdout(), summary, summarizeFormat)
}

func checkFormat(format string) error {
	switch format {
	case FormatMarkdown, FormatJSON, FormatYAML:
		return nil
	}
	return errors.Newf("unknown format %q (use markdown, json or yaml)", format)
}

// writeSummary renders s to w in the requested format.
func writeSummary(w io.Writer, s *summarizer.PRSummary, format string) error {
	switch format {
	case FormatMarkdown:
		_, err := fmt.Fprint(w, s.FormatMarkdown())
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return errors.Wrap(err, "failed to encode summary as YAML")
		}
		return enc.Close()
	}
	return checkFormat(format)
}
