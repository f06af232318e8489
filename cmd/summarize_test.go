package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/summarizer"
)

func testSummary() *summarizer.PRSummary {
	ms := int64(1500)
	return &summarizer.PRSummary{
		ID:           "sum-1",
		GitHubPRURL:  "https://github.com/org/repo/pull/42",
		JiraTicketID: "PROJ-7",
		Sections: summarizer.Sections{
			BusinessContext:    "Customers need faster checkout.",
			CodeChangeSummary:  "Caches the cart total.",
			BusinessCodeImpact: "Checkout latency drops.",
			SuggestedTestCases: []string{"Cart total after adding an item", "Cache invalidation on removal"},
			RiskComplexity:     "Low risk.",
			ReviewerGuidance:   "Check invalidation paths.",
		},
		Status:           summarizer.StatusCompleted,
		CreatedAt:        time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		ProcessingTimeMS: &ms,
	}
}

func TestWriteSummary(t *testing.T) {
	tests := []struct {
		format string
		want   []string
	}{
		{FormatMarkdown, []string{"# PR Summary", "**Jira ticket:** PROJ-7", "## Risk and Complexity", "- [ ] Cart total after adding an item"}},
		{FormatJSON, []string{`"business_context": "Customers need faster checkout."`, `"status": "completed"`}},
		{FormatYAML, []string{"business_context: Customers need faster checkout.", "status: completed", "- Cache invalidation on removal"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := writeSummary(&buf, testSummary(), tt.format); err != nil {
				t.Fatalf("writeSummary() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestWriteSummary_Decodes(t *testing.T) {
	var jsonBuf, yamlBuf bytes.Buffer
	if err := writeSummary(&jsonBuf, testSummary(), FormatJSON); err != nil {
		t.Fatalf("json: %v", err)
	}
	if err := writeSummary(&yamlBuf, testSummary(), FormatYAML); err != nil {
		t.Fatalf("yaml: %v", err)
	}

	var fromJSON summarizer.PRSummary
	if err := json.Unmarshal(jsonBuf.Bytes(), &fromJSON); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	var fromYAML map[string]any
	if err := yaml.Unmarshal(yamlBuf.Bytes(), &fromYAML); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}

	if fromJSON.RiskComplexity != "Low risk." {
		t.Errorf("json risk_complexity = %q", fromJSON.RiskComplexity)
	}
	if fromYAML["reviewer_guidance"] != "Check invalidation paths." {
		t.Errorf("yaml reviewer_guidance = %v", fromYAML["reviewer_guidance"])
	}
}

func TestWriteSummary_UnknownFormat(t *testing.T) {
	if err := writeSummary(&bytes.Buffer{}, testSummary(), "xml"); err == nil {
		t.Error("writeSummary() should reject an unknown format")
	}
}

func TestRunSummarize_RejectsFormatBeforeLoading(t *testing.T) {
	old := summarizeFormat
	summarizeFormat = "html"
	defer func() { summarizeFormat = old }()

	err := runSummarize(summarizeCmd, "https://github.com/org/repo/pull/1")
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("runSummarize() error = %v, want unknown format", err)
	}
}

func TestSummarizeCommandFlags(t *testing.T) {
	for _, name := range []string{"jira", "format", "focus", "detail", "no-tests"} {
		if summarizeCmd.Flags().Lookup(name) == nil {
			t.Errorf("summarize should have --%s flag", name)
		}
	}
	if got := summarizeCmd.Flags().Lookup("detail").DefValue; got != summarizer.DetailMedium {
		t.Errorf("--detail default = %q, want %q", got, summarizer.DetailMedium)
	}
	if err := summarizeCmd.Args(summarizeCmd, nil); err == nil {
		t.Error("summarize should require a PR URL argument")
	}
}
