package summarizer

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// Section keys in the model's JSON response.
const (
	keyBusinessContext    = "business_context"
	keyCodeChangeSummary  = "code_change_summary"
	keyBusinessCodeImpact = "business_code_impact"
	keySuggestedTestCases = "suggested_test_cases"
	keyRiskComplexity     = "risk_complexity"
	keyReviewerGuidance   = "reviewer_guidance"
)

const fallbackExcerptChars = 200

var (
	defaultTestCases  = []string{"Test core functionality", "Test edge cases", "Test error handling"}
	fallbackTestCases = []string{"Test main functionality", "Test edge cases", "Test error handling"}
)

// ParseResponse extracts the six sections from raw model output. The text
// between the first '{' and the last '}' is decoded as JSON; missing or
// empty sections get defaults. Output with no decodable object yields
// FallbackSections. It never fails.
func ParseResponse(raw string, filesChanged int) Sections {
	obj, ok := extractJSONObject(raw)
	if !ok {
		return FallbackSections(raw)
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(obj), &fields); err != nil {
		return FallbackSections(raw)
	}

	return Sections{
		BusinessContext:    stringField(fields, keyBusinessContext, "Business context analysis from PR changes"),
		CodeChangeSummary:  stringField(fields, keyCodeChangeSummary, fmt.Sprintf("Technical analysis of %d files changed", filesChanged)),
		BusinessCodeImpact: stringField(fields, keyBusinessCodeImpact, "Impact analysis based on code modifications"),
		SuggestedTestCases: listField(fields, keySuggestedTestCases, defaultTestCases),
		RiskComplexity:     stringField(fields, keyRiskComplexity, "Medium complexity - requires standard review"),
		ReviewerGuidance:   stringField(fields, keyReviewerGuidance, "Standard code review focusing on logic and security"),
	}
}

// FallbackSections builds a summary from unstructured model output, quoting
// the start and end of the text after stripping control characters.
func FallbackSections(raw string) Sections {
	clean := stripControl(raw)
	return Sections{
		BusinessContext:    "AI Analysis: " + head(clean, fallbackExcerptChars) + "...",
		CodeChangeSummary:  "Technical analysis generated by AI (see full response for details)",
		BusinessCodeImpact: "Business impact analysis completed by AI",
		SuggestedTestCases: append([]string(nil), fallbackTestCases...),
		RiskComplexity:     "Standard complexity - AI analysis completed",
		ReviewerGuidance:   "AI Recommendation: " + tail(clean, fallbackExcerptChars),
	}
}

func extractJSONObject(content string) (string, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}

// stringField returns a non-blank string for key. Lists of strings are
// joined; anything else falls back to def.
func stringField(fields map[string]any, key, def string) string {
	switch v := fields[key].(type) {
	case string:
		if strings.TrimSpace(v) != "" {
			return v
		}
	case []any:
		if items := stringItems(v); len(items) > 0 {
			return strings.Join(items, "; ")
		}
	}
	return def
}

// listField returns a non-empty list for key. A single string becomes a
// one-element list.
func listField(fields map[string]any, key string, def []string) []string {
	switch v := fields[key].(type) {
	case string:
		if strings.TrimSpace(v) != "" {
			return []string{v}
		}
	case []any:
		if items := stringItems(v); len(items) > 0 {
			return items
		}
	}
	return append([]string(nil), def...)
}

func stringItems(values []any) []string {
	var items []string
	for _, item := range values {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			items = append(items, s)
		}
	}
	return items
}

// stripControl removes control characters other than newline and tab.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return -1
		}
		return r
	}, s)
}
