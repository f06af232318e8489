package summarizer

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func assertComplete(t *testing.T, s Sections) {
	t.Helper()
	for name, v := range map[string]string{
		"business_context":     s.BusinessContext,
		"code_change_summary":  s.CodeChangeSummary,
		"business_code_impact": s.BusinessCodeImpact,
		"risk_complexity":      s.RiskComplexity,
		"reviewer_guidance":    s.ReviewerGuidance,
	} {
		if strings.TrimSpace(v) == "" {
			t.Errorf("%s is empty", name)
		}
	}
	if len(s.SuggestedTestCases) == 0 {
		t.Error("suggested_test_cases is empty")
	}
}

func TestParseResponse_ValidJSON(t *testing.T) {
	raw := "Here you go:\n```json\n" + `{
		"business_context": "Speeds up widget pages",
		"code_change_summary": "Adds an LRU cache",
		"business_code_impact": "Lower latency",
		"suggested_test_cases": ["cache hit", "cache miss"],
		"risk_complexity": "Low",
		"reviewer_guidance": "Check eviction"
	}` + "\n```"

	got := ParseResponse(raw, 3)

	if got.BusinessContext != "Speeds up widget pages" || got.ReviewerGuidance != "Check eviction" {
		t.Errorf("sections = %+v", got)
	}
	if len(got.SuggestedTestCases) != 2 || got.SuggestedTestCases[1] != "cache miss" {
		t.Errorf("SuggestedTestCases = %v", got.SuggestedTestCases)
	}
}

func TestParseResponse_Defaults(t *testing.T) {
	got := ParseResponse(`{"business_context": "  ", "risk_complexity": 7, "suggested_test_cases": []}`, 4)

	if got.BusinessContext != "Business context analysis from PR changes" {
		t.Errorf("BusinessContext = %q", got.BusinessContext)
	}
	if got.CodeChangeSummary != "Technical analysis of 4 files changed" {
		t.Errorf("CodeChangeSummary = %q", got.CodeChangeSummary)
	}
	if got.BusinessCodeImpact != "Impact analysis based on code modifications" {
		t.Errorf("BusinessCodeImpact = %q", got.BusinessCodeImpact)
	}
	if got.RiskComplexity != "Medium complexity - requires standard review" {
		t.Errorf("RiskComplexity = %q", got.RiskComplexity)
	}
	if got.ReviewerGuidance != "Standard code review focusing on logic and security" {
		t.Errorf("ReviewerGuidance = %q", got.ReviewerGuidance)
	}
	if strings.Join(got.SuggestedTestCases, "|") != "Test core functionality|Test edge cases|Test error handling" {
		t.Errorf("SuggestedTestCases = %v", got.SuggestedTestCases)
	}

	// Defaults must not alias the package-level slice.
	got.SuggestedTestCases[0] = "mutated"
	if defaultTestCases[0] != "Test core functionality" {
		t.Error("default test cases were mutated through the result")
	}
}

func TestParseResponse_Coercions(t *testing.T) {
	got := ParseResponse(`{"suggested_test_cases": "only one", "reviewer_guidance": ["a", 3, "b"]}`, 1)

	if len(got.SuggestedTestCases) != 1 || got.SuggestedTestCases[0] != "only one" {
		t.Errorf("SuggestedTestCases = %v", got.SuggestedTestCases)
	}
	if got.ReviewerGuidance != "a; b" {
		t.Errorf("ReviewerGuidance = %q", got.ReviewerGuidance)
	}
}

func TestParseResponse_Fallback(t *testing.T) {
	raw := "The model rambled without any JSON at all."
	got := ParseResponse(raw, 1)

	if got.BusinessContext != "AI Analysis: "+raw+"..." {
		t.Errorf("BusinessContext = %q", got.BusinessContext)
	}
	if got.ReviewerGuidance != "AI Recommendation: "+raw {
		t.Errorf("ReviewerGuidance = %q", got.ReviewerGuidance)
	}
	if got.CodeChangeSummary != "Technical analysis generated by AI (see full response for details)" {
		t.Errorf("CodeChangeSummary = %q", got.CodeChangeSummary)
	}
	if got.SuggestedTestCases[0] != "Test main functionality" {
		t.Errorf("SuggestedTestCases = %v", got.SuggestedTestCases)
	}
}

func TestFallbackSections_Excerpts(t *testing.T) {
	raw := strings.Repeat("α", 150) + strings.Repeat("β", 150) + strings.Repeat("γ", 150)
	got := FallbackSections(raw)

	prefix := strings.TrimSuffix(strings.TrimPrefix(got.BusinessContext, "AI Analysis: "), "...")
	if utf8.RuneCountInString(prefix) != 200 || !strings.HasPrefix(prefix, "ααα") {
		t.Errorf("prefix has %d runes", utf8.RuneCountInString(prefix))
	}
	suffix := strings.TrimPrefix(got.ReviewerGuidance, "AI Recommendation: ")
	if utf8.RuneCountInString(suffix) != 200 || !strings.HasSuffix(suffix, "γγγ") {
		t.Errorf("suffix has %d runes", utf8.RuneCountInString(suffix))
	}
	if !utf8.ValidString(got.BusinessContext) || !utf8.ValidString(got.ReviewerGuidance) {
		t.Error("excerpts must be valid UTF-8")
	}
}

func TestFallbackSections_StripsControlCharacters(t *testing.T) {
	got := FallbackSections("ok\x1b[31mred\x00\r\nnext\tline")

	if strings.ContainsAny(got.BusinessContext, "\x1b\x00\r") {
		t.Errorf("BusinessContext contains control characters: %q", got.BusinessContext)
	}
	if !strings.Contains(got.BusinessContext, "\nnext\tline") {
		t.Errorf("newline and tab should be kept: %q", got.BusinessContext)
	}
}

// Arbitrary non-JSON input must always yield all six sections.
func TestParseResponse_NeverEmpty(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"{",
		"}",
		"} {",
		"{not json}",
		`{"business_context": }`,
		`[1, 2, 3]`,
		`{"business_context": "x"`,
		"null",
		"\x00\x01\x02",
		string([]byte{0xff, 0xfe, '{', 0xfd, '}'}),
		strings.Repeat("{", 1000),
		`{"a": {"b": [}}`,
		"```json\n{}\n```",
		`{"suggested_test_cases": [null, 1, ""]}`,
	}

	for _, in := range inputs {
		got := ParseResponse(in, 0)
		assertComplete(t, got)
	}
}
