package summarizer

import (
	"bytes"
	"strings"
	"text/template"
)

const markdownTemplate = `# PR Summary

**Pull request:** {{.GitHubPRURL}}
{{- if .JiraTicketID}}
**Jira ticket:** {{.JiraTicketID}}
{{- end}}
**Generated:** {{.CreatedAt.Format "2006-01-02 15:04"}}
{{- if .ProcessingTimeMS}} in {{deref .ProcessingTimeMS}} ms{{end}}

## Business Context

{{.BusinessContext}}

## Code Change Summary

{{.CodeChangeSummary}}

## Business Impact

{{.BusinessCodeImpact}}

## Suggested Test Cases

{{range .SuggestedTestCases -}}
- [ ] {{.}}
{{end}}
## Risk and Complexity

{{.RiskComplexity}}

## Reviewer Guidance

{{.ReviewerGuidance}}
`

var tmpl = template.Must(template.New("summary").Funcs(template.FuncMap{
	"deref": func(v *int64) int64 { return *v },
}).Parse(markdownTemplate))

// FormatMarkdown renders the summary as markdown.
func (s *PRSummary) FormatMarkdown() string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, s); err != nil {
		return s.formatSimple()
	}
	return buf.String()
}

func (s *PRSummary) formatSimple() string {
	var b strings.Builder
	b.WriteString("# PR Summary\n\n")
	b.WriteString(s.GitHubPRURL + "\n\n")
	b.WriteString("## Business Context\n\n" + s.BusinessContext + "\n\n")
	b.WriteString("## Code Change Summary\n\n" + s.CodeChangeSummary + "\n\n")
	b.WriteString("## Business Impact\n\n" + s.BusinessCodeImpact + "\n\n")
	b.WriteString("## Suggested Test Cases\n\n")
	for _, tc := range s.SuggestedTestCases {
		b.WriteString("- [ ] " + tc + "\n")
	}
	b.WriteString("\n## Risk and Complexity\n\n" + s.RiskComplexity + "\n\n")
	b.WriteString("## Reviewer Guidance\n\n" + s.ReviewerGuidance + "\n")
	return b.String()
}
