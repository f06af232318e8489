package summarizer

import (
	"fmt"
	"strings"
)

// Prompt bounds.
const (
	maxPromptFiles       = 10
	maxPromptCommits     = 5
	patchPreviewChars    = 200
	commitMessageChars   = 100
	jiraDescriptionChars = 500
	confluenceChars      = 500
)

const promptIntro = "You are an expert code reviewer and technical analyst. " +
	"Analyze the following Pull Request and provide a comprehensive summary."

const responseFormat = `Please provide a detailed analysis in the following JSON format:
{
  "business_context": "Detailed explanation of the business purpose and value of these changes",
  "code_change_summary": "Technical summary of what was modified, added, or removed",
  "business_code_impact": "Analysis of how code changes affect business functionality and user experience",
  "suggested_test_cases": ["Specific test case 1", "Specific test case 2", "Specific test case 3"],
  "risk_complexity": "Assessment of complexity level and potential risks with specific concerns",
  "reviewer_guidance": "Specific areas reviewers should focus on during code review"
}

Make sure your response is valid JSON and provide specific, actionable insights based on the actual code changes.`

var detailInstructions = map[string]string{
	DetailLow:    "Keep each section to one or two sentences.",
	DetailMedium: "Give a balanced level of detail in each section.",
	DetailHigh:   "Be thorough: reference specific files, functions and edge cases in each section.",
}

// BuildPrompt renders the analysis prompt. Files, commits and long text
// fields are bounded so the prompt stays small for large pull requests.
func BuildPrompt(pr *PRData, jira *JiraData, confluence []ConfluenceData, opts Options) string {
	var sb strings.Builder

	sb.WriteString(promptIntro + "\n\n")

	sb.WriteString("## Pull Request Information:\n")
	fmt.Fprintf(&sb, "Title: %s\n", orDefault(pr.Title, "N/A"))
	fmt.Fprintf(&sb, "Description: %s\n", orDefault(pr.Body, "No description provided"))
	fmt.Fprintf(&sb, "Files Changed: %d\n", pr.FilesChanged)
	fmt.Fprintf(&sb, "Lines Added: %d\n", pr.Additions)
	fmt.Fprintf(&sb, "Lines Deleted: %d\n", pr.Deletions)
	fmt.Fprintf(&sb, "Repository: %s\n", orDefault(pr.Repository, "N/A"))
	fmt.Fprintf(&sb, "Branch: %s → %s\n", orDefault(pr.HeadBranch, "N/A"), orDefault(pr.BaseBranch, "N/A"))

	if len(pr.Files) > 0 {
		sb.WriteString("\n## Changed Files:\n")
		for _, f := range pr.Files[:min(len(pr.Files), maxPromptFiles)] {
			fmt.Fprintf(&sb, "- %s (%s: +%d -%d)\n", f.Filename, f.Status, f.Additions, f.Deletions)
			if f.Patch != "" {
				fmt.Fprintf(&sb, "  Code changes preview: %s...\n", head(f.Patch, patchPreviewChars))
			}
		}
	}

	if len(pr.Commits) > 0 {
		sb.WriteString("\n## Recent Commits:\n")
		for _, c := range pr.Commits[max(0, len(pr.Commits)-maxPromptCommits):] {
			fmt.Fprintf(&sb, "- %s: %s (by %s)\n", head(c.SHA, 8), head(c.Message, commitMessageChars), c.Author)
		}
	}

	if jira != nil {
		sb.WriteString("\n## Related Jira Ticket:\n")
		fmt.Fprintf(&sb, "Key: %s\n", orDefault(jira.Key, "N/A"))
		fmt.Fprintf(&sb, "Summary: %s\n", orDefault(jira.Summary, "N/A"))
		fmt.Fprintf(&sb, "Description: %s...\n", head(orDefault(jira.Description, "N/A"), jiraDescriptionChars))
	}

	if len(confluence) > 0 {
		sb.WriteString("\n## Related Documentation:\n")
		for _, page := range confluence {
			fmt.Fprintf(&sb, "- %s: %s\n", page.Title, head(page.Content, confluenceChars))
		}
	}

	if instructions := reviewInstructions(opts); instructions != "" {
		sb.WriteString("\n## Review Instructions:\n")
		sb.WriteString(instructions)
	}

	sb.WriteString("\n")
	sb.WriteString(responseFormat)

	return sb.String()
}

func reviewInstructions(opts Options) string {
	var sb strings.Builder
	if len(opts.FocusAreas) > 0 {
		fmt.Fprintf(&sb, "Focus areas: %s. Give these areas particular attention in every section.\n",
			strings.Join(opts.FocusAreas, ", "))
	}
	if text, ok := detailInstructions[opts.DetailLevel]; ok && opts.DetailLevel != DetailMedium {
		fmt.Fprintf(&sb, "Detail level: %s. %s\n", opts.DetailLevel, text)
	}
	if opts.BriefTestCases {
		sb.WriteString("List at most three suggested test cases.\n")
	}
	return sb.String()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// head returns the first n runes of s.
func head(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// tail returns the last n runes of s.
func tail(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
