package errors

import (
	"fmt"
	"strings"
)

// FormatUserError returns a user-friendly error message with actionable guidance.
// It examines the error chain and provides context-appropriate help text.
func FormatUserError(err error) string {
	if err == nil {
		return ""
	}

	var valErr *ValidationError
	if As(err, &valErr) {
		return formatValidationError(valErr)
	}

	var configErr *ConfigError
	if As(err, &configErr) {
		return formatConfigError(configErr)
	}

	var ghErr *GitHubError
	if As(err, &ghErr) {
		return formatGitHubError(ghErr)
	}

	var aiErr *AIError
	if As(err, &aiErr) {
		return formatAIError(aiErr)
	}

	var jiraErr *JiraError
	if As(err, &jiraErr) {
		return formatJiraError(jiraErr)
	}

	return err.Error()
}

// Detail returns the single-line message sent to HTTP clients. It always
// names the failing dependency and never exposes the text of errors it
// cannot classify. Upstream errors take precedence over validation errors
// wrapped inside them.
func Detail(err error) string {
	if err == nil {
		return ""
	}

	var ghErr *GitHubError
	if As(err, &ghErr) {
		switch ghErr.StatusCode {
		case 404:
			return "GitHub PR not found: " + upstreamMessage(ghErr.Message, ghErr.Cause)
		case 403:
			return "GitHub access denied: " + upstreamMessage(ghErr.Message, ghErr.Cause)
		case 401:
			return "GitHub authentication failed: check the configured token"
		}
		return "GitHub API error: " + upstreamMessage(ghErr.Message, ghErr.Cause)
	}

	var jiraErr *JiraError
	if As(err, &jiraErr) {
		return "Jira API error: " + upstreamMessage(jiraErr.Message, jiraErr.Cause)
	}

	var sgErr *SummaryGenerationError
	if As(err, &sgErr) {
		return "Gemini summary generation failed: " + sgErr.Message
	}

	var valErr *ValidationError
	if As(err, &valErr) {
		return valErr.Error()
	}

	var aiErr *AIError
	if As(err, &aiErr) {
		return "Gemini summary generation failed: " + upstreamMessage(aiErr.Message, aiErr.Cause)
	}

	return "Failed to generate summary: internal error"
}

func upstreamMessage(message string, cause error) string {
	if cause == nil {
		return message
	}
	causeText := cause.Error()
	if message == "" || strings.Contains(message, causeText) {
		return causeText
	}
	return message + ": " + causeText
}

func formatValidationError(err *ValidationError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Invalid input: %s\n", err.Error())

	switch err.Field {
	case "pr_url", "github_pr_url":
		b.WriteString("\nExpected format: https://github.com/<owner>/<repo>/pull/<number>\n")
	case "jira_ticket_id":
		b.WriteString("\nExpected format: PROJECT-123 (uppercase project key, dash, number)\n")
	}

	return b.String()
}

// formatConfigError formats a ConfigError with actionable guidance.
func formatConfigError(err *ConfigError) string {
	var b strings.Builder

	if err.Field != "" {
		fmt.Fprintf(&b, "Configuration error in '%s': %s\n", err.Field, err.Message)
	} else {
		fmt.Fprintf(&b, "Configuration error: %s\n", err.Message)
	}

	b.WriteString("\nTo fix this:\n")
	b.WriteString("  • Check your config file: ~/.config/pr-summarizer/config.toml\n")
	b.WriteString("  • Run 'pr-summarizer config init' to write a default config\n")

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

// formatGitHubError formats a GitHubError with actionable guidance based on status code.
func formatGitHubError(err *GitHubError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "GitHub error during %s: %s\n", err.Operation, err.Message)

	switch err.StatusCode {
	case 401:
		b.WriteString("\nAuthentication failed. To fix this:\n")
		b.WriteString("  • Set the GITHUB_TOKEN environment variable\n")
		b.WriteString("  • Or run 'pr-summarizer auth login'\n")

	case 403:
		b.WriteString("\nPermission denied. To fix this:\n")
		b.WriteString("  • Ensure your token can read this repository\n")
		b.WriteString("  • If using SSO, ensure the token is authorized for your organization\n")

	case 404:
		b.WriteString("\nPull request not found. To fix this:\n")
		b.WriteString("  • Verify the owner, repository and PR number\n")
		b.WriteString("  • Private repositories need a token with the 'repo' scope\n")

	case 429:
		b.WriteString("\nRate limit exceeded. Wait a few minutes before retrying.\n")

	case 500, 502, 503, 504:
		b.WriteString("\nGitHub server error. Check https://www.githubstatus.com and try again.\n")
	}

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

// formatAIError formats an AIError with actionable guidance based on status code.
func formatAIError(err *AIError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "AI provider error (%s) during %s: %s\n", err.Provider, err.Operation, err.Message)

	switch err.StatusCode {
	case 401, 403:
		b.WriteString("\nThe API key was rejected. Set GOOGLE_API_KEY or ai.api_key in config.\n")
	case 429:
		fmt.Fprintf(&b, "\n%s rate limit exceeded. Reduce request frequency and try again.\n", err.Provider)
	}

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

// formatJiraError formats a JiraError with actionable guidance based on status code.
func formatJiraError(err *JiraError) string {
	var b strings.Builder

	if err.Ticket != "" {
		fmt.Fprintf(&b, "Jira error during %s for ticket %s: %s\n", err.Operation, err.Ticket, err.Message)
	} else {
		fmt.Fprintf(&b, "Jira error during %s: %s\n", err.Operation, err.Message)
	}

	switch err.StatusCode {
	case 401:
		b.WriteString("\nAuthentication failed. Check jira.email and JIRA_TOKEN.\n")
	case 404:
		b.WriteString("\nTicket not found. Verify the ticket key and project access.\n")
	}

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}
