package jira

import (
	"regexp"
	"strings"

	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
)

// ticketPattern matches issue keys such as PROJ-123 or A-1. Project keys
// start with a letter.
var ticketPattern = regexp.MustCompile(`^[A-Z]+[A-Z0-9]*-\d+$`)

// NormalizeTicketID trims and uppercases id. It is idempotent.
func NormalizeTicketID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// ValidateTicketID checks the trimmed id against the issue key pattern
// without changing its case, so "proj-1" is rejected. It returns the trimmed id.
func ValidateTicketID(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", prserrors.NewValidationError("jira_ticket_id", id, "Jira ticket id is empty")
	}
	if !ticketPattern.MatchString(trimmed) {
		return "", prserrors.NewValidationError("jira_ticket_id", id,
			"invalid Jira ticket format, expected PROJECT-123 in uppercase")
	}
	return trimmed, nil
}

// ProjectKey returns the project part of a valid issue key.
func ProjectKey(key string) string {
	project, _, _ := strings.Cut(key, "-")
	return project
}
