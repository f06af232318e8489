package jira

import "strings"

// Status categories as Jira names them.
const (
	CategoryToDo       = "To Do"
	CategoryInProgress = "In Progress"
	CategoryDone       = "Done"
)

// categoryKeys maps Jira status category keys to display names.
var categoryKeys = map[string]string{
	"new":           CategoryToDo,
	"indeterminate": CategoryInProgress,
	"done":          CategoryDone,
}

// statusCategories maps lowercase status names to categories for servers
// that omit the status category.
var statusCategories = map[string]string{
	"open":                     CategoryToDo,
	"to do":                    CategoryToDo,
	"backlog":                  CategoryToDo,
	"new":                      CategoryToDo,
	"reopened":                 CategoryToDo,
	"ready":                    CategoryToDo,
	"selected for development": CategoryToDo,

	"in progress":      CategoryInProgress,
	"in development":   CategoryInProgress,
	"in dev":           CategoryInProgress,
	"development":      CategoryInProgress,
	"in review":        CategoryInProgress,
	"code review":      CategoryInProgress,
	"ready for review": CategoryInProgress,
	"under review":     CategoryInProgress,
	"qa":               CategoryInProgress,
	"in qa":            CategoryInProgress,
	"testing":          CategoryInProgress,
	"blocked":          CategoryInProgress,

	"done":     CategoryDone,
	"closed":   CategoryDone,
	"resolved": CategoryDone,
	"complete": CategoryDone,
	"released": CategoryDone,
	"deployed": CategoryDone,
	"verified": CategoryDone,
}

// ResolveStatusCategory returns the category display name for a status.
// A category reported by Jira (by key or name) wins; otherwise the status
// name is mapped, with keyword matching for custom workflows.
func ResolveStatusCategory(categoryKey, categoryName, status string) string {
	if name, ok := categoryKeys[strings.ToLower(categoryKey)]; ok {
		return name
	}
	if categoryName != "" && !strings.EqualFold(categoryName, "No Category") {
		return categoryName
	}
	return CategoryForStatus(status)
}

// CategoryForStatus maps a status name to a category. Unknown names are To Do.
func CategoryForStatus(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	if category, ok := statusCategories[s]; ok {
		return category
	}

	switch {
	case strings.Contains(s, "progress") || strings.Contains(s, "dev") ||
		strings.Contains(s, "review") || strings.Contains(s, "qa") || strings.Contains(s, "test"):
		return CategoryInProgress
	case strings.Contains(s, "done") || strings.Contains(s, "close") || strings.Contains(s, "resolv"):
		return CategoryDone
	default:
		return CategoryToDo
	}
}
