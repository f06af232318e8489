package github

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
)

// prURLPattern matches GitHub web URLs of pull requests. Owner and repository
// segments use the characters GitHub permits in names.
var prURLPattern = regexp.MustCompile(`^https://github\.com/([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)/pull/(\d+)$`)

// PRRef identifies a pull request.
type PRRef struct {
	Owner  string
	Repo   string
	Number int
}

// Repository returns "owner/repo".
func (r PRRef) Repository() string {
	return r.Owner + "/" + r.Repo
}

// String returns "owner/repo#number".
func (r PRRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// URL returns the canonical web URL of the pull request.
func (r PRRef) URL() string {
	return fmt.Sprintf("https://github.com/%s/%s/pull/%d", r.Owner, r.Repo, r.Number)
}

// ValidatePRURL checks raw against the pull request URL shape and returns the
// normalized (trimmed) URL. Validating an already-normalized URL returns it unchanged.
func ValidatePRURL(raw string) (string, error) {
	_, normalized, err := parse(raw)
	return normalized, err
}

// ParsePRURL validates raw and extracts owner, repository and number.
func ParsePRURL(raw string) (PRRef, error) {
	ref, _, err := parse(raw)
	return ref, err
}

func parse(raw string) (PRRef, string, error) {
	normalized := strings.TrimSpace(raw)
	if normalized == "" {
		return PRRef{}, "", prserrors.NewValidationError("pr_url", raw, "GitHub PR URL is required")
	}

	m := prURLPattern.FindStringSubmatch(normalized)
	if m == nil {
		return PRRef{}, "", prserrors.NewValidationError("pr_url", raw,
			"invalid GitHub PR URL format, expected https://github.com/<owner>/<repo>/pull/<number>")
	}

	number, err := strconv.Atoi(m[3])
	if err != nil {
		return PRRef{}, "", prserrors.NewValidationError("pr_url", raw, "GitHub PR number is out of range")
	}

	return PRRef{Owner: m[1], Repo: m[2], Number: number}, normalized, nil
}
