package orchestrator

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/github"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/jira"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/summarizer"
)

// MaxFocusAreas bounds Options.FocusAreas after duplicates are removed.
const MaxFocusAreas = 10

// FocusAreas lists the accepted focus areas.
var FocusAreas = []string{
	"security", "performance", "testing", "documentation", "architecture",
	"business_logic", "ui_ux", "database", "api", "deployment",
}

// Options customize a summary.
type Options struct {
	FocusAreas       []string `json:"focus_areas,omitempty"`
	DetailLevel      string   `json:"detail_level,omitempty"`
	IncludeTestCases *bool    `json:"include_test_cases,omitempty"`
}

// Request asks for a summary of one pull request.
type Request struct {
	PRURL        string  `json:"pr_url"`
	JiraTicketID string  `json:"jira_ticket_id,omitempty"`
	RequestID    string  `json:"request_id,omitempty"`
	Options      Options `json:"options"`
}

// Validate checks every field and returns the normalized request. The PR
// URL and ticket id are checked without any network call; the ticket id is
// checked case-sensitively after trimming. A blank ticket id means none.
func (r Request) Validate() (Request, error) {
	url, err := github.ValidatePRURL(r.PRURL)
	if err != nil {
		return r, err
	}
	r.PRURL = url

	r.JiraTicketID = strings.TrimSpace(r.JiraTicketID)
	if r.JiraTicketID != "" {
		if _, err := jira.ValidateTicketID(r.JiraTicketID); err != nil {
			return r, err
		}
	}

	r.RequestID = strings.TrimSpace(r.RequestID)
	if r.RequestID == "" {
		r.RequestID = uuid.NewString()
	}

	opts, err := r.Options.validate()
	if err != nil {
		return r, err
	}
	r.Options = opts

	return r, nil
}

func (o Options) validate() (Options, error) {
	var areas []string
	for _, a := range o.FocusAreas {
		area := strings.ToLower(strings.TrimSpace(a))
		if !slices.Contains(FocusAreas, area) {
			return o, prserrors.NewValidationError("options.focus_areas", a,
				"invalid focus area: "+a+" (valid: "+strings.Join(FocusAreas, ", ")+")")
		}
		if !slices.Contains(areas, area) {
			areas = append(areas, area)
		}
	}
	if len(areas) > MaxFocusAreas {
		return o, prserrors.NewValidationError("options.focus_areas", "", "at most 10 focus areas are allowed")
	}
	o.FocusAreas = areas

	switch o.DetailLevel = strings.ToLower(strings.TrimSpace(o.DetailLevel)); o.DetailLevel {
	case "":
		o.DetailLevel = summarizer.DetailMedium
	case summarizer.DetailLow, summarizer.DetailMedium, summarizer.DetailHigh:
	default:
		return o, prserrors.NewValidationError("options.detail_level", o.DetailLevel,
			"detail level must be low, medium or high")
	}

	if o.IncludeTestCases == nil {
		include := true
		o.IncludeTestCases = &include
	}

	return o, nil
}
