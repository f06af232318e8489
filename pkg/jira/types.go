// Package jira retrieves tickets from Jira.
package jira

import (
	"context"
	"time"
)

// Client defines the Jira operations the summarizer needs.
type Client interface {
	// FetchTicket retrieves the ticket with the given key.
	FetchTicket(ctx context.Context, key string) (*Ticket, error)

	// Ping checks that Jira is reachable and the credentials are accepted.
	Ping(ctx context.Context) error
}

// Person is an assignee or reporter.
type Person struct {
	Name  string
	Email string
}

// Ticket is the normalized snapshot of a Jira issue.
type Ticket struct {
	Key            string
	URL            string
	Summary        string
	Description    string
	Status         string
	StatusCategory string // To Do, In Progress or Done
	Resolution     string
	IssueType      string
	Priority       string
	Assignee       *Person
	Reporter       *Person
	ProjectKey     string
	ProjectName    string
	Components     []string
	Labels         []string
	FixVersions    []string
	Created        time.Time
	Updated        time.Time

	StoryPoints *float64
	Epic        string
	Sprint      string

	// CustomFields holds configured custom fields by friendly name.
	CustomFields map[string]string
}
