// Package store persists generated summaries so they can be listed, read
// back and tracked through asynchronous generation.
package store

import (
	"context"

	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/summarizer"
)

// ErrNotFound is matched by errors returned for unknown summary ids.
var ErrNotFound = prserrors.New("summary not found")

// ErrInvalidTransition is matched by errors returned when a status change
// is not allowed from the current status.
var ErrInvalidTransition = prserrors.New("invalid status transition")

// Store is a summary history.
type Store interface {
	// Save inserts s, or replaces the stored summary with the same id when
	// the status change it implies is allowed.
	Save(ctx context.Context, s *summarizer.PRSummary) error

	// Get returns the summary with the given id.
	Get(ctx context.Context, id string) (*summarizer.PRSummary, error)

	// List returns summaries newest first, with the total count.
	List(ctx context.Context, limit, offset int) ([]*summarizer.PRSummary, int, error)

	// UpdateStatus moves a summary to status, recording errMsg when set.
	UpdateStatus(ctx context.Context, id string, status summarizer.ProcessingStatus, errMsg string) error

	Ping(ctx context.Context) error
	Close() error
}

func notFound(op, id string) error {
	return prserrors.NewStoreError(op, id, "not found", ErrNotFound)
}

func invalidTransition(op, id string, from, to summarizer.ProcessingStatus) error {
	return prserrors.NewStoreError(op, id, "cannot move from "+string(from)+" to "+string(to), ErrInvalidTransition)
}
