package server

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/orchestrator"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/store"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/summarizer"
)

const defaultMaxJobs = 4

// Runner executes asynchronous summary jobs on a bounded pool. Job state
// lives in the store; the runner only tracks how to cancel running jobs.
type Runner struct {
	svc    Service
	store  store.Store
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	group     errgroup.Group
	submitted sync.WaitGroup

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewRunner creates a Runner that runs at most maxJobs jobs at once.
func NewRunner(svc Service, st store.Store, maxJobs int, logger *slog.Logger) *Runner {
	if maxJobs <= 0 {
		maxJobs = defaultMaxJobs
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		svc:     svc,
		store:   st,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		cancels: make(map[string]context.CancelFunc),
	}
	r.group.SetLimit(maxJobs)
	return r
}

// Submit queues the job for the pending summary id. It never blocks.
func (r *Runner) Submit(id string, req orchestrator.Request) {
	ctx, cancel := context.WithCancel(r.ctx)

	r.mu.Lock()
	r.cancels[id] = cancel
	r.mu.Unlock()

	r.submitted.Add(1)
	go func() {
		defer r.submitted.Done()
		r.group.Go(func() error {
			defer r.forget(id)
			r.run(ctx, id, req)
			return nil
		})
	}()
}

// Cancel stops the job for id if it is queued or running.
func (r *Runner) Cancel(id string) {
	r.mu.Lock()
	cancel, ok := r.cancels[id]
	r.mu.Unlock()
	if ok {
		cancel()
	}
}

// Wait blocks until every submitted job has finished.
func (r *Runner) Wait() {
	r.submitted.Wait()
	_ = r.group.Wait()
}

// Shutdown waits for running jobs until ctx is done, then cancels the rest
// and waits for them to observe the cancellation.
func (r *Runner) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		return nil
	case <-ctx.Done():
		r.logger.Warn("cancelling unfinished summary jobs")
		r.cancel()
		<-done
		return ctx.Err()
	}
}

func (r *Runner) forget(id string) {
	r.mu.Lock()
	if cancel, ok := r.cancels[id]; ok {
		cancel()
		delete(r.cancels, id)
	}
	r.mu.Unlock()
}

func (r *Runner) run(ctx context.Context, id string, req orchestrator.Request) {
	// Status updates outlive job cancellation so a shutdown still records
	// the outcome.
	storeCtx := context.WithoutCancel(ctx)
	logger := r.logger.With("summary_id", id, "request_id", req.RequestID)

	if ctx.Err() != nil {
		r.finishCancelled(storeCtx, id, logger)
		return
	}
	if err := r.store.UpdateStatus(storeCtx, id, summarizer.StatusInProgress, ""); err != nil {
		// Cancelled by the client before the job started.
		logger.Info("summary job skipped", "error", err)
		return
	}

	summary, err := r.svc.Summarize(ctx, req)
	if ctx.Err() != nil {
		r.finishCancelled(storeCtx, id, logger)
		return
	}
	if err != nil {
		logger.Warn("summary job failed", "error", err)
		if err := r.store.UpdateStatus(storeCtx, id, summarizer.StatusFailed, prserrors.Detail(err)); err != nil {
			logger.Error("failed to record job failure", "error", err)
		}
		return
	}

	summary.ID = id
	if err := r.store.Save(storeCtx, summary); err != nil {
		logger.Error("failed to store summary", "error", err)
		return
	}
	logger.Info("summary job completed")
}

// finishCancelled records a cancellation that did not come through the
// API, such as a shutdown. A client cancellation has already been stored.
func (r *Runner) finishCancelled(ctx context.Context, id string, logger *slog.Logger) {
	err := r.store.UpdateStatus(ctx, id, summarizer.StatusCancelled, "cancelled")
	if err != nil && !prserrors.Is(err, store.ErrInvalidTransition) {
		logger.Error("failed to record cancellation", "error", err)
	}
	logger.Info("summary job cancelled")
}
