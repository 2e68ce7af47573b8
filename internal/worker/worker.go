package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tokenstd/revert-registry/internal/domain"
	"github.com/tokenstd/revert-registry/internal/notify"
	"github.com/tokenstd/revert-registry/internal/queue"
	"github.com/tokenstd/revert-registry/internal/repository"
)

// Linter is the slice of the registry service the workers need: the full
// conformance check over a list of inputs, including collisions against the
// registry.
type Linter interface {
	Lint(ctx context.Context, inputs []string) ([]domain.LintResult, error)
}

// Worker is a single goroutine that continuously pulls lint jobs from the
// priority queue, runs the conformance check over the job's inputs, stores
// the findings, and delivers the optional webhook callback.
type Worker struct {
	id       int
	q        *queue.PriorityQueue
	repo     repository.RegistryRepository
	linter   Linter
	notifier notify.Notifier
	logger   *zap.Logger

	// Hook for metrics — injected by the pool so the worker stays metrics-agnostic.
	onFinished func(status domain.JobStatus, priority domain.JobPriority, latency time.Duration)
}

// NewWorker constructs a worker. onFinished is optional (nil = no-op).
func NewWorker(
	id int,
	q *queue.PriorityQueue,
	repo repository.RegistryRepository,
	linter Linter,
	notifier notify.Notifier,
	logger *zap.Logger,
	onFinished func(domain.JobStatus, domain.JobPriority, time.Duration),
) *Worker {
	if onFinished == nil {
		onFinished = func(domain.JobStatus, domain.JobPriority, time.Duration) {}
	}
	return &Worker{
		id: id, q: q, repo: repo, linter: linter,
		notifier: notifier, logger: logger,
		onFinished: onFinished,
	}
}

// Run blocks until ctx is cancelled, processing one queue item per iteration.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("worker started", zap.Int("id", w.id))
	for {
		item, ok := w.q.Dequeue(ctx)
		if !ok {
			w.logger.Info("worker stopping", zap.Int("id", w.id))
			return
		}
		w.process(ctx, item)
	}
}

func (w *Worker) process(ctx context.Context, item queue.Item) {
	start := time.Now()
	log := w.logger.With(
		zap.String("job_id", item.JobID),
		zap.String("priority", string(item.Priority)),
	)

	job, err := w.repo.GetJob(ctx, item.JobID)
	if err != nil {
		log.Error("failed to fetch job", zap.Error(err))
		return
	}

	// A cancellation between enqueue and processing time is valid, and a
	// requeue sweep can deliver a job twice. Skip anything not runnable.
	if job.Status != domain.JobStatusPending && job.Status != domain.JobStatusQueued {
		log.Debug("job no longer runnable", zap.String("status", string(job.Status)))
		return
	}

	if err := w.repo.MarkJobProcessing(ctx, job.ID, time.Now().UTC()); err != nil {
		log.Error("failed to mark as processing", zap.Error(err))
		return
	}

	findings, err := w.linter.Lint(ctx, job.Inputs)
	if err != nil {
		log.Warn("lint failed", zap.Error(err))
		w.fail(ctx, job, err)
		w.onFinished(domain.JobStatusFailed, job.Priority, time.Since(start))
		return
	}

	passed := 0
	for _, f := range findings {
		if f.OK {
			passed++
		}
	}
	failed := len(findings) - passed

	if err := w.repo.StoreFindings(ctx, job.ID, findings); err != nil {
		log.Error("failed to store findings", zap.Error(err))
		w.fail(ctx, job, err)
		w.onFinished(domain.JobStatusFailed, job.Priority, time.Since(start))
		return
	}

	now := time.Now().UTC()
	if err := w.repo.CompleteJob(ctx, job.ID, passed, failed, now); err != nil {
		log.Error("failed to mark as completed", zap.Error(err))
		return
	}

	// Mirror the row updates on the local copy for the callback payload.
	job.Status = domain.JobStatusCompleted
	job.Passed = passed
	job.Failed = failed
	job.CompletedAt = &now

	if job.CallbackURL != nil {
		if err := w.notifier.Deliver(ctx, *job.CallbackURL, &domain.JobReport{Job: *job, Findings: findings}); err != nil {
			// Callback failures do not fail the job; the report stays
			// available via the job endpoint.
			log.Warn("callback delivery failed", zap.Error(err))
		}
	}

	elapsed := time.Since(start)
	w.onFinished(domain.JobStatusCompleted, job.Priority, elapsed)
	log.Info("job completed",
		zap.Int("passed", passed),
		zap.Int("failed", failed),
		zap.Duration("latency", elapsed),
	)
}

func (w *Worker) fail(ctx context.Context, job *domain.LintJob, runErr error) {
	if err := w.repo.FailJob(ctx, job.ID, runErr.Error()); err != nil {
		w.logger.Error("failed to mark job as failed",
			zap.String("id", job.ID), zap.Error(err))
	}
}
