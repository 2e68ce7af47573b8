package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tokenstd/revert-registry/internal/domain"
	"github.com/tokenstd/revert-registry/internal/queue"
	"github.com/tokenstd/revert-registry/internal/repository"
)

// RequeueWorker polls the database for jobs stuck in pending or queued
// longer than the stale threshold and re-enqueues them.
//
// This DB-backed approach means submissions survive a full queue and server
// restarts: the job row is the source of truth, the channel is only a
// delivery vehicle. A job dropped because Enqueue hit a full buffer, or one
// whose queue item was lost in a crash, comes back on the next sweep.
type RequeueWorker struct {
	repo       repository.RegistryRepository
	q          *queue.PriorityQueue
	interval   time.Duration
	staleAfter time.Duration
	logger     *zap.Logger
}

func NewRequeueWorker(
	repo repository.RegistryRepository,
	q *queue.PriorityQueue,
	interval time.Duration,
	staleAfter time.Duration,
	logger *zap.Logger,
) *RequeueWorker {
	return &RequeueWorker{repo: repo, q: q, interval: interval, staleAfter: staleAfter, logger: logger}
}

// Run ticks every interval and re-enqueues any stale jobs.
// Stops cleanly when ctx is cancelled.
func (rw *RequeueWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(rw.interval)
	defer ticker.Stop()

	rw.logger.Info("requeue worker started",
		zap.Duration("interval", rw.interval),
		zap.Duration("stale_after", rw.staleAfter),
	)

	for {
		select {
		case <-ctx.Done():
			rw.logger.Info("requeue worker stopping")
			return
		case <-ticker.C:
			rw.poll(ctx)
		}
	}
}

func (rw *RequeueWorker) poll(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-rw.staleAfter)
	jobs, err := rw.repo.FindStaleJobs(ctx, cutoff)
	if err != nil {
		rw.logger.Error("requeue poll error", zap.Error(err))
		return
	}

	for _, job := range jobs {
		if err := rw.q.Enqueue(queue.Item{
			JobID:    job.ID,
			Priority: job.Priority,
		}); err != nil {
			rw.logger.Warn("could not re-enqueue stale job",
				zap.String("id", job.ID), zap.Error(err))
			continue
		}

		// Bumping the status also refreshes updated_at, so the job will not
		// be picked up again before the next threshold passes.
		if err := rw.repo.UpdateJobStatus(ctx, job.ID, domain.JobStatusQueued); err != nil {
			rw.logger.Error("failed to update status after re-enqueue",
				zap.String("id", job.ID), zap.Error(err))
		}
	}

	if len(jobs) > 0 {
		rw.logger.Info("re-enqueued stale jobs", zap.Int("count", len(jobs)))
	}
}
