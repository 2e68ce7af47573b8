package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tokenstd/revert-registry/internal/config"
	"github.com/tokenstd/revert-registry/internal/domain"
	"github.com/tokenstd/revert-registry/internal/notify"
	"github.com/tokenstd/revert-registry/internal/queue"
	"github.com/tokenstd/revert-registry/internal/repository"
)

// MetricHooks carries the metric callback functions injected by main.
// Using a struct keeps the pool constructor signature clean.
type MetricHooks struct {
	OnFinished func(status domain.JobStatus, priority domain.JobPriority, latency time.Duration)
}

// Pool manages the lifecycle of all lint workers.
// All workers share the same priority queue — the queue's double-select
// pattern handles priority ordering internally.
type Pool struct {
	workers []*Worker
	wg      sync.WaitGroup
}

// NewPool creates LINT_WORKERS identical workers. Job priority distinctions
// are handled entirely by the queue, not by dedicating workers to tiers.
func NewPool(
	cfg *config.Config,
	q *queue.PriorityQueue,
	repo repository.RegistryRepository,
	linter Linter,
	notifier notify.Notifier,
	logger *zap.Logger,
	hooks MetricHooks,
) *Pool {
	workers := make([]*Worker, cfg.LintWorkers)

	for i := range workers {
		workers[i] = NewWorker(
			i, q, repo, linter, notifier,
			logger.With(zap.Int("worker_id", i)),
			hooks.OnFinished,
		)
	}

	return &Pool{workers: workers}
}

// Start launches all workers as goroutines.
// The provided ctx is forwarded to every worker; cancelling it
// triggers a graceful shutdown of the entire pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has returned after ctx is cancelled.
// Call this after cancelling the context to ensure in-flight jobs finish.
func (p *Pool) Wait() {
	p.wg.Wait()
}
