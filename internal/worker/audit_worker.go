package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tokenstd/revert-registry/internal/grammar"
	"github.com/tokenstd/revert-registry/internal/repository"
)

// AuditWorker periodically re-validates registered declarations against the
// currently loaded vocabulary.
//
// Registrations are validated once at registration time, but the vocabulary
// can change between deployments (a new domain file, added renames). The
// audit catches declarations that stopped conforming and records their
// violations on the row instead of leaving the registry silently
// inconsistent. Never-audited rows are swept first.
type AuditWorker struct {
	repo     repository.RegistryRepository
	vocab    *grammar.Vocabulary
	interval time.Duration
	recheck  time.Duration
	logger   *zap.Logger

	// Hook for metrics — receives the nonconformant count after each sweep.
	onSwept func(nonconformant int64)
}

// NewAuditWorker constructs the audit worker. onSwept is optional (nil = no-op).
func NewAuditWorker(
	repo repository.RegistryRepository,
	vocab *grammar.Vocabulary,
	interval time.Duration,
	recheck time.Duration,
	logger *zap.Logger,
	onSwept func(nonconformant int64),
) *AuditWorker {
	if onSwept == nil {
		onSwept = func(int64) {}
	}
	return &AuditWorker{
		repo: repo, vocab: vocab,
		interval: interval, recheck: recheck,
		logger: logger, onSwept: onSwept,
	}
}

// Run ticks every interval and audits any registrations due a recheck.
// Stops cleanly when ctx is cancelled.
func (aw *AuditWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(aw.interval)
	defer ticker.Stop()

	aw.logger.Info("audit worker started",
		zap.Duration("interval", aw.interval),
		zap.Duration("recheck", aw.recheck),
	)

	for {
		select {
		case <-ctx.Done():
			aw.logger.Info("audit worker stopping")
			return
		case <-ticker.C:
			aw.poll(ctx)
		}
	}
}

func (aw *AuditWorker) poll(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-aw.recheck)
	regs, err := aw.repo.FindDueAudits(ctx, cutoff)
	if err != nil {
		aw.logger.Error("audit poll error", zap.Error(err))
		return
	}

	flagged := 0
	for _, reg := range regs {
		vd := aw.vocab.Validate(reg.Declaration())
		if !vd.OK() {
			flagged++
		}
		if err := aw.repo.SetAuditResult(ctx, reg.ID, vd.OK(), vd.Violations, time.Now().UTC()); err != nil {
			aw.logger.Error("failed to record audit result",
				zap.String("id", reg.ID), zap.Error(err))
		}
	}

	if len(regs) > 0 {
		aw.logger.Info("audited registrations",
			zap.Int("count", len(regs)),
			zap.Int("flagged", flagged),
		)
	}

	total, err := aw.repo.CountNonconformant(ctx)
	if err != nil {
		aw.logger.Error("nonconformant count error", zap.Error(err))
		return
	}
	aw.onSwept(total)
}
