package repository

import (
	"context"
	"time"

	"github.com/tokenstd/revert-registry/internal/domain"
	"github.com/tokenstd/revert-registry/internal/grammar"
)

// RegistryRepository defines all persistence operations for registrations,
// lint jobs and findings. The pgx implementation is in pg_registry_repo.go.
// Tests use a hand-written mock (mock_registry_repo.go).
type RegistryRepository interface {
	CreateRegistration(ctx context.Context, reg *domain.Registration) error
	CreateRegistrations(ctx context.Context, regs []*domain.Registration) error
	GetByName(ctx context.Context, name string) (*domain.Registration, error)
	GetBySelector(ctx context.Context, selector string) ([]*domain.Registration, error)
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.Registration, int, error)
	CountRegistrations(ctx context.Context) (int64, error)
	CountByDomain(ctx context.Context) (map[string]int64, error)
	CountNonconformant(ctx context.Context) (int64, error)

	CreateJob(ctx context.Context, job *domain.LintJob) error
	GetJob(ctx context.Context, id string) (*domain.LintJob, error)
	UpdateJobStatus(ctx context.Context, id string, status domain.JobStatus) error
	MarkJobProcessing(ctx context.Context, id string, startedAt time.Time) error
	CompleteJob(ctx context.Context, id string, passed, failed int, completedAt time.Time) error
	FailJob(ctx context.Context, id string, errMsg string) error
	CancelJob(ctx context.Context, id string) error
	CountJobsByStatus(ctx context.Context) (map[string]int64, error)
	FindStaleJobs(ctx context.Context, cutoff time.Time) ([]*domain.LintJob, error)

	StoreFindings(ctx context.Context, jobID string, findings []domain.LintResult) error
	ListFindings(ctx context.Context, jobID string) ([]domain.LintResult, error)

	FindDueAudits(ctx context.Context, cutoff time.Time) ([]*domain.Registration, error)
	SetAuditResult(ctx context.Context, id string, conformant bool, violations []grammar.Violation, auditedAt time.Time) error
}
