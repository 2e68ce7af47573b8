package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tokenstd/revert-registry/internal/domain"
	"github.com/tokenstd/revert-registry/internal/grammar"
)

type pgRegistryRepository struct {
	pool *pgxpool.Pool
}

// NewPgRegistryRepository returns a RegistryRepository backed by PostgreSQL.
func NewPgRegistryRepository(pool *pgxpool.Pool) RegistryRepository {
	return &pgRegistryRepository{pool: pool}
}

const registrationColumns = `id, name, domain, prefix, subject, params, signature, selector,
       source, description, conformant, audit_violations, audited_at, created_at`

func (r *pgRegistryRepository) CreateRegistration(ctx context.Context, reg *domain.Registration) error {
	return insertRegistration(ctx, r.pool, reg)
}

func (r *pgRegistryRepository) CreateRegistrations(ctx context.Context, regs []*domain.Registration) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, reg := range regs {
		if err := insertRegistration(ctx, tx, reg); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit registrations: %w", err)
	}
	return nil
}

// execer covers both the pool and a transaction so insertRegistration can
// serve single and batch creation.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertRegistration(ctx context.Context, db execer, reg *domain.Registration) error {
	_, err := db.Exec(ctx, `
		INSERT INTO registrations
			(id, name, domain, prefix, subject, params, signature, selector,
			 source, description, conformant, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		reg.ID, reg.Name, reg.Domain, reg.Prefix, reg.Subject, reg.Params,
		reg.Signature, reg.Selector, reg.Source, reg.Description, reg.Conformant, reg.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "registrations_name_key") {
			return domain.ErrCollision
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (r *pgRegistryRepository) GetByName(ctx context.Context, name string) (*domain.Registration, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+registrationColumns+`
		FROM registrations WHERE name = $1`, name)

	reg, err := scanRegistration(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return reg, err
}

func (r *pgRegistryRepository) GetBySelector(ctx context.Context, selector string) ([]*domain.Registration, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+registrationColumns+`
		FROM registrations WHERE selector = $1 ORDER BY name ASC`, selector)
	if err != nil {
		return nil, fmt.Errorf("get by selector: %w", err)
	}
	defer rows.Close()
	return scanRegistrations(rows)
}

func (r *pgRegistryRepository) List(ctx context.Context, f domain.ListFilter) ([]*domain.Registration, int, error) {
	where, args := buildListWhere(f)
	offset := (f.Page - 1) * f.Limit

	// Count total matching rows for pagination metadata.
	var total int
	countQuery := "SELECT COUNT(*) FROM registrations" + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}

	// Append pagination args after the WHERE args.
	args = append(args, f.Limit, offset)
	limitPlaceholder := fmt.Sprintf("$%d", len(args)-1)
	offsetPlaceholder := fmt.Sprintf("$%d", len(args))

	query := fmt.Sprintf(`
		SELECT `+registrationColumns+`
		FROM registrations%s
		ORDER BY name ASC
		LIMIT %s OFFSET %s`, where, limitPlaceholder, offsetPlaceholder)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	regs, err := scanRegistrations(rows)
	if err != nil {
		return nil, 0, err
	}
	return regs, total, nil
}

func (r *pgRegistryRepository) CountRegistrations(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM registrations`).Scan(&total)
	return total, err
}

func (r *pgRegistryRepository) CountByDomain(ctx context.Context) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT domain, COUNT(*) FROM registrations GROUP BY domain`)
	if err != nil {
		return nil, fmt.Errorf("count by domain: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var dom string
		var n int64
		if err := rows.Scan(&dom, &n); err != nil {
			return nil, err
		}
		counts[dom] = n
	}
	return counts, rows.Err()
}

func (r *pgRegistryRepository) CountNonconformant(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE NOT conformant`).Scan(&total)
	return total, err
}

func (r *pgRegistryRepository) CreateJob(ctx context.Context, job *domain.LintJob) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lint_jobs
			(id, priority, status, inputs, callback_url, total, passed, failed,
			 created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		job.ID, job.Priority, job.Status, job.Inputs, job.CallbackURL,
		job.Total, job.Passed, job.Failed, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lint job: %w", err)
	}
	return nil
}

func (r *pgRegistryRepository) GetJob(ctx context.Context, id string) (*domain.LintJob, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, priority, status, inputs, callback_url, total, passed, failed,
		       error_message, created_at, updated_at, started_at, completed_at
		FROM lint_jobs WHERE id = $1`, id)

	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return job, err
}

func (r *pgRegistryRepository) UpdateJobStatus(ctx context.Context, id string, status domain.JobStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE lint_jobs SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	return err
}

func (r *pgRegistryRepository) MarkJobProcessing(ctx context.Context, id string, startedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE lint_jobs
		SET status = 'processing', started_at = $1, updated_at = NOW()
		WHERE id = $2`, startedAt, id)
	return err
}

func (r *pgRegistryRepository) CompleteJob(ctx context.Context, id string, passed, failed int, completedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE lint_jobs
		SET status = 'completed', passed = $1, failed = $2, completed_at = $3,
		    error_message = NULL, updated_at = NOW()
		WHERE id = $4`, passed, failed, completedAt, id)
	return err
}

func (r *pgRegistryRepository) FailJob(ctx context.Context, id, errMsg string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE lint_jobs
		SET status = 'failed', error_message = $1, completed_at = NOW(), updated_at = NOW()
		WHERE id = $2`, errMsg, id)
	return err
}

func (r *pgRegistryRepository) CancelJob(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE lint_jobs SET status = 'cancelled', updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *pgRegistryRepository) CountJobsByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM lint_jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count jobs by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *pgRegistryRepository) FindStaleJobs(ctx context.Context, cutoff time.Time) ([]*domain.LintJob, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, priority, status, inputs, callback_url, total, passed, failed,
		       error_message, created_at, updated_at, started_at, completed_at
		FROM lint_jobs
		WHERE status IN ('pending', 'queued')
		  AND updated_at <= $1
		LIMIT 500`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("find stale jobs: %w", err)
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (r *pgRegistryRepository) StoreFindings(ctx context.Context, jobID string, findings []domain.LintResult) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Findings are rewritten wholesale when a stale job is reprocessed.
	if _, err := tx.Exec(ctx, `DELETE FROM lint_findings WHERE job_id = $1`, jobID); err != nil {
		return fmt.Errorf("clear findings: %w", err)
	}

	for i, f := range findings {
		_, err := tx.Exec(ctx, `
			INSERT INTO lint_findings (job_id, idx, input, name, selector, ok, violations)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			jobID, i, f.Input, f.Name, f.Selector, f.OK, f.Violations,
		)
		if err != nil {
			return fmt.Errorf("insert finding: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit findings: %w", err)
	}
	return nil
}

func (r *pgRegistryRepository) ListFindings(ctx context.Context, jobID string) ([]domain.LintResult, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT input, name, selector, ok, violations
		FROM lint_findings WHERE job_id = $1 ORDER BY idx ASC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list findings: %w", err)
	}
	defer rows.Close()

	var findings []domain.LintResult
	for rows.Next() {
		var f domain.LintResult
		if err := rows.Scan(&f.Input, &f.Name, &f.Selector, &f.OK, &f.Violations); err != nil {
			return nil, err
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

func (r *pgRegistryRepository) FindDueAudits(ctx context.Context, cutoff time.Time) ([]*domain.Registration, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+registrationColumns+`
		FROM registrations
		WHERE audited_at IS NULL OR audited_at <= $1
		ORDER BY audited_at ASC NULLS FIRST
		LIMIT 500`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("find due audits: %w", err)
	}
	defer rows.Close()
	return scanRegistrations(rows)
}

func (r *pgRegistryRepository) SetAuditResult(ctx context.Context, id string, conformant bool, violations []grammar.Violation, auditedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE registrations
		SET conformant = $1, audit_violations = $2, audited_at = $3
		WHERE id = $4`, conformant, violations, auditedAt, id)
	return err
}

// ---- helpers ----

// scanRegistration reads a single registration row from any pgx row type.
func scanRegistration(row pgx.Row) (*domain.Registration, error) {
	var reg domain.Registration
	err := row.Scan(
		&reg.ID, &reg.Name, &reg.Domain, &reg.Prefix, &reg.Subject, &reg.Params,
		&reg.Signature, &reg.Selector, &reg.Source, &reg.Description,
		&reg.Conformant, &reg.AuditViolations, &reg.AuditedAt, &reg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func scanRegistrations(rows pgx.Rows) ([]*domain.Registration, error) {
	var result []*domain.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, reg)
	}
	return result, rows.Err()
}

func scanJob(row pgx.Row) (*domain.LintJob, error) {
	var job domain.LintJob
	err := row.Scan(
		&job.ID, &job.Priority, &job.Status, &job.Inputs, &job.CallbackURL,
		&job.Total, &job.Passed, &job.Failed, &job.ErrorMessage,
		&job.CreatedAt, &job.UpdatedAt, &job.StartedAt, &job.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func scanJobs(rows pgx.Rows) ([]*domain.LintJob, error) {
	var result []*domain.LintJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, job)
	}
	return result, rows.Err()
}

// buildListWhere builds a parameterised WHERE clause from a ListFilter.
func buildListWhere(f domain.ListFilter) (string, []any) {
	var conditions []string
	var args []any

	add := func(condition string, val any) {
		args = append(args, val)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if f.Domain != nil {
		add("domain = $%d", *f.Domain)
	}
	if f.Prefix != nil {
		add("prefix = $%d", *f.Prefix)
	}
	if f.Subject != nil {
		add("subject = $%d", *f.Subject)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
