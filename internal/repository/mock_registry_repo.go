package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tokenstd/revert-registry/internal/domain"
	"github.com/tokenstd/revert-registry/internal/grammar"
)

// MockRegistryRepository is a hand-written, in-memory implementation of
// RegistryRepository used in unit tests. No mock-generation library needed.
type MockRegistryRepository struct {
	mu            sync.RWMutex
	registrations map[string]*domain.Registration // keyed by name
	jobs          map[string]*domain.LintJob
	findings      map[string][]domain.LintResult

	// Optional error overrides — set in tests to simulate failure paths.
	CreateRegistrationErr error
	GetByNameErr          error
	CreateJobErr          error
	GetJobErr             error
	StoreFindingsErr      error
}

func NewMockRegistryRepository() *MockRegistryRepository {
	return &MockRegistryRepository{
		registrations: make(map[string]*domain.Registration),
		jobs:          make(map[string]*domain.LintJob),
		findings:      make(map[string][]domain.LintResult),
	}
}

func (m *MockRegistryRepository) CreateRegistration(_ context.Context, reg *domain.Registration) error {
	if m.CreateRegistrationErr != nil {
		return m.CreateRegistrationErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(reg)
}

func (m *MockRegistryRepository) CreateRegistrations(_ context.Context, regs []*domain.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// All-or-nothing, like the transactional pgx implementation.
	for _, reg := range regs {
		if _, exists := m.registrations[reg.Name]; exists {
			return domain.ErrCollision
		}
	}
	for _, reg := range regs {
		if err := m.insertLocked(reg); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockRegistryRepository) insertLocked(reg *domain.Registration) error {
	if _, exists := m.registrations[reg.Name]; exists {
		return domain.ErrCollision
	}
	clone := *reg
	m.registrations[reg.Name] = &clone
	return nil
}

func (m *MockRegistryRepository) GetByName(_ context.Context, name string) (*domain.Registration, error) {
	if m.GetByNameErr != nil {
		return nil, m.GetByNameErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	reg, ok := m.registrations[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *reg
	return &clone, nil
}

func (m *MockRegistryRepository) GetBySelector(_ context.Context, selector string) ([]*domain.Registration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Registration
	for _, reg := range m.registrations {
		if reg.Selector == selector {
			clone := *reg
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *MockRegistryRepository) List(_ context.Context, f domain.ListFilter) ([]*domain.Registration, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Registration
	for _, reg := range m.registrations {
		if f.Domain != nil && reg.Domain != *f.Domain {
			continue
		}
		if f.Prefix != nil && reg.Prefix != *f.Prefix {
			continue
		}
		if f.Subject != nil && reg.Subject != *f.Subject {
			continue
		}
		clone := *reg
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, len(result), nil
}

func (m *MockRegistryRepository) CountRegistrations(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.registrations)), nil
}

func (m *MockRegistryRepository) CountByDomain(_ context.Context) (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[string]int64)
	for _, reg := range m.registrations {
		counts[string(reg.Domain)]++
	}
	return counts, nil
}

func (m *MockRegistryRepository) CountNonconformant(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total int64
	for _, reg := range m.registrations {
		if !reg.Conformant {
			total++
		}
	}
	return total, nil
}

func (m *MockRegistryRepository) CreateJob(_ context.Context, job *domain.LintJob) error {
	if m.CreateJobErr != nil {
		return m.CreateJobErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *job
	m.jobs[job.ID] = &clone
	return nil
}

func (m *MockRegistryRepository) GetJob(_ context.Context, id string) (*domain.LintJob, error) {
	if m.GetJobErr != nil {
		return nil, m.GetJobErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *job
	return &clone, nil
}

func (m *MockRegistryRepository) UpdateJobStatus(_ context.Context, id string, status domain.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[id]; ok {
		job.Status = status
		job.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *MockRegistryRepository) MarkJobProcessing(_ context.Context, id string, startedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[id]; ok {
		job.Status = domain.JobStatusProcessing
		job.StartedAt = &startedAt
		job.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *MockRegistryRepository) CompleteJob(_ context.Context, id string, passed, failed int, completedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[id]; ok {
		job.Status = domain.JobStatusCompleted
		job.Passed = passed
		job.Failed = failed
		job.CompletedAt = &completedAt
		job.ErrorMessage = nil
		job.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *MockRegistryRepository) FailJob(_ context.Context, id, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[id]; ok {
		job.Status = domain.JobStatusFailed
		job.ErrorMessage = &errMsg
		now := time.Now().UTC()
		job.CompletedAt = &now
		job.UpdatedAt = now
	}
	return nil
}

func (m *MockRegistryRepository) CancelJob(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[id]; ok {
		job.Status = domain.JobStatusCancelled
		job.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *MockRegistryRepository) CountJobsByStatus(_ context.Context) (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[string]int64)
	for _, job := range m.jobs {
		counts[string(job.Status)]++
	}
	return counts, nil
}

func (m *MockRegistryRepository) FindStaleJobs(_ context.Context, cutoff time.Time) ([]*domain.LintJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.LintJob
	for _, job := range m.jobs {
		stuck := job.Status == domain.JobStatusPending || job.Status == domain.JobStatusQueued
		if stuck && !job.UpdatedAt.After(cutoff) {
			clone := *job
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (m *MockRegistryRepository) StoreFindings(_ context.Context, jobID string, findings []domain.LintResult) error {
	if m.StoreFindingsErr != nil {
		return m.StoreFindingsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findings[jobID] = append([]domain.LintResult(nil), findings...)
	return nil
}

func (m *MockRegistryRepository) ListFindings(_ context.Context, jobID string) ([]domain.LintResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.LintResult(nil), m.findings[jobID]...), nil
}

func (m *MockRegistryRepository) FindDueAudits(_ context.Context, cutoff time.Time) ([]*domain.Registration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Registration
	for _, reg := range m.registrations {
		if reg.AuditedAt == nil || !reg.AuditedAt.After(cutoff) {
			clone := *reg
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (m *MockRegistryRepository) SetAuditResult(_ context.Context, id string, conformant bool, violations []grammar.Violation, auditedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, reg := range m.registrations {
		if reg.ID == id {
			reg.Conformant = conformant
			reg.AuditViolations = append([]grammar.Violation(nil), violations...)
			reg.AuditedAt = &auditedAt
			return nil
		}
	}
	return nil
}
