package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/tokenstd/revert-registry/internal/domain"
	"github.com/tokenstd/revert-registry/internal/grammar"
	"github.com/tokenstd/revert-registry/internal/queue"
	"github.com/tokenstd/revert-registry/internal/repository"
)

// Hooks carries the metric callbacks injected by main.
// All fields are optional; nil fields become no-ops, which keeps tests and
// the CLI free of any metrics setup.
type Hooks struct {
	OnCheck      func(violations []grammar.Violation)
	OnRegistered func(domain string)
	OnCacheHit   func()
	OnCacheMiss  func()
}

func (h Hooks) withDefaults() Hooks {
	if h.OnCheck == nil {
		h.OnCheck = func([]grammar.Violation) {}
	}
	if h.OnRegistered == nil {
		h.OnRegistered = func(string) {}
	}
	if h.OnCacheHit == nil {
		h.OnCacheHit = func() {}
	}
	if h.OnCacheMiss == nil {
		h.OnCacheMiss = func() {}
	}
	return h
}

// RegistryService coordinates the grammar engine, the repository and the
// queue. All business rules (conformance gate, collision detection,
// idempotent registration, cancel state machine, batch limits) live here.
// HTTP handlers and workers depend on this service, not on each other.
type RegistryService struct {
	repo     repository.RegistryRepository
	q        *queue.PriorityQueue
	vocab    *grammar.Vocabulary
	selCache *lru.Cache[string, []*domain.Registration]
	maxBatch int
	logger   *zap.Logger
	hooks    Hooks
}

func NewRegistryService(
	repo repository.RegistryRepository,
	q *queue.PriorityQueue,
	vocab *grammar.Vocabulary,
	cacheSize int,
	maxBatch int,
	logger *zap.Logger,
	hooks Hooks,
) (*RegistryService, error) {
	cache, err := lru.New[string, []*domain.Registration](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("selector cache: %w", err)
	}
	return &RegistryService{
		repo:     repo,
		q:        q,
		vocab:    vocab,
		selCache: cache,
		maxBatch: maxBatch,
		logger:   logger,
		hooks:    hooks.withDefaults(),
	}, nil
}

// Lint runs the full conformance check over a list of declaration inputs:
// grammar validation per declaration, collision detection within the
// submitted set, and collision detection against already-registered names.
// One result is returned per input, in input order. Inputs that do not parse
// get a single syntax violation.
func (s *RegistryService) Lint(ctx context.Context, inputs []string) ([]domain.LintResult, error) {
	results := make([]domain.LintResult, len(inputs))
	decls := make([]grammar.Declaration, 0, len(inputs))
	at := make([]int, 0, len(inputs)) // result index of each parsed declaration

	for i, in := range inputs {
		results[i].Input = in
		d, err := s.vocab.ParseSignature(in)
		if err != nil {
			results[i].Violations = []grammar.Violation{{Rule: grammar.RuleSyntax, Message: err.Error()}}
			continue
		}
		results[i].Name = d.Name()
		results[i].Signature = d.Signature()
		results[i].Selector = d.Selector()
		decls = append(decls, d)
		at = append(at, i)
	}

	for j, vd := range s.vocab.CheckSet(decls) {
		results[at[j]].Violations = vd.Violations
	}

	// Collisions against the registry: a submitted name that is already
	// registered must repeat the registered parameter list exactly.
	for _, i := range at {
		existing, err := s.repo.GetByName(ctx, results[i].Name)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("registry lookup for %s: %w", results[i].Name, err)
		}
		if existing.Signature != results[i].Signature {
			results[i].Violations = append(results[i].Violations, grammar.Violation{
				Rule:    grammar.RuleCollision,
				Message: fmt.Sprintf("name %s is already registered as %s", results[i].Name, existing.Signature),
			})
		}
	}

	for i := range results {
		results[i].OK = len(results[i].Violations) == 0
		s.hooks.OnCheck(results[i].Violations)
	}
	return results, nil
}

// Check is the synchronous lint endpoint's entry point. Nothing is persisted.
func (s *RegistryService) Check(ctx context.Context, req domain.CheckRequest) ([]domain.LintResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if len(req.Signatures) > s.maxBatch {
		return nil, domain.ErrBatchTooLarge
	}
	return s.Lint(ctx, req.Signatures)
}

// Register validates and persists a single declaration.
//
// Only conforming declarations are accepted; a failed verdict is returned as
// a ConformanceError carrying the violations. Re-registering a name with the
// identical canonical signature returns the existing record as-is. The caller
// can distinguish a repeat response by the HTTP status code (200 for
// existing, 201 for newly created). The same name with a different parameter
// list is a collision.
func (s *RegistryService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Registration, bool, error) {
	if err := req.Validate(); err != nil {
		return nil, false, err
	}
	decl, err := s.declarationOf(req)
	if err != nil {
		return nil, false, err
	}

	if vd := s.vocab.Validate(decl); !vd.OK() {
		return nil, false, &domain.ConformanceError{Name: decl.Name(), Violations: vd.Violations}
	}

	name := decl.Name()
	sig := decl.Signature()

	existing, err := s.repo.GetByName(ctx, name)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("registry lookup: %w", err)
	}
	if existing != nil {
		if existing.Signature != sig {
			return nil, false, domain.ErrCollision
		}
		return existing, true, nil // true = already registered
	}

	reg := buildRegistration(decl, domain.SourceAPI, req.Description)
	if err := s.repo.CreateRegistration(ctx, reg); err != nil {
		if errors.Is(err, domain.ErrCollision) {
			// Lost a concurrent race on the unique index. Identical
			// signatures are still idempotent.
			if winner, gerr := s.repo.GetByName(ctx, name); gerr == nil && winner.Signature == sig {
				return winner, true, nil
			}
			return nil, false, domain.ErrCollision
		}
		return nil, false, fmt.Errorf("persist registration: %w", err)
	}

	s.hooks.OnRegistered(string(reg.Domain))
	s.selCache.Remove(reg.Selector)
	return reg, false, nil
}

// RegisterBatch registers up to MaxBatch declarations atomically: every
// declaration must pass the conformance gate and be collision-free, both
// within the batch and against the registry, or nothing is persisted.
// Identical re-declarations (same name, same canonical signature) are
// deduplicated rather than rejected, inside the batch and against the
// registry alike.
func (s *RegistryService) RegisterBatch(ctx context.Context, req domain.RegisterBatchRequest) ([]*domain.Registration, error) {
	if len(req.Declarations) == 0 {
		return nil, domain.ErrBatchEmpty
	}
	if len(req.Declarations) > s.maxBatch {
		return nil, domain.ErrBatchTooLarge
	}

	decls := make([]grammar.Declaration, len(req.Declarations))
	for i := range req.Declarations {
		if err := req.Declarations[i].Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		d, err := s.declarationOf(req.Declarations[i])
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		decls[i] = d
	}

	for i, vd := range s.vocab.CheckSet(decls) {
		for _, viol := range vd.Violations {
			if viol.Rule == grammar.RuleCollision {
				return nil, fmt.Errorf("item %d: %w", i, domain.ErrCollision)
			}
		}
		if !vd.OK() {
			return nil, fmt.Errorf("item %d: %w", i,
				&domain.ConformanceError{Name: decls[i].Name(), Violations: vd.Violations})
		}
	}

	out := make([]*domain.Registration, 0, len(decls))
	var toInsert []*domain.Registration
	seen := make(map[string]bool, len(decls))
	for i, d := range decls {
		name := d.Name()
		if seen[name] {
			continue
		}
		seen[name] = true

		existing, err := s.repo.GetByName(ctx, name)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("registry lookup: %w", err)
		}
		if existing != nil {
			if existing.Signature != d.Signature() {
				return nil, fmt.Errorf("item %d: %w", i, domain.ErrCollision)
			}
			out = append(out, existing)
			continue
		}

		reg := buildRegistration(d, domain.SourceAPI, req.Declarations[i].Description)
		out = append(out, reg)
		toInsert = append(toInsert, reg)
	}

	if len(toInsert) > 0 {
		if err := s.repo.CreateRegistrations(ctx, toInsert); err != nil {
			return nil, fmt.Errorf("persist batch: %w", err)
		}
		for _, reg := range toInsert {
			s.hooks.OnRegistered(string(reg.Domain))
			s.selCache.Remove(reg.Selector)
		}
	}
	return out, nil
}

// SeedCatalog registers every standard-catalog declaration that is not
// already present. Idempotent, so it runs unconditionally at startup.
func (s *RegistryService) SeedCatalog(ctx context.Context) (int, error) {
	var toInsert []*domain.Registration
	for _, d := range grammar.StandardCatalog() {
		_, err := s.repo.GetByName(ctx, d.Name())
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return 0, fmt.Errorf("catalog lookup: %w", err)
		}
		toInsert = append(toInsert, buildRegistration(d, domain.SourceCatalog, ""))
	}
	if len(toInsert) == 0 {
		return 0, nil
	}
	if err := s.repo.CreateRegistrations(ctx, toInsert); err != nil {
		return 0, fmt.Errorf("seed catalog: %w", err)
	}
	return len(toInsert), nil
}

// Catalog returns the built-in standard declarations with their canonical
// signatures and selectors, without touching the database.
func (s *RegistryService) Catalog() []domain.CatalogEntry {
	std := grammar.StandardCatalog()
	entries := make([]domain.CatalogEntry, len(std))
	for i, d := range std {
		entries[i] = domain.CatalogEntry{
			Name:      d.Name(),
			Signature: d.Signature(),
			Selector:  d.Selector(),
			Params:    d.Params,
		}
	}
	return entries
}

func (s *RegistryService) GetByName(ctx context.Context, name string) (*domain.Registration, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *RegistryService) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Registration, int, error) {
	return s.repo.List(ctx, filter)
}

// LookupSelector resolves a 4-byte selector to the registrations whose
// canonical signature hashes to it. Results (including empty ones) are kept
// in a small LRU since decoded revert data tends to hit the same handful of
// selectors over and over. Register invalidates the affected entry.
func (s *RegistryService) LookupSelector(ctx context.Context, raw string) ([]*domain.Registration, error) {
	sel, err := grammar.NormalizeSelector(raw)
	if err != nil {
		return nil, domain.ErrInvalidSelector
	}

	if regs, ok := s.selCache.Get(sel); ok {
		s.hooks.OnCacheHit()
		return regs, nil
	}
	s.hooks.OnCacheMiss()

	regs, err := s.repo.GetBySelector(ctx, sel)
	if err != nil {
		return nil, err
	}
	s.selCache.Add(sel, regs)
	return regs, nil
}

// Stats assembles the operational snapshot: registration counts, job counts
// by status and live queue depths.
func (s *RegistryService) Stats(ctx context.Context) (*domain.Stats, error) {
	total, err := s.repo.CountRegistrations(ctx)
	if err != nil {
		return nil, err
	}
	byDomain, err := s.repo.CountByDomain(ctx)
	if err != nil {
		return nil, err
	}
	nonconformant, err := s.repo.CountNonconformant(ctx)
	if err != nil {
		return nil, err
	}
	jobs, err := s.repo.CountJobsByStatus(ctx)
	if err != nil {
		return nil, err
	}

	high, normal, low := s.q.Depths()
	return &domain.Stats{
		Registrations:         total,
		RegistrationsByDomain: byDomain,
		Nonconformant:         nonconformant,
		JobsByStatus:          jobs,
		QueueDepths:           map[string]int{"high": high, "normal": normal, "low": low},
	}, nil
}

// SubmitJob persists an asynchronous lint job and enqueues it. An empty
// priority defaults to normal.
func (s *RegistryService) SubmitJob(ctx context.Context, req domain.SubmitJobRequest) (*domain.LintJob, error) {
	if req.Priority == "" {
		req.Priority = domain.JobPriorityNormal
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if len(req.Inputs) > s.maxBatch {
		return nil, domain.ErrBatchTooLarge
	}

	now := time.Now().UTC()
	job := &domain.LintJob{
		ID:        uuid.New().String(),
		Priority:  req.Priority,
		Status:    domain.JobStatusPending,
		Inputs:    req.Inputs,
		Total:     len(req.Inputs),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.CallbackURL != "" {
		job.CallbackURL = &req.CallbackURL
	}

	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("persist job: %w", err)
	}

	s.enqueue(ctx, job)
	return job, nil
}

// GetJob returns the job and, once processing has produced them, its
// findings.
func (s *RegistryService) GetJob(ctx context.Context, id string) (*domain.JobReport, error) {
	job, err := s.repo.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	findings, err := s.repo.ListFindings(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.JobReport{Job: *job, Findings: findings}, nil
}

// CancelJob marks a job as cancelled if it has not started processing.
func (s *RegistryService) CancelJob(ctx context.Context, id string) error {
	job, err := s.repo.GetJob(ctx, id)
	if err != nil {
		return err
	}

	switch job.Status {
	case domain.JobStatusCancelled:
		return domain.ErrAlreadyCancelled
	case domain.JobStatusProcessing, domain.JobStatusCompleted, domain.JobStatusFailed:
		return domain.ErrNotCancellable
	}

	return s.repo.CancelJob(ctx, id)
}

// ---- private helpers ----

// declarationOf turns a register request into a grammar declaration.
// A signature that does not parse is reported as a conformance failure with
// a single syntax violation rather than a generic bad request, so the client
// always gets the violation format back.
func (s *RegistryService) declarationOf(req domain.RegisterRequest) (grammar.Declaration, error) {
	if req.Signature != "" {
		d, err := s.vocab.ParseSignature(req.Signature)
		if err != nil {
			return grammar.Declaration{}, &domain.ConformanceError{
				Name:       req.Signature,
				Violations: []grammar.Violation{{Rule: grammar.RuleSyntax, Message: err.Error()}},
			}
		}
		return d, nil
	}
	return grammar.Declaration{
		Domain:  req.Domain,
		Prefix:  req.Prefix,
		Subject: req.Subject,
		Params:  req.Params,
	}, nil
}

func buildRegistration(decl grammar.Declaration, source domain.Source, description string) *domain.Registration {
	decl = decl.WithInferredRoles()
	reg := &domain.Registration{
		ID:         uuid.New().String(),
		Name:       decl.Name(),
		Domain:     decl.Domain,
		Prefix:     decl.Prefix,
		Subject:    decl.Subject,
		Params:     decl.Params,
		Signature:  decl.Signature(),
		Selector:   decl.Selector(),
		Source:     source,
		Conformant: true,
		CreatedAt:  time.Now().UTC(),
	}
	if description != "" {
		reg.Description = &description
	}
	return reg
}

// enqueue places the job on the queue and flips its status to queued.
// If the queue is full the job stays pending; the requeue worker re-enqueues
// pending jobs on its next sweep, so a full queue delays work instead of
// losing it.
func (s *RegistryService) enqueue(ctx context.Context, job *domain.LintJob) {
	if err := s.q.Enqueue(queue.Item{JobID: job.ID, Priority: job.Priority}); err != nil {
		s.logger.Warn("queue full: job will remain pending",
			zap.String("id", job.ID), zap.Error(err))
		return
	}

	if err := s.repo.UpdateJobStatus(ctx, job.ID, domain.JobStatusQueued); err != nil {
		s.logger.Error("failed to update status to queued", zap.String("id", job.ID), zap.Error(err))
		return
	}
	job.Status = domain.JobStatusQueued
}
