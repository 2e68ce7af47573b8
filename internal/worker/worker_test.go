package worker_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tokenstd/revert-registry/internal/domain"
	"github.com/tokenstd/revert-registry/internal/grammar"
	"github.com/tokenstd/revert-registry/internal/queue"
	"github.com/tokenstd/revert-registry/internal/repository"
	"github.com/tokenstd/revert-registry/internal/service"
	"github.com/tokenstd/revert-registry/internal/worker"
)

// mockNotifier records deliveries in place of real webhook POSTs.
type mockNotifier struct {
	mu        sync.Mutex
	delivered []*domain.JobReport
}

func (m *mockNotifier) Deliver(_ context.Context, _ string, report *domain.JobReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delivered = append(m.delivered, report)
	return nil
}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.delivered)
}

func (m *mockNotifier) last() *domain.JobReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.delivered) == 0 {
		return nil
	}
	return m.delivered[len(m.delivered)-1]
}

func newLintEnv(t *testing.T) (*repository.MockRegistryRepository, *queue.PriorityQueue, *service.RegistryService) {
	t.Helper()
	repo := repository.NewMockRegistryRepository()
	q := queue.New()
	svc, err := service.NewRegistryService(repo, q, grammar.DefaultVocabulary(), 64, 1000, zap.NewNop(), service.Hooks{})
	if err != nil {
		t.Fatalf("NewRegistryService: %v", err)
	}
	return repo, q, svc
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestWorker_CompletesJob(t *testing.T) {
	repo, q, svc := newLintEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job, err := svc.SubmitJob(ctx, domain.SubmitJobRequest{
		Inputs: []string{
			"ERC20InvalidSender(address sender)",
			"ERC20FrozenAccount(address account)",
		},
		Priority: domain.JobPriorityHigh,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	w := worker.NewWorker(0, q, repo, svc, &mockNotifier{}, zap.NewNop(), nil)
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	waitFor(t, "job completion", func() bool {
		j, err := repo.GetJob(context.Background(), job.ID)
		return err == nil && j.Status == domain.JobStatusCompleted
	})
	cancel()
	<-done

	j, _ := repo.GetJob(context.Background(), job.ID)
	if j.Passed != 1 || j.Failed != 1 {
		t.Fatalf("expected passed=1 failed=1, got %d/%d", j.Passed, j.Failed)
	}
	if j.StartedAt == nil || j.CompletedAt == nil {
		t.Fatal("expected started_at and completed_at to be set")
	}

	findings, _ := repo.ListFindings(context.Background(), job.ID)
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(findings))
	}
	if !findings[0].OK || findings[1].OK {
		t.Fatalf("unexpected finding verdicts: %+v", findings)
	}
}

func TestWorker_DeliversCallback(t *testing.T) {
	repo, q, svc := newLintEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job, err := svc.SubmitJob(ctx, domain.SubmitJobRequest{
		Inputs:      []string{"ERC721InvalidOwner(address owner)"},
		Priority:    domain.JobPriorityNormal,
		CallbackURL: "https://ci.example.com/hooks/lint",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	notifier := &mockNotifier{}
	w := worker.NewWorker(0, q, repo, svc, notifier, zap.NewNop(), nil)
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	waitFor(t, "callback delivery", func() bool { return notifier.count() == 1 })
	cancel()
	<-done

	report := notifier.last()
	if report.Job.ID != job.ID {
		t.Fatalf("expected report for job %s, got %s", job.ID, report.Job.ID)
	}
	if report.Job.Status != domain.JobStatusCompleted {
		t.Fatalf("expected completed report, got %s", report.Job.Status)
	}
	if len(report.Findings) != 1 || !report.Findings[0].OK {
		t.Fatalf("unexpected findings in report: %+v", report.Findings)
	}
}

func TestWorker_SkipsCancelledJob(t *testing.T) {
	repo, q, svc := newLintEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cancelled, err := svc.SubmitJob(ctx, domain.SubmitJobRequest{
		Inputs:   []string{"ERC20InvalidSender(address sender)"},
		Priority: domain.JobPriorityNormal,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := svc.CancelJob(ctx, cancelled.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// A runnable job behind the cancelled one proves the worker moved past it.
	runnable, err := svc.SubmitJob(ctx, domain.SubmitJobRequest{
		Inputs:   []string{"ERC20InvalidReceiver(address receiver)"},
		Priority: domain.JobPriorityNormal,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	w := worker.NewWorker(0, q, repo, svc, &mockNotifier{}, zap.NewNop(), nil)
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	waitFor(t, "second job completion", func() bool {
		j, err := repo.GetJob(context.Background(), runnable.ID)
		return err == nil && j.Status == domain.JobStatusCompleted
	})
	cancel()
	<-done

	j, _ := repo.GetJob(context.Background(), cancelled.ID)
	if j.Status != domain.JobStatusCancelled {
		t.Fatalf("expected cancelled job untouched, got %s", j.Status)
	}
	findings, _ := repo.ListFindings(context.Background(), cancelled.ID)
	if len(findings) != 0 {
		t.Fatalf("expected no findings for cancelled job, got %d", len(findings))
	}
}

func TestRequeueWorker_RecoversStaleJobs(t *testing.T) {
	repo, q, _ := newLintEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stale := &domain.LintJob{
		ID:        "stale-job",
		Priority:  domain.JobPriorityNormal,
		Status:    domain.JobStatusPending,
		Inputs:    []string{"ERC20InvalidSender(address sender)"},
		Total:     1,
		CreatedAt: time.Now().UTC().Add(-10 * time.Minute),
		UpdatedAt: time.Now().UTC().Add(-10 * time.Minute),
	}
	if err := repo.CreateJob(ctx, stale); err != nil {
		t.Fatalf("create: %v", err)
	}

	rw := worker.NewRequeueWorker(repo, q, 20*time.Millisecond, 5*time.Minute, zap.NewNop())
	done := make(chan struct{})
	go func() {
		rw.Run(ctx)
		close(done)
	}()

	waitFor(t, "stale job re-enqueued", func() bool {
		_, normal, _ := q.Depths()
		return normal == 1
	})
	cancel()
	<-done

	j, _ := repo.GetJob(context.Background(), stale.ID)
	if j.Status != domain.JobStatusQueued {
		t.Fatalf("expected status=queued after requeue, got %s", j.Status)
	}
}

func TestAuditWorker_FlagsNonconformantRegistrations(t *testing.T) {
	repo, _, _ := newLintEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Registered under a vocabulary that knew ERC777; the current one does
	// not, so the audit must flag it.
	reg := &domain.Registration{
		ID:         "legacy-reg",
		Name:       "ERC777InvalidSender",
		Domain:     grammar.Domain("ERC777"),
		Prefix:     grammar.PrefixInvalid,
		Subject:    grammar.SubjectSender,
		Params:     []grammar.Param{{Name: "sender", Type: "address", Role: grammar.RoleWho}},
		Signature:  "ERC777InvalidSender(address)",
		Selector:   grammar.Selector("ERC777InvalidSender(address)"),
		Source:     domain.SourceAPI,
		Conformant: true,
		CreatedAt:  time.Now().UTC(),
	}
	if err := repo.CreateRegistration(ctx, reg); err != nil {
		t.Fatalf("create: %v", err)
	}

	var swept atomic.Int64
	aw := worker.NewAuditWorker(repo, grammar.DefaultVocabulary(), 20*time.Millisecond, 24*time.Hour, zap.NewNop(),
		func(n int64) { swept.Store(n) })
	done := make(chan struct{})
	go func() {
		aw.Run(ctx)
		close(done)
	}()

	waitFor(t, "audit to flag the registration", func() bool {
		r, err := repo.GetByName(context.Background(), reg.Name)
		return err == nil && r.AuditedAt != nil && !r.Conformant
	})
	cancel()
	<-done

	r, _ := repo.GetByName(context.Background(), reg.Name)
	found := false
	for _, v := range r.AuditViolations {
		if v.Rule == grammar.RuleUnknownDomain {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an unknown-domain audit violation, got %+v", r.AuditViolations)
	}
	if swept.Load() != 1 {
		t.Fatalf("expected nonconformant count 1 after sweep, got %d", swept.Load())
	}
}
