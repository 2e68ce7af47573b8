package domain_test

import (
	"strings"
	"testing"

	"github.com/tokenstd/revert-registry/internal/domain"
	"github.com/tokenstd/revert-registry/internal/grammar"
)

func TestRegisterRequest_Validate(t *testing.T) {
	t.Run("signature form passes", func(t *testing.T) {
		r := domain.RegisterRequest{Signature: "ERC20InvalidSender(address sender)"}
		if err := r.Validate(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("structured form passes", func(t *testing.T) {
		r := domain.RegisterRequest{
			Domain:  grammar.DomainERC20,
			Prefix:  grammar.PrefixInvalid,
			Subject: grammar.SubjectSender,
			Params:  []grammar.Param{{Name: "sender", Type: "address"}},
		}
		if err := r.Validate(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("empty request", func(t *testing.T) {
		var r domain.RegisterRequest
		if err := r.Validate(); err != domain.ErrEmptyDeclaration {
			t.Fatalf("expected ErrEmptyDeclaration, got %v", err)
		}
	})

	t.Run("both forms at once", func(t *testing.T) {
		r := domain.RegisterRequest{
			Signature: "ERC20InvalidSender(address sender)",
			Subject:   grammar.SubjectSender,
		}
		if err := r.Validate(); err != domain.ErrAmbiguousDeclaration {
			t.Fatalf("expected ErrAmbiguousDeclaration, got %v", err)
		}
	})

	t.Run("structured form without subject", func(t *testing.T) {
		r := domain.RegisterRequest{
			Domain: grammar.DomainERC20,
			Params: []grammar.Param{{Name: "sender", Type: "address"}},
		}
		if err := r.Validate(); err != domain.ErrMissingSubject {
			t.Fatalf("expected ErrMissingSubject, got %v", err)
		}
	})

	t.Run("description too long", func(t *testing.T) {
		r := domain.RegisterRequest{
			Signature:   "ERC20InvalidSender(address sender)",
			Description: strings.Repeat("x", 1025),
		}
		if err := r.Validate(); err != domain.ErrDescriptionTooLong {
			t.Fatalf("expected ErrDescriptionTooLong, got %v", err)
		}
	})

	t.Run("description at max length passes", func(t *testing.T) {
		r := domain.RegisterRequest{
			Signature:   "ERC20InvalidSender(address sender)",
			Description: strings.Repeat("x", 1024),
		}
		if err := r.Validate(); err != nil {
			t.Fatalf("expected no error at max length, got %v", err)
		}
	})
}

func TestSubmitJobRequest_Validate(t *testing.T) {
	valid := domain.SubmitJobRequest{
		Inputs:   []string{"ERC20InvalidSender(address sender)"},
		Priority: domain.JobPriorityNormal,
	}

	t.Run("valid request passes", func(t *testing.T) {
		if err := valid.Validate(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("no inputs", func(t *testing.T) {
		r := valid
		r.Inputs = nil
		if err := r.Validate(); err != domain.ErrEmptyJob {
			t.Fatalf("expected ErrEmptyJob, got %v", err)
		}
	})

	t.Run("invalid priority", func(t *testing.T) {
		r := valid
		r.Priority = "urgent"
		if err := r.Validate(); err != domain.ErrInvalidPriority {
			t.Fatalf("expected ErrInvalidPriority, got %v", err)
		}
	})

	t.Run("all valid priorities accepted", func(t *testing.T) {
		for _, p := range []domain.JobPriority{domain.JobPriorityHigh, domain.JobPriorityNormal, domain.JobPriorityLow} {
			r := valid
			r.Priority = p
			if err := r.Validate(); err != nil {
				t.Fatalf("priority %q: expected no error, got %v", p, err)
			}
		}
	})

	t.Run("callback must be http or https", func(t *testing.T) {
		for _, cb := range []string{"ftp://host/hook", "not a url", "/relative/hook", "https://"} {
			r := valid
			r.CallbackURL = cb
			if err := r.Validate(); err != domain.ErrInvalidCallback {
				t.Fatalf("callback %q: expected ErrInvalidCallback, got %v", cb, err)
			}
		}
	})

	t.Run("valid callback passes", func(t *testing.T) {
		r := valid
		r.CallbackURL = "https://ci.example.com/hooks/lint"
		if err := r.Validate(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})
}

func TestCheckRequest_Validate(t *testing.T) {
	t.Run("empty check rejected", func(t *testing.T) {
		var r domain.CheckRequest
		if err := r.Validate(); err != domain.ErrEmptyCheck {
			t.Fatalf("expected ErrEmptyCheck, got %v", err)
		}
	})

	t.Run("non-empty check passes", func(t *testing.T) {
		r := domain.CheckRequest{Signatures: []string{"ERC20InvalidSender(address)"}}
		if err := r.Validate(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})
}
