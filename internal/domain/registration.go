package domain

import (
	"time"

	"github.com/tokenstd/revert-registry/internal/grammar"
)

// Source records how a registration entered the registry.
type Source string

const (
	SourceCatalog Source = "catalog"
	SourceAPI     Source = "api"
)

// Registration is a registered error declaration. Registrations are
// immutable: authored once, never updated or deleted, only extended by new
// ones. The audit fields are the single exception, rewritten by the audit
// worker when it re-validates the registry against the loaded vocabulary.
type Registration struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Domain          grammar.Domain      `json:"domain,omitempty"`
	Prefix          grammar.Prefix      `json:"prefix"`
	Subject         grammar.Subject     `json:"subject"`
	Params          []grammar.Param     `json:"params,omitempty"`
	Signature       string              `json:"signature"`
	Selector        string              `json:"selector"`
	Source          Source              `json:"source"`
	Description     *string             `json:"description,omitempty"`
	Conformant      bool                `json:"conformant"`
	AuditViolations []grammar.Violation `json:"audit_violations,omitempty"`
	AuditedAt       *time.Time          `json:"audited_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// Declaration rebuilds the grammar declaration the registration was made
// from.
func (r *Registration) Declaration() grammar.Declaration {
	return grammar.Declaration{
		Domain:  r.Domain,
		Prefix:  r.Prefix,
		Subject: r.Subject,
		Params:  r.Params,
	}
}

// RegisterRequest is the inbound payload for a single registration. A
// declaration arrives either as a signature string or decomposed into the
// structured fields, never both.
type RegisterRequest struct {
	Signature   string          `json:"signature,omitempty"`
	Domain      grammar.Domain  `json:"domain,omitempty"`
	Prefix      grammar.Prefix  `json:"prefix,omitempty"`
	Subject     grammar.Subject `json:"subject,omitempty"`
	Params      []grammar.Param `json:"params,omitempty"`
	Description string          `json:"description,omitempty"`
}

func (r *RegisterRequest) Validate() error {
	structured := r.Domain != "" || r.Prefix != "" || r.Subject != "" || len(r.Params) > 0
	if r.Signature == "" && !structured {
		return ErrEmptyDeclaration
	}
	if r.Signature != "" && structured {
		return ErrAmbiguousDeclaration
	}
	if r.Signature == "" && r.Subject == "" {
		return ErrMissingSubject
	}
	if len(r.Description) > 1024 {
		return ErrDescriptionTooLong
	}
	return nil
}

// RegisterBatchRequest wraps multiple registrations applied in a single
// transaction.
type RegisterBatchRequest struct {
	Declarations []RegisterRequest `json:"declarations"`
}

// CheckRequest is the inbound payload for a synchronous lint.
type CheckRequest struct {
	Signatures []string `json:"signatures"`
}

func (r *CheckRequest) Validate() error {
	if len(r.Signatures) == 0 {
		return ErrEmptyCheck
	}
	return nil
}

// LintResult is the per-input outcome of a lint, shared by the synchronous
// check endpoint, stored job findings and the CLI.
type LintResult struct {
	Input      string              `json:"input"`
	Name       string              `json:"name,omitempty"`
	Signature  string              `json:"signature,omitempty"`
	Selector   string              `json:"selector,omitempty"`
	OK         bool                `json:"ok"`
	Violations []grammar.Violation `json:"violations,omitempty"`
}

// CatalogEntry is one standard-catalog declaration as served by the catalog
// endpoint and the CLI.
type CatalogEntry struct {
	Name      string          `json:"name"`
	Signature string          `json:"signature"`
	Selector  string          `json:"selector"`
	Params    []grammar.Param `json:"params,omitempty"`
}

// ListFilter holds query parameters for paginated registration listing.
type ListFilter struct {
	Domain  *grammar.Domain
	Prefix  *grammar.Prefix
	Subject *grammar.Subject
	Page    int
	Limit   int
}

// Stats is the operational snapshot served by the stats endpoint.
type Stats struct {
	Registrations         int64            `json:"registrations"`
	RegistrationsByDomain map[string]int64 `json:"registrations_by_domain"`
	Nonconformant         int64            `json:"nonconformant_registrations"`
	JobsByStatus          map[string]int64 `json:"jobs_by_status"`
	QueueDepths           map[string]int   `json:"queue_depths"`
}
