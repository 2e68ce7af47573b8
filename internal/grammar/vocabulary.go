// Package grammar implements the naming and argument convention for custom
// errors raised by token contracts. Every conforming error name is composed as
//
//	<Domain><ErrorPrefix><Subject>(<Arguments>)
//
// with arguments ordered (who [, what [, why...]] [, itemId]). The package is
// pure: validation is a function of a declaration and a vocabulary, with no
// side effects.
package grammar

import (
	"fmt"
	"sort"
)

// Domain is the token-standard namespace that disambiguates otherwise
// identical error names across standards.
type Domain string

const (
	DomainERC20   Domain = "ERC20"
	DomainERC721  Domain = "ERC721"
	DomainERC1155 Domain = "ERC1155"
)

// Prefix qualifies the nature of the failure.
type Prefix string

const (
	// PrefixInvalid marks general invalidity of the subject.
	PrefixInvalid Prefix = "Invalid"
	// PrefixInsufficient marks an amount that does not cover what was needed.
	PrefixInsufficient Prefix = "Insufficient"
)

// Subject names what aspect of a transfer or approval failed. The base
// vocabulary uses the spellings below; individual domains may rename a
// subject (Balance becomes Owner under ERC721, Approval becomes Allowance
// and Operator becomes Spender under ERC20).
type Subject string

const (
	SubjectSender   Subject = "Sender"
	SubjectReceiver Subject = "Receiver"
	SubjectBalance  Subject = "Balance"
	SubjectApprover Subject = "Approver"
	SubjectOperator Subject = "Operator"
	SubjectApproval Subject = "Approval"

	// Renamed spellings mandated by specific domains.
	SubjectOwner     Subject = "Owner"
	SubjectAllowance Subject = "Allowance"
	SubjectSpender   Subject = "Spender"
)

// Kind classifies a subject as an acting account or a quantity. Prefix
// applicability is expressed in kinds: Insufficient only qualifies
// quantities, Invalid qualifies anything.
type Kind string

const (
	KindActor    Kind = "actor"
	KindQuantity Kind = "quantity"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindActor, KindQuantity:
		return true
	}
	return false
}

// PrefixDef declares a prefix and the subject kinds it may qualify.
// An empty Kinds list means the prefix applies to every kind.
type PrefixDef struct {
	Name  Prefix
	Kinds []Kind
}

func (p PrefixDef) appliesTo(k Kind) bool {
	if len(p.Kinds) == 0 {
		return true
	}
	for _, pk := range p.Kinds {
		if pk == k {
			return true
		}
	}
	return false
}

// SubjectDef declares a base subject and its kind.
type SubjectDef struct {
	Name Subject
	Kind Kind
}

// RenameDef declares that a domain spells a base subject differently.
// Kind optionally overrides the base subject's kind under the rename
// (Balance becomes the actor-like Owner under ERC721).
type RenameDef struct {
	Domain Domain
	From   Subject
	To     Subject
	Kind   Kind
}

// Definition is the raw material a Vocabulary is built from: the three axes
// plus the rename table. This is the entire configuration surface of the
// convention.
type Definition struct {
	Domains  []Domain
	Prefixes []PrefixDef
	Subjects []SubjectDef
	Renames  []RenameDef
}

// Vocabulary is an immutable, resolved set of recognized domains, prefixes,
// subjects and per-domain renames. Safe for concurrent use.
type Vocabulary struct {
	def Definition

	domainSet  map[Domain]struct{}
	prefixSet  map[Prefix]PrefixDef
	subjectSet map[Subject]SubjectDef
	renameFrom map[Domain]map[Subject]RenameDef // domain -> base subject -> rename
	renameTo   map[Domain]map[Subject]RenameDef // domain -> local spelling -> rename

	// Longest-first orderings used when splitting composed names.
	splitDomains  []Domain
	splitPrefixes []Prefix
}

// NewVocabulary builds a Vocabulary from a Definition, rejecting duplicate or
// internally inconsistent entries.
func NewVocabulary(def Definition) (*Vocabulary, error) {
	v := &Vocabulary{
		domainSet:  make(map[Domain]struct{}, len(def.Domains)),
		prefixSet:  make(map[Prefix]PrefixDef, len(def.Prefixes)),
		subjectSet: make(map[Subject]SubjectDef, len(def.Subjects)),
		renameFrom: make(map[Domain]map[Subject]RenameDef),
		renameTo:   make(map[Domain]map[Subject]RenameDef),
	}

	for _, d := range def.Domains {
		if !isIdent(string(d)) {
			return nil, fmt.Errorf("invalid domain name %q", d)
		}
		if _, dup := v.domainSet[d]; dup {
			return nil, fmt.Errorf("duplicate domain %q", d)
		}
		v.domainSet[d] = struct{}{}
	}

	for _, p := range def.Prefixes {
		if !isIdent(string(p.Name)) {
			return nil, fmt.Errorf("invalid prefix name %q", p.Name)
		}
		if _, dup := v.prefixSet[p.Name]; dup {
			return nil, fmt.Errorf("duplicate prefix %q", p.Name)
		}
		for _, k := range p.Kinds {
			if !k.IsValid() {
				return nil, fmt.Errorf("prefix %q: unknown subject kind %q", p.Name, k)
			}
		}
		v.prefixSet[p.Name] = p
	}

	for _, s := range def.Subjects {
		if !isIdent(string(s.Name)) {
			return nil, fmt.Errorf("invalid subject name %q", s.Name)
		}
		if !s.Kind.IsValid() {
			return nil, fmt.Errorf("subject %q: unknown kind %q", s.Name, s.Kind)
		}
		if _, dup := v.subjectSet[s.Name]; dup {
			return nil, fmt.Errorf("duplicate subject %q", s.Name)
		}
		v.subjectSet[s.Name] = s
	}

	for _, r := range def.Renames {
		if _, ok := v.domainSet[r.Domain]; !ok {
			return nil, fmt.Errorf("rename %q->%q: unknown domain %q", r.From, r.To, r.Domain)
		}
		if _, ok := v.subjectSet[r.From]; !ok {
			return nil, fmt.Errorf("rename under %s: unknown base subject %q", r.Domain, r.From)
		}
		if !isIdent(string(r.To)) {
			return nil, fmt.Errorf("rename under %s: invalid spelling %q", r.Domain, r.To)
		}
		if r.To == r.From {
			return nil, fmt.Errorf("rename under %s: %q renames to itself", r.Domain, r.From)
		}
		if _, clash := v.subjectSet[r.To]; clash {
			return nil, fmt.Errorf("rename under %s: %q collides with a base subject", r.Domain, r.To)
		}
		if r.Kind != "" && !r.Kind.IsValid() {
			return nil, fmt.Errorf("rename under %s: unknown kind %q", r.Domain, r.Kind)
		}
		from := v.renameFrom[r.Domain]
		if from == nil {
			from = make(map[Subject]RenameDef)
			v.renameFrom[r.Domain] = from
		}
		if _, dup := from[r.From]; dup {
			return nil, fmt.Errorf("domain %s renames %q twice", r.Domain, r.From)
		}
		to := v.renameTo[r.Domain]
		if to == nil {
			to = make(map[Subject]RenameDef)
			v.renameTo[r.Domain] = to
		}
		if _, dup := to[r.To]; dup {
			return nil, fmt.Errorf("domain %s reuses spelling %q for two subjects", r.Domain, r.To)
		}
		from[r.From] = r
		to[r.To] = r
	}

	v.def = cloneDefinition(def)

	v.splitDomains = append([]Domain(nil), def.Domains...)
	sort.Slice(v.splitDomains, func(i, j int) bool {
		a, b := v.splitDomains[i], v.splitDomains[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
	for _, p := range def.Prefixes {
		v.splitPrefixes = append(v.splitPrefixes, p.Name)
	}
	sort.Slice(v.splitPrefixes, func(i, j int) bool {
		a, b := v.splitPrefixes[i], v.splitPrefixes[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})

	return v, nil
}

// DefaultVocabulary returns the built-in convention: the three token-standard
// domains, the Invalid and Insufficient prefixes, the six base subjects, and
// the rename table (ERC721 Balance->Owner, ERC20 Approval->Allowance and
// Operator->Spender).
func DefaultVocabulary() *Vocabulary {
	v, err := NewVocabulary(Definition{
		Domains: []Domain{DomainERC20, DomainERC721, DomainERC1155},
		Prefixes: []PrefixDef{
			{Name: PrefixInvalid},
			{Name: PrefixInsufficient, Kinds: []Kind{KindQuantity}},
		},
		Subjects: []SubjectDef{
			{Name: SubjectSender, Kind: KindActor},
			{Name: SubjectReceiver, Kind: KindActor},
			{Name: SubjectBalance, Kind: KindQuantity},
			{Name: SubjectApprover, Kind: KindActor},
			{Name: SubjectOperator, Kind: KindActor},
			{Name: SubjectApproval, Kind: KindQuantity},
		},
		Renames: []RenameDef{
			{Domain: DomainERC721, From: SubjectBalance, To: SubjectOwner, Kind: KindActor},
			{Domain: DomainERC20, From: SubjectApproval, To: SubjectAllowance},
			{Domain: DomainERC20, From: SubjectOperator, To: SubjectSpender},
		},
	})
	if err != nil {
		panic(err) // built-in definition is internally consistent
	}
	return v
}

// Extend returns a new Vocabulary with the definition's entries added on top
// of v. Extensions only add: redefining an existing domain, prefix, subject
// or rename is an error.
func (v *Vocabulary) Extend(def Definition) (*Vocabulary, error) {
	merged := cloneDefinition(v.def)
	merged.Domains = append(merged.Domains, def.Domains...)
	merged.Prefixes = append(merged.Prefixes, def.Prefixes...)
	merged.Subjects = append(merged.Subjects, def.Subjects...)
	merged.Renames = append(merged.Renames, def.Renames...)
	return NewVocabulary(merged)
}

// Definition returns a copy of the definition the vocabulary was built from.
func (v *Vocabulary) Definition() Definition {
	return cloneDefinition(v.def)
}

// HasDomain reports whether d is a recognized domain.
func (v *Vocabulary) HasDomain(d Domain) bool {
	_, ok := v.domainSet[d]
	return ok
}

// renameUsing returns the rename a domain defines for a base subject.
func (v *Vocabulary) renameUsing(d Domain, base Subject) (RenameDef, bool) {
	r, ok := v.renameFrom[d][base]
	return r, ok
}

// renameSpelledAs returns the rename behind a domain-local spelling.
func (v *Vocabulary) renameSpelledAs(d Domain, local Subject) (RenameDef, bool) {
	r, ok := v.renameTo[d][local]
	return r, ok
}

// domainsSpelling returns every domain whose rename table produces the given
// spelling. Used to explain why a spelling is rejected elsewhere.
func (v *Vocabulary) domainsSpelling(local Subject) []Domain {
	var out []Domain
	for _, d := range v.splitDomains {
		if _, ok := v.renameTo[d][local]; ok {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r RenameDef) kindOr(base Kind) Kind {
	if r.Kind != "" {
		return r.Kind
	}
	return base
}

func cloneDefinition(def Definition) Definition {
	out := Definition{
		Domains:  append([]Domain(nil), def.Domains...),
		Subjects: append([]SubjectDef(nil), def.Subjects...),
		Renames:  append([]RenameDef(nil), def.Renames...),
	}
	for _, p := range def.Prefixes {
		p.Kinds = append([]Kind(nil), p.Kinds...)
		out.Prefixes = append(out.Prefixes, p)
	}
	return out
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
