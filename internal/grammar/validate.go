package grammar

import "fmt"

// Rule identifies a conformance rule a declaration can violate. Rule ids are
// stable and appear verbatim in lint findings and API responses.
type Rule string

const (
	RuleSyntax         Rule = "syntax"
	RuleMissingDomain  Rule = "missing-domain"
	RuleUnknownDomain  Rule = "unknown-domain"
	RuleUnknownPrefix  Rule = "unknown-prefix"
	RulePrefixMismatch Rule = "prefix-subject-mismatch"
	RuleUnknownSubject Rule = "unknown-subject"
	RuleRenamedSubject Rule = "renamed-subject"
	RuleBadParamType   Rule = "bad-param-type"
	RuleMissingWho     Rule = "missing-who"
	RuleParamOrder     Rule = "param-order"
	RuleItemNotLast    Rule = "item-not-last"
	RuleCollision      Rule = "collision"
)

// Violation is one broken rule. Param is the 1-based position of the
// offending parameter, or 0 when the violation concerns the name or the
// declaration as a whole.
type Violation struct {
	Rule    Rule   `json:"rule"`
	Param   int    `json:"param,omitempty"`
	Message string `json:"message"`
}

// Verdict is the result of validating one declaration.
type Verdict struct {
	Violations []Violation `json:"violations,omitempty"`
}

// OK reports whether the declaration conforms.
func (vd Verdict) OK() bool { return len(vd.Violations) == 0 }

func (vd *Verdict) add(rule Rule, param int, format string, args ...any) {
	vd.Violations = append(vd.Violations, Violation{
		Rule:    rule,
		Param:   param,
		Message: fmt.Sprintf(format, args...),
	})
}

// Validate checks a single declaration against the vocabulary: the name must
// decompose into known domain, prefix and subject with the domain's renames
// respected, the prefix must apply to the subject's kind, and the parameters
// must follow the (who [, what [, why...]] [, itemId]) convention. All
// violations are collected rather than stopping at the first.
func (v *Vocabulary) Validate(d Declaration) Verdict {
	var vd Verdict
	v.checkName(d, &vd)
	v.checkParams(d.Params, &vd)
	return vd
}

func (v *Vocabulary) checkName(d Declaration, vd *Verdict) {
	domainKnown := false
	switch {
	case d.Domain == "":
		vd.add(RuleMissingDomain, 0,
			"name %s carries no domain; identical names in other standards would collide", d.Name())
	case !v.HasDomain(d.Domain):
		vd.add(RuleUnknownDomain, 0, "unknown domain %q", d.Domain)
	default:
		domainKnown = true
	}

	if d.Prefix == "" {
		vd.add(RuleUnknownPrefix, 0,
			"name %s contains no recognized error prefix", d.Name())
		return
	}
	pdef, prefixKnown := v.prefixSet[d.Prefix]
	if !prefixKnown {
		vd.add(RuleUnknownPrefix, 0, "unknown prefix %q", d.Prefix)
	}

	if d.Subject == "" {
		vd.add(RuleUnknownSubject, 0, "name %s ends at the prefix; a subject is required", d.Name())
		return
	}

	kind, kindKnown := v.resolveSubject(d, domainKnown, vd)
	if prefixKnown && kindKnown && !pdef.appliesTo(kind) {
		vd.add(RulePrefixMismatch, 0,
			"prefix %s does not apply to %s subject %s", d.Prefix, kind, d.Subject)
	}
}

// resolveSubject maps the spelling used in the declaration to a subject kind.
// Under a known domain the domain's renames are binding: a renamed base
// spelling is flagged and a spelling another domain owns is unknown here.
// Without a usable domain any base subject or rename spelling is accepted.
func (v *Vocabulary) resolveSubject(d Declaration, domainKnown bool, vd *Verdict) (Kind, bool) {
	if domainKnown {
		if r, ok := v.renameSpelledAs(d.Domain, d.Subject); ok {
			base := v.subjectSet[r.From]
			return r.kindOr(base.Kind), true
		}
		if def, ok := v.subjectSet[d.Subject]; ok {
			if r, renamed := v.renameUsing(d.Domain, d.Subject); renamed {
				vd.add(RuleRenamedSubject, 0,
					"domain %s spells subject %s as %s", d.Domain, r.From, r.To)
				return r.kindOr(def.Kind), true
			}
			return def.Kind, true
		}
		if owners := v.domainsSpelling(d.Subject); len(owners) > 0 {
			vd.add(RuleUnknownSubject, 0,
				"subject %s is the %s spelling and is not recognized under %s",
				d.Subject, owners[0], d.Domain)
			return "", false
		}
		vd.add(RuleUnknownSubject, 0, "unknown subject %q", d.Subject)
		return "", false
	}

	if def, ok := v.subjectSet[d.Subject]; ok {
		return def.Kind, true
	}
	if owners := v.domainsSpelling(d.Subject); len(owners) > 0 {
		r := v.renameTo[owners[0]][d.Subject]
		base := v.subjectSet[r.From]
		return r.kindOr(base.Kind), true
	}
	vd.add(RuleUnknownSubject, 0, "unknown subject %q", d.Subject)
	return "", false
}

func (v *Vocabulary) checkParams(params []Param, vd *Verdict) {
	ps := inferRoles(params)

	if len(ps) == 0 {
		vd.add(RuleMissingWho, 0, "a leading address parameter identifying who is required")
		return
	}

	canonical := make([]string, len(ps))
	for i, p := range ps {
		ct, ok := CanonicalType(p.Type)
		if !ok {
			vd.add(RuleBadParamType, i+1, "type %q is not an ABI elementary type", p.Type)
		}
		canonical[i] = ct
	}

	first := ps[0]
	switch {
	case first.Role != RoleWho:
		vd.add(RuleMissingWho, 1,
			"first parameter must be the who address, got %s %s", first.Role, first.Type)
	case canonical[0] != "" && !isAddressType(canonical[0]):
		vd.add(RuleMissingWho, 1, "who parameter must be an address, got %s", first.Type)
	}

	seenWhat := ps[0].Role == RoleWhat
	seenWhy := ps[0].Role == RoleWhy
	seenItem := ps[0].Role == RoleItem
	for i := 1; i < len(ps); i++ {
		p := ps[i]
		if !p.Role.IsValid() {
			vd.add(RuleParamOrder, i+1, "unknown parameter role %q", p.Role)
			continue
		}
		switch p.Role {
		case RoleWho:
			vd.add(RuleParamOrder, i+1, "duplicate who parameter")
		case RoleWhat:
			if seenWhat {
				vd.add(RuleParamOrder, i+1, "at most one what parameter is allowed")
			}
			if seenWhy {
				vd.add(RuleParamOrder, i+1, "what parameter must precede the why parameters")
			}
			seenWhat = true
		case RoleWhy:
			seenWhy = true
		case RoleItem:
			if seenItem {
				vd.add(RuleParamOrder, i+1, "duplicate item identifier")
			}
			seenItem = true
		}
	}
	for i, p := range ps {
		if p.Role != RoleItem {
			continue
		}
		if i != len(ps)-1 {
			vd.add(RuleItemNotLast, i+1, "item identifier must be the last parameter")
		}
		if canonical[i] != "" && !isUintType(canonical[i]) {
			vd.add(RuleBadParamType, i+1,
				"item identifier must be an unsigned integer, got %s", p.Type)
		}
	}
}

// CheckSet validates every declaration and additionally detects collisions
// within the set: two declarations composing the same error name with
// different canonical parameter lists. Re-declaring an identical signature is
// a harmless duplicate, not a collision. The verdict at index i belongs to
// decls[i]; a collision is reported on the later declaration.
func (v *Vocabulary) CheckSet(decls []Declaration) []Verdict {
	verdicts := make([]Verdict, len(decls))
	for i, d := range decls {
		verdicts[i] = v.Validate(d)
	}

	firstByName := make(map[string]int, len(decls))
	for i, d := range decls {
		name := d.Name()
		first, seen := firstByName[name]
		if !seen {
			firstByName[name] = i
			continue
		}
		if sig := decls[first].Signature(); sig != d.Signature() {
			verdicts[i].add(RuleCollision, 0,
				"name %s is already declared as %s", name, sig)
		}
	}
	return verdicts
}
