package grammar

import "strings"

// Role tags the position a parameter plays in the argument convention.
type Role string

const (
	// RoleWho is the address whose involvement caused the failure. Always
	// the first parameter.
	RoleWho Role = "who"
	// RoleWhat is the value directly involved in the failure, such as the
	// current balance or allowance.
	RoleWhat Role = "what"
	// RoleWhy carries the reason the value was rejected, such as the amount
	// that would have been needed.
	RoleWhy Role = "why"
	// RoleItem identifies the token within a collection. Always last when
	// present.
	RoleItem Role = "item"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleWho, RoleWhat, RoleWhy, RoleItem:
		return true
	}
	return false
}

// Param is a single declared error parameter. Role may be left empty, in
// which case it is inferred from position, name and type during validation.
type Param struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type"`
	Role Role   `json:"role,omitempty"`
}

// Declaration is one custom error declaration decomposed along the grammar
// axes. Domain may be empty for a domainless declaration; Validate flags the
// missing domain but still checks the rest.
type Declaration struct {
	Domain  Domain  `json:"domain,omitempty"`
	Prefix  Prefix  `json:"prefix"`
	Subject Subject `json:"subject"`
	Params  []Param `json:"params,omitempty"`
}

// Name returns the composed error name <Domain><Prefix><Subject>.
func (d Declaration) Name() string {
	return string(d.Domain) + string(d.Prefix) + string(d.Subject)
}

// Signature renders the canonical ABI signature, Name(type1,type2,...), with
// parameter types canonicalized (uint becomes uint256 and so on). A type that
// is not a recognized elementary type is rendered as written so that every
// declaration has a printable signature; Validate reports such types
// separately.
func (d Declaration) Signature() string {
	var b strings.Builder
	b.WriteString(d.Name())
	b.WriteByte('(')
	for i, p := range d.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		ct, ok := CanonicalType(p.Type)
		if !ok {
			ct = strings.TrimSpace(p.Type)
		}
		b.WriteString(ct)
	}
	b.WriteByte(')')
	return b.String()
}

// Selector returns the 4-byte ABI selector of the canonical signature,
// 0x-prefixed.
func (d Declaration) Selector() string {
	return Selector(d.Signature())
}

// WithInferredRoles returns a copy of the declaration with empty parameter
// roles filled in by the same inference Validate applies.
func (d Declaration) WithInferredRoles() Declaration {
	d.Params = inferRoles(d.Params)
	return d
}

// inferRoles returns a copy of params with empty roles filled in:
//
//   - the first parameter, when it is an address, is who
//   - a uint-typed parameter named tokenId, id or itemId is the item
//   - parameters named needed, required or expected are why
//   - the first remaining parameter is what, any after it are why
//
// Explicitly tagged roles are kept as given.
func inferRoles(params []Param) []Param {
	out := append([]Param(nil), params...)
	seenWhat := false
	for i := range out {
		if out[i].Role != "" {
			if out[i].Role == RoleWhat {
				seenWhat = true
			}
			continue
		}
		ct, _ := CanonicalType(out[i].Type)
		switch {
		case i == 0 && ct == "address":
			out[i].Role = RoleWho
		case isItemName(out[i].Name) && isUintType(ct):
			out[i].Role = RoleItem
		case isWhyName(out[i].Name):
			out[i].Role = RoleWhy
		case !seenWhat:
			out[i].Role = RoleWhat
			seenWhat = true
		default:
			out[i].Role = RoleWhy
		}
	}
	return out
}

func isItemName(name string) bool {
	switch strings.ToLower(name) {
	case "tokenid", "id", "itemid":
		return true
	}
	return false
}

func isWhyName(name string) bool {
	switch strings.ToLower(name) {
	case "needed", "required", "expected":
		return true
	}
	return false
}
