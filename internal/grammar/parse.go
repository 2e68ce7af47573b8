package grammar

import (
	"fmt"
	"strings"
)

// ParseSignature parses one error declaration written in signature form,
//
//	ERC20InsufficientBalance(address sender, uint256 balance, uint256 needed)
//
// into a Declaration. The Solidity interface spelling is also accepted: a
// leading "error" keyword and a trailing semicolon are stripped. Parameter
// names are optional; roles are left empty for Validate to infer. Parse
// errors cover malformed input only, conformance problems are Validate's
// job.
func (v *Vocabulary) ParseSignature(input string) (Declaration, error) {
	s := strings.TrimSpace(input)
	s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	if rest, ok := strings.CutPrefix(s, "error"); ok && rest != "" && isSpace(rest[0]) {
		s = strings.TrimSpace(rest)
	}

	open := strings.IndexByte(s, '(')
	if open < 0 {
		return Declaration{}, fmt.Errorf("missing parameter list in %q", input)
	}
	if !strings.HasSuffix(s, ")") {
		return Declaration{}, fmt.Errorf("unterminated parameter list in %q", input)
	}
	name := strings.TrimSpace(s[:open])
	if !isIdent(name) {
		return Declaration{}, fmt.Errorf("invalid error name %q", name)
	}

	params, err := parseParams(s[open+1 : len(s)-1])
	if err != nil {
		return Declaration{}, fmt.Errorf("in %q: %w", input, err)
	}

	dom, prefix, subject := v.SplitName(name)
	return Declaration{Domain: dom, Prefix: prefix, Subject: subject, Params: params}, nil
}

func parseParams(list string) ([]Param, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, nil
	}
	var params []Param
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty parameter at position %d", len(params)+1)
		}
		fields := strings.Fields(part)
		switch len(fields) {
		case 1:
			params = append(params, Param{Type: fields[0]})
		case 2:
			if !isIdent(fields[1]) {
				return nil, fmt.Errorf("invalid parameter name %q", fields[1])
			}
			params = append(params, Param{Type: fields[0], Name: fields[1]})
		default:
			return nil, fmt.Errorf("cannot parse parameter %q", part)
		}
	}
	return params, nil
}

// SplitName decomposes a composed error name along the vocabulary axes using
// longest-first matching, so ERC1155 wins over any shorter overlapping
// domain. An unrecognized segment before a known prefix is still treated as
// the domain: ERC777InvalidSender splits as ERC777 + Invalid + Sender so the
// unknown domain is reported as such rather than as an unparseable name. A
// name with no recognized prefix yields an empty Prefix with the remainder in
// Subject; Validate turns all of these into the corresponding violations.
func (v *Vocabulary) SplitName(name string) (Domain, Prefix, Subject) {
	rest := name
	var dom Domain
	for _, d := range v.splitDomains {
		if r, ok := strings.CutPrefix(rest, string(d)); ok {
			dom = d
			rest = r
			break
		}
	}
	if dom == "" {
		if at := v.firstPrefixAt(rest); at > 0 {
			dom = Domain(rest[:at])
			rest = rest[at:]
		}
	}
	for _, p := range v.splitPrefixes {
		if r, ok := strings.CutPrefix(rest, string(p)); ok {
			return dom, p, Subject(r)
		}
	}
	return dom, "", Subject(rest)
}

// firstPrefixAt returns the byte offset of the leftmost prefix occurrence in
// s, or -1 if no prefix occurs.
func (v *Vocabulary) firstPrefixAt(s string) int {
	best := -1
	for _, p := range v.splitPrefixes {
		if i := strings.Index(s, string(p)); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	return best
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
