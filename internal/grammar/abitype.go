package grammar

import (
	"strconv"
	"strings"
)

// CanonicalType validates an ABI elementary type and returns its canonical
// spelling: the aliases uint, int and byte canonicalize to uint256, int256
// and bytes1, sized integer and bytes types are checked against the ABI
// ranges, and array suffixes are carried through unchanged. The second return
// is false for anything that is not an elementary type.
func CanonicalType(t string) (string, bool) {
	t = strings.TrimSpace(t)
	base, suffix := t, ""
	if i := strings.IndexByte(t, '['); i >= 0 {
		base, suffix = t[:i], t[i:]
		if !validArraySuffix(suffix) {
			return "", false
		}
	}

	switch base {
	case "address", "bool", "string", "bytes":
		return base + suffix, true
	case "uint":
		return "uint256" + suffix, true
	case "int":
		return "int256" + suffix, true
	case "byte":
		return "bytes1" + suffix, true
	}

	if n, ok := strings.CutPrefix(base, "uint"); ok {
		if validBits(n) {
			return base + suffix, true
		}
		return "", false
	}
	if n, ok := strings.CutPrefix(base, "int"); ok {
		if validBits(n) {
			return base + suffix, true
		}
		return "", false
	}
	if n, ok := strings.CutPrefix(base, "bytes"); ok {
		if validByteWidth(n) {
			return base + suffix, true
		}
		return "", false
	}
	return "", false
}

// isUintType reports whether a canonical type is a scalar unsigned integer.
// The item identifier must be one.
func isUintType(canonical string) bool {
	if !strings.HasPrefix(canonical, "uint") {
		return false
	}
	return !strings.ContainsRune(canonical, '[')
}

// isAddressType reports whether a canonical type is the scalar address type.
func isAddressType(canonical string) bool {
	return canonical == "address"
}

func validBits(s string) bool {
	n, ok := decimal(s)
	return ok && n >= 8 && n <= 256 && n%8 == 0
}

func validByteWidth(s string) bool {
	n, ok := decimal(s)
	return ok && n >= 1 && n <= 32
}

// validArraySuffix accepts one or more [ ] or [N] groups with N a positive
// decimal without leading zeros.
func validArraySuffix(s string) bool {
	for len(s) > 0 {
		if s[0] != '[' {
			return false
		}
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return false
		}
		if inner := s[1:end]; inner != "" {
			n, ok := decimal(inner)
			if !ok || n == 0 {
				return false
			}
		}
		s = s[end+1:]
	}
	return true
}

func decimal(s string) (int, bool) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
