package grammar

import "testing"

func TestCanonicalType(t *testing.T) {
	valid := []struct {
		in   string
		want string
	}{
		{"address", "address"},
		{"bool", "bool"},
		{"string", "string"},
		{"bytes", "bytes"},
		{"uint", "uint256"},
		{"int", "int256"},
		{"byte", "bytes1"},
		{"uint8", "uint8"},
		{"uint256", "uint256"},
		{"int128", "int128"},
		{"bytes1", "bytes1"},
		{"bytes32", "bytes32"},
		{"uint256[]", "uint256[]"},
		{"uint[]", "uint256[]"},
		{"address[4]", "address[4]"},
		{"bytes32[2][]", "bytes32[2][]"},
		{" uint256 ", "uint256"},
	}
	for _, tc := range valid {
		got, ok := CanonicalType(tc.in)
		if !ok {
			t.Errorf("CanonicalType(%q): unexpectedly invalid", tc.in)
			continue
		}
		if got != tc.want {
			t.Errorf("CanonicalType(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	invalid := []string{
		"", "uint7", "uint264", "uint0", "int12", "bytes0", "bytes33",
		"uint08", "addres", "Address", "uint256[0]", "uint256[", "uint256[2",
		"uint256[-1]", "mapping", "struct Foo",
	}
	for _, in := range invalid {
		if got, ok := CanonicalType(in); ok {
			t.Errorf("CanonicalType(%q) = %q, expected invalid", in, got)
		}
	}
}

func TestIsUintType(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"uint256", true},
		{"uint8", true},
		{"int256", false},
		{"address", false},
		{"uint256[]", false},
	}
	for _, tc := range cases {
		if got := isUintType(tc.in); got != tc.want {
			t.Errorf("isUintType(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
