package grammar

import "testing"

func TestParseSignature(t *testing.T) {
	v := DefaultVocabulary()

	t.Run("plain signature", func(t *testing.T) {
		d, err := v.ParseSignature("ERC20InsufficientBalance(address sender, uint256 balance, uint256 needed)")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.Domain != DomainERC20 || d.Prefix != PrefixInsufficient || d.Subject != SubjectBalance {
			t.Errorf("bad decomposition: %+v", d)
		}
		if len(d.Params) != 3 {
			t.Fatalf("expected 3 params, got %d", len(d.Params))
		}
		if d.Params[0].Name != "sender" || d.Params[0].Type != "address" {
			t.Errorf("bad first param: %+v", d.Params[0])
		}
		if d.Params[0].Role != "" {
			t.Errorf("parser must leave roles to inference, got %q", d.Params[0].Role)
		}
	})

	t.Run("solidity interface spelling", func(t *testing.T) {
		d, err := v.ParseSignature("  error ERC721InvalidOwner(address owner); ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := d.Name(); got != "ERC721InvalidOwner" {
			t.Errorf("expected ERC721InvalidOwner, got %s", got)
		}
	})

	t.Run("unnamed parameters", func(t *testing.T) {
		d, err := v.ParseSignature("ERC20InvalidSender(address)")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.Params[0].Name != "" || d.Params[0].Type != "address" {
			t.Errorf("bad param: %+v", d.Params[0])
		}
	})

	t.Run("no parameters", func(t *testing.T) {
		d, err := v.ParseSignature("ERC20InvalidSender()")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(d.Params) != 0 {
			t.Errorf("expected no params, got %+v", d.Params)
		}
	})

	t.Run("name starting with the error keyword", func(t *testing.T) {
		// "error" is only stripped as a standalone keyword.
		d, err := v.ParseSignature("errorish(address a)")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.Subject != "errorish" {
			t.Errorf("expected the full name kept, got %+v", d)
		}
	})

	t.Run("malformed inputs", func(t *testing.T) {
		for _, in := range []string{
			"",
			"ERC20InvalidSender",
			"ERC20InvalidSender(address sender",
			"ERC20InvalidSender address sender)",
			"(address sender)",
			"ERC20 InvalidSender(address sender)",
			"ERC20InvalidSender(address indexed sender)",
			"ERC20InvalidSender(,)",
		} {
			if _, err := v.ParseSignature(in); err == nil {
				t.Errorf("expected parse error for %q", in)
			}
		}
	})
}

func TestSplitName(t *testing.T) {
	v := DefaultVocabulary()

	cases := []struct {
		name    string
		domain  Domain
		prefix  Prefix
		subject Subject
	}{
		{"ERC20InsufficientBalance", DomainERC20, PrefixInsufficient, SubjectBalance},
		{"ERC1155InvalidOperator", DomainERC1155, PrefixInvalid, SubjectOperator},
		{"ERC721InsufficientApproval", DomainERC721, PrefixInsufficient, SubjectApproval},
		{"InsufficientBalance", "", PrefixInsufficient, SubjectBalance},
		{"ERC777InvalidSender", "ERC777", PrefixInvalid, SubjectSender},
		{"ERC20FrozenAccount", DomainERC20, "", "FrozenAccount"},
		{"ERC20Invalid", DomainERC20, PrefixInvalid, ""},
		{"FrozenAccount", "", "", "FrozenAccount"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dom, prefix, subject := v.SplitName(tc.name)
			if dom != tc.domain || prefix != tc.prefix || subject != tc.subject {
				t.Errorf("got (%q, %q, %q), want (%q, %q, %q)",
					dom, prefix, subject, tc.domain, tc.prefix, tc.subject)
			}
		})
	}
}
