package grammar

import "testing"

func TestNewVocabularyRejectsInconsistentDefinitions(t *testing.T) {
	base := DefaultVocabulary().Definition()

	cases := []struct {
		name string
		def  Definition
	}{
		{"duplicate domain", Definition{Domains: []Domain{"ERC20", "ERC20"}}},
		{"empty domain", Definition{Domains: []Domain{""}}},
		{"domain with punctuation", Definition{Domains: []Domain{"ERC-20"}}},
		{"duplicate prefix", Definition{Prefixes: []PrefixDef{{Name: "Invalid"}, {Name: "Invalid"}}}},
		{"prefix with bad kind", Definition{Prefixes: []PrefixDef{{Name: "Exceeded", Kinds: []Kind{"amounts"}}}}},
		{"subject without kind", Definition{Subjects: []SubjectDef{{Name: "Deposit"}}}},
		{"rename to a base subject", Definition{
			Domains:  []Domain{"ERC20"},
			Subjects: []SubjectDef{{Name: "Balance", Kind: KindQuantity}, {Name: "Sender", Kind: KindActor}},
			Renames:  []RenameDef{{Domain: "ERC20", From: "Balance", To: "Sender"}},
		}},
		{"rename of unknown subject", Definition{
			Domains: []Domain{"ERC20"},
			Renames: []RenameDef{{Domain: "ERC20", From: "Holdings", To: "Assets"}},
		}},
		{"rename under unknown domain", Definition{
			Subjects: []SubjectDef{{Name: "Balance", Kind: KindQuantity}},
			Renames:  []RenameDef{{Domain: "ERC4626", From: "Balance", To: "Assets"}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewVocabulary(tc.def); err == nil {
				t.Error("expected construction to fail")
			}
		})
	}

	t.Run("default definition round-trips", func(t *testing.T) {
		if _, err := NewVocabulary(base); err != nil {
			t.Errorf("default definition must rebuild: %v", err)
		}
	})
}

func TestExtendOnlyAdds(t *testing.T) {
	v := DefaultVocabulary()

	t.Run("new axis entries become usable", func(t *testing.T) {
		ext, err := v.Extend(Definition{
			Domains:  []Domain{"ERC4626"},
			Subjects: []SubjectDef{{Name: "Shares", Kind: KindQuantity}},
			Renames:  []RenameDef{{Domain: "ERC4626", From: "Balance", To: "Assets"}},
		})
		if err != nil {
			t.Fatalf("Extend: %v", err)
		}

		vd := ext.Validate(mustParse(t, ext, "ERC4626InsufficientShares(address owner, uint256 shares, uint256 needed)"))
		if !vd.OK() {
			t.Errorf("extended subject should conform: %+v", vd.Violations)
		}
		vd = ext.Validate(mustParse(t, ext, "ERC4626InsufficientAssets(address owner, uint256 assets, uint256 needed)"))
		if !vd.OK() {
			t.Errorf("extended rename should conform: %+v", vd.Violations)
		}
		vd = ext.Validate(mustParse(t, ext, "ERC4626InsufficientBalance(address owner, uint256 assets, uint256 needed)"))
		if !hasViolation(vd, RuleRenamedSubject) {
			t.Errorf("extended rename must bind: %+v", vd.Violations)
		}

		// The base vocabulary is untouched.
		if v.HasDomain("ERC4626") {
			t.Error("Extend must not mutate the receiver")
		}
	})

	t.Run("redefinition is rejected", func(t *testing.T) {
		if _, err := v.Extend(Definition{Domains: []Domain{"ERC20"}}); err == nil {
			t.Error("expected duplicate domain to fail")
		}
		if _, err := v.Extend(Definition{Subjects: []SubjectDef{{Name: "Balance", Kind: KindActor}}}); err == nil {
			t.Error("expected duplicate subject to fail")
		}
		if _, err := v.Extend(Definition{
			Renames: []RenameDef{{Domain: "ERC721", From: "Balance", To: "Holdings"}},
		}); err == nil {
			t.Error("expected second rename of the same subject to fail")
		}
	})
}

func TestLoadVocabularyFile(t *testing.T) {
	t.Run("valid extension", func(t *testing.T) {
		v, err := LoadVocabularyFile("testdata/vault_vocab.toml")
		if err != nil {
			t.Fatalf("LoadVocabularyFile: %v", err)
		}
		if !v.HasDomain("ERC4626") {
			t.Fatal("extension domain missing")
		}
		vd := v.Validate(mustParse(t, v, "ERC4626ExceededDeposit(address receiver, uint256 assets, uint256 max)"))
		if !vd.OK() {
			t.Errorf("expected conforming, got %+v", vd.Violations)
		}
		// The added prefix is quantity-only, like Insufficient.
		vd = v.Validate(mustParse(t, v, "ERC4626ExceededSender(address sender)"))
		if !hasViolation(vd, RulePrefixMismatch) {
			t.Errorf("expected %s, got %+v", RulePrefixMismatch, vd.Violations)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadVocabularyFile("testdata/nope.toml"); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("conflicting extension", func(t *testing.T) {
		if _, err := LoadVocabularyFile("testdata/conflict_vocab.toml"); err == nil {
			t.Error("expected redefinition of a built-in domain to fail")
		}
	})
}
