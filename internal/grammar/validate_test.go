package grammar

import "testing"

func hasViolation(vd Verdict, rule Rule) bool {
	for _, v := range vd.Violations {
		if v.Rule == rule {
			return true
		}
	}
	return false
}

func mustParse(t *testing.T, v *Vocabulary, sig string) Declaration {
	t.Helper()
	d, err := v.ParseSignature(sig)
	if err != nil {
		t.Fatalf("ParseSignature(%q): %v", sig, err)
	}
	return d
}

func TestValidateConformingDeclarations(t *testing.T) {
	v := DefaultVocabulary()

	sigs := []string{
		"ERC20InsufficientBalance(address sender, uint256 balance, uint256 needed)",
		"ERC20InvalidSender(address sender)",
		"ERC20InsufficientAllowance(address spender, uint256 allowance, uint256 needed)",
		"ERC20InvalidSpender(address spender)",
		"ERC721InvalidOwner(address owner)",
		"ERC721InsufficientApproval(address operator, uint256 tokenId)",
		"ERC1155InsufficientBalance(address sender, uint256 balance, uint256 needed, uint256 tokenId)",
		"ERC1155InvalidOperator(address operator)",
		// Unnamed parameters still infer who/what/why by position and type.
		"ERC20InsufficientBalance(address,uint256,uint256)",
		// Multiple why parameters are fine.
		"ERC20InsufficientBalance(address sender, uint256 balance, uint256 needed, uint256 expected)",
	}
	for _, sig := range sigs {
		t.Run(sig, func(t *testing.T) {
			vd := v.Validate(mustParse(t, v, sig))
			if !vd.OK() {
				t.Errorf("expected conforming, got violations %+v", vd.Violations)
			}
		})
	}
}

func TestValidateNameViolations(t *testing.T) {
	v := DefaultVocabulary()

	cases := []struct {
		sig  string
		rule Rule
	}{
		{"InsufficientBalance(address sender, uint256 balance, uint256 needed)", RuleMissingDomain},
		{"ERC777InvalidSender(address sender)", RuleUnknownDomain},
		{"ERC20FrozenAccount(address account)", RuleUnknownPrefix},
		{"ERC20Invalid(address account)", RuleUnknownSubject},
		{"ERC20InvalidHolder(address holder)", RuleUnknownSubject},
		// Insufficient only qualifies quantities.
		{"ERC20InsufficientSender(address sender)", RulePrefixMismatch},
		{"ERC1155InsufficientOperator(address operator)", RulePrefixMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.sig, func(t *testing.T) {
			vd := v.Validate(mustParse(t, v, tc.sig))
			if !hasViolation(vd, tc.rule) {
				t.Errorf("expected %s, got %+v", tc.rule, vd.Violations)
			}
		})
	}
}

func TestValidateRenames(t *testing.T) {
	v := DefaultVocabulary()

	t.Run("base spelling flagged where the domain renames it", func(t *testing.T) {
		for _, sig := range []string{
			"ERC721InvalidBalance(address owner)",
			"ERC20InvalidOperator(address operator)",
			"ERC20InsufficientApproval(address spender, uint256 allowance, uint256 needed)",
		} {
			vd := v.Validate(mustParse(t, v, sig))
			if !hasViolation(vd, RuleRenamedSubject) {
				t.Errorf("%s: expected %s, got %+v", sig, RuleRenamedSubject, vd.Violations)
			}
		}
	})

	t.Run("renamed spelling rejected under other domains", func(t *testing.T) {
		for _, sig := range []string{
			"ERC20InvalidOwner(address owner)",
			"ERC721InsufficientAllowance(address spender, uint256 allowance, uint256 needed)",
			"ERC1155InvalidSpender(address spender)",
		} {
			vd := v.Validate(mustParse(t, v, sig))
			if !hasViolation(vd, RuleUnknownSubject) {
				t.Errorf("%s: expected %s, got %+v", sig, RuleUnknownSubject, vd.Violations)
			}
		}
	})

	t.Run("rename can flip the subject kind", func(t *testing.T) {
		// Balance is a quantity, but the ERC721 spelling Owner is an actor,
		// so Insufficient no longer applies.
		vd := v.Validate(mustParse(t, v, "ERC721InsufficientOwner(address owner)"))
		if !hasViolation(vd, RulePrefixMismatch) {
			t.Errorf("expected %s, got %+v", RulePrefixMismatch, vd.Violations)
		}
		// The renamed base spelling keeps the renamed kind: the declaration
		// is flagged for the spelling, not additionally for the prefix.
		vd = v.Validate(mustParse(t, v, "ERC721InsufficientBalance(address owner)"))
		if !hasViolation(vd, RuleRenamedSubject) {
			t.Errorf("expected %s, got %+v", RuleRenamedSubject, vd.Violations)
		}
		if !hasViolation(vd, RulePrefixMismatch) {
			t.Errorf("expected %s for the actor kind, got %+v", RulePrefixMismatch, vd.Violations)
		}
	})
}

func TestValidateParamViolations(t *testing.T) {
	v := DefaultVocabulary()

	cases := []struct {
		name string
		sig  string
		rule Rule
	}{
		{"no parameters", "ERC20InvalidSender()", RuleMissingWho},
		{"first parameter not an address", "ERC20InsufficientBalance(uint256 balance, uint256 needed)", RuleMissingWho},
		{"item before a why parameter", "ERC1155InsufficientBalance(address sender, uint256 tokenId, uint256 needed)", RuleItemNotLast},
		{"unknown parameter type", "ERC20InvalidSender(addres sender)", RuleBadParamType},
		{"oversized integer width", "ERC20InsufficientBalance(address sender, uint512 balance, uint256 needed)", RuleBadParamType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vd := v.Validate(mustParse(t, v, tc.sig))
			if !hasViolation(vd, tc.rule) {
				t.Errorf("%s: expected %s, got %+v", tc.sig, tc.rule, vd.Violations)
			}
		})
	}

	t.Run("explicit roles override inference", func(t *testing.T) {
		d := Declaration{
			Domain: DomainERC20, Prefix: PrefixInsufficient, Subject: SubjectBalance,
			Params: []Param{
				{Name: "sender", Type: "address", Role: RoleWho},
				{Name: "needed", Type: "uint256", Role: RoleWhat},
				{Name: "balance", Type: "uint256", Role: RoleWhy},
			},
		}
		if vd := v.Validate(d); !vd.OK() {
			t.Errorf("expected conforming, got %+v", vd.Violations)
		}
	})

	t.Run("duplicate who", func(t *testing.T) {
		d := Declaration{
			Domain: DomainERC20, Prefix: PrefixInvalid, Subject: SubjectSender,
			Params: []Param{
				{Name: "sender", Type: "address", Role: RoleWho},
				{Name: "origin", Type: "address", Role: RoleWho},
			},
		}
		vd := v.Validate(d)
		if !hasViolation(vd, RuleParamOrder) {
			t.Errorf("expected %s, got %+v", RuleParamOrder, vd.Violations)
		}
	})

	t.Run("what after why", func(t *testing.T) {
		d := Declaration{
			Domain: DomainERC20, Prefix: PrefixInsufficient, Subject: SubjectBalance,
			Params: []Param{
				{Name: "sender", Type: "address", Role: RoleWho},
				{Name: "needed", Type: "uint256", Role: RoleWhy},
				{Name: "balance", Type: "uint256", Role: RoleWhat},
			},
		}
		vd := v.Validate(d)
		if !hasViolation(vd, RuleParamOrder) {
			t.Errorf("expected %s, got %+v", RuleParamOrder, vd.Violations)
		}
	})

	t.Run("item must be an unsigned integer", func(t *testing.T) {
		d := Declaration{
			Domain: DomainERC721, Prefix: PrefixInsufficient, Subject: SubjectApproval,
			Params: []Param{
				{Name: "operator", Type: "address", Role: RoleWho},
				{Name: "tokenId", Type: "int256", Role: RoleItem},
			},
		}
		vd := v.Validate(d)
		if !hasViolation(vd, RuleBadParamType) {
			t.Errorf("expected %s, got %+v", RuleBadParamType, vd.Violations)
		}
	})

	t.Run("violations accumulate", func(t *testing.T) {
		vd := v.Validate(mustParse(t, v, "ERC777InsufficientSender(uint256 balance)"))
		for _, rule := range []Rule{RuleUnknownDomain, RulePrefixMismatch, RuleMissingWho} {
			if !hasViolation(vd, rule) {
				t.Errorf("expected %s, got %+v", rule, vd.Violations)
			}
		}
	})
}

func TestCheckSetCollisions(t *testing.T) {
	v := DefaultVocabulary()

	t.Run("domainless names collide across standards", func(t *testing.T) {
		decls := []Declaration{
			mustParse(t, v, "InsufficientBalance(address sender, uint256 balance, uint256 needed)"),
			mustParse(t, v, "InsufficientBalance(address sender, uint256 balance, uint256 needed, uint256 tokenId)"),
		}
		verdicts := v.CheckSet(decls)
		if hasViolation(verdicts[0], RuleCollision) {
			t.Errorf("first declaration should not carry the collision: %+v", verdicts[0].Violations)
		}
		if !hasViolation(verdicts[1], RuleCollision) {
			t.Errorf("expected %s on the second declaration, got %+v", RuleCollision, verdicts[1].Violations)
		}
		if !hasViolation(verdicts[0], RuleMissingDomain) || !hasViolation(verdicts[1], RuleMissingDomain) {
			t.Error("both domainless declarations should be flagged for the missing domain")
		}
	})

	t.Run("domains keep the same shapes apart", func(t *testing.T) {
		decls := []Declaration{
			mustParse(t, v, "ERC20InsufficientBalance(address sender, uint256 balance, uint256 needed)"),
			mustParse(t, v, "ERC1155InsufficientBalance(address sender, uint256 balance, uint256 needed, uint256 tokenId)"),
		}
		for i, vd := range v.CheckSet(decls) {
			if !vd.OK() {
				t.Errorf("declaration %d: expected conforming, got %+v", i, vd.Violations)
			}
		}
	})

	t.Run("identical redeclaration is not a collision", func(t *testing.T) {
		d := mustParse(t, v, "ERC20InvalidSender(address sender)")
		same := mustParse(t, v, "ERC20InvalidSender(address account)")
		for i, vd := range v.CheckSet([]Declaration{d, same}) {
			if hasViolation(vd, RuleCollision) {
				t.Errorf("declaration %d: parameter names must not matter: %+v", i, vd.Violations)
			}
		}
	})

	t.Run("alias spellings canonicalize before comparison", func(t *testing.T) {
		decls := []Declaration{
			mustParse(t, v, "ERC20InsufficientBalance(address sender, uint balance, uint needed)"),
			mustParse(t, v, "ERC20InsufficientBalance(address sender, uint256 balance, uint256 needed)"),
		}
		for i, vd := range v.CheckSet(decls) {
			if hasViolation(vd, RuleCollision) {
				t.Errorf("declaration %d: uint and uint256 must canonicalize together: %+v", i, vd.Violations)
			}
		}
	})

	t.Run("differing arity collides", func(t *testing.T) {
		decls := []Declaration{
			mustParse(t, v, "ERC20InvalidSender(address sender)"),
			mustParse(t, v, "ERC20InvalidSender(address sender, uint256 needed)"),
		}
		verdicts := v.CheckSet(decls)
		if !hasViolation(verdicts[1], RuleCollision) {
			t.Errorf("expected %s, got %+v", RuleCollision, verdicts[1].Violations)
		}
	})
}
