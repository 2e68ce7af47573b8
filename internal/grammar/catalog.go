package grammar

// StandardCatalog returns the declarations the convention itself prescribes
// for the three token standards, with parameter roles filled in. The slice is
// freshly allocated on every call.
func StandardCatalog() []Declaration {
	who := func(name string) Param { return Param{Name: name, Type: "address", Role: RoleWho} }
	qty := func(name string, role Role) Param { return Param{Name: name, Type: "uint256", Role: role} }

	return []Declaration{
		{Domain: DomainERC20, Prefix: PrefixInsufficient, Subject: SubjectBalance, Params: []Param{
			who("sender"), qty("balance", RoleWhat), qty("needed", RoleWhy),
		}},
		{Domain: DomainERC20, Prefix: PrefixInvalid, Subject: SubjectSender, Params: []Param{who("sender")}},
		{Domain: DomainERC20, Prefix: PrefixInvalid, Subject: SubjectReceiver, Params: []Param{who("receiver")}},
		{Domain: DomainERC20, Prefix: PrefixInsufficient, Subject: SubjectAllowance, Params: []Param{
			who("spender"), qty("allowance", RoleWhat), qty("needed", RoleWhy),
		}},
		{Domain: DomainERC20, Prefix: PrefixInvalid, Subject: SubjectApprover, Params: []Param{who("approver")}},
		{Domain: DomainERC20, Prefix: PrefixInvalid, Subject: SubjectSpender, Params: []Param{who("spender")}},

		{Domain: DomainERC721, Prefix: PrefixInvalid, Subject: SubjectOwner, Params: []Param{who("owner")}},
		{Domain: DomainERC721, Prefix: PrefixInvalid, Subject: SubjectSender, Params: []Param{who("sender")}},
		{Domain: DomainERC721, Prefix: PrefixInvalid, Subject: SubjectReceiver, Params: []Param{who("receiver")}},
		{Domain: DomainERC721, Prefix: PrefixInsufficient, Subject: SubjectApproval, Params: []Param{
			who("operator"), qty("tokenId", RoleItem),
		}},
		{Domain: DomainERC721, Prefix: PrefixInvalid, Subject: SubjectApprover, Params: []Param{who("approver")}},
		{Domain: DomainERC721, Prefix: PrefixInvalid, Subject: SubjectOperator, Params: []Param{who("operator")}},

		{Domain: DomainERC1155, Prefix: PrefixInsufficient, Subject: SubjectBalance, Params: []Param{
			who("sender"), qty("balance", RoleWhat), qty("needed", RoleWhy), qty("tokenId", RoleItem),
		}},
		{Domain: DomainERC1155, Prefix: PrefixInvalid, Subject: SubjectSender, Params: []Param{who("sender")}},
		{Domain: DomainERC1155, Prefix: PrefixInvalid, Subject: SubjectReceiver, Params: []Param{who("receiver")}},
		{Domain: DomainERC1155, Prefix: PrefixInvalid, Subject: SubjectApprover, Params: []Param{who("approver")}},
		{Domain: DomainERC1155, Prefix: PrefixInvalid, Subject: SubjectOperator, Params: []Param{who("operator")}},
	}
}
