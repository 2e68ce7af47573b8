package grammar

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// vocabularyFile mirrors the TOML layout of a vocabulary extension:
//
//	[[domain]]
//	name = "ERC4626"
//
//	[[subject]]
//	name = "Deposit"
//	kind = "quantity"
//
//	[[rename]]
//	domain = "ERC4626"
//	from   = "Balance"
//	to     = "Assets"
type vocabularyFile struct {
	Domains  []vocabDomain  `toml:"domain"`
	Prefixes []vocabPrefix  `toml:"prefix"`
	Subjects []vocabSubject `toml:"subject"`
	Renames  []vocabRename  `toml:"rename"`
}

type vocabDomain struct {
	Name string `toml:"name"`
}

type vocabPrefix struct {
	Name  string   `toml:"name"`
	Kinds []string `toml:"kinds"`
}

type vocabSubject struct {
	Name string `toml:"name"`
	Kind string `toml:"kind"`
}

type vocabRename struct {
	Domain string `toml:"domain"`
	From   string `toml:"from"`
	To     string `toml:"to"`
	Kind   string `toml:"kind"`
}

// LoadVocabularyFile reads a TOML vocabulary extension and applies it on top
// of the default vocabulary. Extensions only add entries; the built-in axes
// and rename table stay binding.
func LoadVocabularyFile(path string) (*Vocabulary, error) {
	var f vocabularyFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("decode vocabulary file %s: %w", path, err)
	}
	def, err := f.definition()
	if err != nil {
		return nil, fmt.Errorf("vocabulary file %s: %w", path, err)
	}
	v, err := DefaultVocabulary().Extend(def)
	if err != nil {
		return nil, fmt.Errorf("vocabulary file %s: %w", path, err)
	}
	return v, nil
}

func (f vocabularyFile) definition() (Definition, error) {
	var def Definition
	for _, d := range f.Domains {
		def.Domains = append(def.Domains, Domain(d.Name))
	}
	for _, p := range f.Prefixes {
		pd := PrefixDef{Name: Prefix(p.Name)}
		for _, k := range p.Kinds {
			kind := Kind(k)
			if !kind.IsValid() {
				return Definition{}, fmt.Errorf("prefix %q: unknown kind %q", p.Name, k)
			}
			pd.Kinds = append(pd.Kinds, kind)
		}
		def.Prefixes = append(def.Prefixes, pd)
	}
	for _, s := range f.Subjects {
		kind := Kind(s.Kind)
		if !kind.IsValid() {
			return Definition{}, fmt.Errorf("subject %q: unknown kind %q", s.Name, s.Kind)
		}
		def.Subjects = append(def.Subjects, SubjectDef{Name: Subject(s.Name), Kind: kind})
	}
	for _, r := range f.Renames {
		rd := RenameDef{
			Domain: Domain(r.Domain),
			From:   Subject(r.From),
			To:     Subject(r.To),
		}
		if r.Kind != "" {
			kind := Kind(r.Kind)
			if !kind.IsValid() {
				return Definition{}, fmt.Errorf("rename %q->%q: unknown kind %q", r.From, r.To, r.Kind)
			}
			rd.Kind = kind
		}
		def.Renames = append(def.Renames, rd)
	}
	return def, nil
}
