package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tokenstd/revert-registry/internal/grammar"
)

func VocabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Print the effective vocabulary",
		Long: `Print the domain, prefix and subject axes plus the per-domain rename table
that lint and selector run against, after applying any --vocab extension.`,
		Run: vocabCmd,
	}
	addVocabCmdFlags(cmd)
	return cmd
}

func addVocabCmdFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", formatText, "output format (text|json)")
}

// definitionView flattens a Definition for JSON output, with the same field
// spelling the TOML extension files use.
type definitionView struct {
	Domains  []grammar.Domain `json:"domains"`
	Prefixes []prefixView     `json:"prefixes"`
	Subjects []subjectView    `json:"subjects"`
	Renames  []renameView     `json:"renames,omitempty"`
}

type prefixView struct {
	Name  grammar.Prefix `json:"name"`
	Kinds []grammar.Kind `json:"kinds,omitempty"`
}

type subjectView struct {
	Name grammar.Subject `json:"name"`
	Kind grammar.Kind    `json:"kind"`
}

type renameView struct {
	Domain grammar.Domain  `json:"domain"`
	From   grammar.Subject `json:"from"`
	To     grammar.Subject `json:"to"`
	Kind   grammar.Kind    `json:"kind,omitempty"`
}

func vocabCmd(cmd *cobra.Command, args []string) {
	format, _ := cmd.Flags().GetString("format")
	vocab, err := loadVocabulary(cmd)
	if err != nil {
		fatal(err)
	}
	def := vocab.Definition()

	switch format {
	case formatJSON:
		out, err := json.MarshalIndent(viewOf(def), "", "  ")
		if err != nil {
			fatal(err)
		}
		fmt.Println(string(out))
	case formatText:
		fmt.Print(renderDefinition(def))
	default:
		fatal(fmt.Errorf("unknown format %q", format))
	}
}

func viewOf(def grammar.Definition) definitionView {
	view := definitionView{Domains: def.Domains}
	for _, p := range def.Prefixes {
		view.Prefixes = append(view.Prefixes, prefixView{Name: p.Name, Kinds: p.Kinds})
	}
	for _, s := range def.Subjects {
		view.Subjects = append(view.Subjects, subjectView{Name: s.Name, Kind: s.Kind})
	}
	for _, r := range def.Renames {
		view.Renames = append(view.Renames, renameView{Domain: r.Domain, From: r.From, To: r.To, Kind: r.Kind})
	}
	return view
}

func renderDefinition(def grammar.Definition) string {
	var b strings.Builder

	doms := make([]string, len(def.Domains))
	for i, d := range def.Domains {
		doms[i] = string(d)
	}
	fmt.Fprintf(&b, "domains:  %s\n", strings.Join(doms, ", "))

	b.WriteString("prefixes:\n")
	for _, p := range def.Prefixes {
		if len(p.Kinds) == 0 {
			fmt.Fprintf(&b, "  %-14s any kind\n", p.Name)
			continue
		}
		kinds := make([]string, len(p.Kinds))
		for i, k := range p.Kinds {
			kinds[i] = string(k)
		}
		fmt.Fprintf(&b, "  %-14s %s\n", p.Name, strings.Join(kinds, ", "))
	}

	b.WriteString("subjects:\n")
	for _, s := range def.Subjects {
		fmt.Fprintf(&b, "  %-14s %s\n", s.Name, s.Kind)
	}

	if len(def.Renames) > 0 {
		b.WriteString("renames:\n")
		for _, r := range def.Renames {
			fmt.Fprintf(&b, "  %-8s %s -> %s", r.Domain, r.From, r.To)
			if r.Kind != "" {
				fmt.Fprintf(&b, " (%s)", r.Kind)
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}
