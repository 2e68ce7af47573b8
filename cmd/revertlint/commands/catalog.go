package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tokenstd/revert-registry/internal/domain"
	"github.com/tokenstd/revert-registry/internal/grammar"
)

func CatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the built-in declaration catalog",
		Run:   catalogCmd,
	}
	addCatalogCmdFlags(cmd)
	return cmd
}

func addCatalogCmdFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("domain", "d", "", "only declarations of this domain")
	cmd.Flags().StringP("format", "f", formatText, "output format (text|json)")
}

func catalogCmd(cmd *cobra.Command, args []string) {
	dom, _ := cmd.Flags().GetString("domain")
	format, _ := cmd.Flags().GetString("format")

	entries := catalogEntries(grammar.Domain(dom))
	switch format {
	case formatJSON:
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			fatal(err)
		}
		fmt.Println(string(out))
	case formatText:
		for _, e := range entries {
			fmt.Printf("%s  %s\n", e.Selector, e.Signature)
		}
	default:
		fatal(fmt.Errorf("unknown format %q", format))
	}
}

// catalogEntries renders the standard catalog, optionally narrowed to one
// domain.
func catalogEntries(dom grammar.Domain) []domain.CatalogEntry {
	var entries []domain.CatalogEntry
	for _, d := range grammar.StandardCatalog() {
		if dom != "" && d.Domain != dom {
			continue
		}
		entries = append(entries, domain.CatalogEntry{
			Name:      d.Name(),
			Signature: d.Signature(),
			Selector:  d.Selector(),
			Params:    d.Params,
		})
	}
	return entries
}
