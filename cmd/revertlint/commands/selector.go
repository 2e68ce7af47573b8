package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func SelectorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "selector <signature>...",
		Short: "Print the canonical signature and selector of declarations",
		Long: `Canonicalize each declaration (parameter names dropped, aliased types such
as uint widened to uint256) and print its 4-byte selector. The declaration
does not have to conform to the naming convention; any parseable error
signature has a selector.`,
		Args: cobra.MinimumNArgs(1),
		Run:  selectorCmd,
	}
	return cmd
}

func selectorCmd(cmd *cobra.Command, args []string) {
	vocab, err := loadVocabulary(cmd)
	if err != nil {
		fatal(err)
	}
	for _, arg := range args {
		d, err := vocab.ParseSignature(arg)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("%s  %s\n", d.Selector(), d.Signature())
	}
}
