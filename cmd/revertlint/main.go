package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tokenstd/revert-registry/cmd/revertlint/commands"
)

var rootCmd = &cobra.Command{
	Use:   "revertlint",
	Short: "Lint token-contract custom error declarations offline",
	Long: `revertlint checks custom error declarations against the
<Domain><ErrorPrefix><Subject>(who, what, why..., itemId) naming convention
without talking to a registry server. Declarations are read from files or
stdin, one per line, in either signature or Solidity interface form:

  ERC20InsufficientBalance(address sender, uint256 balance, uint256 needed)
  error ERC721InvalidOwner(address owner);`,
}

func init() {
	rootCmd.PersistentFlags().String("vocab", "", "TOML vocabulary extension file applied on top of the built-in axes")

	rootCmd.AddCommand(
		commands.LintCmd(),
		commands.SelectorCmd(),
		commands.CatalogCmd(),
		commands.VocabCmd(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
