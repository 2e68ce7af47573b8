// Package commands implements the revertlint subcommands. Every command
// works offline: the vocabulary is built from the built-in axes plus an
// optional TOML extension, and declarations are evaluated locally without a
// registry server.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tokenstd/revert-registry/internal/grammar"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// loadVocabulary resolves the effective vocabulary from the persistent
// --vocab flag: the built-in vocabulary when the flag is empty, otherwise
// the built-in one extended by the named TOML file.
func loadVocabulary(cmd *cobra.Command) (*grammar.Vocabulary, error) {
	path, _ := cmd.Flags().GetString("vocab")
	if path == "" {
		return grammar.DefaultVocabulary(), nil
	}
	return grammar.LoadVocabularyFile(path)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
