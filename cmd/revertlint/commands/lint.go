package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tokenstd/revert-registry/internal/domain"
	"github.com/tokenstd/revert-registry/internal/grammar"
)

// inputLine is one declaration together with where it came from, so text
// output can carry file:line prefixes.
type inputLine struct {
	File string
	Line int
	Text string
}

func LintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [file...]",
		Short: "Check declarations for convention violations",
		Long: `Check error declarations read from the given files, or from stdin when no
file is given. Each line is one declaration in signature or Solidity
interface form; blank lines and # comments are skipped. The whole input is
checked as one set, so two declarations whose names collide across files are
reported even though each is well formed on its own.

The exit status is 1 when any violation is found.`,
		Run: lintCmd,
	}
	addLintCmdFlags(cmd)
	return cmd
}

func addLintCmdFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", formatText, "output format (text|json)")
	cmd.Flags().Bool("allow-bare", false, "downgrade missing-domain findings to notes")
}

func lintCmd(cmd *cobra.Command, args []string) {
	format, _ := cmd.Flags().GetString("format")
	if format != formatText && format != formatJSON {
		fatal(fmt.Errorf("unknown format %q", format))
	}
	allowBare, _ := cmd.Flags().GetBool("allow-bare")

	vocab, err := loadVocabulary(cmd)
	if err != nil {
		fatal(err)
	}
	lines, err := readInputs(args)
	if err != nil {
		fatal(err)
	}

	results, notes := lintLines(vocab, lines, allowBare)

	if format == formatJSON {
		out, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			fatal(err)
		}
		fmt.Println(string(out))
	} else {
		printFindings(os.Stdout, lines, results, notes)
	}

	for _, r := range results {
		if !r.OK {
			os.Exit(1)
		}
	}
}

// readInputs collects declaration lines from the named files, or from stdin
// when none are given. "-" names stdin explicitly.
func readInputs(args []string) ([]inputLine, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}
	var lines []inputLine
	for _, name := range args {
		collected, err := readFile(name)
		if err != nil {
			return nil, err
		}
		lines = append(lines, collected...)
	}
	return lines, nil
}

func readFile(name string) ([]inputLine, error) {
	if name == "-" {
		return scanLines("stdin", os.Stdin)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return scanLines(name, f)
}

// scanLines splits r into declaration lines. Everything from the first '#'
// on a line is a comment; '#' cannot occur inside a declaration, so no
// quoting rules are needed.
func scanLines(name string, r io.Reader) ([]inputLine, error) {
	var lines []inputLine
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		lines = append(lines, inputLine{File: name, Line: n, Text: text})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return lines, nil
}

// lintLines parses and validates all lines as one set, so collisions between
// declarations in the input are caught. With allowBare, missing-domain
// violations are moved out of the results into notes, aligned by index, and
// no longer fail the input.
func lintLines(vocab *grammar.Vocabulary, lines []inputLine, allowBare bool) ([]domain.LintResult, [][]grammar.Violation) {
	results := make([]domain.LintResult, len(lines))
	notes := make([][]grammar.Violation, len(lines))

	decls := make([]grammar.Declaration, 0, len(lines))
	at := make([]int, 0, len(lines)) // result index of each parsed declaration

	for i, ln := range lines {
		results[i].Input = ln.Text
		d, err := vocab.ParseSignature(ln.Text)
		if err != nil {
			results[i].Violations = []grammar.Violation{{Rule: grammar.RuleSyntax, Message: err.Error()}}
			continue
		}
		results[i].Name = d.Name()
		results[i].Signature = d.Signature()
		results[i].Selector = d.Selector()
		decls = append(decls, d)
		at = append(at, i)
	}

	for j, vd := range vocab.CheckSet(decls) {
		i := at[j]
		for _, v := range vd.Violations {
			if allowBare && v.Rule == grammar.RuleMissingDomain {
				notes[i] = append(notes[i], v)
				continue
			}
			results[i].Violations = append(results[i].Violations, v)
		}
	}

	for i := range results {
		results[i].OK = len(results[i].Violations) == 0
	}
	return results, notes
}

// printFindings renders violations in file:line form, one per line, followed
// by a summary. Conforming declarations print nothing.
func printFindings(w io.Writer, lines []inputLine, results []domain.LintResult, notes [][]grammar.Violation) {
	failed := 0
	for i, res := range results {
		subject := res.Name
		if subject == "" {
			subject = res.Input
		}
		for _, v := range res.Violations {
			fmt.Fprintf(w, "%s:%d: %s: %s (%s)\n", lines[i].File, lines[i].Line, subject, v.Message, v.Rule)
		}
		for _, v := range notes[i] {
			fmt.Fprintf(w, "%s:%d: %s: note: %s (%s)\n", lines[i].File, lines[i].Line, subject, v.Message, v.Rule)
		}
		if !res.OK {
			failed++
		}
	}
	fmt.Fprintf(w, "%d declarations checked, %d nonconformant\n", len(results), failed)
}
