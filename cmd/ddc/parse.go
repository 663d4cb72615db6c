package main

import (
	"fmt"
	"os"

	"github.com/jacob-carlborg/ddc/internal/diag"
	"github.com/jacob-carlborg/ddc/internal/lexer"
	"github.com/jacob-carlborg/ddc/internal/parser"
	"github.com/jacob-carlborg/ddc/internal/token"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [files...]",
	Short: "Parse one or more source files and report diagnostics.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hadErrors := false

		for _, path := range args {
			n, errs, err := parseFile(path)
			if err != nil {
				return err
			}

			log.WithFields(logrusFields(path, n)).Info("parsed module")

			if errs {
				hadErrors = true
			}
		}

		if hadErrors {
			os.Exit(1)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

// parseFile parses one file, printing its diagnostics to stderr, and
// returns the number of top-level declarations and whether any error-level
// diagnostic was reported.
func parseFile(path string) (declCount int, hadErrors bool, err error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return 0, false, fmt.Errorf("ddc: read %s: %w", path, err)
	}

	set := &diag.Set{}
	handler := &diag.Collect{Set: set}

	interner := token.NewInterner()
	lex := lexer.New(path, src, 0, interner, handler)
	p := parser.New(lex, handler)

	module := p.ParseModule()

	reporter := diag.NewReporter(diag.TerminalSink(os.Stderr))
	reporter.Drain(set)

	mod := p.Arena().Decl(module)

	return len(mod.Inner), set.HasErrors(), nil
}

func logrusFields(path string, declCount int) map[string]any {
	return map[string]any{"file": path, "declarations": declCount}
}
