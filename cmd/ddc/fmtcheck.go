package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// fmtCheckCmd re-parses each file and prints one ok/FAIL line per file on
// stdout; the diagnostic text itself still goes to stderr through
// parseFile — meant for a CI gate rather than interactive use.
var fmtCheckCmd = &cobra.Command{
	Use:   "fmt-check [files...]",
	Short: "Report whether files parse without error, one line per file.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		anyFailed := false

		for _, path := range args {
			_, hadErrors, err := parseFile(path)
			if err != nil {
				return err
			}

			status := "ok"
			if hadErrors {
				status = "FAIL"
				anyFailed = true
			}

			fmt.Printf("%s\t%s\n", status, path)
		}

		if anyFailed {
			os.Exit(1)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(fmtCheckCmd)
}
