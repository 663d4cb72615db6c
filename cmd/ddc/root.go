package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// log is the process-level structured logger shared by every subcommand.
// Parser-internal diagnostics never go through it — they go through
// internal/diag exclusively; this is for "watching 12 files",
// "parsed 340 modules in 1.2s" operational output.
var log = logrus.New()

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ddc",
	Short: "A recursive-descent parser for a D-like systems language.",
	Long:  "ddc parses D-like source into an AST, reporting syntax diagnostics.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			log.SetLevel(logrus.DebugLevel)
		}
	},
}

// Execute adds all child commands to the root command and runs it. Called
// once by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
}
