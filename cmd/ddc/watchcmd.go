package main

import (
	"time"

	"github.com/jacob-carlborg/ddc/internal/watch"
	"github.com/spf13/cobra"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Watch directories and re-parse changed files on every edit.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := watch.New(log, watchDebounce, args...)
		if err != nil {
			return err
		}
		defer w.Close()

		log.WithField("paths", args).Info("watching")

		for ev := range w.Events() {
			wl := log.WithField("file", ev.Path)

			_, hadErrors, err := parseFile(ev.Path)
			if err != nil {
				wl.WithError(err).Warn("parse failed")
				continue
			}

			if hadErrors {
				wl.Warn("parsed with errors")
			} else {
				wl.Info("parsed clean")
			}
		}

		return nil
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 200*time.Millisecond, "quiet period before a changed file is re-parsed")
	rootCmd.AddCommand(watchCmd)
}
