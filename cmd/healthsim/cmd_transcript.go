package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/venkat299/healthsim/internal/store"
)

func newTranscriptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcript [event-log.json]",
		Short: "Derive a chat transcript from a saved event log or archived run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, _ := cmd.Flags().GetString("run")

			switch {
			case len(args) == 1:
				events, err := store.ReadEventLog(args[0])
				if err != nil {
					return err
				}
				fmt.Print(store.Transcript(events))
				return nil

			case runID != "":
				archivePath, _ := cmd.Flags().GetString("archive")
				archive, err := store.OpenArchive(archivePath)
				if err != nil {
					return err
				}
				defer archive.Close()

				events, err := archive.Events(cmd.Context(), runID)
				if err != nil {
					return err
				}
				fmt.Print(store.Transcript(events))
				return nil

			default:
				return fmt.Errorf("provide an event-log file or --run")
			}
		},
	}

	cmd.Flags().String("run", "", "Archived run ID to read instead of a file")
	cmd.Flags().String("archive", "healthsim.db", "Path to the SQLite archive")
	return cmd
}
