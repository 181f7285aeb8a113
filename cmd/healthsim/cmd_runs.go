package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/venkat299/healthsim/internal/store"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List runs in a SQLite archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			archivePath, _ := cmd.Flags().GetString("archive")
			archive, err := store.OpenArchive(archivePath)
			if err != nil {
				return err
			}
			defer archive.Close()

			runs, err := archive.ListRuns(cmd.Context())
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(runs)
			}
			if len(runs) == 0 {
				fmt.Println("No archived runs.")
				return nil
			}
			for _, r := range runs {
				fmt.Printf("%s  %s  member=%s  horizon=%.0fd  seed=%d  events=%d\n",
					r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.MemberName, r.Horizon, r.Seed, r.EventCount)
			}
			return nil
		},
	}

	cmd.Flags().String("archive", "healthsim.db", "Path to the SQLite archive")
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}
