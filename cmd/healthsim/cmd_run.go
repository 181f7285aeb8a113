package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/venkat299/healthsim/internal/config"
	"github.com/venkat299/healthsim/internal/engine"
	"github.com/venkat299/healthsim/internal/llm"
	"github.com/venkat299/healthsim/internal/logging"
	"github.com/venkat299/healthsim/internal/store"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation to its configured horizon",
		Long: `Run executes the full simulation and writes the event log and chat
transcript. Without an LLM provider configured, the run executes in pure
discrete-event mode: all deterministic processes run but no conversational
messages are generated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if level, _ := cmd.Flags().GetString("log-level"); level != "" {
				cfg.Logging.Level = level
			}
			if seed, _ := cmd.Flags().GetInt64("seed"); seed != 0 {
				cfg.Simulation.Seed = seed
			}
			if days, _ := cmd.Flags().GetFloat64("days"); days > 0 {
				cfg.Simulation.DurationDays = days
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)

			// Provider selection is fatal before the scheduler starts.
			var client llm.Client
			if cfg.LLM.Enabled {
				client, err = llm.NewClient(cfg.LLM, cfg.Team.Specialists())
				if err != nil {
					return err
				}
			} else {
				logger.Info("collaborator calls disabled, running in discrete-event mode")
			}

			eng := engine.New(cfg, client, logger)
			state := eng.Run(cmd.Context())

			stamp := time.Now().Format("20060102_150405")
			logPath, _ := cmd.Flags().GetString("out")
			if logPath == "" {
				logPath = fmt.Sprintf("simulation_log_%s.json", stamp)
			}
			chatPath, _ := cmd.Flags().GetString("chat")
			if chatPath == "" {
				chatPath = fmt.Sprintf("chat_%s.txt", stamp)
			}

			if err := store.WriteEventLog(logPath, state.EventLog); err != nil {
				return err
			}
			if err := store.WriteTranscript(chatPath, state.EventLog); err != nil {
				return err
			}
			fmt.Printf("Event log written to %s\n", logPath)
			fmt.Printf("Chat transcript written to %s\n", chatPath)

			archivePath, _ := cmd.Flags().GetString("archive")
			if archivePath != "" {
				archive, err := store.OpenArchive(archivePath)
				if err != nil {
					return err
				}
				defer archive.Close()

				id, err := archive.SaveRun(cmd.Context(), store.RunMeta{
					StartDate:  cfg.Simulation.StartDate,
					Horizon:    cfg.Simulation.DurationDays,
					Seed:       cfg.Simulation.Seed,
					MemberName: cfg.Member.Name,
				}, state.EventLog)
				if err != nil {
					return err
				}
				fmt.Printf("Run archived as %s\n", id)
			}
			return nil
		},
	}

	cmd.Flags().Int64("seed", 0, "RNG seed (0 derives one from the clock)")
	cmd.Flags().Float64("days", 0, "Override the simulated-day horizon")
	cmd.Flags().String("out", "", "Event log output path")
	cmd.Flags().String("chat", "", "Chat transcript output path")
	cmd.Flags().String("archive", "", "Archive the run into this SQLite database")
	return cmd
}
