package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kingrea/tidewatch/internal/logstore"
	"github.com/kingrea/tidewatch/internal/scenario"
	"github.com/kingrea/tidewatch/internal/sim"
	"github.com/kingrea/tidewatch/internal/tui"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	valueStyle  = lipgloss.NewStyle().Bold(true)
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tidewatch",
		Short:         "Agent-based simulation of operations gated by forecast windows",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newRunsCmd(), newReplayCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		dbPath string
		until  float64
		quiet  bool
	)
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario and store its log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scn, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			result, err := scn.Run(until)
			if err != nil {
				return err
			}
			runID := ""
			if dbPath != "" {
				store, err := logstore.Open(dbPath)
				if err != nil {
					return err
				}
				defer store.Close()
				runID, err = store.SaveRun(result.Scenario, result.Elapsed, result.Entries)
				if err != nil {
					return err
				}
			}
			printSummary(cmd, result, runID, quiet)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "tidewatch.db", "database for stored runs (empty to skip persistence)")
	cmd.Flags().Float64Var(&until, "until", 0, "stop the simulation at this instant (0 runs to completion)")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "suppress the per-entry listing")
	return cmd
}

func printSummary(cmd *cobra.Command, result scenario.Result, runID string, quiet bool) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render(result.Scenario))
	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("elapsed:"), valueStyle.Render(fmt.Sprintf("%.1f", result.Elapsed)))
	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("actions:"), valueStyle.Render(fmt.Sprintf("%d", len(result.Actions))))
	if runID != "" {
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("run id: "), valueStyle.Render(runID))
	}
	if quiet {
		return
	}
	fmt.Fprintln(out)
	for _, entry := range result.Actions {
		fmt.Fprintln(out, formatAction(entry))
	}
}

func formatAction(entry sim.Entry) string {
	return fmt.Sprintf("%8.1f  %-16s %-14s %6.1f", entry.Time, entry.Agent, entry.Action, entry.Duration)
}

func newRunsCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := logstore.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			runs, err := store.ListRuns()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "no stored runs")
				return nil
			}
			for _, run := range runs {
				fmt.Fprintf(out, "%s  %-20s %5d entries  %8.1f units  %s\n",
					run.ID[:8], run.Scenario, run.Entries, run.Elapsed,
					run.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "tidewatch.db", "database for stored runs")
	return cmd
}

func newReplayCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "replay [run-id]",
		Short: "Step through a stored run in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := logstore.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			app, err := tui.NewApp(store, runID)
			if err != nil {
				return err
			}
			program := tea.NewProgram(app, tea.WithAltScreen())
			_, err = program.Run()
			return err
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "tidewatch.db", "database for stored runs")
	return cmd
}
