package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tastythames/cronfleet/internal/history"
)

var (
	reportLogFile string
	reportHours   int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize job executions from the execution log",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport()
	},
}

func registerReportCommand(root *cobra.Command) {
	root.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportLogFile, "log", "/var/log/cron-jobs/execution.log", "Execution log path")
	reportCmd.Flags().IntVar(&reportHours, "hours", 24, "Look-back window in hours")
}

func runReport() error {
	window := time.Duration(reportHours) * time.Hour
	execs, err := history.ParseLogFile(reportLogFile, window, time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("Executions in the last %dh: %d\n\n", reportHours, len(execs))
	if len(execs) == 0 {
		return nil
	}

	fmt.Printf("%-25s %6s %8s %9s %10s\n", "JOB", "RUNS", "FAILED", "SUCCESS", "AVG TIME")
	for _, s := range history.Aggregate(execs) {
		rate := fmt.Sprintf("%.0f%%", s.SuccessRate()*100)
		fmt.Printf("%-25s %6d %8d %9s %10s\n", s.Job, s.Runs, s.Failures, rate, s.AvgDuration)
	}

	failed := history.Failures(execs)
	if len(failed) == 0 {
		fmt.Println()
		color.Green("✓ no failures in window")
		return nil
	}

	fmt.Println()
	color.Red("recent failures:")
	for _, e := range failed {
		fmt.Printf("  %s  %s (exit %d)\n", e.Time.Format("2006-01-02 15:04:05"), e.Job, e.ExitCode)
	}
	return nil
}
