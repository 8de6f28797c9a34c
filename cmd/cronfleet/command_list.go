package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <env>",
	Short: "List all jobs of an environment, including disabled ones",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listJobs(args[0])
	},
}

func registerListCommand(root *cobra.Command) {
	root.AddCommand(listCmd)
}

func listJobs(envName string) error {
	env, err := loadEnv(envName)
	if err != nil {
		return err
	}

	fmt.Printf("Environment: %s (%s)\n\n", envName, env.Source)

	if len(env.Jobs) == 0 {
		color.Yellow("no jobs configured")
		return nil
	}

	fmt.Printf("%-20s %-15s %-10s %-8s %s\n", "NAME", "SCHEDULE", "USER", "STATUS", "COMMAND")
	for _, j := range env.Jobs {
		status := color.GreenString("enabled")
		if !j.IsEnabled() {
			status = color.RedString("disabled")
		}
		fmt.Printf("%-20s %-15s %-10s %-17s %s\n",
			truncate(j.Name, 20), j.Schedule, truncate(j.User, 10), status, truncate(j.Command, 60))
	}

	fmt.Printf("\nTotal: %d jobs\n", len(env.Jobs))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
