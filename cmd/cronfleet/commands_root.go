package main

import (
	"github.com/spf13/cobra"

	"github.com/tastythames/cronfleet/internal/config"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:          "cronfleet",
	Short:        "Centralized crontab management for a fleet of hosts",
	Long:         "cronfleet validates scheduled-job definitions, renders them into crontab files, and pushes them to many hosts over SSH with backup-before-overwrite.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config-dir", "c", "config", "Directory holding <env>.yaml files")

	registerListCommand(rootCmd)
	registerValidateCommand(rootCmd)
	registerShowCommand(rootCmd)
	registerDiffCommand(rootCmd)
	registerDeployCommand(rootCmd)
	registerReportCommand(rootCmd)
}

func loadEnv(name string) (*config.Environment, error) {
	return config.LoadEnv(configDir, name)
}
