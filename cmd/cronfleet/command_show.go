package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tastythames/cronfleet/internal/render"
)

var showUser string

var showCmd = &cobra.Command{
	Use:   "show <env>",
	Short: "Print the crontab that would be deployed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showCrontab(args[0])
	},
}

func registerShowCommand(root *cobra.Command) {
	root.AddCommand(showCmd)

	showCmd.Flags().StringVarP(&showUser, "user", "u", "", "Only emit jobs for this user")
}

func showCrontab(envName string) error {
	env, err := loadEnv(envName)
	if err != nil {
		return err
	}

	out := render.Crontab(env, render.Options{User: showUser, Now: time.Now()})
	fmt.Print(string(out))
	return nil
}
