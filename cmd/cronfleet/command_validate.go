package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <env>",
	Short: "Validate an environment's jobs and host groups",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateEnv(args[0])
	},
}

func registerValidateCommand(root *cobra.Command) {
	root.AddCommand(validateCmd)
}

func validateEnv(envName string) error {
	env, err := loadEnv(envName)
	if err != nil {
		return err
	}

	if errs := env.Validate(); len(errs) > 0 {
		color.Red("✗ validation failed:")
		for _, e := range errs {
			fmt.Printf("  • %v\n", e)
		}
		return fmt.Errorf("%d validation error(s)", len(errs))
	}

	color.Green("✓ configuration is valid")

	enabled := len(env.EnabledJobs())
	fmt.Printf("\n  jobs:     %d\n", len(env.Jobs))
	fmt.Printf("  enabled:  %d\n", enabled)
	fmt.Printf("  disabled: %d\n", len(env.Jobs)-enabled)
	fmt.Printf("  hosts:    %d\n", len(env.Hosts("")))
	return nil
}
