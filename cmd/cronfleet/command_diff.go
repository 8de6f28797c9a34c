package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tastythames/cronfleet/internal/render"
)

var diffCmd = &cobra.Command{
	Use:   "diff <env1> <env2>",
	Short: "Compare the rendered crontabs of two environments",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return diffEnvs(args[0], args[1])
	},
}

func registerDiffCommand(root *cobra.Command) {
	root.AddCommand(diffCmd)
}

func diffEnvs(name1, name2 string) error {
	env1, err := loadEnv(name1)
	if err != nil {
		return err
	}
	env2, err := loadEnv(name2)
	if err != nil {
		return err
	}

	// Header held constant on both sides so only real job/env changes
	// show up in the diff.
	opts := render.Options{Now: time.Unix(0, 0).UTC(), Source: "-"}

	dir, err := os.MkdirTemp("", "cronfleet-diff")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	file1 := filepath.Join(dir, name1+".cron")
	file2 := filepath.Join(dir, name2+".cron")
	if err := os.WriteFile(file1, render.Crontab(env1, opts), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(file2, render.Crontab(env2, opts), 0o644); err != nil {
		return err
	}

	// git diff gives us colored, familiar output for free.
	cmd := exec.Command("git", "diff", "--no-index", "--color=always", file1, file2)
	out, err := cmd.Output()
	if err == nil {
		color.Green("✓ environments render identically")
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		fmt.Print(string(out))
		return nil
	}
	return fmt.Errorf("git diff: %w", err)
}
