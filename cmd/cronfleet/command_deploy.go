package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tastythames/cronfleet/internal/deploy"
	"github.com/tastythames/cronfleet/internal/render"
	"github.com/tastythames/cronfleet/internal/sshclient"
)

var (
	deployHosts    string
	deployGroup    string
	deploySSHUser  string
	deploySSHKey   string
	deploySSHPass  string
	deployDryRun   bool
	deployWorkers  int
	deployNoBackup bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy <env>",
	Short: "Push an environment's crontab to its hosts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeploy(cmd.Context(), args[0])
	},
	Args: cobra.ExactArgs(1),
}

func registerDeployCommand(root *cobra.Command) {
	root.AddCommand(deployCmd)

	deployCmd.Flags().StringVar(&deployHosts, "hosts", "", "Explicit comma-separated host list (default: all host groups)")
	deployCmd.Flags().StringVar(&deployGroup, "group", "", "Deploy to a single host group")
	deployCmd.Flags().StringVar(&deploySSHUser, "ssh-user", "root", "SSH user (also the crontab owner)")
	deployCmd.Flags().StringVar(&deploySSHKey, "ssh-key", "", "SSH private key path")
	deployCmd.Flags().StringVar(&deploySSHPass, "ssh-password", "", "SSH password (or set SSH_PASSWORD)")
	deployCmd.Flags().BoolVar(&deployDryRun, "dry-run", false, "Show what would be deployed without touching any host")
	deployCmd.Flags().IntVar(&deployWorkers, "workers", 10, "Max concurrent hosts")
	deployCmd.Flags().BoolVar(&deployNoBackup, "no-backup", false, "Skip the advisory crontab backup")
}

func runDeploy(ctx context.Context, envName string) error {
	env, err := loadEnv(envName)
	if err != nil {
		return err
	}

	hosts := env.Hosts(deployGroup)
	if deployHosts != "" {
		hosts = splitHosts(deployHosts)
	}

	auth := sshclient.Auth{
		User:     deploySSHUser,
		KeyPath:  deploySSHKey,
		Password: deploySSHPass,
	}
	if auth.Password == "" {
		auth.Password = os.Getenv("SSH_PASSWORD")
	}
	if !deployDryRun && auth.KeyPath == "" && auth.Password == "" {
		return fmt.Errorf("no credentials: pass --ssh-key or --ssh-password (or set SSH_PASSWORD)")
	}

	opts := deploy.Options{
		Backup:      !deployNoBackup,
		Concurrency: deployWorkers,
		DryRun:      deployDryRun,
		Logger:      slog.Default(),
		OnOutcome:   printOutcome,
	}
	if !deployDryRun {
		sshCfg, err := sshclient.LoadConfig()
		if err != nil {
			return fmt.Errorf("ssh config: %w", err)
		}
		opts.Factory = deploy.SSHFactory(sshclient.NewDialer(sshCfg))
	}

	deployer, err := deploy.New(opts)
	if err != nil {
		return err
	}

	fmt.Printf("Deploying %s to %d host(s), %d worker(s)\n\n", envName, len(hosts), deployWorkers)

	rendered := render.Crontab(env, render.Options{Now: time.Now()})
	report := deployer.Deploy(ctx, env, rendered, hosts, auth)

	if len(report.ValidationErrors) > 0 {
		color.Red("✗ validation failed, nothing deployed:")
		for _, e := range report.ValidationErrors {
			fmt.Printf("  • %v\n", e)
		}
		return fmt.Errorf("%d validation error(s)", len(report.ValidationErrors))
	}

	if report.DryRun {
		color.Yellow("dry-run: crontab that would be deployed:")
		fmt.Println()
		fmt.Print(string(report.Preview))
		color.Yellow("dry-run: target hosts:")
		for _, h := range report.PlannedHosts {
			fmt.Printf("  • %s\n", h)
		}
		return nil
	}

	fmt.Println()
	color.Green("succeeded: %d", report.Succeeded)
	color.Red("failed:    %d", report.Failed)
	fmt.Printf("total:     %d\n", len(report.Outcomes))

	if !report.OK() {
		return fmt.Errorf("deployment failed on %d host(s)", report.Failed)
	}
	return nil
}

func printOutcome(out deploy.Outcome) {
	if out.Succeeded {
		color.Green("✓ %s: %s", out.Host, out.Message)
		return
	}
	color.Red("✗ %s: %s", out.Host, out.Message)
}

func splitHosts(csv string) []string {
	var hosts []string
	for _, h := range strings.Split(csv, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}
