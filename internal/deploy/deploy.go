// Package deploy pushes a rendered crontab to many hosts concurrently:
// backup, upload, atomic install, verify, with one outcome per host.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tastythames/cronfleet/internal/config"
	"github.com/tastythames/cronfleet/internal/sshclient"
)

// Session is what the orchestrator needs from one host connection.
// *sshclient.Session satisfies it; tests substitute spies.
type Session interface {
	Run(ctx context.Context, cmd string) (sshclient.RunResult, error)
	Upload(ctx context.Context, content []byte, remotePath string) error
	Close() error
}

// SessionFactory opens one Session per host. Each worker owns its Session
// for the duration of that host's deployment.
type SessionFactory interface {
	Connect(ctx context.Context, host string, auth sshclient.Auth) (Session, error)
}

type dialerFactory struct {
	d *sshclient.Dialer
}

func (f dialerFactory) Connect(ctx context.Context, host string, auth sshclient.Auth) (Session, error) {
	s, err := f.d.Connect(ctx, host, auth)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// SSHFactory adapts an sshclient.Dialer to the SessionFactory interface.
func SSHFactory(d *sshclient.Dialer) SessionFactory {
	return dialerFactory{d: d}
}

// Options holds the dependencies and policy for one Deployer. Clock and
// Nonce exist so nothing reads ambient process state (PID, wall clock)
// mid-deployment; tests pin both.
type Options struct {
	Factory     SessionFactory
	Logger      *slog.Logger
	Concurrency int    // worker cap, default 10
	Backup      bool   // back up the current crontab before install
	BackupDir   string // default /var/backups/crontab
	DryRun      bool   // skip all remote work, return a preview

	Clock func() time.Time
	Nonce func() string

	// OnOutcome, when set, is called from the collector as each host
	// finishes (completion order).
	OnOutcome func(Outcome)
}

// Deployer runs deployments with a fixed policy.
type Deployer struct {
	opts Options
}

// New validates options and applies defaults.
func New(opts Options) (*Deployer, error) {
	if opts.Factory == nil && !opts.DryRun {
		return nil, errors.New("session factory is required")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 10
	}
	if opts.BackupDir == "" {
		opts.BackupDir = "/var/backups/crontab"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Nonce == nil {
		opts.Nonce = uuid.NewString
	}
	return &Deployer{opts: opts}, nil
}

// Deploy pushes rendered to every host. The environment is gated through
// validation first: a partial environment is never partially deployed.
// The returned outcomes are in completion order, exactly one per host.
func (d *Deployer) Deploy(ctx context.Context, env *config.Environment, rendered []byte, hosts []string, auth sshclient.Auth) *Report {
	if errs := env.Validate(); len(errs) > 0 {
		return &Report{ValidationErrors: errs}
	}

	if d.opts.DryRun {
		return &Report{
			DryRun:       true,
			Preview:      rendered,
			PlannedHosts: hosts,
		}
	}

	report := &Report{}
	if len(hosts) == 0 {
		return report
	}

	results := make(chan Outcome, len(hosts))

	var g errgroup.Group
	g.SetLimit(d.opts.Concurrency)
	for _, host := range hosts {
		g.Go(func() error {
			results <- d.deployHost(ctx, host, rendered, auth)
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(results)
	}()

	for out := range results {
		if d.opts.OnOutcome != nil {
			d.opts.OnOutcome(out)
		}
		report.add(out)
	}
	return report
}

// deployHost is the self-contained unit of work for one host. It never
// touches shared mutable state; rendered is read-only.
func (d *Deployer) deployHost(ctx context.Context, host string, rendered []byte, auth sshclient.Auth) Outcome {
	out := Outcome{Host: host}

	sess, err := d.opts.Factory.Connect(ctx, host, auth)
	if err != nil {
		out.Message = err.Error()
		return out
	}
	defer sess.Close()

	user := auth.User

	if d.opts.Backup {
		path, err := d.backupCrontab(ctx, sess, user)
		if err != nil {
			// Advisory only: a failed backup never aborts the deploy.
			d.opts.Logger.Warn("crontab backup failed, deploying without one",
				"host", host, "error", err)
		} else {
			out.BackupPath = path
		}
	}

	tmpPath := fmt.Sprintf("/tmp/crontab.%s.%s", user, d.opts.Nonce())
	if err := sess.Upload(ctx, rendered, tmpPath); err != nil {
		out.Message = err.Error()
		return out
	}

	// Install and remove the temp file in one remote command; on a
	// non-zero exit the remote side may leave the temp file behind.
	install := fmt.Sprintf("crontab -u %s %s && rm -f %s", user, tmpPath, tmpPath)
	res, err := sess.Run(ctx, install)
	if err != nil {
		out.Message = err.Error()
		return out
	}
	if res.ExitCode != 0 {
		out.Message = fmt.Sprintf("crontab install failed (exit %d): %s",
			res.ExitCode, strings.TrimSpace(res.Stderr))
		return out
	}

	out.Succeeded = true
	out.Message = "deployed"
	if res, err := sess.Run(ctx, fmt.Sprintf("crontab -u %s -l | wc -l", user)); err == nil && res.ExitCode == 0 {
		out.Message = fmt.Sprintf("deployed, %s lines active", strings.TrimSpace(res.Stdout))
	}
	return out
}

// backupCrontab writes the host's current crontab (or a sentinel when it
// has none) to a timestamped file under the backup dir.
func (d *Deployer) backupCrontab(ctx context.Context, sess Session, user string) (string, error) {
	backupPath := fmt.Sprintf("%s/crontab.%s.%s",
		d.opts.BackupDir, user, d.opts.Clock().Format("20060102_150405"))

	cmds := []string{
		fmt.Sprintf("mkdir -p %s", d.opts.BackupDir),
		fmt.Sprintf("crontab -u %s -l > %s 2>/dev/null || echo '# no crontab for %s' > %s",
			user, backupPath, user, backupPath),
	}
	for _, cmd := range cmds {
		res, err := sess.Run(ctx, cmd)
		if err != nil {
			return "", err
		}
		if res.ExitCode != 0 {
			return "", fmt.Errorf("backup command failed (exit %d): %s",
				res.ExitCode, strings.TrimSpace(res.Stderr))
		}
	}
	return backupPath, nil
}
