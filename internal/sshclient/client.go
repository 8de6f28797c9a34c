// Package sshclient wraps one authenticated SSH connection per Session:
// execute a command, upload a file, close. A Session is owned by exactly
// one worker and is never shared across concurrent operations.
package sshclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// Auth carries the credentials for one deployment run. KeyPath takes
// precedence over Password when both are set.
type Auth struct {
	User     string
	KeyPath  string
	Password string
}

func (a Auth) methods() ([]ssh.AuthMethod, error) {
	if a.KeyPath != "" {
		key, err := os.ReadFile(a.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("read ssh key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parse ssh key: %w", err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	}

	if a.Password == "" {
		return nil, errors.New("no ssh key or password supplied")
	}

	password := a.Password
	return []ssh.AuthMethod{
		ssh.Password(password),
		ssh.KeyboardInteractive(func(_user, _instruction string, questions []string, _echos []bool) ([]string, error) {
			answers := make([]string, len(questions))
			for i := range questions {
				answers[i] = password
			}
			return answers, nil
		}),
	}, nil
}

// Dialer opens Sessions with shared transport settings.
type Dialer struct {
	cfg Config
}

func NewDialer(cfg Config) *Dialer {
	cfg.Sanitize()
	return &Dialer{cfg: cfg}
}

// Connect dials host and completes the SSH handshake within the configured
// connect timeout. Failures come back as *ConnectError with the kind set.
func (d *Dialer) Connect(ctx context.Context, host string, auth Auth) (*Session, error) {
	if auth.User == "" {
		return nil, &ConnectError{Host: host, Kind: AuthRejected, Err: errors.New("ssh user is empty")}
	}
	methods, err := auth.methods()
	if err != nil {
		return nil, &ConnectError{Host: host, Kind: AuthRejected, Err: err}
	}

	addr := net.JoinHostPort(host, fmt.Sprintf("%d", d.cfg.Port))

	// HostKey policy (lab-first)
	// TODO: harden later with known_hosts
	sshCfg := &ssh.ClientConfig{
		User:            auth.User,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         d.cfg.ConnectTimeout,
		Auth:            methods,
	}

	// Dial with context so it won't hang forever.
	dialer := net.Dialer{Timeout: d.cfg.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, classifyConnect(host, err)
	}

	// The ssh handshake can still hang without a deadline on the raw conn.
	deadline := time.Now().Add(d.cfg.ConnectTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetDeadline(deadline)

	cconn, chans, reqs, err := ssh.NewClientConn(conn, addr, sshCfg)
	if err != nil {
		_ = conn.Close()
		return nil, classifyConnect(host, err)
	}

	// The session outlives the handshake; drop the handshake deadline.
	_ = conn.SetDeadline(time.Time{})

	return &Session{
		host:        host,
		client:      ssh.NewClient(cconn, chans, reqs),
		execTimeout: d.cfg.ExecTimeout,
	}, nil
}

// Session is one live connection to one host.
type Session struct {
	host        string
	client      *ssh.Client
	execTimeout time.Duration
}

// RunResult is the remote command's exit status and captured output.
type RunResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Run executes cmd and blocks until its exit status is available or the
// exec timeout expires. A non-zero exit status is not an error here; the
// caller reads ExitCode.
func (s *Session) Run(ctx context.Context, cmd string) (RunResult, error) {
	sess, err := s.client.NewSession()
	if err != nil {
		return RunResult{}, fmt.Errorf("new session on %s: %w", s.host, err)
	}
	defer sess.Close()

	var stdout, stderr bytes.Buffer
	sess.Stdout = &stdout
	sess.Stderr = &stderr

	ctx, cancel := context.WithTimeout(ctx, s.execTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- sess.Run(cmd)
	}()

	select {
	case <-ctx.Done():
		// Best-effort terminate; the remote side may keep running.
		_ = sess.Signal(ssh.SIGKILL)
		return RunResult{}, fmt.Errorf("exec on %s: %w", s.host, ctx.Err())
	case err := <-done:
		res := RunResult{Stdout: stdout.String(), Stderr: stderr.String()}
		if err != nil {
			var exitErr *ssh.ExitError
			if errors.As(err, &exitErr) {
				res.ExitCode = exitErr.ExitStatus()
				return res, nil
			}
			return res, fmt.Errorf("exec on %s: %w", s.host, err)
		}
		return res, nil
	}
}

// Upload writes content to remotePath over the SFTP subsystem.
func (s *Session) Upload(ctx context.Context, content []byte, remotePath string) error {
	ctx, cancel := context.WithTimeout(ctx, s.execTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.put(content, remotePath)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("upload to %s: %w", s.host, ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("upload to %s: %w", s.host, err)
		}
		return nil
	}
}

func (s *Session) put(content []byte, remotePath string) error {
	client, err := sftp.NewClient(s.client)
	if err != nil {
		return err
	}
	defer client.Close()

	f, err := client.Create(remotePath)
	if err != nil {
		return err
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Close releases the underlying connection. Safe to call more than once.
func (s *Session) Close() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}
