package sshclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyConnect(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ConnectErrorKind
	}{
		{"net timeout", timeoutErr{}, ConnectTimeout},
		{"ctx deadline", context.DeadlineExceeded, ConnectTimeout},
		{"ssh auth", errors.New("ssh: handshake failed: ssh: unable to authenticate, attempted methods [none password]"), AuthRejected},
		{"permission denied", errors.New("permission denied (publickey)"), AuthRejected},
		{"refused", errors.New("dial tcp 10.0.0.1:22: connect: connection refused"), HostUnreachable},
	}

	for _, tt := range tests {
		cerr := classifyConnect("web-01", tt.err)
		assert.Equal(t, tt.kind, cerr.Kind, tt.name)
		assert.Equal(t, "web-01", cerr.Host, tt.name)
		assert.ErrorIs(t, cerr, tt.err, tt.name)
	}
}

func TestConfigSanitize(t *testing.T) {
	cfg := Config{Port: -1, ConnectTimeout: 0, ExecTimeout: -time.Second}
	cfg.Sanitize()
	assert.Equal(t, 22, cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 30*time.Second, cfg.ExecTimeout)

	cfg = Config{Port: 2222, ConnectTimeout: time.Second, ExecTimeout: time.Minute}
	cfg.Sanitize()
	assert.Equal(t, 2222, cfg.Port)
	assert.Equal(t, time.Second, cfg.ConnectTimeout)
}

func TestAuthMethods(t *testing.T) {
	_, err := Auth{User: "root"}.methods()
	assert.Error(t, err)

	methods, err := Auth{User: "root", Password: "s3cret"}.methods()
	require.NoError(t, err)
	// password + keyboard-interactive fallback
	assert.Len(t, methods, 2)

	_, err = Auth{User: "root", KeyPath: "/nonexistent/id_rsa"}.methods()
	assert.Error(t, err)
}

func TestConnectRejectsMissingCredentials(t *testing.T) {
	d := NewDialer(Config{})

	var cerr *ConnectError
	_, err := d.Connect(context.Background(), "web-01", Auth{})
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, AuthRejected, cerr.Kind)

	_, err = d.Connect(context.Background(), "web-01", Auth{User: "root"})
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, AuthRejected, cerr.Kind)
}
