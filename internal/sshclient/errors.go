package sshclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ConnectErrorKind categorizes why a connection could not be established,
// so the deploy report can tell a timeout from a bad credential.
type ConnectErrorKind int

const (
	ConnectTimeout ConnectErrorKind = iota
	AuthRejected
	HostUnreachable
)

func (k ConnectErrorKind) String() string {
	switch k {
	case ConnectTimeout:
		return "connect timeout"
	case AuthRejected:
		return "auth rejected"
	default:
		return "host unreachable"
	}
}

// ConnectError wraps a failed connection attempt to one host.
type ConnectError struct {
	Host string
	Kind ConnectErrorKind
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s: %s: %v", e.Host, e.Kind, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

func classifyConnect(host string, err error) *ConnectError {
	kind := HostUnreachable

	var nerr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = ConnectTimeout
	case errors.As(err, &nerr) && nerr.Timeout():
		kind = ConnectTimeout
	// x/crypto/ssh reports handshake auth failures as plain errors;
	// the message is the only signal we get.
	case strings.Contains(err.Error(), "unable to authenticate"),
		strings.Contains(err.Error(), "permission denied"):
		kind = AuthRejected
	}

	return &ConnectError{Host: host, Kind: kind, Err: err}
}
