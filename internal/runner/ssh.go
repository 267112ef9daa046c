package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SSHRunner opens one SSH session per command on the backend host.
type SSHRunner struct {
	addr   string
	config *ssh.ClientConfig
}

// NewSSHRunner loads the private key at keyPath. When knownHostsPath is empty
// the host key is not verified.
func NewSSHRunner(addr, user, keyPath, knownHostsPath string) (*SSHRunner, error) {
	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("read ssh key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(keyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse ssh key: %w", err)
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if knownHostsPath != "" {
		hostKeyCallback, err = knownhosts.New(knownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("load known hosts: %w", err)
		}
	}

	return &SSHRunner{
		addr: addr,
		config: &ssh.ClientConfig{
			User:            user,
			Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
			HostKeyCallback: hostKeyCallback,
			Timeout:         10 * time.Second,
		},
	}, nil
}

func (s *SSHRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if err := validate(cmd); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, cmd)
	defer cancel()

	start := time.Now()
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		if cerr := classify(ctx, cmd); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("dial %s: %w", s.addr, err)
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, s.addr, s.config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake %s: %w", s.addr, err)
	}
	client := ssh.NewClient(sshConn, chans, reqs)
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("ssh session: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() { done <- session.Run(commandLine(cmd)) }()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		client.Close()
		<-done
		return nil, classify(ctx, cmd)
	case err = <-done:
	}

	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	var exitErr *ssh.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitStatus()
	default:
		return nil, fmt.Errorf("ssh run %s: %w", programName(cmd.Args), err)
	}
	return res, nil
}

// commandLine renders cmd for the remote login shell with every argument quoted.
func commandLine(cmd Command) string {
	quoted := make([]string, len(cmd.Args))
	for i, a := range cmd.Args {
		quoted[i] = shellQuote(a)
	}
	line := strings.Join(quoted, " ")
	if cmd.Dir != "" {
		line = "cd " + shellQuote(cmd.Dir) + " && " + line
	}
	return line
}

// shellQuote wraps s in single quotes, closing and reopening around any
// embedded quote.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
