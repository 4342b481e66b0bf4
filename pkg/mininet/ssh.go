package mininet

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
)

// SSHConfig describes how to reach the emulation host.
type SSHConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	KeyFile  string
	Timeout  time.Duration
}

// SSHConsole runs the Mininet CLI in a PTY on a remote host.
type SSHConsole struct {
	*session
	client *ssh.Client
	sess   *ssh.Session
}

// DialSSH connects to the emulation host, starts command (the Mininet CLI)
// in a PTY and waits for its first prompt.
func DialSSH(ctx context.Context, cfg SSHConfig, command, prompt string) (*SSHConsole, error) {
	auth, err := sshAuthMethods(cfg)
	if err != nil {
		return nil, err
	}
	port := cfg.Port
	if port == 0 {
		port = 22
	}
	clientCfg := &ssh.ClientConfig{
		User: cfg.User,
		Auth: auth,
		// Emulation hosts are lab VMs with throwaway host keys.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         cfg.Timeout,
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	client, err := ssh.Dial("tcp", addr, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("SSH dial %s: %w", addr, err)
	}

	sess, err := client.NewSession()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("SSH session: %w", err)
	}

	// Wide terminal so long command echoes are not wrapped; echo off.
	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := sess.RequestPty("xterm", 50, 1000, modes); err != nil {
		sess.Close()
		client.Close()
		return nil, fmt.Errorf("SSH pty: %w", err)
	}

	stdin, err := sess.StdinPipe()
	if err != nil {
		sess.Close()
		client.Close()
		return nil, fmt.Errorf("SSH stdin: %w", err)
	}
	stdout, err := sess.StdoutPipe()
	if err != nil {
		sess.Close()
		client.Close()
		return nil, fmt.Errorf("SSH stdout: %w", err)
	}

	if err := sess.Start(command); err != nil {
		sess.Close()
		client.Close()
		return nil, fmt.Errorf("SSH start %q: %w", command, err)
	}

	c := &SSHConsole{
		session: newSession(stdout, stdin, prompt),
		client:  client,
		sess:    sess,
	}
	if err := c.start(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("mininet CLI on %s: %w", cfg.Host, err)
	}
	return c, nil
}

// Close ends the CLI session and the SSH connection.
func (c *SSHConsole) Close() error {
	c.shutdown()
	c.sess.Close()
	return c.client.Close()
}

func sshAuthMethods(cfg SSHConfig) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod
	if cfg.KeyFile != "" {
		pem, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("reading SSH key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, fmt.Errorf("parsing SSH key %s: %w", cfg.KeyFile, err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if cfg.Password != "" {
		methods = append(methods, ssh.Password(cfg.Password))
	}
	if len(methods) == 0 {
		return nil, fmt.Errorf("SSH to %s: no password or key file configured", cfg.Host)
	}
	return methods, nil
}
