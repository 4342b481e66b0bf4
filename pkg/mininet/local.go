package mininet

import (
	"context"
	"fmt"
	"os/exec"
)

// LocalConsole runs the Mininet CLI as a child process on this host.
type LocalConsole struct {
	*session
	cmd *exec.Cmd
}

// StartLocal launches command through sh, merges its stdout and stderr, and
// waits for the first prompt.
func StartLocal(ctx context.Context, command, prompt string) (*LocalConsole, error) {
	cmd := exec.Command("sh", "-c", command)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %q: %w", command, err)
	}

	c := &LocalConsole{
		session: newSession(stdout, stdin, prompt),
		cmd:     cmd,
	}
	if err := c.start(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("mininet CLI: %w", err)
	}
	return c, nil
}

// Close kills the CLI process and reaps it.
func (c *LocalConsole) Close() error {
	c.shutdown()
	if c.cmd.Process != nil {
		c.cmd.Process.Kill()
	}
	c.cmd.Wait()
	return nil
}
