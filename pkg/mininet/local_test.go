package mininet

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestLocalConsole(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Echo each command back followed by a fresh prompt.
	script := `printf 'mininet> '; while read line; do printf '%s\n' "$line"; printf 'mininet> '; done`
	c, err := StartLocal(ctx, script, "")
	if err != nil {
		t.Fatalf("StartLocal: %v", err)
	}

	out, err := c.Exec(ctx, "py s1.dpid")
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if strings.TrimSpace(out) != "py s1.dpid" {
		t.Errorf("Exec output = %q", out)
	}

	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	select {
	case <-c.done:
	default:
		t.Error("Close should shut the session down")
	}
}

func TestStartLocal_NoPrompt(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := StartLocal(ctx, "echo no cli here", ""); err == nil {
		t.Error("StartLocal should fail when the command exits without a prompt")
	}
}
