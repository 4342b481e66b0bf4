// Package mininet implements switches.Driver on top of the Mininet CLI.
//
// Every driver method is one CLI command. Queries return the raw CLI text
// for the parsers in package switches; controller assignment and removal
// go through "sh ovs-vsctl" and are checked for error output here.
package mininet

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/newtron-network/newtmn/pkg/switches"
	"github.com/newtron-network/newtmn/pkg/util"
)

var switchNameRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// errorMarkers start a CLI output line that signals a failed command.
var errorMarkers = []string{
	"ovs-vsctl:",
	"*** Unknown command",
	"*** Error",
	"Traceback (most recent call last)",
	"NameError:",
}

// Driver issues switches.Driver requests as Mininet CLI commands.
type Driver struct {
	console Console
	timeout time.Duration
}

var _ switches.Driver = (*Driver)(nil)

// NewDriver returns a Driver that talks through the given console.
func NewDriver(c Console) *Driver {
	return &Driver{console: c}
}

// SetCommandTimeout bounds each CLI command. Zero leaves only the caller's
// context in effect.
func (d *Driver) SetCommandTimeout(t time.Duration) {
	d.timeout = t
}

// Close closes the underlying console.
func (d *Driver) Close() error {
	return d.console.Close()
}

func (d *Driver) Dump(ctx context.Context) (string, error) {
	return d.exec(ctx, "dump")
}

func (d *Driver) GetInterfaces(ctx context.Context, name string) (string, error) {
	if err := checkSwitchName(name); err != nil {
		return "", err
	}
	return d.exec(ctx, interfacesCommand(name))
}

func (d *Driver) GetSwitchHardwareID(ctx context.Context, name string) (string, error) {
	if err := checkSwitchName(name); err != nil {
		return "", err
	}
	out, err := d.exec(ctx, "py "+name+".dpid")
	if err != nil {
		return "", err
	}
	if marker := findErrorMarker(out); marker != "" {
		return "", fmt.Errorf("dpid of %s: %s", name, marker)
	}
	return out, nil
}

func (d *Driver) AssignController(ctx context.Context, name string, a switches.ControllerAssignment) error {
	cmd, err := setControllerCommand(name, a)
	if err != nil {
		return err
	}
	return d.run(ctx, "set-controller", name, cmd)
}

func (d *Driver) DeleteController(ctx context.Context, name string) error {
	if err := checkSwitchName(name); err != nil {
		return err
	}
	return d.run(ctx, "del-controller", name, "sh ovs-vsctl del-controller "+name)
}

func (d *Driver) GetController(ctx context.Context, name string) (string, error) {
	if err := checkSwitchName(name); err != nil {
		return "", err
	}
	return d.exec(ctx, "sh ovs-vsctl get-controller "+name)
}

func (d *Driver) exec(ctx context.Context, cmd string) (string, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	start := time.Now()
	out, err := d.console.Exec(ctx, cmd)
	util.WithField("command", cmd).Debugf("mininet: %d bytes in %s", len(out), time.Since(start).Round(time.Millisecond))
	return out, err
}

// run executes a state-changing command and turns transport failures and
// error output into a DriverCommandError.
func (d *Driver) run(ctx context.Context, op, name, cmd string) error {
	out, err := d.exec(ctx, cmd)
	if err != nil {
		return util.NewDriverCommandError(op, name, out, err)
	}
	if marker := findErrorMarker(out); marker != "" {
		return util.NewDriverCommandError(op, name, marker, nil)
	}
	return nil
}

func interfacesCommand(name string) string {
	return `py "\n".join(["name=%s,mac=%s,ip=%s,isUp=%s" % (i.name, i.MAC(), i.IP(), i.isUp()) for i in ` +
		name + `.intfs.values()])`
}

// setControllerCommand renders an assignment as
// "sh ovs-vsctl set-controller <sw> tcp:<ip1>:<port1> ... tcp:<ipN>:<portN>".
func setControllerCommand(name string, a switches.ControllerAssignment) (string, error) {
	if err := checkSwitchName(name); err != nil {
		return "", err
	}
	if a.Count == 0 || a.Count != len(a.Controllers) {
		return "", util.NewValidationError(fmt.Sprintf("controller count %d does not match %d targets", a.Count, len(a.Controllers)))
	}

	var b strings.Builder
	b.WriteString("sh ovs-vsctl set-controller ")
	b.WriteString(name)
	for n := 1; n <= a.Count; n++ {
		ep, _ := a.Ordinal(n)
		if ep.Address == "" || strings.ContainsAny(ep.Address, " \t;|&$`'\"") || ep.Port <= 0 || ep.Port > 65535 {
			return "", util.NewValidationError(fmt.Sprintf("controller %d: invalid target %q", n, ep.String()))
		}
		b.WriteString(" tcp:")
		if strings.Contains(ep.Address, ":") {
			b.WriteString("[" + ep.Address + "]")
		} else {
			b.WriteString(ep.Address)
		}
		b.WriteString(":" + strconv.Itoa(ep.Port))
	}
	return b.String(), nil
}

func checkSwitchName(name string) error {
	if !switchNameRe.MatchString(name) {
		return util.NewValidationError(fmt.Sprintf("invalid switch name %q", name))
	}
	return nil
}

// findErrorMarker returns the first output line that reports a failure.
func findErrorMarker(out string) string {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		for _, m := range errorMarkers {
			if strings.HasPrefix(line, m) {
				return line
			}
		}
	}
	return ""
}
