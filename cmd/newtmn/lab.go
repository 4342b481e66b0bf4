package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/user"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/newtron-network/newtmn/pkg/audit"
	"github.com/newtron-network/newtmn/pkg/config"
	"github.com/newtron-network/newtmn/pkg/controllers"
	"github.com/newtron-network/newtmn/pkg/metrics"
	"github.com/newtron-network/newtmn/pkg/mininet"
	"github.com/newtron-network/newtmn/pkg/settings"
	"github.com/newtron-network/newtmn/pkg/switches"
	"github.com/newtron-network/newtmn/pkg/util"
)

// loadedConfig is set once a command has read the lab file.
var loadedConfig *config.Config

// lab is an open Mininet session with its discovered switches.
type lab struct {
	cfg    *config.Config
	driver *mininet.Driver
	mgr    *switches.Manager
	ctrls  *controllers.Registry
}

func loadConfig() (*config.Config, error) {
	path, err := requireConfig()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	loadedConfig = cfg
	return cfg, nil
}

// openLab loads the lab file, attaches to Mininet and runs discovery.
func openLab(ctx context.Context) (*lab, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	ctrls, err := cfg.ControllerRegistry()
	if err != nil {
		return nil, err
	}
	if err := ensureCredentials(&cfg.Driver); err != nil {
		return nil, err
	}

	drv, err := cfg.Driver.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("attaching to mininet: %w", err)
	}
	reg := metrics.DefaultRegistry()
	mgr, err := switches.NewManager(ctx, metrics.InstrumentDriver(drv, reg))
	if err != nil {
		drv.Close()
		return nil, fmt.Errorf("discovery: %w", err)
	}
	reg.SetSwitchesDiscovered(mgr.Len())

	return &lab{cfg: cfg, driver: drv, mgr: mgr, ctrls: ctrls}, nil
}

func (l *lab) Close() {
	if err := l.driver.Close(); err != nil {
		util.Debugf("closing mininet console: %v", err)
	}
}

// ensureCredentials fills in an SSH password from NEWTMN_SSH_PASSWORD or an
// interactive prompt when the lab file has neither a password nor a key.
func ensureCredentials(d *config.DriverConfig) error {
	if d.Transport != config.TransportSSH || d.Password != "" || d.KeyFile != "" {
		return nil
	}
	if v := os.Getenv("NEWTMN_SSH_PASSWORD"); v != "" {
		d.Password = v
		return nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("no SSH credentials for %s@%s: set driver.password, driver.key_file, or NEWTMN_SSH_PASSWORD", d.User, d.Host)
	}
	fmt.Fprintf(os.Stderr, "%s@%s's password: ", d.User, d.Host)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	d.Password = string(pw)
	return nil
}

// resolveControllers maps CLI arguments to controllers, in argument order.
// An argument of the form host:port is a literal endpoint; anything else is
// a controller name from the lab file.
func resolveControllers(reg *controllers.Registry, args []string) ([]switches.Controller, []string, error) {
	out := make([]switches.Controller, len(args))
	labels := make([]string, len(args))
	var names []string
	var at []int
	for i, arg := range args {
		host, portStr, err := net.SplitHostPort(arg)
		if err != nil {
			names = append(names, arg)
			at = append(at, i)
			continue
		}
		port, err := strconv.Atoi(portStr)
		if err != nil || port < 1 || port > 65535 {
			return nil, nil, fmt.Errorf("controller %q: invalid port", arg)
		}
		c := &controllers.Controller{Name: arg, Addr: host, TCPPort: port}
		out[i] = c
		labels[i] = c.Endpoint().String()
	}

	resolved, err := reg.Resolve(names)
	if err != nil {
		return nil, nil, fmt.Errorf("%w (known: %s; or give host:port)", err, strings.Join(reg.Names(), ", "))
	}
	for k, c := range resolved {
		out[at[k]] = c
		labels[at[k]] = names[k]
	}
	return out, labels, nil
}

// openAudit installs the default audit logger. The returned func closes it.
func openAudit(cfg *config.Config) (func(), error) {
	path := cfg.Audit.Path
	if s, err := settings.Load(); err == nil && s.AuditLog != "" {
		path = s.AuditLog
	}
	if path == "" {
		return func() {}, nil
	}
	l, err := audit.NewFileLogger(path, audit.RotationConfig{
		MaxSize:    cfg.Audit.MaxSize,
		MaxBackups: cfg.Audit.MaxBackups,
	})
	if err != nil {
		return nil, err
	}
	audit.SetDefaultLogger(l)
	return func() {
		audit.SetDefaultLogger(nil)
		l.Close()
	}, nil
}

func recordAudit(ev *audit.Event) {
	if err := audit.Log(ev); err != nil {
		util.Warnf("audit: %v", err)
	}
}

func auditUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return os.Getenv("USER")
}

// rememberSwitch stores the last switch operated on; failures are logged
// and otherwise ignored.
func rememberSwitch(name string) {
	err := settings.Update(func(s *settings.Settings) error {
		s.SetLastSwitch(name)
		return nil
	})
	if err != nil {
		util.Debugf("saving last switch: %v", err)
	}
}
