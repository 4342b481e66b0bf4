// Package config loads the newtmn lab file: how to reach the Mininet CLI,
// which controllers exist, and where snapshots and audit records go.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/newtmn/pkg/controllers"
	"github.com/newtron-network/newtmn/pkg/mininet"
	"github.com/newtron-network/newtmn/pkg/util"
)

// Driver transports.
const (
	TransportSSH   = "ssh"
	TransportLocal = "local"
)

// Defaults applied by Load.
const (
	DefaultCommand        = "sudo mn"
	DefaultSSHPort        = 22
	DefaultTimeout        = 30 * time.Second
	DefaultRedisAddr      = "127.0.0.1:6379"
	DefaultRedisDB        = 0
	DefaultAuditMaxSize   = 10 * 1024 * 1024
	DefaultAuditMaxBackup = 5
)

// Config is the parsed lab file.
type Config struct {
	Lab         string                   `yaml:"lab"`
	Driver      DriverConfig             `yaml:"driver"`
	Controllers []controllers.Controller `yaml:"controllers"`
	Redis       RedisConfig              `yaml:"redis"`
	Audit       AuditConfig              `yaml:"audit"`
	Metrics     MetricsConfig            `yaml:"metrics"`

	// ControllersFile names a standalone controller file used instead of
	// the inline list. A relative path is taken from the lab file's directory.
	ControllersFile string `yaml:"controllers_file,omitempty"`

	dir string
}

// DriverConfig selects and configures the Mininet console.
type DriverConfig struct {
	Transport string        `yaml:"transport"`
	Host      string        `yaml:"host,omitempty"`
	Port      int           `yaml:"port,omitempty"`
	User      string        `yaml:"user,omitempty"`
	Password  string        `yaml:"password,omitempty"`
	KeyFile   string        `yaml:"key_file,omitempty"`
	Command   string        `yaml:"command,omitempty"`
	Prompt    string        `yaml:"prompt,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
}

// RedisConfig locates the snapshot store.
type RedisConfig struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
}

// AuditConfig locates the audit log. An empty Path disables auditing.
type AuditConfig struct {
	Path       string `yaml:"path,omitempty"`
	MaxSize    int64  `yaml:"max_size,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
}

// MetricsConfig names the node-exporter textfile to write after each command.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// Load reads, defaults and validates the lab file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lab file: %w", err)
	}
	cfg, err := parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("lab file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a lab file held in memory. A relative controllers_file is
// taken from the working directory.
func Parse(data []byte) (*Config, error) {
	return parse(data, "")
}

func parse(data []byte, dir string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	cfg.dir = dir
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	d := &c.Driver
	if d.Transport == "" {
		d.Transport = TransportSSH
	}
	if d.Command == "" {
		d.Command = DefaultCommand
	}
	if d.Prompt == "" {
		d.Prompt = mininet.DefaultPrompt
	}
	if d.Timeout == 0 {
		d.Timeout = DefaultTimeout
	}
	if d.Transport == TransportSSH && d.Port == 0 {
		d.Port = DefaultSSHPort
	}
	for i := range c.Controllers {
		if c.Controllers[i].TCPPort == 0 {
			c.Controllers[i].TCPPort = controllers.DefaultPort
		}
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = DefaultRedisAddr
	}
	if c.Audit.Path != "" {
		if c.Audit.MaxSize == 0 {
			c.Audit.MaxSize = DefaultAuditMaxSize
		}
		if c.Audit.MaxBackups == 0 {
			c.Audit.MaxBackups = DefaultAuditMaxBackup
		}
	}
}

// Validate reports every problem in the file at once.
func (c *Config) Validate() error {
	v := &util.ValidationBuilder{}
	d := c.Driver
	switch d.Transport {
	case TransportSSH:
		v.Add(d.Host != "", "driver.host is required for ssh transport")
		v.Add(d.User != "", "driver.user is required for ssh transport")
		v.Add(d.Port > 0 && d.Port <= 65535, fmt.Sprintf("driver.port %d out of range", d.Port))
	case TransportLocal:
	default:
		v.AddErrorf("driver.transport %q must be %q or %q", d.Transport, TransportSSH, TransportLocal)
	}
	v.Add(d.Timeout > 0, "driver.timeout must be positive")
	v.Add(c.Redis.DB >= 0, "redis.db must not be negative")
	v.Add(c.Audit.MaxSize >= 0, "audit.max_size must not be negative")

	if c.ControllersFile != "" && len(c.Controllers) > 0 {
		v.AddErrorf("controllers and controllers_file are mutually exclusive")
	} else if _, err := c.ControllerRegistry(); err != nil {
		var ve *util.ValidationError
		if errors.As(err, &ve) {
			for _, msg := range ve.Errors {
				v.AddErrorf("%s", msg)
			}
		} else {
			v.AddErrorf("%v", err)
		}
	}
	return v.Build()
}

// ControllersPath returns the resolved controllers_file path, or "" when
// the controllers are listed inline.
func (c *Config) ControllersPath() string {
	if c.ControllersFile == "" {
		return ""
	}
	if filepath.IsAbs(c.ControllersFile) || c.dir == "" {
		return c.ControllersFile
	}
	return filepath.Join(c.dir, c.ControllersFile)
}

// ControllerRegistry builds the controller registry described by the file.
func (c *Config) ControllerRegistry() (*controllers.Registry, error) {
	if path := c.ControllersPath(); path != "" {
		return controllers.LoadFile(path)
	}
	return controllers.New(c.Controllers)
}

// SSH returns the console settings for the ssh transport.
func (d DriverConfig) SSH() mininet.SSHConfig {
	return mininet.SSHConfig{
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		KeyFile:  d.KeyFile,
		Timeout:  d.Timeout,
	}
}

// Open starts the configured console and wraps it in a Mininet driver.
func (d DriverConfig) Open(ctx context.Context) (*mininet.Driver, error) {
	var (
		console mininet.Console
		err     error
	)
	switch d.Transport {
	case TransportLocal:
		console, err = mininet.StartLocal(ctx, d.Command, d.Prompt)
	case TransportSSH:
		console, err = mininet.DialSSH(ctx, d.SSH(), d.Command, d.Prompt)
	default:
		return nil, fmt.Errorf("unknown driver transport %q", d.Transport)
	}
	if err != nil {
		return nil, err
	}
	util.WithFields(map[string]interface{}{
		"transport": d.Transport,
		"host":      d.Host,
	}).Debug("mininet console ready")
	drv := mininet.NewDriver(console)
	drv.SetCommandTimeout(d.Timeout)
	return drv, nil
}
