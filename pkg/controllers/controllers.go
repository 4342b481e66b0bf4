// Package controllers holds the set of SDN controllers a test run knows
// about, loaded from YAML, and matches switch connections against it.
package controllers

import (
	"fmt"
	"net"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/newtmn/pkg/switches"
	"github.com/newtron-network/newtmn/pkg/util"
)

// DefaultPort is the OpenFlow port assumed when an entry omits one.
const DefaultPort = 6653

var hostnameRe = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9.-]*[A-Za-z0-9])?$`)

// Controller is a named controller endpoint.
type Controller struct {
	Name    string `yaml:"name" json:"name"`
	Addr    string `yaml:"address" json:"address"`
	TCPPort int    `yaml:"port,omitempty" json:"port"`
}

// Address implements switches.Controller.
func (c *Controller) Address() string { return c.Addr }

// Port implements switches.Controller.
func (c *Controller) Port() int { return c.TCPPort }

// Endpoint returns the controller's (address, port) identity.
func (c *Controller) Endpoint() switches.Endpoint {
	return switches.Endpoint{Address: c.Addr, Port: c.TCPPort}
}

func (c *Controller) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.Endpoint())
}

// Registry is an ordered, validated controller set. It implements
// switches.ControllerRegistry.
type Registry struct {
	list   []*Controller
	byName map[string]*Controller
	byEP   map[switches.Endpoint]*Controller
}

var _ switches.ControllerRegistry = (*Registry)(nil)

// file is the on-disk form of a standalone controller file.
type file struct {
	Controllers []Controller `yaml:"controllers"`
}

// LoadFile reads a YAML controller file:
//
//	controllers:
//	  - name: c1
//	    address: 192.168.5.11
//	    port: 6633
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading controller file: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing controller file %s: %w", path, err)
	}
	return New(f.Controllers)
}

// New validates entries and builds a Registry in entry order. Entries
// without a port get DefaultPort.
func New(entries []Controller) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]*Controller, len(entries)),
		byEP:   make(map[switches.Endpoint]*Controller, len(entries)),
	}

	v := &util.ValidationBuilder{}
	for i := range entries {
		c := entries[i]
		if c.TCPPort == 0 {
			c.TCPPort = DefaultPort
		}
		if c.Name == "" {
			v.AddErrorf("controller %d: name is required", i+1)
			continue
		}
		if c.Addr == "" {
			v.AddErrorf("controller %s: address is required", c.Name)
			continue
		}
		if net.ParseIP(c.Addr) == nil && !hostnameRe.MatchString(c.Addr) {
			v.AddErrorf("controller %s: address %q is neither an IP nor a host name", c.Name, c.Addr)
			continue
		}
		if c.TCPPort < 1 || c.TCPPort > 65535 {
			v.AddErrorf("controller %s: port %d out of range", c.Name, c.TCPPort)
			continue
		}
		if _, dup := r.byName[c.Name]; dup {
			v.AddErrorf("controller %s: duplicate name", c.Name)
			continue
		}
		if other, dup := r.byEP[c.Endpoint()]; dup {
			v.AddErrorf("controller %s: endpoint %s already used by %s", c.Name, c.Endpoint(), other.Name)
			continue
		}
		r.list = append(r.list, &c)
		r.byName[c.Name] = &c
		r.byEP[c.Endpoint()] = &c
	}
	if err := v.Build(); err != nil {
		return nil, err
	}
	return r, nil
}

// Controllers returns every controller in registry order.
func (r *Registry) Controllers() []switches.Controller {
	out := make([]switches.Controller, len(r.list))
	for i, c := range r.list {
		out[i] = c
	}
	return out
}

// Get returns the named controller.
func (r *Registry) Get(name string) (*Controller, error) {
	c, ok := r.byName[name]
	if !ok {
		return nil, util.NewNotFoundError("controller", name)
	}
	return c, nil
}

// Resolve looks up a list of controller names, preserving order.
func (r *Registry) Resolve(names []string) ([]switches.Controller, error) {
	out := make([]switches.Controller, 0, len(names))
	for _, n := range names {
		c, err := r.Get(n)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Lookup returns the controller listening on ep, if any.
func (r *Registry) Lookup(ep switches.Endpoint) (*Controller, bool) {
	c, ok := r.byEP[ep]
	return c, ok
}

// Names returns the controller names sorted alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.list))
	for _, c := range r.list {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of controllers.
func (r *Registry) Len() int {
	return len(r.list)
}
