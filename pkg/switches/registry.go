package switches

import (
	"context"
	"fmt"
	"time"

	"github.com/newtron-network/newtmn/pkg/util"
)

// Registry is the set of switches found by one discovery pass. It is
// immutable after Discover returns and safe for concurrent readers.
type Registry struct {
	switches []*Switch
	byName   map[string]*Switch
	dump     *Dump
}

// Discover builds a Registry from a single snapshot of the driver:
//
//  1. dump the topology and collect the switch names;
//  2. fetch and parse every switch's port listing;
//  3. fetch and validate every switch's hardware identifier.
//
// Any per-switch failure aborts the whole pass with a DiscoveryError naming
// the switch; a partial registry is never returned.
func Discover(ctx context.Context, d Driver) (*Registry, error) {
	start := time.Now()

	text, err := d.Dump(ctx)
	if err != nil {
		return nil, fmt.Errorf("topology dump: %w", err)
	}
	dump, err := ParseDump(text)
	if err != nil {
		return nil, err
	}
	names := dump.SwitchNames()

	ports := make(map[string][]Port, len(names))
	for _, name := range names {
		raw, err := d.GetInterfaces(ctx, name)
		if err != nil {
			return nil, util.NewDiscoveryError(name, "ports", err)
		}
		p, err := ParsePorts(name, raw)
		if err != nil {
			return nil, util.NewDiscoveryError(name, "ports", err)
		}
		util.WithSwitch(name).Debugf("discovered %d ports", len(p))
		ports[name] = p
	}

	ids := make(map[string]uint64, len(names))
	for _, name := range names {
		raw, err := d.GetSwitchHardwareID(ctx, name)
		if err != nil {
			return nil, util.NewDiscoveryError(name, "hardware-id", err)
		}
		id, err := ParseHardwareID(name, raw)
		if err != nil {
			return nil, util.NewDiscoveryError(name, "hardware-id", err)
		}
		util.WithSwitch(name).Debugf("hardware id %d", id)
		ids[name] = id
	}

	r := &Registry{
		switches: make([]*Switch, 0, len(names)),
		byName:   make(map[string]*Switch, len(names)),
		dump:     dump,
	}
	for _, name := range names {
		sw := &Switch{Name: name, HardwareID: ids[name], Ports: ports[name]}
		r.switches = append(r.switches, sw)
		r.byName[name] = sw
	}

	util.WithOperation("discover").Infof("discovered %d switches in %s", len(r.switches), time.Since(start).Round(time.Millisecond))
	return r, nil
}

// NewRegistry indexes an already-built switch list, e.g. one restored from
// a snapshot. Duplicate names are rejected.
func NewRegistry(switches []*Switch) (*Registry, error) {
	r := &Registry{
		switches: make([]*Switch, 0, len(switches)),
		byName:   make(map[string]*Switch, len(switches)),
	}
	for _, sw := range switches {
		if _, dup := r.byName[sw.Name]; dup {
			return nil, util.NewValidationError(fmt.Sprintf("duplicate switch %s", sw.Name))
		}
		r.switches = append(r.switches, sw)
		r.byName[sw.Name] = sw
	}
	return r, nil
}

// GetSwitch returns the switch with the given name.
func (r *Registry) GetSwitch(name string) (*Switch, error) {
	sw, ok := r.byName[name]
	if !ok {
		return nil, util.NewNotFoundError("switch", name)
	}
	return sw, nil
}

// Switches returns every discovered switch in discovery order.
func (r *Registry) Switches() []*Switch {
	out := make([]*Switch, len(r.switches))
	copy(out, r.switches)
	return out
}

// Len returns the number of switches.
func (r *Registry) Len() int {
	return len(r.switches)
}

// Topology returns the parsed dump the registry was built from, or nil for
// a registry built with NewRegistry.
func (r *Registry) Topology() *Dump {
	return r.dump
}
