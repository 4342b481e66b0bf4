// Package testutil provides fixtures and fakes shared by newtmn tests.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/newtron-network/newtmn/pkg/switches"
)

// Call records one driver invocation.
type Call struct {
	Method     string
	Switch     string
	Assignment switches.ControllerAssignment
}

// FakeDriver is a switches.Driver backed by canned text. Every call is
// recorded. Errors can be injected per method.
type FakeDriver struct {
	DumpText    string
	Ports       map[string]string
	HardwareIDs map[string]string
	Controllers map[string]string

	// Errs maps a method name ("Dump", "AssignController", ...) to the
	// error that method returns.
	Errs map[string]error

	mu    sync.Mutex
	calls []Call
}

// NewMininetDriver returns a FakeDriver loaded with the Mininet fixtures.
func NewMininetDriver() *FakeDriver {
	ports := make(map[string]string, len(MininetPorts))
	for k, v := range MininetPorts {
		ports[k] = v
	}
	ids := make(map[string]string, len(MininetHardwareIDs))
	for k, v := range MininetHardwareIDs {
		ids[k] = v
	}
	return &FakeDriver{
		DumpText:    MininetDump,
		Ports:       ports,
		HardwareIDs: ids,
		Controllers: map[string]string{},
		Errs:        map[string]error{},
	}
}

// Calls returns a copy of the recorded calls.
func (f *FakeDriver) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsTo returns the recorded calls of one method.
func (f *FakeDriver) CallsTo(method string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets the recorded calls.
func (f *FakeDriver) Reset() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

func (f *FakeDriver) record(c Call) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.Errs[c.Method]
}

func (f *FakeDriver) Dump(ctx context.Context) (string, error) {
	if err := f.record(Call{Method: "Dump"}); err != nil {
		return "", err
	}
	return f.DumpText, nil
}

func (f *FakeDriver) GetInterfaces(ctx context.Context, name string) (string, error) {
	if err := f.record(Call{Method: "GetInterfaces", Switch: name}); err != nil {
		return "", err
	}
	text, ok := f.Ports[name]
	if !ok {
		return "", fmt.Errorf("no ports mocked for switch %s", name)
	}
	return text, nil
}

func (f *FakeDriver) GetSwitchHardwareID(ctx context.Context, name string) (string, error) {
	if err := f.record(Call{Method: "GetSwitchHardwareID", Switch: name}); err != nil {
		return "", err
	}
	id, ok := f.HardwareIDs[name]
	if !ok {
		return "", fmt.Errorf("no hardware id mocked for switch %s", name)
	}
	return id, nil
}

func (f *FakeDriver) AssignController(ctx context.Context, name string, a switches.ControllerAssignment) error {
	return f.record(Call{Method: "AssignController", Switch: name, Assignment: a})
}

func (f *FakeDriver) DeleteController(ctx context.Context, name string) error {
	return f.record(Call{Method: "DeleteController", Switch: name})
}

func (f *FakeDriver) GetController(ctx context.Context, name string) (string, error) {
	if err := f.record(Call{Method: "GetController", Switch: name}); err != nil {
		return "", err
	}
	return f.Controllers[name], nil
}

// StaticController is a minimal switches.Controller for tests.
type StaticController struct {
	Addr    string
	TCPPort int
}

func (c *StaticController) Address() string { return c.Addr }
func (c *StaticController) Port() int       { return c.TCPPort }

// StaticRegistry is a fixed switches.ControllerRegistry.
type StaticRegistry []switches.Controller

func (r StaticRegistry) Controllers() []switches.Controller { return r }
