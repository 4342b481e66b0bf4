package switches

import (
	"context"
	"errors"
	"strings"

	"github.com/newtron-network/newtmn/pkg/util"
)

// Manager is the controller-connection coordinator. It embeds the Registry
// built at construction and talks to the driver live for every connect,
// disconnect and query. It keeps no connection state of its own.
//
// Connection operations on the same switch are not serialized here: the
// emulator has no compare-and-swap on a controller set, so concurrent
// callers touching one switch must coordinate among themselves.
type Manager struct {
	*Registry
	driver Driver
}

// NewManager runs discovery against the driver and returns a Manager over
// the resulting Registry.
func NewManager(ctx context.Context, d Driver) (*Manager, error) {
	r, err := Discover(ctx, d)
	if err != nil {
		return nil, err
	}
	return NewManagerWithRegistry(r, d), nil
}

// NewManagerWithRegistry returns a Manager over an existing Registry
// without running discovery.
func NewManagerWithRegistry(r *Registry, d Driver) *Manager {
	return &Manager{Registry: r, driver: d}
}

// ConnectToControllers points the switch at the given controllers, in
// order. The driver replaces the switch's whole controller set; it does not
// add to it. To add a controller, pass the full desired list.
func (m *Manager) ConnectToControllers(ctx context.Context, sw *Switch, controllers []Controller) error {
	if len(controllers) == 0 {
		return util.NewValidationError("connect " + sw.Name + ": at least one controller is required")
	}
	a := NewControllerAssignment(controllers)
	if err := m.driver.AssignController(ctx, sw.Name, a); err != nil {
		return asDriverCommandError("set-controller", sw.Name, err)
	}

	targets := make([]string, len(a.Controllers))
	for i, ep := range a.Controllers {
		targets[i] = ep.String()
	}
	util.WithSwitch(sw.Name).Infof("controllers set to %s", strings.Join(targets, ", "))
	return nil
}

// DisconnectControllers removes every controller assignment of the switch.
// Disconnecting an already disconnected switch is not an error.
func (m *Manager) DisconnectControllers(ctx context.Context, sw *Switch) error {
	if err := m.driver.DeleteController(ctx, sw.Name); err != nil {
		return asDriverCommandError("del-controller", sw.Name, err)
	}
	util.WithSwitch(sw.Name).Info("controllers removed")
	return nil
}

// ConnectedEndpoints returns the active controller endpoints the switch
// currently reports, whether or not any registry knows them.
func (m *Manager) ConnectedEndpoints(ctx context.Context, sw *Switch) ([]Endpoint, error) {
	text, err := m.driver.GetController(ctx, sw.Name)
	if err != nil {
		return nil, err
	}
	return ParseControllerList(text), nil
}

// GetConnectedControllers returns the controllers of reg that the switch is
// currently connected to, matched on (address, port). The result follows
// the registry's order and is empty when nothing matches.
func (m *Manager) GetConnectedControllers(ctx context.Context, sw *Switch, reg ControllerRegistry) ([]Controller, error) {
	eps, err := m.ConnectedEndpoints(ctx, sw)
	if err != nil {
		return nil, err
	}
	connected := make(map[Endpoint]bool, len(eps))
	for _, ep := range eps {
		connected[ep] = true
	}

	result := []Controller{}
	for _, c := range reg.Controllers() {
		ep := EndpointOf(c)
		if connected[ep] {
			result = append(result, c)
			delete(connected, ep)
		}
	}
	for ep := range connected {
		util.WithSwitch(sw.Name).Debugf("connected to unknown controller %s", ep)
	}
	return result, nil
}

// asDriverCommandError passes DriverCommandErrors through and wraps any
// other driver failure in one.
func asDriverCommandError(command, sw string, err error) error {
	var dce *util.DriverCommandError
	if errors.As(err, &dce) {
		return err
	}
	return util.NewDriverCommandError(command, sw, "", err)
}
