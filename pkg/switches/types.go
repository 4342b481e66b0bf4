// Package switches discovers the switches of a running network emulation and
// manages which controllers each switch is connected to.
//
// The emulator is reached only through a Driver, whose responses are loosely
// formatted text. The parsers in parse.go turn that text into Port, Switch
// and Endpoint records; Discover builds an immutable Registry from one
// snapshot of the driver; Manager issues controller connect, disconnect and
// query commands live against the driver on every call.
package switches

import (
	"context"
	"fmt"
	"net"
	"strconv"
)

// Driver is the command interface of the network emulator. Every method
// issues one request and blocks until the emulator answers.
type Driver interface {
	// Dump returns the full topology listing (one node per line).
	Dump(ctx context.Context) (string, error)

	// GetInterfaces returns the raw port listing of one switch.
	GetInterfaces(ctx context.Context, switchName string) (string, error)

	// GetSwitchHardwareID returns the raw hardware identifier (datapath id)
	// of one switch, as printed by the emulator.
	GetSwitchHardwareID(ctx context.Context, switchName string) (string, error)

	// AssignController replaces the switch's controller set with the
	// controllers in a, numbered 1..a.Count.
	AssignController(ctx context.Context, switchName string, a ControllerAssignment) error

	// DeleteController clears every controller assignment of the switch.
	DeleteController(ctx context.Context, switchName string) error

	// GetController returns the raw controller-connection listing of one switch.
	GetController(ctx context.Context, switchName string) (string, error)
}

// Controller is an SDN controller a switch can be connected to. Two
// controllers are the same controller when address and port match.
type Controller interface {
	Address() string
	Port() int
}

// ControllerRegistry enumerates the controllers known to the caller.
type ControllerRegistry interface {
	Controllers() []Controller
}

// Endpoint is an (address, port) pair as it appears in a controller target.
type Endpoint struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
}

// EndpointOf returns the endpoint identity of a controller.
func EndpointOf(c Controller) Endpoint {
	return Endpoint{Address: c.Address(), Port: c.Port()}
}

// String returns "address:port", bracketing IPv6 literals.
func (e Endpoint) String() string {
	return net.JoinHostPort(e.Address, strconv.Itoa(e.Port))
}

// ControllerAssignment is the argument set of one assign command. Count
// always equals len(Controllers); controllers are numbered from 1 in order.
type ControllerAssignment struct {
	Count       int
	Controllers []Endpoint
}

// NewControllerAssignment builds the assignment for an ordered controller list.
func NewControllerAssignment(controllers []Controller) ControllerAssignment {
	eps := make([]Endpoint, len(controllers))
	for i, c := range controllers {
		eps[i] = EndpointOf(c)
	}
	return ControllerAssignment{Count: len(eps), Controllers: eps}
}

// Ordinal returns controller n, counting from 1 as the driver does.
func (a ControllerAssignment) Ordinal(n int) (Endpoint, bool) {
	if n < 1 || n > len(a.Controllers) {
		return Endpoint{}, false
	}
	return a.Controllers[n-1], true
}

// Port is one interface of a switch as listed by the emulator. MAC and IP
// are optional; HasMAC and HasIP report whether they were present.
type Port struct {
	Name   string `json:"name"`
	MAC    string `json:"mac,omitempty"`
	HasMAC bool   `json:"-"`
	IP     string `json:"ip,omitempty"`
	HasIP  bool   `json:"-"`
	Up     bool   `json:"is_up"`
}

// MACAddress returns the port MAC and whether the port has one.
func (p Port) MACAddress() (string, bool) {
	return p.MAC, p.HasMAC
}

// IPAddress returns the port IP and whether the port has one.
func (p Port) IPAddress() (string, bool) {
	return p.IP, p.HasIP
}

// Switch is one discovered switch. It is a snapshot taken at discovery and
// is never mutated; controller connections are not stored here.
type Switch struct {
	Name       string `json:"name"`
	HardwareID uint64 `json:"hardware_id"`
	Ports      []Port `json:"ports"`
}

// Port returns the named port of the switch.
func (s *Switch) Port(name string) (Port, bool) {
	for _, p := range s.Ports {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// DPID formats the hardware identifier as a 16-digit OpenFlow datapath id.
func (s *Switch) DPID() string {
	return fmt.Sprintf("%016x", s.HardwareID)
}
