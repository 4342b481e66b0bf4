package metrics

import (
	"context"
	"time"

	"github.com/newtron-network/newtmn/pkg/switches"
)

// Command label values, one per driver capability.
const (
	CommandDump             = "dump"
	CommandGetInterfaces    = "get_interfaces"
	CommandGetHardwareID    = "get_switch_hardware_id"
	CommandAssignController = "assign_controller"
	CommandDeleteController = "delete_controller"
	CommandGetController    = "get_controller"
)

type instrumentedDriver struct {
	next switches.Driver
	reg  *Registry
}

// InstrumentDriver wraps d so that every call is counted and timed in r.
func InstrumentDriver(d switches.Driver, r *Registry) switches.Driver {
	return &instrumentedDriver{next: d, reg: r}
}

func (d *instrumentedDriver) text(command string, fn func() (string, error)) (string, error) {
	start := time.Now()
	out, err := fn()
	d.reg.RecordDriverCommand(command, err, time.Since(start))
	return out, err
}

func (d *instrumentedDriver) exec(command string, fn func() error) error {
	start := time.Now()
	err := fn()
	d.reg.RecordDriverCommand(command, err, time.Since(start))
	return err
}

func (d *instrumentedDriver) Dump(ctx context.Context) (string, error) {
	return d.text(CommandDump, func() (string, error) { return d.next.Dump(ctx) })
}

func (d *instrumentedDriver) GetInterfaces(ctx context.Context, name string) (string, error) {
	return d.text(CommandGetInterfaces, func() (string, error) { return d.next.GetInterfaces(ctx, name) })
}

func (d *instrumentedDriver) GetSwitchHardwareID(ctx context.Context, name string) (string, error) {
	return d.text(CommandGetHardwareID, func() (string, error) { return d.next.GetSwitchHardwareID(ctx, name) })
}

func (d *instrumentedDriver) AssignController(ctx context.Context, name string, a switches.ControllerAssignment) error {
	return d.exec(CommandAssignController, func() error { return d.next.AssignController(ctx, name, a) })
}

func (d *instrumentedDriver) DeleteController(ctx context.Context, name string) error {
	return d.exec(CommandDeleteController, func() error { return d.next.DeleteController(ctx, name) })
}

func (d *instrumentedDriver) GetController(ctx context.Context, name string) (string, error) {
	return d.text(CommandGetController, func() (string, error) { return d.next.GetController(ctx, name) })
}
