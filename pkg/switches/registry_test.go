package switches_test

import (
	"context"
	"errors"
	"testing"

	"github.com/newtron-network/newtmn/internal/testutil"
	"github.com/newtron-network/newtmn/pkg/switches"
	"github.com/newtron-network/newtmn/pkg/util"
)

func TestDiscover(t *testing.T) {
	d := testutil.NewMininetDriver()

	r, err := switches.Discover(context.Background(), d)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if r.Len() != 4 {
		t.Fatalf("got %d switches, want 4", r.Len())
	}
	for _, sw := range r.Switches() {
		want := 5
		if sw.Name == "s1" {
			want = 4
		}
		if len(sw.Ports) != want {
			t.Errorf("%s has %d ports, want %d", sw.Name, len(sw.Ports), want)
		}
	}

	wantIDs := map[string]uint64{"s1": 2, "s2": 2, "s3": 3, "s4": 4}
	for name, id := range wantIDs {
		sw, err := r.GetSwitch(name)
		if err != nil {
			t.Fatalf("GetSwitch(%q): %v", name, err)
		}
		if sw.HardwareID != id {
			t.Errorf("%s hardware id = %d, want %d", name, sw.HardwareID, id)
		}
	}

	if r.Topology() == nil || len(r.Topology().Hosts) != 9 {
		t.Error("registry should keep the parsed dump")
	}
}

func TestDiscover_Order(t *testing.T) {
	d := testutil.NewMininetDriver()
	r, err := switches.Discover(context.Background(), d)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	want := []string{"s1", "s2", "s3", "s4"}
	for i, sw := range r.Switches() {
		if sw.Name != want[i] {
			t.Errorf("Switches()[%d] = %s, want %s", i, sw.Name, want[i])
		}
	}

	// Port listings are fetched for every switch before any hardware id.
	calls := d.Calls()
	var methods []string
	for _, c := range calls {
		methods = append(methods, c.Method)
	}
	if len(calls) != 9 || methods[0] != "Dump" || methods[4] != "GetInterfaces" || methods[5] != "GetSwitchHardwareID" {
		t.Errorf("unexpected call sequence: %v", methods)
	}
}

func TestDiscover_SnapshotIsIsolated(t *testing.T) {
	r, err := switches.Discover(context.Background(), testutil.NewMininetDriver())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	list := r.Switches()
	list[0] = nil
	if r.Switches()[0] == nil {
		t.Error("Switches() must return a copy")
	}
}

func TestDiscover_MissingPorts(t *testing.T) {
	d := testutil.NewMininetDriver()
	delete(d.Ports, "s3")

	_, err := switches.Discover(context.Background(), d)
	var de *util.DiscoveryError
	if !errors.As(err, &de) {
		t.Fatalf("error = %v, want *DiscoveryError", err)
	}
	if de.Switch != "s3" || de.Stage != "ports" {
		t.Errorf("DiscoveryError = %+v, want s3/ports", de)
	}
	if !errors.Is(err, util.ErrDiscoveryFailed) {
		t.Error("error should match ErrDiscoveryFailed")
	}
	if len(d.CallsTo("GetSwitchHardwareID")) != 0 {
		t.Error("hardware ids should not be queried after a port failure")
	}
}

func TestDiscover_EmptyPortListing(t *testing.T) {
	d := testutil.NewMininetDriver()
	d.Ports["s2"] = "mininet>"

	_, err := switches.Discover(context.Background(), d)
	if !errors.Is(err, util.ErrDiscoveryFailed) || !errors.Is(err, util.ErrParse) {
		t.Fatalf("error = %v, want discovery error caused by a parse error", err)
	}
}

func TestDiscover_BadHardwareID(t *testing.T) {
	d := testutil.NewMininetDriver()
	d.HardwareIDs["s4"] = "mininet>"

	_, err := switches.Discover(context.Background(), d)
	var de *util.DiscoveryError
	if !errors.As(err, &de) {
		t.Fatalf("error = %v, want *DiscoveryError", err)
	}
	if de.Switch != "s4" || de.Stage != "hardware-id" {
		t.Errorf("DiscoveryError = %+v, want s4/hardware-id", de)
	}
}

func TestDiscover_DumpFailures(t *testing.T) {
	t.Run("driver error", func(t *testing.T) {
		d := testutil.NewMininetDriver()
		d.Errs["Dump"] = errors.New("console closed")
		if _, err := switches.Discover(context.Background(), d); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("no switches", func(t *testing.T) {
		d := testutil.NewMininetDriver()
		d.DumpText = "<Host h1: h1-eth0:10.0.0.1 pid=1>\nmininet>"
		_, err := switches.Discover(context.Background(), d)
		if !errors.Is(err, util.ErrParse) {
			t.Fatalf("error = %v, want ErrParse", err)
		}
	})
}

func TestGetSwitch_NotFound(t *testing.T) {
	r, err := switches.Discover(context.Background(), testutil.NewMininetDriver())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	_, err = r.GetSwitch("s9")
	if !errors.Is(err, util.ErrNotFound) {
		t.Errorf("GetSwitch(s9) error = %v, want ErrNotFound", err)
	}
}

func TestNewRegistry(t *testing.T) {
	r, err := switches.NewRegistry([]*switches.Switch{
		{Name: "s1", HardwareID: 1, Ports: []switches.Port{{Name: "lo", Up: true}}},
		{Name: "s2", HardwareID: 2},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if r.Len() != 2 || r.Topology() != nil {
		t.Errorf("unexpected registry: len=%d topology=%v", r.Len(), r.Topology())
	}

	_, err = switches.NewRegistry([]*switches.Switch{{Name: "s1"}, {Name: "s1"}})
	if !errors.Is(err, util.ErrValidationFailed) {
		t.Errorf("duplicate names error = %v, want ErrValidationFailed", err)
	}
}

func TestSwitchHelpers(t *testing.T) {
	sw := &switches.Switch{
		Name:       "s1",
		HardwareID: 255,
		Ports:      []switches.Port{{Name: "lo"}, {Name: "s1-eth1", MAC: "ce:c5:1e:ee:36:b4", HasMAC: true}},
	}
	if sw.DPID() != "00000000000000ff" {
		t.Errorf("DPID() = %q", sw.DPID())
	}
	if p, ok := sw.Port("s1-eth1"); !ok || p.MAC != "ce:c5:1e:ee:36:b4" {
		t.Errorf("Port(s1-eth1) = (%+v, %v)", p, ok)
	}
	if _, ok := sw.Port("s1-eth9"); ok {
		t.Error("Port(s1-eth9) should not exist")
	}
}
