package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/newtron-network/newtmn/internal/testutil"
	"github.com/newtron-network/newtmn/pkg/switches"
)

func counterValue(t *testing.T, r *Registry, labels ...string) float64 {
	t.Helper()
	c, err := r.DriverCommandsTotal.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return m.Counter.GetValue()
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.DriverCommandsTotal == nil || r.DriverCommandDuration == nil || r.SwitchesDiscovered == nil {
		t.Error("metrics not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordDriverCommand(t *testing.T) {
	r := NewRegistry()
	r.RecordDriverCommand(CommandDump, nil, 10*time.Millisecond)
	r.RecordDriverCommand(CommandDump, nil, 20*time.Millisecond)
	r.RecordDriverCommand(CommandDump, errors.New("boom"), time.Millisecond)

	if v := counterValue(t, r, CommandDump, StatusSuccess); v != 2 {
		t.Errorf("success counter = %v, want 2", v)
	}
	if v := counterValue(t, r, CommandDump, StatusError); v != 1 {
		t.Errorf("error counter = %v, want 1", v)
	}

	h, err := r.DriverCommandDuration.GetMetricWithLabelValues(CommandDump)
	if err != nil {
		t.Fatalf("Failed to get histogram: %v", err)
	}
	var m dto.Metric
	if err := h.(interface{ Write(*dto.Metric) error }).Write(&m); err != nil {
		t.Fatalf("Failed to write histogram: %v", err)
	}
	if m.Histogram.GetSampleCount() != 3 {
		t.Errorf("histogram count = %d, want 3", m.Histogram.GetSampleCount())
	}
}

func TestGauges(t *testing.T) {
	r := NewRegistry()
	r.SetSwitchesDiscovered(4)
	r.SetControllersConnected("s1", 2)

	var m dto.Metric
	if err := r.SwitchesDiscovered.Write(&m); err != nil {
		t.Fatal(err)
	}
	if m.Gauge.GetValue() != 4 {
		t.Errorf("switches discovered = %v, want 4", m.Gauge.GetValue())
	}

	g, _ := r.ControllersConnected.GetMetricWithLabelValues("s1")
	m.Reset()
	if err := g.Write(&m); err != nil {
		t.Fatal(err)
	}
	if m.Gauge.GetValue() != 2 {
		t.Errorf("controllers connected = %v, want 2", m.Gauge.GetValue())
	}
}

func TestInstrumentDriver(t *testing.T) {
	fake := testutil.NewMininetDriver()
	fake.Errs["DeleteController"] = errors.New("ovs-vsctl: no bridge named s9")
	r := NewRegistry()
	d := InstrumentDriver(fake, r)

	ctx := context.Background()
	reg, err := switches.Discover(ctx, d)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if reg.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", reg.Len())
	}
	d.DeleteController(ctx, "s9")

	tests := []struct {
		command string
		status  string
		want    float64
	}{
		{CommandDump, StatusSuccess, 1},
		{CommandGetInterfaces, StatusSuccess, 4},
		{CommandGetHardwareID, StatusSuccess, 4},
		{CommandDeleteController, StatusError, 1},
		{CommandAssignController, StatusSuccess, 0},
	}
	for _, tt := range tests {
		if v := counterValue(t, r, tt.command, tt.status); v != tt.want {
			t.Errorf("%s/%s = %v, want %v", tt.command, tt.status, v, tt.want)
		}
	}
	if n := len(fake.Calls()); n != 10 {
		t.Errorf("wrapped driver saw %d calls, want 10", n)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.RecordDriverCommand(CommandGetController, nil, 5*time.Millisecond)
	r.SetSwitchesDiscovered(4)

	path := filepath.Join(t.TempDir(), "newtmn.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{
		`newtmn_driver_commands_total{command="get_controller",status="success"} 1`,
		"newtmn_switches_discovered 4",
		"newtmn_last_run_timestamp_seconds",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("textfile missing %q:\n%s", want, text)
		}
	}
}
