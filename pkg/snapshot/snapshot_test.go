package snapshot

import (
	"errors"
	"testing"

	"github.com/newtron-network/newtmn/pkg/switches"
	"github.com/newtron-network/newtmn/pkg/util"
)

func TestSwitchFields(t *testing.T) {
	sw := &switches.Switch{
		Name:       "s3",
		HardwareID: 3,
		Ports:      []switches.Port{{Name: "lo"}, {Name: "s3-eth1"}},
	}
	f := switchFields(sw)
	if f["hardware_id"] != "3" || f["dpid"] != "0000000000000003" || f["port_count"] != "2" {
		t.Errorf("switchFields = %v", f)
	}

	got, err := decodeSwitch("s3", f)
	if err != nil {
		t.Fatalf("decodeSwitch: %v", err)
	}
	if got.Name != "s3" || got.HardwareID != 3 {
		t.Errorf("decodeSwitch = %+v", got)
	}
}

func TestDecodeSwitch_BadID(t *testing.T) {
	_, err := decodeSwitch("s1", map[string]string{"hardware_id": "zz"})
	if !errors.Is(err, util.ErrParse) {
		t.Errorf("error = %v, want ErrParse", err)
	}
}

func TestPortFields(t *testing.T) {
	tests := []struct {
		name string
		port switches.Port
		want map[string]string
	}{
		{
			name: "loopback",
			port: switches.Port{Name: "lo", IP: "127.0.0.1", HasIP: true, Up: true},
			want: map[string]string{"index": "0", "ip": "127.0.0.1", "oper_status": "up"},
		},
		{
			name: "down without addresses",
			port: switches.Port{Name: "s4-eth2"},
			want: map[string]string{"index": "0", "oper_status": "down"},
		},
		{
			name: "mac only",
			port: switches.Port{Name: "s1-eth1", MAC: "aa:bb:cc:00:00:01", HasMAC: true, Up: true},
			want: map[string]string{"index": "0", "mac": "aa:bb:cc:00:00:01", "oper_status": "up"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := portFields(0, tt.port)
			if len(got) != len(tt.want) {
				t.Fatalf("portFields = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("field %s = %q, want %q", k, got[k], v)
				}
			}

			idx, p := decodePort(tt.port.Name, got)
			if idx != 0 || p != tt.port {
				t.Errorf("decodePort = (%d, %+v), want (0, %+v)", idx, p, tt.port)
			}
		})
	}
}

func TestDecodePort_MissingIndex(t *testing.T) {
	idx, _ := decodePort("x", map[string]string{})
	if idx <= 1000 {
		t.Errorf("missing index should sort last, got %d", idx)
	}
}

func TestDecodeMeta(t *testing.T) {
	m := decodeMeta(map[string]string{
		"lab":          "campus",
		"taken_at":     "2026-03-01T10:00:00Z",
		"switch_count": "4",
	})
	if m.Lab != "campus" || m.SwitchCount != 4 || m.TakenAt.Year() != 2026 {
		t.Errorf("decodeMeta = %+v", m)
	}
	if z := decodeMeta(nil); !z.TakenAt.IsZero() || z.SwitchCount != 0 {
		t.Errorf("empty meta = %+v", z)
	}
}

func TestKeys(t *testing.T) {
	if got := switchKey("s1"); got != "SWITCH|s1" {
		t.Errorf("switchKey = %q", got)
	}
	if got := portKey("s1", "s1-eth1"); got != "SWITCH_PORT|s1|s1-eth1" {
		t.Errorf("portKey = %q", got)
	}
}
