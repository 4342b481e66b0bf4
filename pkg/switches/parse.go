package switches

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/newtron-network/newtmn/pkg/util"
)

// NodeKind classifies a line of the topology dump.
type NodeKind string

const (
	NodeHost       NodeKind = "host"
	NodeSwitch     NodeKind = "switch"
	NodeController NodeKind = "controller"
)

// Node is one entry of the topology dump, e.g.
//
//	<OVSSwitch s1: lo:127.0.0.1,s1-eth1:None pid=26381>
//
// Detail is the raw text between the name and the pid. It is unreliable
// for switches (link state only), so switch ports come from ParsePorts.
type Node struct {
	Kind   NodeKind `json:"kind"`
	Class  string   `json:"class"`
	Name   string   `json:"name"`
	Detail string   `json:"detail,omitempty"`
	PID    int      `json:"pid,omitempty"`
}

// Dump is the parsed topology listing, in listing order per kind.
type Dump struct {
	Hosts       []Node `json:"hosts"`
	Switches    []Node `json:"switches"`
	Controllers []Node `json:"controllers"`
}

// SwitchNames returns the switch names in listing order, without duplicates.
func (d *Dump) SwitchNames() []string {
	seen := make(map[string]bool, len(d.Switches))
	names := make([]string, 0, len(d.Switches))
	for _, n := range d.Switches {
		if seen[n.Name] {
			continue
		}
		seen[n.Name] = true
		names = append(names, n.Name)
	}
	return names
}

var (
	dumpLineRe = regexp.MustCompile(`^<(\w+)\s+([^:\s]+):\s*(.*?)(?:\s+pid=(\d+))?\s*>$`)
	portLineRe = regexp.MustCompile(`^name=([^,\s]+),mac=([^,\s]+),ip=([^,\s]+),isUp=(True|False)$`)
	hwIDRe     = regexp.MustCompile(`^(?:0[xX])?[0-9A-Fa-f]+$`)
	decimalRe  = regexp.MustCompile(`^[0-9]+$`)
)

// ParseDump parses the emulator's topology dump. Lines that are not node
// entries (prompts, command echo) are ignored. It fails with a ParseError
// when the dump contains no switch.
func ParseDump(text string) (*Dump, error) {
	d := &Dump{}
	for _, line := range splitLines(text) {
		m := dumpLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		kind, ok := classifyNode(m[1])
		if !ok {
			util.Debugf("dump: ignoring node %s of class %s", m[2], m[1])
			continue
		}
		n := Node{Kind: kind, Class: m[1], Name: m[2], Detail: m[3]}
		if m[4] != "" {
			n.PID, _ = strconv.Atoi(m[4])
		}
		switch kind {
		case NodeHost:
			d.Hosts = append(d.Hosts, n)
		case NodeSwitch:
			d.Switches = append(d.Switches, n)
		case NodeController:
			d.Controllers = append(d.Controllers, n)
		}
	}
	if len(d.Switches) == 0 {
		return nil, util.NewParseError("dump", "no switch entries found")
	}
	return d, nil
}

// classifyNode maps a node class name (OVSSwitch, RemoteController, Host,
// CPULimitedHost, ...) to its kind.
func classifyNode(class string) (NodeKind, bool) {
	switch {
	case strings.HasSuffix(class, "Switch"), strings.HasSuffix(class, "Bridge"):
		return NodeSwitch, true
	case strings.HasSuffix(class, "Controller"), class == "NOX", class == "Ryu":
		return NodeController, true
	case strings.HasSuffix(class, "Host"), class == "Docker":
		return NodeHost, true
	}
	return "", false
}

// ParsePorts parses one switch's port listing, one record per line:
//
//	name=s1-eth1,mac=ce:c5:1e:ee:36:b4,ip=None,isUp=True
//
// "None" marks an absent MAC or IP. Non-record lines are skipped. A listing
// with no ports is a ParseError since every switch has at least a loopback.
func ParsePorts(switchName, text string) ([]Port, error) {
	var ports []Port
	seen := map[string]bool{}
	for _, line := range splitLines(text) {
		m := portLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if seen[m[1]] {
			util.WithSwitch(switchName).Warnf("duplicate port %s in listing, keeping first", m[1])
			continue
		}
		seen[m[1]] = true

		p := Port{Name: m[1], Up: m[4] == "True"}
		p.MAC, p.HasMAC = optionalField(m[2])
		p.IP, p.HasIP = optionalField(m[3])
		ports = append(ports, p)
	}
	if len(ports) == 0 {
		return nil, util.NewParseError("ports of "+switchName, "no port records found")
	}
	return ports, nil
}

func optionalField(v string) (string, bool) {
	if v == "None" {
		return "", false
	}
	return v, true
}

// ParseHardwareID extracts a switch's hardware identifier from driver text.
// A 16-digit OpenFlow datapath id or a 0x-prefixed value is read as hex,
// any other all-digit value as decimal. The first line that parses wins.
func ParseHardwareID(switchName, text string) (uint64, error) {
	for _, line := range splitLines(text) {
		v := strings.Trim(line, `'"`)
		if !hwIDRe.MatchString(v) {
			continue
		}
		id, err := parseHardwareIDValue(v)
		if err != nil {
			return 0, util.NewParseError("hardware id of "+switchName, err.Error())
		}
		return id, nil
	}
	return 0, util.NewParseError("hardware id of "+switchName, fmt.Sprintf("no identifier in %q", strings.TrimSpace(text)))
}

func parseHardwareIDValue(v string) (uint64, error) {
	switch {
	case strings.HasPrefix(v, "0x"), strings.HasPrefix(v, "0X"):
		return strconv.ParseUint(v[2:], 16, 64)
	case len(v) == 16, !decimalRe.MatchString(v):
		return strconv.ParseUint(v, 16, 64)
	default:
		return strconv.ParseUint(v, 10, 64)
	}
}

// activeTransports are the controller target protocols that describe an
// outbound connection to a controller. Their "p" counterparts (ptcp, pssl)
// are passive listeners on the switch itself.
var activeTransports = map[string]bool{
	"tcp": true,
	"ssl": true,
}

// ParseControllerList parses a switch's controller-connection listing:
//
//	ptcp:6634
//	tcp:192.168.5.11:6633
//
// and returns the active controller endpoints in listing order, without
// duplicates. Passive listeners and unparseable lines are skipped.
func ParseControllerList(text string) []Endpoint {
	var eps []Endpoint
	seen := map[Endpoint]bool{}
	for _, line := range splitLines(text) {
		ep, ok := parseControllerTarget(line)
		if !ok || seen[ep] {
			continue
		}
		seen[ep] = true
		eps = append(eps, ep)
	}
	return eps
}

// parseControllerTarget parses "<proto>:<address>:<port>" for an active
// transport. IPv6 addresses may be bracketed ("tcp:[::1]:6653").
func parseControllerTarget(line string) (Endpoint, bool) {
	proto, rest, ok := strings.Cut(line, ":")
	if !ok || !activeTransports[proto] {
		return Endpoint{}, false
	}
	i := strings.LastIndex(rest, ":")
	if i <= 0 {
		return Endpoint{}, false
	}
	addr := strings.TrimSuffix(strings.TrimPrefix(rest[:i], "["), "]")
	port, err := strconv.Atoi(rest[i+1:])
	if err != nil || port <= 0 || port > 65535 || addr == "" {
		return Endpoint{}, false
	}
	return Endpoint{Address: addr, Port: port}, true
}

// splitLines splits driver output into trimmed, non-empty lines. Terminal
// output carries CRLF line endings.
func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(strings.TrimRight(l, "\r"))
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
