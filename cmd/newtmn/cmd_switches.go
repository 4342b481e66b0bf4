package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/newtron-network/newtmn/pkg/cli"
	"github.com/newtron-network/newtmn/pkg/switches"
	"github.com/newtron-network/newtmn/pkg/util"
)

// switchView is the JSON form of a discovered switch.
type switchView struct {
	Name       string          `json:"name"`
	DPID       string          `json:"dpid"`
	HardwareID uint64          `json:"hardware_id"`
	Ports      []switches.Port `json:"ports"`
}

func viewOf(sw *switches.Switch) switchView {
	return switchView{Name: sw.Name, DPID: sw.DPID(), HardwareID: sw.HardwareID, Ports: sw.Ports}
}

func newSwitchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switches",
		Short: "Discover and list switches",
		Long: `Discover the switches of the running emulation and list them.

Hardware ids are shown both as reported and as a 16-digit datapath id.
Distinct switches may share an id.

  newtmn switches
  newtmn switches --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := openLab(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()

			sws := l.mgr.Switches()
			if jsonOutput {
				views := make([]switchView, len(sws))
				for i, sw := range sws {
					views[i] = viewOf(sw)
				}
				return printJSON(views)
			}

			t := cli.NewTable("SWITCH", "DPID", "HW ID", "PORTS", "UP")
			for _, sw := range sws {
				t.Row(sw.Name, sw.DPID(), strconv.FormatUint(sw.HardwareID, 10),
					strconv.Itoa(len(sw.Ports)), strconv.Itoa(upCount(sw)))
			}
			t.Flush()

			if topo := l.mgr.Topology(); topo != nil {
				fmt.Printf("\n%d switches, %d hosts, %d controllers in %s\n",
					len(topo.Switches), len(topo.Hosts), len(topo.Controllers), labName(l))
			}
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <switch> [port]",
		Short: "Show a switch's ports",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := openLab(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()

			sw, err := l.mgr.GetSwitch(args[0])
			if err != nil {
				return err
			}
			return showSwitch(sw, args[1:])
		},
	}
}

// showSwitch prints a switch and its ports, or only the port named in
// portArg when one is given.
func showSwitch(sw *switches.Switch, portArg []string) error {
	ports, err := selectPorts(sw, portArg)
	if err != nil {
		return err
	}
	if jsonOutput {
		if len(portArg) > 0 {
			return printJSON(ports[0])
		}
		return printJSON(viewOf(sw))
	}

	fmt.Printf("%s  dpid %s\n\n", bold(sw.Name), sw.DPID())
	t := cli.NewTable("PORT", "MAC", "IP", "STATE").WithPrefix("  ")
	for _, p := range ports {
		mac, hasMAC := p.MACAddress()
		ip, hasIP := p.IPAddress()
		t.Row(p.Name, cli.Optional(mac, hasMAC), cli.Optional(ip, hasIP), cli.LinkState(p.Up))
	}
	t.Flush()
	return nil
}

func selectPorts(sw *switches.Switch, portArg []string) ([]switches.Port, error) {
	if len(portArg) == 0 {
		return sw.Ports, nil
	}
	p, ok := sw.Port(portArg[0])
	if !ok {
		return nil, util.NewNotFoundError("port", sw.Name+"/"+portArg[0])
	}
	return []switches.Port{p}, nil
}

func upCount(sw *switches.Switch) int {
	n := 0
	for _, p := range sw.Ports {
		if p.Up {
			n++
		}
	}
	return n
}

func labName(l *lab) string {
	if l.cfg.Lab != "" {
		return l.cfg.Lab
	}
	return "lab"
}
