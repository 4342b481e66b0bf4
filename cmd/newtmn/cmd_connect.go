package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/newtron-network/newtmn/pkg/audit"
	"github.com/newtron-network/newtmn/pkg/cli"
	"github.com/newtron-network/newtmn/pkg/metrics"
	"github.com/newtron-network/newtmn/pkg/switches"
)

func newConnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect <switch> <controller>...",
		Short: "Replace a switch's controller set",
		Long: `Connect a switch to the given controllers, in order.

The new set replaces whatever the switch was connected to before; to add a
controller, list the existing ones as well. Controllers are names from the
lab file or literal host:port pairs.

  newtmn connect s1 c1
  newtmn connect s1 c1 c2
  newtmn connect s2 10.0.0.9:6653`,
		Args: cobra.MinimumNArgs(2),
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
			ctrls, names, err := resolveControllers(l.ctrls, args[1:])
			if err != nil {
				return err
			}

			closeAudit, err := openAudit(l.cfg)
			if err != nil {
				return err
			}
			defer closeAudit()

			start := time.Now()
			err = l.mgr.ConnectToControllers(cmd.Context(), sw, ctrls)
			recordAudit(audit.NewEvent(auditUser(), sw.Name, audit.OpConnect).
				WithLab(l.cfg.Lab).
				WithControllers(names...).
				WithDuration(time.Since(start)).
				WithError(err))
			if err != nil {
				return err
			}
			rememberSwitch(sw.Name)

			fmt.Printf("%s %s -> %s\n", green("connected"), sw.Name, strings.Join(names, ", "))
			return nil
		},
	}
}

func newDisconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect <switch>",
		Short: "Disconnect a switch from all controllers",
		Args:  cobra.ExactArgs(1),
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

			closeAudit, err := openAudit(l.cfg)
			if err != nil {
				return err
			}
			defer closeAudit()

			start := time.Now()
			err = l.mgr.DisconnectControllers(cmd.Context(), sw)
			recordAudit(audit.NewEvent(auditUser(), sw.Name, audit.OpDisconnect).
				WithLab(l.cfg.Lab).
				WithDuration(time.Since(start)).
				WithError(err))
			if err != nil {
				return err
			}
			rememberSwitch(sw.Name)

			fmt.Printf("%s %s\n", yellow("disconnected"), sw.Name)
			return nil
		},
	}
}

// connectionView is one row of "controllers" output.
type connectionView struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
	Port    int    `json:"port"`
	Known   bool   `json:"known"`
}

func newControllersCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "controllers <switch>",
		Short: "Show the controllers a switch is connected to",
		Long: `Show the controllers a switch is actively connected to.

By default only controllers named in the lab file are listed. With --all,
connections to endpoints the lab file does not know are shown too.

  newtmn controllers s1
  newtmn controllers s1 --all`,
		Args: cobra.ExactArgs(1),
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

			var rows []connectionView
			if all {
				eps, err := l.mgr.ConnectedEndpoints(cmd.Context(), sw)
				if err != nil {
					return err
				}
				rows = l.describeEndpoints(eps)
			} else {
				ctrls, err := l.mgr.GetConnectedControllers(cmd.Context(), sw, l.ctrls)
				if err != nil {
					return err
				}
				for _, c := range ctrls {
					rows = append(rows, l.describe(switches.EndpointOf(c)))
				}
			}
			metrics.DefaultRegistry().SetControllersConnected(sw.Name, len(rows))

			if jsonOutput {
				if rows == nil {
					rows = []connectionView{}
				}
				return printJSON(rows)
			}
			if len(rows) == 0 {
				fmt.Printf("%s is not connected to any known controller\n", sw.Name)
				return nil
			}
			t := cli.NewTable("CONTROLLER", "ADDRESS", "PORT")
			for _, r := range rows {
				name := r.Name
				if !r.Known {
					name = yellow("unknown")
				}
				t.Row(name, r.Address, strconv.Itoa(r.Port))
			}
			t.Flush()
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include endpoints not in the lab file")
	return cmd
}

func (l *lab) describeEndpoints(eps []switches.Endpoint) []connectionView {
	rows := make([]connectionView, 0, len(eps))
	for _, ep := range eps {
		rows = append(rows, l.describe(ep))
	}
	return rows
}

func (l *lab) describe(ep switches.Endpoint) connectionView {
	v := connectionView{Address: ep.Address, Port: ep.Port}
	if c, ok := l.ctrls.Lookup(ep); ok {
		v.Name, v.Known = c.Name, true
	}
	return v
}
