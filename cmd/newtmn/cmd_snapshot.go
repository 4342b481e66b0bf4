package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/newtron-network/newtmn/pkg/audit"
	"github.com/newtron-network/newtmn/pkg/cli"
	"github.com/newtron-network/newtmn/pkg/config"
	"github.com/newtron-network/newtmn/pkg/snapshot"
	"github.com/newtron-network/newtmn/pkg/switches"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Publish the switch inventory to Redis",
		Long: `Publish the discovered switches and ports to the Redis database named in
the lab file, so other tools can read the inventory without Mininet.

  newtmn snapshot push
  newtmn snapshot show
  newtmn snapshot show s1
  newtmn snapshot show s1 s1-eth2
  newtmn snapshot clear`,
	}
	cmd.AddCommand(newSnapshotPushCmd(), newSnapshotShowCmd(), newSnapshotClearCmd())
	return cmd
}

func openStore(cfg *config.Config) *snapshot.Store {
	return snapshot.NewStore(cfg.Redis.Addr, cfg.Redis.DB)
}

func newSnapshotPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Discover switches and store them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := openLab(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()

			store := openStore(l.cfg)
			defer store.Close()
			if err := store.Ping(cmd.Context()); err != nil {
				return fmt.Errorf("redis at %s unreachable: %w", l.cfg.Redis.Addr, err)
			}

			closeAudit, err := openAudit(l.cfg)
			if err != nil {
				return err
			}
			defer closeAudit()

			start := time.Now()
			err = store.Save(cmd.Context(), l.cfg.Lab, l.mgr.Switches())
			recordAudit(audit.NewEvent(auditUser(), "*", audit.OpSnapshot).
				WithLab(l.cfg.Lab).
				WithDuration(time.Since(start)).
				WithError(err))
			if err != nil {
				return err
			}
			fmt.Printf("%s %d switches to %s db %d\n", green("stored"), l.mgr.Len(), l.cfg.Redis.Addr, l.cfg.Redis.DB)
			return nil
		},
	}
}

func newSnapshotShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [switch [port]]",
		Short: "Show the stored inventory",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store := openStore(cfg)
			defer store.Close()

			if len(args) > 0 {
				sw, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return showSwitch(sw, args[1:])
			}

			sws, meta, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			reg, err := switches.NewRegistry(sws)
			if err != nil {
				return fmt.Errorf("stored snapshot: %w", err)
			}
			if jsonOutput {
				views := make([]switchView, 0, reg.Len())
				for _, sw := range reg.Switches() {
					views = append(views, viewOf(sw))
				}
				return printJSON(views)
			}
			if reg.Len() == 0 {
				fmt.Println("no snapshot stored")
				return nil
			}

			fmt.Printf("lab %s, taken %s\n\n", bold(cli.Optional(meta.Lab, true)), meta.TakenAt.Local().Format(time.RFC1123))
			t := cli.NewTable("SWITCH", "DPID", "PORTS", "UP")
			for _, sw := range reg.Switches() {
				t.Row(sw.Name, sw.DPID(), strconv.Itoa(len(sw.Ports)), strconv.Itoa(upCount(sw)))
			}
			t.Flush()
			if meta.SwitchCount != reg.Len() {
				fmt.Printf("\n%s snapshot recorded %d switches, %d stored\n", yellow("warning:"), meta.SwitchCount, reg.Len())
			}
			return nil
		},
	}
}

func newSnapshotClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored inventory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store := openStore(cfg)
			defer store.Close()

			closeAudit, err := openAudit(cfg)
			if err != nil {
				return err
			}
			defer closeAudit()

			n, err := store.Clear(cmd.Context())
			recordAudit(audit.NewEvent(auditUser(), "*", audit.OpClear).WithLab(cfg.Lab).WithError(err))
			if err != nil {
				return err
			}
			fmt.Printf("removed %d keys\n", n)
			return nil
		},
	}
}
