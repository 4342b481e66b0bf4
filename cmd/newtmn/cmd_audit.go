package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/newtron-network/newtmn/pkg/audit"
	"github.com/newtron-network/newtmn/pkg/cli"
)

func newAuditCmd() *cobra.Command {
	var (
		filter   audit.Filter
		since    time.Duration
		failures bool
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recorded controller changes",
		Long: `Show the audit log of connect, disconnect and snapshot operations.
Events print oldest first; --limit keeps the most recent ones and --offset
pages further back.

  newtmn audit
  newtmn audit --limit 20 --offset 20
  newtmn audit --switch s1 --since 1h
  newtmn audit --failures --limit 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			closeAudit, err := openAudit(cfg)
			if err != nil {
				return err
			}
			defer closeAudit()

			if since > 0 {
				filter.StartTime = time.Now().Add(-since)
			}
			filter.FailureOnly = failures

			events, err := audit.Query(filter)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(events)
			}
			if len(events) == 0 {
				fmt.Println("no audit events")
				return nil
			}

			t := cli.NewTable("TIME", "USER", "SWITCH", "OPERATION", "CONTROLLERS", "RESULT")
			for _, e := range events {
				result := cli.Result(e.Success)
				if !e.Success && e.Error != "" {
					result += " " + firstLine(e.Error)
				}
				t.Row(e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.User, e.Switch,
					e.Operation, cli.Optional(strings.Join(e.Controllers, ","), true), result)
			}
			t.Flush()
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Switch, "switch", "", "only events for this switch")
	cmd.Flags().StringVar(&filter.Operation, "operation", "", "only this operation (e.g. controllers.connect)")
	cmd.Flags().StringVar(&filter.Controller, "controller", "", "only events involving this controller")
	cmd.Flags().StringVar(&filter.User, "user", "", "only events by this user")
	cmd.Flags().DurationVar(&since, "since", 0, "only events newer than this")
	cmd.Flags().BoolVar(&failures, "failures", false, "only failed operations")
	cmd.Flags().IntVar(&filter.Limit, "limit", 50, "show at most this many of the most recent events")
	cmd.Flags().IntVar(&filter.Offset, "offset", 0, "skip this many of the most recent events")
	return cmd
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
