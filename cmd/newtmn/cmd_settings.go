package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newtron-network/newtmn/pkg/cli"
	"github.com/newtron-network/newtmn/pkg/settings"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage persistent CLI settings",
		Long: `Settings are stored in ~/.newtmn/settings.json.

  newtmn settings show
  newtmn settings set config ./lab.yaml
  newtmn settings set audit /var/log/newtmn/audit.log
  newtmn settings clear`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := settings.Load()
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(s)
				}
				t := cli.NewTable("SETTING", "VALUE")
				t.Row("config", cli.Optional(s.ConfigPath, true))
				t.Row("audit", cli.Optional(s.AuditLog, true))
				t.Row("last switch", cli.Optional(s.LastSwitch, true))
				t.Flush()
				fmt.Printf("\n(%s)\n", settings.DefaultSettingsPath())
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set a setting (config, audit)",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				err := settings.Update(func(s *settings.Settings) error {
					return applySetting(s, args[0], args[1])
				})
				if err != nil {
					return err
				}
				fmt.Printf("%s = %s\n", args[0], args[1])
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Reset all settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s := &settings.Settings{}
				return s.Save()
			},
		},
	)
	return cmd
}

func applySetting(s *settings.Settings, key, value string) error {
	switch key {
	case "config":
		s.SetConfigPath(value)
	case "audit":
		s.SetAuditLog(value)
	default:
		return fmt.Errorf("unknown setting %q (want config or audit)", key)
	}
	return nil
}
