// newtmn: switch discovery and controller wiring for Mininet labs
//
// newtmn attaches to a running Mininet CLI (over SSH or as a local child
// process), discovers its Open vSwitch switches, and moves them between
// SDN controllers during test scenarios.
//
// Usage:
//
//	newtmn switches                        List discovered switches
//	newtmn show <switch>                   Show a switch's ports
//	newtmn connect <switch> <ctrl>...      Replace a switch's controllers
//	newtmn disconnect <switch>             Remove all controllers
//	newtmn controllers <switch>            Show connected controllers
//	newtmn snapshot push|show|clear        Publish inventory to Redis
//	newtmn audit                           Show recorded changes
//	newtmn settings show|set|clear         Persistent CLI settings
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/newtron-network/newtmn/pkg/cli"
	"github.com/newtron-network/newtmn/pkg/metrics"
	"github.com/newtron-network/newtmn/pkg/settings"
	"github.com/newtron-network/newtmn/pkg/util"
	"github.com/newtron-network/newtmn/pkg/version"
)

var (
	configPath      string
	verbose         bool
	logJSON         bool
	jsonOutput      bool
	metricsTextfile string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, red("error:"), err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "newtmn",
	Short:             "Switch discovery and controller wiring for Mininet labs",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `newtmn attaches to a running Mininet CLI, discovers its switches, and
connects them to (or disconnects them from) SDN controllers.

The lab file names the Mininet host and the controllers:

  newtmn -c lab.yaml switches
  newtmn -c lab.yaml connect s1 c1 c2`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		util.Configure(verbose, logJSON)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		path := metricsTextfile
		if path == "" && loadedConfig != nil {
			path = loadedConfig.Metrics.Textfile
		}
		if path == "" {
			return nil
		}
		if err := metrics.DefaultRegistry().WriteTextfile(path); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "lab file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "JSON output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write logs as JSON lines")
	rootCmd.PersistentFlags().StringVar(&metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file on exit")

	rootCmd.AddCommand(
		newSwitchesCmd(),
		newShowCmd(),
		newConnectCmd(),
		newDisconnectCmd(),
		newControllersCmd(),
		newSnapshotCmd(),
		newAuditCmd(),
		newSettingsCmd(),
		newVersionCmd(),
	)
}

// requireConfig resolves the lab file from: -c flag > NEWTMN_CONFIG env > settings > error.
func requireConfig() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	if v := os.Getenv("NEWTMN_CONFIG"); v != "" {
		return v, nil
	}
	if s, err := settings.Load(); err == nil && s.ConfigPath != "" {
		return s.ConfigPath, nil
	}
	return "", fmt.Errorf("lab file required: use -c <file>, set NEWTMN_CONFIG, or run 'newtmn settings set config <file>'")
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput {
				return printJSON(version.Get())
			}
			if version.Version == "dev" {
				fmt.Println("newtmn dev build")
			} else {
				fmt.Printf("newtmn %s\n", version.Info())
			}
			return nil
		},
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func green(s string) string  { return cli.Green(s) }
func yellow(s string) string { return cli.Yellow(s) }
func red(s string) string    { return cli.Red(s) }
func bold(s string) string   { return cli.Bold(s) }
