package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"BotDash/internal/di"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [query]",
	Short: "Render one dashboard cycle and print it as JSON",
	Long: `Run a single fetch and compose cycle against the configured backend
and print the resulting snapshot.

Examples:
  botdash snapshot
  botdash snapshot 'symbol=ETHUSDT&interval=1h&vwap=true'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSnapshot,
}

var snapshotIndent bool

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().BoolVar(&snapshotIndent, "indent", false, "Pretty-print the JSON output")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	q, err := queryArg(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("app initialization failed: %w", err)
	}
	defer cleanup()

	snap, err := app.Hub().Snapshot(cmd.Context(), q)
	if err != nil {
		return fmt.Errorf("snapshot failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	if snapshotIndent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(snap)
}

func queryArg(args []string) (url.Values, error) {
	if len(args) == 0 {
		return url.Values{}, nil
	}
	q, err := url.ParseQuery(args[0])
	if err != nil {
		return nil, fmt.Errorf("malformed query: %w", err)
	}
	return q, nil
}
