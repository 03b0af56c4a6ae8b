package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"BotDash/internal/di"
)

var queryCmd = &cobra.Command{
	Use:   "query [query]",
	Short: "Normalize a dashboard query string",
	Long: `Parse a dashboard query, apply the configured defaults, validate it
and print its canonical form. The backend is not contacted.

Examples:
  botdash query 'symbol=ETHUSDT&anchorTs=2024-03-01T00:00:00Z'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	q, err := queryArg(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	filters := di.ProvideFilterStateManager(cfg)
	f := filters.Parse(q)
	if err := filters.Validate(f); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), filters.Serialize(f).Encode())
	return nil
}
