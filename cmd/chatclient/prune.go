package main

import (
	"github.com/spf13/cobra"

	"mercator-hq/chatclient/pkg/cli"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the exchange log retention policy once",
	Long: `Delete exchange records older than exchange_log.retention_days, then the
oldest records beyond exchange_log.max_records.`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, appOptions{exchangeLog: true})
	if err != nil {
		return err
	}
	defer a.Close()

	deleted, err := a.pruner.Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("prune", err)
	}

	a.printer.Success("pruned %d records", deleted)
	return nil
}
