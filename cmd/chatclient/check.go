package main

import (
	"errors"

	"github.com/spf13/cobra"

	"mercator-hq/chatclient/pkg/cli"
)

var errAccessDenied = errors.New("access denied")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the API accepts the configured key",
	Long: `Check lists the models visible to the configured key. It succeeds only
when the models endpoint answers 200.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, appOptions{credential: true})
	if err != nil {
		return err
	}
	defer a.Close()

	granted, err := a.client.CheckAccess(cmd.Context(), a.credential)
	if err != nil {
		a.printer.Failure("%s is not reachable", a.cfg.API.ModelsEndpoint)
		return cli.NewCommandError("check", err)
	}
	if !granted {
		a.printer.Failure("access denied by %s", a.cfg.API.ModelsEndpoint)
		return cli.NewCommandError("check", errAccessDenied)
	}

	a.printer.Success("access granted")
	if org, ok := a.credential.Organization(); ok {
		a.printer.Field("Organization", org)
	}
	return nil
}
