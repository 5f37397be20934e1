/*
Package cli provides helpers shared by the chatclient commands.

Status output:

Printer writes colored status lines. Colors are dropped when the writer is
not a terminal or NO_COLOR is set:

	p := cli.NewPrinter(cmd.OutOrStdout(), noColor)
	p.Success("access granted")
	p.Failure("request failed: %v", err)

Progress Reporting:

The fill command reports answered questions on stderr:

	progress := cli.NewProgressReporter(cmd.ErrOrStderr())
	progress.Start(len(questions))
	progress.Increment()
	progress.Finish()

Exit codes:

ExitCode maps a command error to a process exit code so scripts can tell an
unreachable server from a rejected key:

	os.Exit(cli.ExitCode(err))

Signal Handling:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
*/
package cli
