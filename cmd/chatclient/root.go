package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mercator-hq/chatclient/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "chatclient",
	Short: "Ask questions of the OpenAI chat completions API",
	Long: `chatclient sends questions to the OpenAI chat completions API and prints
the answers. It can fill article templates from a questions file and keeps an
optional log of raw requests, curl renderings and raw responses.

The API key is read from the configuration file, api.api_key_file,
CHATCLIENT_API_KEY or OPENAI_API_KEY.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a code derived from the
// error.
func Execute() {
	ctx, stop := cli.SignalContext(context.Background())
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		red := color.New(color.FgRed)
		if noColor {
			red.DisableColor()
		}
		fmt.Fprintln(os.Stderr, red.Sprint("Error:"), err)
	}
	os.Exit(cli.ExitCode(err))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}
