package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/chatclient/pkg/chat"
	"mercator-hq/chatclient/pkg/cli"
	"mercator-hq/chatclient/pkg/config"
)

var askFlags struct {
	file        string
	model       string
	system      string
	temperature float64
	maxTokens   int
	thread      bool
}

var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Ask questions one by one",
	Long: `Ask each question in turn and print its answer.

Questions come from the arguments, then from --file (one question per line;
blank lines and lines starting with # are skipped). With --thread every
question sees the previous questions and answers.

Examples:
  chatclient ask "What is the capital of France?"
  chatclient ask --file questions.txt --temperature 0.2
  chatclient ask --thread "Name a prime number" "Now a larger one"`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVarP(&askFlags.file, "file", "f", "", "file with one question per line")
	askCmd.Flags().StringVarP(&askFlags.model, "model", "m", "", "model (default from config)")
	askCmd.Flags().StringVar(&askFlags.system, "system", "", "system prompt (default from config)")
	askCmd.Flags().Float64VarP(&askFlags.temperature, "temperature", "t", 0, "sampling temperature, 0 to 2")
	askCmd.Flags().IntVar(&askFlags.maxTokens, "max-tokens", 0, "maximum tokens per answer")
	askCmd.Flags().BoolVar(&askFlags.thread, "thread", false, "keep earlier questions and answers as context")
}

func runAsk(cmd *cobra.Command, args []string) error {
	questions := append([]string(nil), args...)
	if askFlags.file != "" {
		fromFile, err := readQuestionLines(askFlags.file)
		if err != nil {
			return cli.NewUsageError("failed to read questions", err)
		}
		questions = append(questions, fromFile...)
	}
	if len(questions) == 0 {
		return cli.NewUsageError("no questions given (pass them as arguments or use --file)", nil)
	}

	a, err := newApp(cmd, appOptions{credential: true})
	if err != nil {
		return err
	}
	defer a.Close()

	settings, err := requestSettingsFromFlags(cmd, a.cfg)
	if err != nil {
		return err
	}

	var history []chat.Message
	for i, question := range questions {
		req, err := settings.newRequest(question, history)
		if err != nil {
			return cli.NewUsageError("invalid request settings", err)
		}

		resp, err := req.Perform(cmd.Context(), a.client, a.credential)
		if err != nil {
			a.printer.Failure("%s", question)
			return cli.NewCommandError("ask", err)
		}
		answer := strings.TrimSpace(resp.Content())

		if len(questions) > 1 {
			if i > 0 {
				a.printer.Text("")
			}
			a.printer.Field("Q", question)
		}
		a.printer.Text("%s", answer)
		if verbose {
			a.printer.Dim("tokens: %d prompt, %d completion", resp.Usage().PromptTokens(), resp.Usage().CompletionTokens())
		}

		if askFlags.thread {
			history = append(history,
				chat.NewMessage(chat.RoleUser, question),
				chat.NewMessage(chat.RoleAssistant, answer),
			)
		}
	}
	return nil
}

// requestSettings are the per-request knobs shared by ask and fill.
type requestSettings struct {
	model       chat.Model
	system      string
	temperature *float64
	maxTokens   int
}

// requestSettingsFromFlags layers the ask flags that were set on top of the
// [ask] config section.
func requestSettingsFromFlags(cmd *cobra.Command, cfg *config.Config) (*requestSettings, error) {
	s := &requestSettings{
		system:      cfg.Ask.SystemPrompt,
		temperature: cfg.Ask.Temperature,
		maxTokens:   cfg.Ask.MaxTokens,
	}

	name := cfg.API.Model
	if askFlags.model != "" {
		name = askFlags.model
	}
	model, err := chat.ParseModel(name)
	if err != nil {
		return nil, cli.NewUsageError("invalid model", err)
	}
	s.model = model

	flags := cmd.Flags()
	if flags.Changed("system") {
		s.system = askFlags.system
	}
	if flags.Changed("temperature") {
		t := askFlags.temperature
		s.temperature = &t
	}
	if flags.Changed("max-tokens") {
		s.maxTokens = askFlags.maxTokens
	}
	return s, nil
}

// newRequest builds a request for question after the given history.
func (s *requestSettings) newRequest(question string, history []chat.Message) (*chat.Request, error) {
	req := chat.NewRequest(s.model)
	if s.system != "" {
		req.AddMessage(chat.NewMessage(chat.RoleSystem, s.system))
	}
	req.AddMessages(history...)
	req.AddMessage(chat.NewMessage(chat.RoleUser, question))

	if s.temperature != nil {
		if err := req.SetTemperature(*s.temperature); err != nil {
			return nil, err
		}
	}
	if s.maxTokens > 0 {
		if err := req.SetMaxTokens(s.maxTokens); err != nil {
			return nil, err
		}
	}
	return req, nil
}

// askFunc adapts the settings to a single-question function.
func (s *requestSettings) askFunc(a *app) func(ctx context.Context, question string) (string, error) {
	return func(ctx context.Context, question string) (string, error) {
		req, err := s.newRequest(question, nil)
		if err != nil {
			return "", err
		}
		resp, err := req.Perform(ctx, a.client, a.credential)
		if err != nil {
			return "", err
		}
		return resp.Content(), nil
	}
}

func readQuestionLines(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var questions []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		questions = append(questions, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return questions, nil
}
