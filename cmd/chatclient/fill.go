package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/chatclient/pkg/article"
	"mercator-hq/chatclient/pkg/cli"
)

var fillFlags struct {
	article     string
	questions   string
	output      string
	concurrency int
	dryRun      bool
}

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill an article template with answers",
	Long: `Fill every {{key}} placeholder of an article with the answer to the
matching question of a TOML questions file.

Questions file:
  earth-be-like = "What is earth like? Answer in one sentence."

Article:
  As we all know, Earth is {{earth-be-like}}

Every placeholder must have a question. Questions without a placeholder are
skipped. With --dry-run the placeholders are listed and nothing is sent.

Examples:
  chatclient fill --article article.md --questions questions.toml
  chatclient fill --article article.md --questions questions.toml -o out.md --concurrency 2`,
	Args: cobra.NoArgs,
	RunE: runFill,
}

func init() {
	rootCmd.AddCommand(fillCmd)

	fillCmd.Flags().StringVarP(&fillFlags.article, "article", "a", "", "article template (required)")
	fillCmd.Flags().StringVarP(&fillFlags.questions, "questions", "q", "", "TOML questions file (required)")
	fillCmd.Flags().StringVarP(&fillFlags.output, "output", "o", "", "output file (default: stdout)")
	fillCmd.Flags().IntVar(&fillFlags.concurrency, "concurrency", 0, "questions in flight at once (default from config)")
	fillCmd.Flags().BoolVar(&fillFlags.dryRun, "dry-run", false, "list placeholders without asking")
	_ = fillCmd.MarkFlagRequired("article")
	_ = fillCmd.MarkFlagRequired("questions")
}

func runFill(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(fillFlags.article)
	if err != nil {
		return cli.NewUsageError("failed to read article", err)
	}
	template := string(data)

	questions, err := article.LoadQuestions(fillFlags.questions)
	if err != nil {
		return cli.NewUsageError("failed to load questions", err)
	}

	byKey := make(map[string]article.Question, len(questions))
	for _, q := range questions {
		byKey[q.Key] = q
	}

	var needed []article.Question
	var unmatched []string
	for _, key := range article.Placeholders(template) {
		q, ok := byKey[key]
		if !ok {
			unmatched = append(unmatched, key)
			continue
		}
		needed = append(needed, q)
	}
	if len(unmatched) > 0 {
		return cli.NewUsageError(fmt.Sprintf("no question for placeholders: %s", strings.Join(unmatched, ", ")), nil)
	}

	if fillFlags.dryRun {
		printer := cli.NewPrinter(cmd.OutOrStdout(), noColor)
		for _, q := range needed {
			printer.Field(q.Key, q.Text)
		}
		for _, key := range article.Unused(template, questions) {
			printer.Warning("unused question %q", key)
		}
		return nil
	}

	a, err := newApp(cmd, appOptions{credential: true})
	if err != nil {
		return err
	}
	defer a.Close()

	for _, key := range article.Unused(template, questions) {
		a.logger.Warn("question has no placeholder", "key", key)
	}

	settings, err := requestSettingsFromFlags(cmd, a.cfg)
	if err != nil {
		return err
	}
	if _, err := settings.newRequest("", nil); err != nil {
		return cli.NewUsageError("invalid request settings", err)
	}

	concurrency := a.cfg.Ask.Concurrency
	if fillFlags.concurrency > 0 {
		concurrency = fillFlags.concurrency
	}

	progress := cli.NewProgressReporter(cmd.ErrOrStderr())
	progress.Start(len(needed))
	ask := settings.askFunc(a)

	answers, err := article.AnswerAll(cmd.Context(), needed, func(ctx context.Context, question string) (string, error) {
		answer, err := ask(ctx, question)
		if err == nil {
			progress.Increment()
		}
		return answer, err
	}, concurrency)
	if err != nil {
		progress.Error(err)
		return cli.NewCommandError("fill", err)
	}
	progress.Finish()

	filled, err := article.Fill(template, answers)
	if err != nil {
		return cli.NewCommandError("fill", err)
	}

	if fillFlags.output == "" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), filled)
		return err
	}
	if err := os.WriteFile(fillFlags.output, []byte(filled), 0o644); err != nil {
		return cli.NewCommandError("fill", err)
	}
	a.printer.Success("wrote %s (%d answers)", fillFlags.output, len(answers))
	return nil
}
