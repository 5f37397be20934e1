package article

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// AskFunc answers a single question.
type AskFunc func(ctx context.Context, question string) (string, error)

// AnswerAll asks every question and returns the answers keyed by question
// key. At most limit questions are in flight at once; a limit below one
// means no limit. The first failure cancels the remaining calls and is
// returned.
func AnswerAll(ctx context.Context, questions []Question, ask AskFunc, limit int) (map[string]string, error) {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	var mu sync.Mutex
	answers := make(map[string]string, len(questions))

	for _, q := range questions {
		q := q
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			answer, err := ask(ctx, q.Text)
			if err != nil {
				return fmt.Errorf("question %q: %w", q.Key, err)
			}
			mu.Lock()
			answers[q.Key] = answer
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return answers, nil
}
