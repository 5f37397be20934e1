package retention

import (
	"context"
	"testing"
	"time"

	"mercator-hq/chatclient/pkg/exchangelog/storage"
)

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		wantErr     bool
		wantRunning bool
	}{
		{"daily", "0 3 * * *", false, true},
		{"every six hours", "0 */6 * * *", false, true},
		{"empty schedule", "", false, false},
		{"invalid", "not a cron line", true, false},
		{"too many fields", "0 0 3 * * *", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			p := NewPruner(storage.NewMemoryStorage(), &Config{RetentionDays: 30, PruneSchedule: tt.schedule})
			err := p.Start(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Start() error = %v, wantErr %v", err, tt.wantErr)
			}
			defer p.Stop()

			if got := p.scheduler.IsRunning(); got != tt.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", got, tt.wantRunning)
			}

			next := p.NextPruning()
			if tt.wantRunning {
				if next == nil || !next.After(time.Now()) {
					t.Errorf("NextPruning() = %v, want a future time", next)
				}
			} else if next != nil {
				t.Errorf("NextPruning() = %v, want nil", next)
			}
		})
	}
}

func TestScheduler_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := NewPruner(storage.NewMemoryStorage(), &Config{PruneSchedule: "0 3 * * *"})
	if err := p.Start(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for p.scheduler.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("scheduler still running after context cancellation")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestScheduler_StopIdempotent(t *testing.T) {
	p := NewPruner(storage.NewMemoryStorage(), &Config{PruneSchedule: "0 3 * * *"})
	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	p.Stop()
	p.Stop()

	if p.scheduler.IsRunning() {
		t.Error("scheduler running after Stop")
	}
}
