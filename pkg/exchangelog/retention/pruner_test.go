package retention

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/chatclient/pkg/exchangelog"
	"mercator-hq/chatclient/pkg/exchangelog/storage"
)

var now = time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)

// seed stores one record per age, in days before now.
func seed(t *testing.T, s exchangelog.Storage, agesInDays ...int) {
	t.Helper()
	for i, days := range agesInDays {
		r := &exchangelog.Record{
			ID:        fmt.Sprintf("rec-%02d", i),
			RequestID: fmt.Sprintf("req-%02d", i),
			Operation: "perform",
			StartTime: now.AddDate(0, 0, -days).Add(time.Duration(i) * time.Second),
			Method:    "POST",
			URL:       "https://api.openai.com/v1/chat/completions",
			Outcome:   "ok",
		}
		if err := s.Store(context.Background(), r); err != nil {
			t.Fatal(err)
		}
	}
}

func newTestPruner(s exchangelog.Storage, cfg *Config) *Pruner {
	p := NewPruner(s, cfg)
	p.now = func() time.Time { return now }
	return p
}

func remainingIDs(t *testing.T, s exchangelog.Storage) []string {
	t.Helper()
	records, err := s.List(context.Background(), &exchangelog.Query{SortOrder: "asc"})
	if err != nil {
		t.Fatal(err)
	}
	out := []string{}
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestPruner_Prune(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		ages        []int
		wantDeleted int64
		wantLeft    []string
	}{
		{
			name:        "age only",
			config:      Config{RetentionDays: 30},
			ages:        []int{60, 31, 29, 1},
			wantDeleted: 2,
			wantLeft:    []string{"rec-02", "rec-03"},
		},
		{
			name:        "keep forever",
			config:      Config{RetentionDays: -1},
			ages:        []int{400, 1},
			wantDeleted: 0,
			wantLeft:    []string{"rec-00", "rec-01"},
		},
		{
			name:        "count only",
			config:      Config{MaxRecords: 2},
			ages:        []int{5, 4, 3, 2, 1},
			wantDeleted: 3,
			wantLeft:    []string{"rec-03", "rec-04"},
		},
		{
			name:        "age then count",
			config:      Config{RetentionDays: 10, MaxRecords: 1},
			ages:        []int{20, 5, 3},
			wantDeleted: 2,
			wantLeft:    []string{"rec-02"},
		},
		{
			name:        "under the cap",
			config:      Config{MaxRecords: 10},
			ages:        []int{3, 2},
			wantDeleted: 0,
			wantLeft:    []string{"rec-00", "rec-01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := storage.NewMemoryStorage()
			seed(t, s, tt.ages...)

			cfg := tt.config
			deleted, err := newTestPruner(s, &cfg).Prune(context.Background())
			if err != nil {
				t.Fatalf("Prune() error = %v", err)
			}
			if deleted != tt.wantDeleted {
				t.Errorf("Prune() deleted %d, want %d", deleted, tt.wantDeleted)
			}

			left := remainingIDs(t, s)
			if fmt.Sprint(left) != fmt.Sprint(tt.wantLeft) {
				t.Errorf("remaining = %v, want %v", left, tt.wantLeft)
			}
		})
	}
}

func TestPruner_Archive(t *testing.T) {
	s := storage.NewMemoryStorage()
	seed(t, s, 40, 35, 1)
	archiveDir := filepath.Join(t.TempDir(), "archive")

	p := newTestPruner(s, &Config{RetentionDays: 30, ArchivePath: archiveDir})
	if _, err := p.Prune(context.Background()); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}

	f, err := os.Open(filepath.Join(archiveDir, "exchanges-2023-06-01.jsonl"))
	if err != nil {
		t.Fatalf("archive file missing: %v", err)
	}
	defer f.Close()

	var archived []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r exchangelog.Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("archive line is not a record: %v", err)
		}
		archived = append(archived, r.ID)
	}

	if fmt.Sprint(archived) != "[rec-00 rec-01]" {
		t.Errorf("archived = %v", archived)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.RetentionDays != 30 || cfg.PruneSchedule != "0 3 * * *" || cfg.MaxRecords != 0 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

type failingDelete struct {
	*storage.MemoryStorage
}

func (failingDelete) DeleteBefore(context.Context, time.Time) (int64, error) {
	return 0, exchangelog.NewStorageError("memory", "delete", errors.New("disk full"))
}

func TestPruner_StorageFailure(t *testing.T) {
	p := newTestPruner(failingDelete{storage.NewMemoryStorage()}, &Config{RetentionDays: 30})

	_, err := p.Prune(context.Background())
	var se *exchangelog.StorageError
	if !errors.As(err, &se) || se.Operation != "delete" {
		t.Fatalf("expected the delete *StorageError, got %v", err)
	}
}
