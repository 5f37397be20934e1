package retention

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mercator-hq/chatclient/pkg/exchangelog"
	"mercator-hq/chatclient/pkg/exchangelog/export"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to keep records.
	// Zero or negative keeps records forever.
	RetentionDays int

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	MaxRecords int64

	// PruneSchedule is a cron expression for scheduled pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// ArchivePath, when set, is a directory receiving a JSON lines file of
	// every record before it is deleted.
	ArchivePath string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 30,
		PruneSchedule: "0 3 * * *",
	}
}

// Pruner deletes records older than the retention period or beyond the
// record cap.
type Pruner struct {
	storage   exchangelog.Storage
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
	now       func() time.Time
}

// NewPruner creates a new retention pruner.
func NewPruner(storage exchangelog.Storage, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	pruner := &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "exchangelog.retention"),
		now:     time.Now,
	}
	pruner.scheduler = NewScheduler(pruner)

	return pruner
}

// Prune runs one retention pass and returns the number of records deleted.
//
// Pruning happens in two phases:
//  1. Age: delete records older than RetentionDays
//  2. Count: while more than MaxRecords remain, delete the oldest
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	if p.config.RetentionDays > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		totalDeleted += deleted
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		totalDeleted += deleted
	}

	if totalDeleted > 0 {
		p.logger.Info("exchange log pruned",
			"total_deleted", totalDeleted,
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	} else {
		p.logger.Debug("no records pruned")
	}

	return totalDeleted, nil
}

func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := p.now().AddDate(0, 0, -p.config.RetentionDays)

	if p.config.ArchivePath != "" {
		if err := p.archiveQuery(ctx, &exchangelog.Query{EndTime: &cutoff}); err != nil {
			return 0, fmt.Errorf("archive records older than %d days: %w", p.config.RetentionDays, err)
		}
	}

	deleted, err := p.storage.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete records older than %d days: %w", p.config.RetentionDays, err)
	}
	return deleted, nil
}

// pruneByCount deletes the oldest records in batches of at most
// exchangelog.MaxLimit until the cap holds. Records sharing the cutoff
// timestamp go together, so slightly more than the excess can be removed.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	var totalDeleted int64

	for {
		count, err := p.storage.Count(ctx, &exchangelog.Query{})
		if err != nil {
			return totalDeleted, fmt.Errorf("failed to count records: %w", err)
		}
		if count <= p.config.MaxRecords {
			return totalDeleted, nil
		}

		toDelete := count - p.config.MaxRecords
		if toDelete > exchangelog.MaxLimit {
			toDelete = exchangelog.MaxLimit
		}

		oldest, err := p.storage.List(ctx, &exchangelog.Query{
			Limit:     int(toDelete),
			SortOrder: "asc",
		})
		if err != nil {
			return totalDeleted, fmt.Errorf("failed to list records: %w", err)
		}
		if len(oldest) == 0 {
			return totalDeleted, nil
		}

		if p.config.ArchivePath != "" {
			if err := p.archiveRecords(ctx, oldest); err != nil {
				return totalDeleted, fmt.Errorf("archive failed: %w", err)
			}
		}

		cutoff := oldest[len(oldest)-1].StartTime.Add(time.Nanosecond)
		deleted, err := p.storage.DeleteBefore(ctx, cutoff)
		if err != nil {
			return totalDeleted, fmt.Errorf("delete failed: %w", err)
		}
		totalDeleted += deleted
		if deleted == 0 {
			return totalDeleted, nil
		}
	}
}

func (p *Pruner) archiveQuery(ctx context.Context, query *exchangelog.Query) error {
	var all []*exchangelog.Record
	q := *query
	q.Limit = exchangelog.MaxLimit
	q.SortOrder = "asc"
	for {
		batch, err := p.storage.List(ctx, &q)
		if err != nil {
			return fmt.Errorf("failed to list records for archiving: %w", err)
		}
		all = append(all, batch...)
		if len(batch) < q.Limit {
			break
		}
		q.Offset += len(batch)
	}
	return p.archiveRecords(ctx, all)
}

// archiveRecords appends records to a dated JSON lines file in ArchivePath.
func (p *Pruner) archiveRecords(ctx context.Context, records []*exchangelog.Record) error {
	if len(records) == 0 {
		return nil
	}

	if err := os.MkdirAll(p.config.ArchivePath, 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	archiveFile := filepath.Join(p.config.ArchivePath,
		fmt.Sprintf("exchanges-%s.jsonl", p.now().Format("2006-01-02")))
	f, err := os.OpenFile(archiveFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open archive file: %w", err)
	}
	defer f.Close()

	if err := export.NewJSONLinesExporter().Export(ctx, records, f); err != nil {
		return fmt.Errorf("failed to export records to archive: %w", err)
	}

	p.logger.Info("exchange records archived",
		"archive_file", archiveFile,
		"record_count", len(records),
	)
	return nil
}

// Start starts the pruning scheduler.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the pruning scheduler.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning, or nil.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
