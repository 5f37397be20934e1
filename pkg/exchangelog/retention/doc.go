// Package retention prunes the exchange log.
//
// A Pruner deletes records older than RetentionDays and then, if
// MaxRecords is set, the oldest records beyond the cap. Prune runs one
// pass; Start runs passes on a cron schedule (github.com/robfig/cron/v3)
// until its context is cancelled.
//
//	pruner := retention.NewPruner(store, &retention.Config{
//		RetentionDays: 30,
//		PruneSchedule: "0 3 * * *",
//	})
//	if err := pruner.Start(ctx); err != nil {
//		return err
//	}
//
// With ArchivePath set, records are appended to a JSON lines file before
// they are deleted.
package retention
