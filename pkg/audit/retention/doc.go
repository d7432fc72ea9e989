// Package retention prunes audit records by age and by count, optionally
// archiving them to JSON first, and runs the pruning on a cron schedule.
package retention
