package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// PruneLogDir removes neobridge log files in dir whose modification time is
// older than retentionDays. keep names the file currently being written and
// is never removed. retentionDays <= 0 disables pruning.
func PruneLogDir(logger *slog.Logger, dir string, retentionDays int, keep string) {
	if retentionDays <= 0 || dir == "" {
		return
	}
	logger = NewComponentLogger(logger, "retention")

	matches, err := filepath.Glob(filepath.Join(dir, LogFilePattern))
	if err != nil || len(matches) == 0 {
		return
	}
	var active os.FileInfo
	if keep != "" {
		active, _ = os.Stat(keep)
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() || !info.ModTime().Before(cutoff) {
			continue
		}
		if active != nil && os.SameFile(info, active) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "old log file not removed", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check permissions on logging.dir"),
				String(FieldImpact, "old log file remains on disk"),
			)
			continue
		}
		logger.Debug("old log file removed",
			String("path", path),
			String(FieldEventType, "log_pruned"),
		)
	}
}
