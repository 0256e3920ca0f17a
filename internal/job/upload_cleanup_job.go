package job

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// UploadCleanupJob removes archived uploads older than maxAge from the
// local file store directory. The archive exists so a failed ingestion
// can be replayed soon after; there is no reason to keep PDFs forever.
type UploadCleanupJob struct {
	dir    string
	maxAge time.Duration
}

func NewUploadCleanupJob(dir string, maxAge time.Duration) *UploadCleanupJob {
	return &UploadCleanupJob{dir: dir, maxAge: maxAge}
}

func (j *UploadCleanupJob) Name() string {
	return "upload_cleanup"
}

func (j *UploadCleanupJob) Run(ctx context.Context) error {
	if j.dir == "" {
		return nil
	}
	maxAge := j.maxAge
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	cutoff := time.Now().Add(-maxAge)

	entries, err := os.ReadDir(j.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(j.dir, entry.Name())); err != nil {
			logutil.GetLogger(ctx).Warn("remove archived upload failed",
				zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		logutil.GetLogger(ctx).Info("archived uploads cleaned", zap.Int("removed", removed))
	}
	return nil
}
