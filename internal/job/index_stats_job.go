package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docchat/docchat/internal/vectorindex"
)

// IndexStatsJob logs the index size so operators can watch growth
// without a metrics stack.
type IndexStatsJob struct {
	index vectorindex.Index
}

func NewIndexStatsJob(index vectorindex.Index) *IndexStatsJob {
	return &IndexStatsJob{index: index}
}

func (j *IndexStatsJob) Name() string {
	return "index_stats"
}

func (j *IndexStatsJob) Run(ctx context.Context) error {
	stats, err := j.index.Stats(ctx)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("index stats",
		zap.Int64("vector_count", stats.VectorCount),
		zap.Int("dimension", stats.Dimension))
	return nil
}
