package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docvault/docvault/internal/repo"
)

// ShareSweepJob clears share state whose expiry passed more than retention
// ago. Expiry is still enforced at resolve time; the sweep only keeps stale
// grants from accumulating forever.
type ShareSweepJob struct {
	docs      *repo.DocumentRepo
	retention time.Duration
}

func NewShareSweepJob(docs *repo.DocumentRepo, retention time.Duration) *ShareSweepJob {
	return &ShareSweepJob{docs: docs, retention: retention}
}

func (j *ShareSweepJob) Name() string {
	return "share_sweep"
}

func (j *ShareSweepJob) Run(ctx context.Context) error {
	retention := j.retention
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	now := time.Now()
	cutoff := now.Add(-retention).Unix()
	cleared, err := j.docs.SweepExpiredShares(ctx, cutoff, now.Unix())
	if err != nil {
		return err
	}
	if cleared > 0 {
		logutil.GetLogger(ctx).Info("expired shares cleared", zap.Int64("count", cleared))
	}
	return nil
}
