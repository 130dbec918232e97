package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docvault/docvault/internal/service"
)

type BackupJob struct {
	export *service.ExportService
}

func NewBackupJob(export *service.ExportService) *BackupJob {
	return &BackupJob{export: export}
}

func (j *BackupJob) Name() string {
	return "backup"
}

func (j *BackupJob) Run(ctx context.Context) error {
	key, err := j.export.Snapshot(ctx)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("backup written", zap.String("key", key))
	return nil
}
