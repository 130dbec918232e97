package job

import (
	"context"
	"time"

	"github.com/docvault/docvault/internal/repo"
)

type OTPCleanupJob struct {
	codes  *repo.OTPRepo
	maxAge time.Duration
}

func NewOTPCleanupJob(codes *repo.OTPRepo, maxAge time.Duration) *OTPCleanupJob {
	return &OTPCleanupJob{codes: codes, maxAge: maxAge}
}

func (j *OTPCleanupJob) Name() string {
	return "otp_cleanup"
}

func (j *OTPCleanupJob) Run(ctx context.Context) error {
	maxAge := j.maxAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	cutoff := time.Now().Add(-maxAge).Unix()
	_, err := j.codes.DeleteBefore(ctx, cutoff)
	return err
}
