package storage

import (
	"context"

	commissionapp "github.com/ceemowww/comtrack2/internal/application/commission"
	"github.com/ceemowww/comtrack2/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewReportArchive picks S3 when a bucket is configured and the local
// filesystem otherwise
func NewReportArchive(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (commissionapp.ReportArchive, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.UsesS3() {
		a, err := NewS3ReportArchive(ctx, &cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		logger.Info("Report archive: s3", zap.String("bucket", a.Bucket()))
		return a, nil
	}
	a, err := NewLocalReportArchive(cfg.LocalDir)
	if err != nil {
		return nil, err
	}
	logger.Info("Report archive: local", zap.String("dir", a.Dir()))
	return a, nil
}
