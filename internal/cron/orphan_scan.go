package cron

import (
	"context"
	"time"

	"bastion/internal/dto"
	"bastion/internal/telemetry"

	"go.uber.org/zap"
)

type OrphanFinder interface {
	FindOrphans(ctx context.Context) ([]*dto.OrphanPermissionDto, error)
}

// OrphanScanJob 定期回報角色或資源已被刪除的權限，只記錄不修復
type OrphanScanJob struct {
	logger  *zap.Logger
	trace   *telemetry.Trace
	finder  OrphanFinder
	timeout time.Duration
}

func NewOrphanScanJob(logger *zap.Logger, trace *telemetry.Trace, finder OrphanFinder) *OrphanScanJob {
	return &OrphanScanJob{logger: logger, trace: trace, finder: finder, timeout: time.Minute}
}

func (j *OrphanScanJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	_, _ = j.Scan(ctx)
}

// Scan 回傳孤兒權限數量
func (j *OrphanScanJob) Scan(ctx context.Context) (_ int, err error) {
	ctx, _, end := j.trace.WithSpan(ctx)
	defer func() { end(err) }()

	orphans, err := j.finder.FindOrphans(ctx)
	if err != nil {
		j.logger.Error("orphan scan failed", zap.Error(err))
		return 0, err
	}
	for _, o := range orphans {
		j.logger.Warn("orphan permission",
			zap.String("permissionId", o.Permission.ID),
			zap.String("roleName", o.Permission.RoleName),
			zap.String("resourceName", o.Permission.ResourceName),
			zap.Bool("missingRole", o.MissingRole),
			zap.Bool("missingResource", o.MissingResource),
		)
	}
	j.logger.Info("orphan scan finished", zap.Int("orphans", len(orphans)))
	return len(orphans), nil
}
