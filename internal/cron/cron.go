package cron

import (
	"context"

	"bastion/config"
	"bastion/internal/service"

	"github.com/google/wire"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var ProviderSet = wire.NewSet(
	NewCron,
	NewOrphanScanJob,
	wire.Bind(new(OrphanFinder), new(*service.PermissionService)),
)

type Cron struct {
	logger     *zap.Logger
	conf       *config.Configuration
	server     *cron.Cron
	orphanScan *OrphanScanJob
}

// NewCron .
func NewCron(logger *zap.Logger, conf *config.Configuration, orphanScan *OrphanScanJob) *Cron {
	server := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	return &Cron{
		logger:     logger,
		conf:       conf,
		server:     server,
		orphanScan: orphanScan,
	}
}

func (c *Cron) Run() error {
	if spec := c.conf.Cron.OrphanScanSpec; spec != "" {
		if _, err := c.server.AddFunc(spec, c.orphanScan.Run); err != nil {
			return err
		}
		c.logger.Info("cron job registered", zap.String("job", "orphan-scan"), zap.String("spec", spec))
	}

	c.server.Start()
	return nil
}

func (c *Cron) Stop(ctx context.Context) error {
	select {
	case <-c.server.Stop().Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
