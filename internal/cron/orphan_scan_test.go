package cron

import (
	"context"
	"errors"
	"testing"

	"bastion/config"
	"bastion/internal/dto"
	"bastion/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubFinder struct {
	orphans []*dto.OrphanPermissionDto
	err     error
}

func (s stubFinder) FindOrphans(context.Context) ([]*dto.OrphanPermissionDto, error) {
	return s.orphans, s.err
}

func TestOrphanScanLogsEachOrphan(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	job := NewOrphanScanJob(zap.New(core), &telemetry.Trace{}, stubFinder{orphans: []*dto.OrphanPermissionDto{
		{Permission: &dto.PermissionResponseDto{ID: "p1", RoleName: "admin"}, MissingResource: true},
		{Permission: &dto.PermissionResponseDto{ID: "p2", ResourceName: "/api/v1/roles"}, MissingRole: true},
	}})

	n, err := job.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, logs.FilterMessage("orphan permission").Len())
	assert.Equal(t, 1, logs.FilterMessage("orphan scan finished").Len())
}

func TestOrphanScanError(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	boom := errors.New("boom")
	job := NewOrphanScanJob(zap.New(core), &telemetry.Trace{}, stubFinder{err: boom})

	_, err := job.Scan(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, logs.FilterMessage("orphan scan failed").Len())
}

func TestCronRejectsInvalidSpec(t *testing.T) {
	conf := &config.Configuration{}
	conf.Cron.OrphanScanSpec = "not a spec"
	c := NewCron(zap.NewNop(), conf, NewOrphanScanJob(zap.NewNop(), &telemetry.Trace{}, stubFinder{}))
	assert.Error(t, c.Run())
}
