package repository

import (
	"context"
	"time"

	"bastion/config"
	"bastion/internal/core"
	"bastion/internal/database/client"
	"bastion/internal/database/fluentd/model"
	"bastion/utils/validate"
)

const loggedAtLayout = "2006-01-02 15:04:05.999999 UTC"

// LogRepository 統一負責發送 Request/Response/Access Log 到 Fluentd
type LogRepository struct {
	fluentdClient client.FluentdPoster
	version       string
}

func NewLogRepository(config *config.Configuration, client client.FluentdPoster) *LogRepository {
	version := "1.0.0"
	if config.App.Version != "" {
		version = config.App.Version
	}
	return &LogRepository{fluentdClient: client, version: version}
}

func (repository *LogRepository) LogRequest(ctx context.Context, req model.RequestLog) error {
	if req.LoggedAt == "" {
		req.LoggedAt = time.Now().UTC().Format(loggedAtLayout)
	}
	if req.Version == "" {
		req.Version = repository.version
	}
	return repository.post(ctx, core.FluentdRequest, req)
}

func (repository *LogRepository) LogResponse(ctx context.Context, resp model.ResponseLog) error {
	if resp.LoggedAt == "" {
		resp.LoggedAt = time.Now().UTC().Format(loggedAtLayout)
	}
	if resp.Version == "" {
		resp.Version = repository.version
	}
	return repository.post(ctx, core.FluentdResponse, resp)
}

func (repository *LogRepository) LogAccessDecision(ctx context.Context, record model.AccessLog) error {
	if record.LoggedAt == "" {
		record.LoggedAt = time.Now().UTC().Format(loggedAtLayout)
	}
	if record.Version == "" {
		record.Version = repository.version
	}
	return repository.post(ctx, core.FluentdAccess, record)
}

// post fluentd 以 map 送出，欄位名稱沿用 json tag
func (repository *LogRepository) post(ctx context.Context, tag core.FluentdSubTag, record any) error {
	fluentdMessage, err := validate.PayloadToMap(record)
	if err != nil {
		return err
	}
	return repository.fluentdClient.Post(ctx, string(tag), fluentdMessage)
}
