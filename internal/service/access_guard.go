package service

import (
	"context"
	"fmt"
	"time"

	"bastion/internal/core"
	fluentdModel "bastion/internal/database/fluentd/model"
	cErr "bastion/internal/pkg/error"
	"bastion/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Outcome string

const (
	OutcomeAllow            Outcome = "allow"
	OutcomeDenyNoPrincipal  Outcome = "deny_no_principal"
	OutcomeDenyNotPermitted Outcome = "deny_not_permitted"
	OutcomeDenyDisabled     Outcome = "deny_disabled"
)

// Decision 授權判斷結果
type Decision struct {
	Outcome      Outcome
	Reason       string
	Resource     string
	PermissionID string
}

func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllow
}

// Err 拒絕時對應的應用錯誤：缺少身分為 401，其餘拒絕為 403
func (d Decision) Err() error {
	switch d.Outcome {
	case OutcomeAllow:
		return nil
	case OutcomeDenyNoPrincipal:
		return cErr.AuthorizationError(d.Reason)
	default:
		return cErr.AuthorizationDenied(d.Reason)
	}
}

// AccessGuard 依角色與資源名稱查詢權限，決定是否放行。
// 不快取、不支援萬用字元；資料庫錯誤直接回傳，不會預設放行。
type AccessGuard struct {
	trace   *telemetry.Trace
	metric  *telemetry.Metric
	logger  *zap.Logger
	lookup  PermissionLookup
	auditor AccessAuditor
}

func NewAccessGuard(
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	logger *zap.Logger,
	lookup PermissionLookup,
	auditor AccessAuditor,
) *AccessGuard {
	return &AccessGuard{trace: trace, metric: metric, logger: logger, lookup: lookup, auditor: auditor}
}

func (g *AccessGuard) Authorize(ctx context.Context, principal *core.Principal, resource string) (_ Decision, err error) {
	ctx, span, end := g.trace.WithSpan(ctx)
	defer func() { end(err) }()

	meta := core.TraceAccessMeta{Resource: resource}
	if principal != nil {
		meta.UserID, meta.Username, meta.RoleID = principal.UserID, principal.Username, principal.RoleID
	}

	decision, err := g.decide(ctx, principal, resource)
	if err != nil {
		meta.Outcome, meta.Reason = "error", err.Error()
		g.trace.ApplyTraceAttributes(span, meta)
		g.logger.Error("[Access] lookup failed",
			zap.String("resource", resource),
			zap.String("roleId", meta.RoleID),
			zap.Error(err),
		)
		return Decision{}, err
	}

	meta.Outcome, meta.Reason = string(decision.Outcome), decision.Reason
	g.trace.ApplyTraceAttributes(span, meta)
	g.audit(ctx, principal, decision, span.SpanContext().TraceID().String())
	return decision, nil
}

func (g *AccessGuard) decide(ctx context.Context, principal *core.Principal, resource string) (Decision, error) {
	if !principal.HasIdentity() {
		return Decision{Outcome: OutcomeDenyNoPrincipal, Reason: "no principal", Resource: resource}, nil
	}
	roleID, err := primitive.ObjectIDFromHex(principal.RoleID)
	if err != nil {
		return Decision{Outcome: OutcomeDenyNoPrincipal, Reason: "invalid role", Resource: resource}, nil
	}

	permission, err := g.lookup.FindForAccess(ctx, roleID, resource)
	if err != nil {
		if isNotFound(err) {
			return Decision{Outcome: OutcomeDenyNotPermitted, Reason: "not permitted", Resource: resource}, nil
		}
		return Decision{}, err
	}
	if permission.IsDisabled {
		return Decision{
			Outcome:      OutcomeDenyDisabled,
			Reason:       "permission disabled",
			Resource:     resource,
			PermissionID: permission.ID.Hex(),
		}, nil
	}
	return Decision{
		Outcome:      OutcomeAllow,
		Reason:       "permitted",
		Resource:     resource,
		PermissionID: permission.ID.Hex(),
	}, nil
}

// audit 稽核失敗只記錄，不改變判斷結果
func (g *AccessGuard) audit(ctx context.Context, principal *core.Principal, d Decision, requestID string) {
	g.metric.IncAccessDecision(string(d.Outcome))

	record := fluentdModel.AccessLog{
		RequestID:    requestID,
		Resource:     d.Resource,
		Outcome:      string(d.Outcome),
		Reason:       d.Reason,
		PermissionID: d.PermissionID,
		DecidedAt:    time.Now().UTC().Format(time.RFC3339Nano),
	}
	fields := []zap.Field{
		zap.String("resource", d.Resource),
		zap.String("outcome", string(d.Outcome)),
		zap.String("reason", d.Reason),
	}
	if principal != nil {
		record.UserID, record.Username, record.RoleID = principal.UserID, principal.Username, principal.RoleID
		fields = append(fields, zap.String("username", principal.Username), zap.String("roleId", principal.RoleID))
	}

	if d.Allowed() {
		g.logger.Debug("[Access] allowed", fields...)
	} else {
		g.logger.Info("[Access] denied", fields...)
	}

	if err := g.auditor.LogAccessDecision(ctx, record); err != nil {
		g.logger.Warn("[Access] audit record failed", append(fields, zap.Error(fmt.Errorf("fluentd: %w", err)))...)
	}
}
