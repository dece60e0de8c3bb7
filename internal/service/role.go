package service

import (
	"context"

	"bastion/internal/core"
	"bastion/internal/database/mongodb/model"
	"bastion/internal/dto"
	"bastion/internal/event"
	"bastion/internal/pkg/query"
	"bastion/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	roleSearchable = []string{"name", "alias"}
	roleSchema     = query.Schema{
		"name":         query.String,
		"alias":        query.String,
		"isSuperAdmin": query.Bool,
		"isAdmin":      query.Bool,
		"createdBy":    query.ObjectID,
	}
)

type RoleService struct {
	trace       *telemetry.Trace
	logger      *zap.Logger
	roles       RoleStore
	permissions PermissionStore
	publisher   event.Publisher
	engine      *query.Engine[model.Role]
}

func NewRoleService(
	trace *telemetry.Trace,
	logger *zap.Logger,
	roles RoleStore,
	permissions PermissionStore,
	users UserStore,
	publisher event.Publisher,
) *RoleService {
	return &RoleService{
		trace:       trace,
		logger:      logger,
		roles:       roles,
		permissions: permissions,
		publisher:   publisher,
		engine:      query.New[model.Role](roles.Store(), query.WithSchema(roleSchema), userRelations(users)),
	}
}

func (s *RoleService) Create(ctx context.Context, actor *core.Principal, req *dto.CreateRoleDto) (_ *dto.RoleResponseDto, err error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(err) }()

	role := &model.Role{
		Name:         req.Name,
		Alias:        req.Alias,
		IsSuperAdmin: req.IsSuperAdmin,
		IsAdmin:      req.IsAdmin,
		CreatedBy:    actorRef(actor),
		UpdatedBy:    actorRef(actor),
	}
	created, err := s.roles.Create(ctx, role)
	if err != nil {
		return nil, mongoErr(err, "role")
	}
	s.trace.ApplyTraceAttributes(span, core.TraceWriteMeta{Entity: "role", Op: "create", ID: created.ID.Hex(), Actor: actorID(actor)})

	resp := dto.ToRoleResponseDto(created)
	publish(ctx, s.logger, s.publisher, event.New(event.RoleCreated, resp.ID, actorID(actor), resp))
	return resp, nil
}

func (s *RoleService) GetByID(ctx context.Context, id primitive.ObjectID) (*dto.RoleResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return nil, mongoErr(err, "role")
	}
	return dto.ToRoleResponseDto(role), nil
}

func (s *RoleService) List(ctx context.Context, opts query.Options) (_ *dto.ListResponse[*dto.RoleResponseDto], err error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(err) }()

	result, err := s.engine.Execute(ctx, opts, roleSearchable)
	if err != nil {
		return nil, listErr(err, "role")
	}
	s.trace.ApplyTraceAttributes(span, core.TraceListQueryMeta{
		Entity:      "role",
		Page:        result.Meta.Page,
		Limit:       result.Meta.Limit,
		Sort:        opts.Sort,
		SearchTerm:  opts.SearchTerm,
		Filter:      opts.Filters,
		Total:       result.Meta.Total,
		ResultCount: len(result.Data),
	})
	return dto.ToListResponse(result, dto.ToRoleResponseDto), nil
}

// Update 名稱或別名變更時同步權限上的副本
func (s *RoleService) Update(ctx context.Context, actor *core.Principal, id primitive.ObjectID, req *dto.UpdateRoleDto) (_ *dto.RoleResponseDto, err error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(err) }()

	set := bson.M{}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Alias != nil {
		set["alias"] = *req.Alias
	}
	if req.IsSuperAdmin != nil {
		set["isSuperAdmin"] = *req.IsSuperAdmin
	}
	if req.IsAdmin != nil {
		set["isAdmin"] = *req.IsAdmin
	}
	if ref := actorRef(actor); ref != nil {
		set["updatedBy"] = ref
	}

	updated, err := s.roles.UpdateByID(ctx, id, set)
	if err != nil {
		return nil, mongoErr(err, "role")
	}

	meta := core.TraceWriteMeta{Entity: "role", Op: "update", ID: id.Hex(), Actor: actorID(actor)}
	if req.Name != nil || req.Alias != nil {
		synced, syncErr := s.permissions.SyncRole(ctx, updated)
		if syncErr != nil {
			return nil, mongoErr(syncErr, "permission")
		}
		meta.ModifiedCount = synced
	}
	s.trace.ApplyTraceAttributes(span, meta)

	resp := dto.ToRoleResponseDto(updated)
	publish(ctx, s.logger, s.publisher, event.New(event.RoleUpdated, resp.ID, actorID(actor), resp))
	return resp, nil
}

// Delete 既有權限不會連帶刪除，由孤兒掃描回報
func (s *RoleService) Delete(ctx context.Context, actor *core.Principal, id primitive.ObjectID) (err error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(err) }()

	if err = s.roles.DeleteByID(ctx, id); err != nil {
		return mongoErr(err, "role")
	}
	s.trace.ApplyTraceAttributes(span, core.TraceWriteMeta{Entity: "role", Op: "delete", ID: id.Hex(), Actor: actorID(actor)})
	publish(ctx, s.logger, s.publisher, event.New(event.RoleDeleted, id.Hex(), actorID(actor), nil))
	return nil
}
