package service

import (
	"context"
	"fmt"

	"bastion/internal/core"
	"bastion/internal/database/mongodb/model"
	"bastion/internal/dto"
	"bastion/internal/event"
	cErr "bastion/internal/pkg/error"
	"bastion/internal/pkg/query"
	"bastion/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	permissionSearchable = []string{"roleName", "resourceName"}
	permissionSchema     = query.Schema{
		"roleId":        query.ObjectID,
		"roleName":      query.String,
		"roleAlias":     query.String,
		"resourceId":    query.ObjectID,
		"resourceName":  query.String,
		"resourceAlias": query.String,
		"isAllowed":     query.Bool,
		"isDisabled":    query.Bool,
	}
)

type PermissionService struct {
	trace       *telemetry.Trace
	logger      *zap.Logger
	permissions PermissionStore
	roles       RoleStore
	resources   ResourceStore
	publisher   event.Publisher
	engine      *query.Engine[model.Permission]
}

func NewPermissionService(
	trace *telemetry.Trace,
	logger *zap.Logger,
	permissions PermissionStore,
	roles RoleStore,
	resources ResourceStore,
	users UserStore,
	publisher event.Publisher,
) *PermissionService {
	return &PermissionService{
		trace:       trace,
		logger:      logger,
		permissions: permissions,
		roles:       roles,
		resources:   resources,
		publisher:   publisher,
		engine:      query.New[model.Permission](permissions.Store(), query.WithSchema(permissionSchema), userRelations(users)),
	}
}

// Create 角色與資源必須存在；同一組 (role, resource) 只能有一筆
func (s *PermissionService) Create(ctx context.Context, actor *core.Principal, req *dto.CreatePermissionDto) (_ *dto.PermissionResponseDto, err error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(err) }()

	roleID, err := primitive.ObjectIDFromHex(req.RoleID)
	if err != nil {
		return nil, cErr.ValidateErr("invalid roleId").WithCause(err)
	}
	resourceID, err := primitive.ObjectIDFromHex(req.ResourceID)
	if err != nil {
		return nil, cErr.ValidateErr("invalid resourceId").WithCause(err)
	}

	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, mongoErr(err, "role")
	}
	resource, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		return nil, mongoErr(err, "resource")
	}

	created, err := s.permissions.Create(ctx, &model.Permission{
		RoleID:        role.ID,
		RoleName:      role.Name,
		RoleAlias:     role.Alias,
		ResourceID:    resource.ID,
		ResourceName:  resource.Name,
		ResourceAlias: resource.Alias,
		IsAllowed:     req.IsAllowed,
		IsDisabled:    req.IsDisabled,
		CreatedBy:     actorRef(actor),
		UpdatedBy:     actorRef(actor),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, cErr.Conflict(fmt.Sprintf("permission with role %s and resource %s already exists", role.Name, resource.Name)).WithCause(err)
		}
		return nil, mongoErr(err, "permission")
	}
	s.trace.ApplyTraceAttributes(span, core.TraceWriteMeta{Entity: "permission", Op: "create", ID: created.ID.Hex(), Actor: actorID(actor)})

	resp := dto.ToPermissionResponseDto(created)
	publish(ctx, s.logger, s.publisher, event.New(event.PermissionCreated, resp.ID, actorID(actor), resp))
	return resp, nil
}

func (s *PermissionService) GetByID(ctx context.Context, id primitive.ObjectID) (*dto.PermissionResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	permission, err := s.permissions.GetByID(ctx, id)
	if err != nil {
		return nil, mongoErr(err, "permission")
	}
	return dto.ToPermissionResponseDto(permission), nil
}

func (s *PermissionService) List(ctx context.Context, opts query.Options) (_ *dto.ListResponse[*dto.PermissionResponseDto], err error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(err) }()

	result, err := s.engine.Execute(ctx, opts, permissionSearchable)
	if err != nil {
		return nil, listErr(err, "permission")
	}
	s.trace.ApplyTraceAttributes(span, core.TraceListQueryMeta{
		Entity:      "permission",
		Page:        result.Meta.Page,
		Limit:       result.Meta.Limit,
		Sort:        opts.Sort,
		SearchTerm:  opts.SearchTerm,
		Filter:      opts.Filters,
		Total:       result.Meta.Total,
		ResultCount: len(result.Data),
	})
	return dto.ToListResponse(result, dto.ToPermissionResponseDto), nil
}

// Update 只允許修改 isAllowed / isDisabled
func (s *PermissionService) Update(ctx context.Context, actor *core.Principal, id primitive.ObjectID, req *dto.UpdatePermissionDto) (_ *dto.PermissionResponseDto, err error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(err) }()

	set := bson.M{}
	if req.IsAllowed != nil {
		set["isAllowed"] = *req.IsAllowed
	}
	if req.IsDisabled != nil {
		set["isDisabled"] = *req.IsDisabled
	}
	if ref := actorRef(actor); ref != nil {
		set["updatedBy"] = ref
	}

	updated, err := s.permissions.UpdateByID(ctx, id, set)
	if err != nil {
		return nil, mongoErr(err, "permission")
	}
	s.trace.ApplyTraceAttributes(span, core.TraceWriteMeta{Entity: "permission", Op: "update", ID: id.Hex(), Actor: actorID(actor)})

	resp := dto.ToPermissionResponseDto(updated)
	publish(ctx, s.logger, s.publisher, event.New(event.PermissionUpdated, resp.ID, actorID(actor), resp))
	return resp, nil
}

func (s *PermissionService) Delete(ctx context.Context, actor *core.Principal, id primitive.ObjectID) (err error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(err) }()

	if err = s.permissions.DeleteByID(ctx, id); err != nil {
		return mongoErr(err, "permission")
	}
	s.trace.ApplyTraceAttributes(span, core.TraceWriteMeta{Entity: "permission", Op: "delete", ID: id.Hex(), Actor: actorID(actor)})
	publish(ctx, s.logger, s.publisher, event.New(event.PermissionDeleted, id.Hex(), actorID(actor), nil))
	return nil
}

// FindOrphans 列出角色或資源已被刪除的權限；只回報，不修復
func (s *PermissionService) FindOrphans(ctx context.Context) (_ []*dto.OrphanPermissionDto, err error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(err) }()

	roleIDs, resourceIDs, err := s.permissions.DistinctRefs(ctx)
	if err != nil {
		return nil, mongoErr(err, "permission")
	}
	existingRoles, err := s.roles.ExistingIDs(ctx, roleIDs)
	if err != nil {
		return nil, mongoErr(err, "role")
	}
	existingResources, err := s.resources.ExistingIDs(ctx, resourceIDs)
	if err != nil {
		return nil, mongoErr(err, "resource")
	}

	missingRoles := missing(roleIDs, existingRoles)
	missingResources := missing(resourceIDs, existingResources)
	if len(missingRoles) == 0 && len(missingResources) == 0 {
		return []*dto.OrphanPermissionDto{}, nil
	}

	orphans, err := s.permissions.FindByRefs(ctx, missingRoles, missingResources)
	if err != nil {
		return nil, mongoErr(err, "permission")
	}

	out := make([]*dto.OrphanPermissionDto, 0, len(orphans))
	for _, p := range orphans {
		_, roleOK := existingRoles[p.RoleID]
		_, resourceOK := existingResources[p.ResourceID]
		out = append(out, &dto.OrphanPermissionDto{
			Permission:      dto.ToPermissionResponseDto(p),
			MissingRole:     !roleOK,
			MissingResource: !resourceOK,
		})
	}
	return out, nil
}

func missing(ids []primitive.ObjectID, existing map[primitive.ObjectID]struct{}) []primitive.ObjectID {
	var out []primitive.ObjectID
	for _, id := range ids {
		if _, ok := existing[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
