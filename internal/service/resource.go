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
	resourceSearchable = []string{"name", "alias", "type"}
	resourceSchema     = query.Schema{
		"name":      query.String,
		"alias":     query.String,
		"type":      query.String,
		"createdBy": query.ObjectID,
	}
)

type ResourceService struct {
	trace       *telemetry.Trace
	logger      *zap.Logger
	resources   ResourceStore
	permissions PermissionStore
	publisher   event.Publisher
	engine      *query.Engine[model.Resource]
}

func NewResourceService(
	trace *telemetry.Trace,
	logger *zap.Logger,
	resources ResourceStore,
	permissions PermissionStore,
	users UserStore,
	publisher event.Publisher,
) *ResourceService {
	return &ResourceService{
		trace:       trace,
		logger:      logger,
		resources:   resources,
		permissions: permissions,
		publisher:   publisher,
		engine:      query.New[model.Resource](resources.Store(), query.WithSchema(resourceSchema), userRelations(users)),
	}
}

func (s *ResourceService) Create(ctx context.Context, actor *core.Principal, req *dto.CreateResourceDto) (_ *dto.ResourceResponseDto, err error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(err) }()

	created, err := s.resources.Create(ctx, &model.Resource{
		Name:      req.Name,
		Alias:     req.Alias,
		Type:      req.Type,
		CreatedBy: actorRef(actor),
		UpdatedBy: actorRef(actor),
	})
	if err != nil {
		return nil, mongoErr(err, "resource")
	}
	s.trace.ApplyTraceAttributes(span, core.TraceWriteMeta{Entity: "resource", Op: "create", ID: created.ID.Hex(), Actor: actorID(actor)})

	resp := dto.ToResourceResponseDto(created)
	publish(ctx, s.logger, s.publisher, event.New(event.ResourceCreated, resp.ID, actorID(actor), resp))
	return resp, nil
}

func (s *ResourceService) GetByID(ctx context.Context, id primitive.ObjectID) (*dto.ResourceResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	resource, err := s.resources.GetByID(ctx, id)
	if err != nil {
		return nil, mongoErr(err, "resource")
	}
	return dto.ToResourceResponseDto(resource), nil
}

func (s *ResourceService) List(ctx context.Context, opts query.Options) (_ *dto.ListResponse[*dto.ResourceResponseDto], err error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(err) }()

	result, err := s.engine.Execute(ctx, opts, resourceSearchable)
	if err != nil {
		return nil, listErr(err, "resource")
	}
	s.trace.ApplyTraceAttributes(span, core.TraceListQueryMeta{
		Entity:      "resource",
		Page:        result.Meta.Page,
		Limit:       result.Meta.Limit,
		Sort:        opts.Sort,
		SearchTerm:  opts.SearchTerm,
		Filter:      opts.Filters,
		Total:       result.Meta.Total,
		ResultCount: len(result.Data),
	})
	return dto.ToListResponse(result, dto.ToResourceResponseDto), nil
}

func (s *ResourceService) Update(ctx context.Context, actor *core.Principal, id primitive.ObjectID, req *dto.UpdateResourceDto) (_ *dto.ResourceResponseDto, err error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(err) }()

	set := bson.M{}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Alias != nil {
		set["alias"] = *req.Alias
	}
	if req.Type != nil {
		set["type"] = *req.Type
	}
	if ref := actorRef(actor); ref != nil {
		set["updatedBy"] = ref
	}

	updated, err := s.resources.UpdateByID(ctx, id, set)
	if err != nil {
		return nil, mongoErr(err, "resource")
	}

	meta := core.TraceWriteMeta{Entity: "resource", Op: "update", ID: id.Hex(), Actor: actorID(actor)}
	// 授權判斷依 resourceName 比對，改名必須同步
	if req.Name != nil || req.Alias != nil {
		synced, syncErr := s.permissions.SyncResource(ctx, updated)
		if syncErr != nil {
			return nil, mongoErr(syncErr, "permission")
		}
		meta.ModifiedCount = synced
	}
	s.trace.ApplyTraceAttributes(span, meta)

	resp := dto.ToResourceResponseDto(updated)
	publish(ctx, s.logger, s.publisher, event.New(event.ResourceUpdated, resp.ID, actorID(actor), resp))
	return resp, nil
}

func (s *ResourceService) Delete(ctx context.Context, actor *core.Principal, id primitive.ObjectID) (err error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(err) }()

	if err = s.resources.DeleteByID(ctx, id); err != nil {
		return mongoErr(err, "resource")
	}
	s.trace.ApplyTraceAttributes(span, core.TraceWriteMeta{Entity: "resource", Op: "delete", ID: id.Hex(), Actor: actorID(actor)})
	publish(ctx, s.logger, s.publisher, event.New(event.ResourceDeleted, id.Hex(), actorID(actor), nil))
	return nil
}
