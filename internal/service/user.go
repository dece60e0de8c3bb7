package service

import (
	"context"
	"time"

	"bastion/internal/core"
	"bastion/internal/database/mongodb/model"
	"bastion/internal/dto"
	"bastion/internal/event"
	cErr "bastion/internal/pkg/error"
	"bastion/internal/pkg/query"
	"bastion/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// lastSeen 最短更新間隔
const lastSeenInterval = time.Minute

var (
	userSearchable = []string{"username", "name", "email"}
	userSchema     = query.Schema{
		"username":  query.String,
		"name":      query.String,
		"email":     query.String,
		"roleId":    query.ObjectID,
		"status":    query.String,
		"createdBy": query.ObjectID,
	}
)

type UserService struct {
	trace     *telemetry.Trace
	logger    *zap.Logger
	users     UserStore
	roles     RoleStore
	publisher event.Publisher
	engine    *query.Engine[model.User]
	now       func() time.Time
}

func NewUserService(
	trace *telemetry.Trace,
	logger *zap.Logger,
	users UserStore,
	roles RoleStore,
	publisher event.Publisher,
) *UserService {
	return &UserService{
		trace:     trace,
		logger:    logger,
		users:     users,
		roles:     roles,
		publisher: publisher,
		engine:    query.New[model.User](users.Store(), query.WithSchema(userSchema), userRelations(users)),
		now:       time.Now,
	}
}

// 新增用戶（管理專用，input/output 皆為 DTO）
func (s *UserService) Create(ctx context.Context, actor *core.Principal, req *dto.CreateUserDto) (_ *dto.UserResponseDto, err error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(err) }()

	roleID, err := s.resolveRole(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = core.StatusActive
	}

	created, err := s.users.Create(ctx, &model.User{
		Username:  req.Username,
		Name:      req.Name,
		Email:     req.Email,
		RoleID:    roleID,
		Status:    status,
		CreatedBy: actorRef(actor),
		UpdatedBy: actorRef(actor),
	})
	if err != nil {
		return nil, mongoErr(err, "user")
	}
	s.trace.ApplyTraceAttributes(span, core.TraceWriteMeta{Entity: "user", Op: "create", ID: created.ID.Hex(), Actor: actorID(actor)})

	resp := dto.ToUserResponseDto(created)
	publish(ctx, s.logger, s.publisher, event.New(event.UserCreated, resp.ID, actorID(actor), resp))
	return resp, nil
}

// 依 id 查詢
func (s *UserService) GetByID(ctx context.Context, id primitive.ObjectID) (*dto.UserResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mongoErr(err, "user")
	}
	return dto.ToUserResponseDto(user), nil
}

// 管理後台列舉用戶（搜尋、篩選、分頁）
func (s *UserService) List(ctx context.Context, opts query.Options) (_ *dto.ListResponse[*dto.UserResponseDto], err error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(err) }()

	result, err := s.engine.Execute(ctx, opts, userSearchable)
	if err != nil {
		return nil, listErr(err, "user")
	}
	s.trace.ApplyTraceAttributes(span, core.TraceListQueryMeta{
		Entity:      "user",
		Page:        result.Meta.Page,
		Limit:       result.Meta.Limit,
		Sort:        opts.Sort,
		SearchTerm:  opts.SearchTerm,
		Filter:      opts.Filters,
		Total:       result.Meta.Total,
		ResultCount: len(result.Data),
	})
	return dto.ToListResponse(result, dto.ToUserResponseDto), nil
}

// 更新用戶基本資訊（input DTO）
func (s *UserService) Update(ctx context.Context, actor *core.Principal, id primitive.ObjectID, req *dto.UpdateUserDto) (_ *dto.UserResponseDto, err error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(err) }()

	set := bson.M{}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Email != nil {
		set["email"] = *req.Email
	}
	if req.RoleID != nil {
		roleID, err := s.resolveRole(ctx, *req.RoleID)
		if err != nil {
			return nil, err
		}
		set["roleId"] = roleID
	}
	if req.Status != nil {
		set["status"] = *req.Status
	}
	if ref := actorRef(actor); ref != nil {
		set["updatedBy"] = ref
	}

	updated, err := s.users.UpdateByID(ctx, id, set)
	if err != nil {
		return nil, mongoErr(err, "user")
	}
	s.trace.ApplyTraceAttributes(span, core.TraceWriteMeta{Entity: "user", Op: "update", ID: id.Hex(), Actor: actorID(actor)})

	resp := dto.ToUserResponseDto(updated)
	publish(ctx, s.logger, s.publisher, event.New(event.UserUpdated, resp.ID, actorID(actor), resp))
	return resp, nil
}

// 刪除用戶
func (s *UserService) Delete(ctx context.Context, actor *core.Principal, id primitive.ObjectID) (err error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(err) }()

	if err = s.users.DeleteByID(ctx, id); err != nil {
		return mongoErr(err, "user")
	}
	s.trace.ApplyTraceAttributes(span, core.TraceWriteMeta{Entity: "user", Op: "delete", ID: id.Hex(), Actor: actorID(actor)})
	publish(ctx, s.logger, s.publisher, event.New(event.UserDeleted, id.Hex(), actorID(actor), nil))
	return nil
}

// Touch 每次請求驗證 token 後呼叫：
// 使用者必須存在且為 active，回傳以資料庫角色為準的 Principal，並視需要更新 lastSeen。
func (s *UserService) Touch(ctx context.Context, principal *core.Principal) (_ *core.Principal, err error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(err) }()

	var user *model.User
	if id, parseErr := primitive.ObjectIDFromHex(principal.UserID); parseErr == nil {
		user, err = s.users.GetByID(ctx, id)
	} else {
		user, err = s.users.FindByUsername(ctx, principal.Username)
	}
	if err != nil {
		if isNotFound(err) {
			return nil, cErr.InvalidSession("user no longer exists").WithCause(err)
		}
		return nil, mongoErr(err, "user")
	}

	meta := core.TraceUserMiddlewareMeta{UserID: user.ID.Hex(), UserStatus: string(user.Status)}
	defer func() { s.trace.ApplyTraceAttributes(span, meta) }()

	if user.Status != core.StatusActive {
		meta.Status = "inactive"
		return nil, cErr.Forbidden("user is " + string(user.Status))
	}

	now := s.now().UTC()
	if user.LastSeen == nil || now.Sub(*user.LastSeen) >= lastSeenInterval {
		if _, touchErr := s.users.UpdateLastSeen(ctx, user.ID, now); touchErr != nil {
			s.logger.Warn("update lastSeen failed", zap.String("userId", user.ID.Hex()), zap.Error(touchErr))
		} else {
			meta.UpdatedLastSeen = true
		}
	}
	meta.Status = "ok"

	return &core.Principal{
		UserID:   user.ID.Hex(),
		Username: user.Username,
		RoleID:   user.RoleID.Hex(),
	}, nil
}

func (s *UserService) resolveRole(ctx context.Context, hex string) (primitive.ObjectID, error) {
	roleID, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, cErr.ValidateErr("invalid roleId").WithCause(err)
	}
	if _, err := s.roles.GetByID(ctx, roleID); err != nil {
		return primitive.NilObjectID, mongoErr(err, "role")
	}
	return roleID, nil
}
