package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"bastion/internal/core"
	fluentdModel "bastion/internal/database/fluentd/model"
	"bastion/internal/database/mongodb/model"
	"bastion/internal/event"
	"bastion/internal/pkg/query"
	"bastion/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var duplicateKey = mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}}}

// emptyStore 列表查詢在這些測試中不會用到
type emptyStore struct{}

func (emptyStore) Find(context.Context, interface{}, ...*options.FindOptions) (*mongo.Cursor, error) {
	return mongo.NewCursorFromDocuments(nil, nil, nil)
}

func (emptyStore) CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error) {
	return 0, nil
}

type memRoles struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*model.Role
}

func newMemRoles(roles ...*model.Role) *memRoles {
	m := &memRoles{byID: map[primitive.ObjectID]*model.Role{}}
	for _, r := range roles {
		if r.ID.IsZero() {
			r.ID = primitive.NewObjectID()
		}
		m.byID[r.ID] = r
	}
	return m
}

func (m *memRoles) Store() query.Store { return emptyStore{} }

func (m *memRoles) Create(_ context.Context, role *model.Role) (*model.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.byID {
		if r.Name == role.Name || r.Alias == role.Alias {
			return nil, duplicateKey
		}
	}
	role.ID = primitive.NewObjectID()
	role.CreatedAt = time.Now().UTC()
	cp := *role
	m.byID[role.ID] = &cp
	return role, nil
}

func (m *memRoles) GetByID(_ context.Context, id primitive.ObjectID) (*model.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *r
	return &cp, nil
}

func (m *memRoles) FindByName(_ context.Context, name string) (*model.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.byID {
		if r.Name == name {
			cp := *r
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *memRoles) UpdateByID(_ context.Context, id primitive.ObjectID, set bson.M) (*model.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	for k, v := range set {
		switch k {
		case "name":
			r.Name = v.(string)
		case "alias":
			r.Alias = v.(string)
		case "isSuperAdmin":
			r.IsSuperAdmin = v.(bool)
		case "isAdmin":
			r.IsAdmin = v.(bool)
		case "updatedBy":
			r.UpdatedBy = v.(*model.Ref)
		}
	}
	r.Revision++
	cp := *r
	return &cp, nil
}

func (m *memRoles) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.byID, id)
	return nil
}

func (m *memRoles) ExistingIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[primitive.ObjectID]struct{}{}
	for _, id := range ids {
		if _, ok := m.byID[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

type memResources struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*model.Resource
}

func newMemResources(resources ...*model.Resource) *memResources {
	m := &memResources{byID: map[primitive.ObjectID]*model.Resource{}}
	for _, r := range resources {
		if r.ID.IsZero() {
			r.ID = primitive.NewObjectID()
		}
		m.byID[r.ID] = r
	}
	return m
}

func (m *memResources) Store() query.Store { return emptyStore{} }

func (m *memResources) Create(_ context.Context, resource *model.Resource) (*model.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.byID {
		if r.Name == resource.Name || r.Alias == resource.Alias {
			return nil, duplicateKey
		}
	}
	resource.ID = primitive.NewObjectID()
	cp := *resource
	m.byID[resource.ID] = &cp
	return resource, nil
}

func (m *memResources) GetByID(_ context.Context, id primitive.ObjectID) (*model.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *r
	return &cp, nil
}

func (m *memResources) FindByName(_ context.Context, name string) (*model.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.byID {
		if r.Name == name {
			cp := *r
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *memResources) UpdateByID(_ context.Context, id primitive.ObjectID, set bson.M) (*model.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	for k, v := range set {
		switch k {
		case "name":
			r.Name = v.(string)
		case "alias":
			r.Alias = v.(string)
		case "type":
			r.Type = v.(core.ResourceType)
		case "updatedBy":
			r.UpdatedBy = v.(*model.Ref)
		}
	}
	r.Revision++
	cp := *r
	return &cp, nil
}

func (m *memResources) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.byID, id)
	return nil
}

func (m *memResources) ExistingIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[primitive.ObjectID]struct{}{}
	for _, id := range ids {
		if _, ok := m.byID[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

type memPermissions struct {
	mu        sync.Mutex
	rows      []*model.Permission
	lookupErr error
	lookups   int
}

func (m *memPermissions) Store() query.Store { return emptyStore{} }

func (m *memPermissions) add(p *model.Permission) *model.Permission {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.rows = append(m.rows, p)
	return p
}

func (m *memPermissions) Create(_ context.Context, p *model.Permission) (*model.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.RoleID == p.RoleID && r.ResourceID == p.ResourceID {
			return nil, duplicateKey
		}
	}
	p.ID = primitive.NewObjectID()
	cp := *p
	m.rows = append(m.rows, &cp)
	return p, nil
}

func (m *memPermissions) find(match func(*model.Permission) bool) (*model.Permission, error) {
	for _, r := range m.rows {
		if match(r) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *memPermissions) GetByID(_ context.Context, id primitive.ObjectID) (*model.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(p *model.Permission) bool { return p.ID == id })
}

func (m *memPermissions) FindByPair(_ context.Context, roleID, resourceID primitive.ObjectID) (*model.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(p *model.Permission) bool { return p.RoleID == roleID && p.ResourceID == resourceID })
}

func (m *memPermissions) FindForAccess(ctx context.Context, roleID primitive.ObjectID, resource string) (*model.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.find(func(p *model.Permission) bool {
		return p.RoleID == roleID && p.ResourceName == resource && p.IsAllowed
	})
}

func (m *memPermissions) UpdateByID(_ context.Context, id primitive.ObjectID, set bson.M) (*model.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID != id {
			continue
		}
		for k, v := range set {
			switch k {
			case "isAllowed":
				r.IsAllowed = v.(bool)
			case "isDisabled":
				r.IsDisabled = v.(bool)
			case "updatedBy":
				r.UpdatedBy = v.(*model.Ref)
			}
		}
		r.Revision++
		cp := *r
		return &cp, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *memPermissions) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows {
		if r.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (m *memPermissions) SyncRole(_ context.Context, role *model.Role) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.rows {
		if r.RoleID == role.ID {
			r.RoleName, r.RoleAlias = role.Name, role.Alias
			n++
		}
	}
	return n, nil
}

func (m *memPermissions) SyncResource(_ context.Context, resource *model.Resource) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.rows {
		if r.ResourceID == resource.ID {
			r.ResourceName, r.ResourceAlias = resource.Name, resource.Alias
			n++
		}
	}
	return n, nil
}

func (m *memPermissions) DistinctRefs(context.Context) (roleIDs, resourceIDs []primitive.ObjectID, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seenRole := map[primitive.ObjectID]bool{}
	seenResource := map[primitive.ObjectID]bool{}
	for _, r := range m.rows {
		if !seenRole[r.RoleID] {
			seenRole[r.RoleID] = true
			roleIDs = append(roleIDs, r.RoleID)
		}
		if !seenResource[r.ResourceID] {
			seenResource[r.ResourceID] = true
			resourceIDs = append(resourceIDs, r.ResourceID)
		}
	}
	return roleIDs, resourceIDs, nil
}

func (m *memPermissions) FindByRefs(_ context.Context, roleIDs, resourceIDs []primitive.ObjectID) ([]*model.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in := func(id primitive.ObjectID, ids []primitive.ObjectID) bool {
		for _, x := range ids {
			if x == id {
				return true
			}
		}
		return false
	}
	var out []*model.Permission
	for _, r := range m.rows {
		if in(r.RoleID, roleIDs) || in(r.ResourceID, resourceIDs) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memUsers struct {
	mu        sync.Mutex
	byID      map[primitive.ObjectID]*model.User
	touched   int
	touchErr  error
	lookupErr error
}

func newMemUsers(users ...*model.User) *memUsers {
	m := &memUsers{byID: map[primitive.ObjectID]*model.User{}}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		m.byID[u.ID] = u
	}
	return m
}

func (m *memUsers) Store() query.Store { return emptyStore{} }

func (m *memUsers) Create(_ context.Context, user *model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == user.Username {
			return nil, duplicateKey
		}
	}
	user.ID = primitive.NewObjectID()
	cp := *user
	m.byID[user.ID] = &cp
	return user, nil
}

func (m *memUsers) GetByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	for _, u := range m.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *memUsers) UpdateByID(_ context.Context, id primitive.ObjectID, set bson.M) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	for k, v := range set {
		switch k {
		case "name":
			u.Name = v.(string)
		case "email":
			u.Email = v.(string)
		case "roleId":
			u.RoleID = v.(primitive.ObjectID)
		case "status":
			u.Status = v.(core.Status)
		}
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) UpdateLastSeen(_ context.Context, id primitive.ObjectID, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.touchErr != nil {
		return 0, m.touchErr
	}
	u, ok := m.byID[id]
	if !ok {
		return 0, nil
	}
	u.LastSeen = &at
	m.touched++
	return 1, nil
}

func (m *memUsers) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.byID, id)
	return nil
}

type memAuditor struct {
	mu      sync.Mutex
	records []fluentdModel.AccessLog
	err     error
}

func (m *memAuditor) LogAccessDecision(_ context.Context, record fluentdModel.AccessLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return m.err
}

var errStoreDown = errors.New("store unavailable")

// fixture 共用的服務組合
type fixture struct {
	roles       *memRoles
	resources   *memResources
	permissions *memPermissions
	users       *memUsers
	events      *event.Recorder
}

func newFixture() *fixture {
	return &fixture{
		roles:       newMemRoles(),
		resources:   newMemResources(),
		permissions: &memPermissions{},
		users:       newMemUsers(),
		events:      &event.Recorder{},
	}
}

func (f *fixture) roleService() *RoleService {
	return NewRoleService(&telemetry.Trace{}, zap.NewNop(), f.roles, f.permissions, f.users, f.events)
}

func (f *fixture) resourceService() *ResourceService {
	return NewResourceService(&telemetry.Trace{}, zap.NewNop(), f.resources, f.permissions, f.users, f.events)
}

func (f *fixture) permissionService() *PermissionService {
	return NewPermissionService(&telemetry.Trace{}, zap.NewNop(), f.permissions, f.roles, f.resources, f.users, f.events)
}

func (f *fixture) userService() *UserService {
	return NewUserService(&telemetry.Trace{}, zap.NewNop(), f.users, f.roles, f.events)
}

func (f *fixture) seedService() *SeedService {
	return NewSeedService(&telemetry.Trace{}, zap.NewNop(), f.roles, f.resources, f.users, f.permissions)
}
