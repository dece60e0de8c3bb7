package service

import (
	"context"
	"fmt"

	"bastion/internal/core"
	"bastion/internal/database/mongodb/model"
	"bastion/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// SeedData 初始資料；角色與資源以名稱、使用者以帳號、權限以 (角色名稱, 資源名稱) 作為自然鍵
type SeedData struct {
	Roles       []SeedRole       `yaml:"roles"`
	Resources   []SeedResource   `yaml:"resources"`
	Users       []SeedUser       `yaml:"users"`
	Permissions []SeedPermission `yaml:"permissions"`
}

type SeedRole struct {
	Name         string `yaml:"name"`
	Alias        string `yaml:"alias"`
	IsSuperAdmin bool   `yaml:"isSuperAdmin"`
	IsAdmin      bool   `yaml:"isAdmin"`
}

type SeedResource struct {
	Name  string            `yaml:"name"`
	Alias string            `yaml:"alias"`
	Type  core.ResourceType `yaml:"type"`
}

type SeedUser struct {
	Username string `yaml:"username"`
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	RoleName string `yaml:"roleName"`
}

type SeedPermission struct {
	RoleName     string `yaml:"roleName"`
	ResourceName string `yaml:"resourceName"`
	IsAllowed    bool   `yaml:"isAllowed"`
	IsDisabled   bool   `yaml:"isDisabled"`
}

// SeedReport 每類實體新增與更新的筆數
type SeedReport struct {
	Created map[string]int `json:"created"`
	Updated map[string]int `json:"updated"`
}

func (r *SeedReport) add(created bool, entity string) {
	if created {
		r.Created[entity]++
	} else {
		r.Updated[entity]++
	}
}

type SeedService struct {
	trace       *telemetry.Trace
	logger      *zap.Logger
	roles       RoleStore
	resources   ResourceStore
	users       UserStore
	permissions PermissionStore
}

func NewSeedService(
	trace *telemetry.Trace,
	logger *zap.Logger,
	roles RoleStore,
	resources ResourceStore,
	users UserStore,
	permissions PermissionStore,
) *SeedService {
	return &SeedService{
		trace:       trace,
		logger:      logger,
		roles:       roles,
		resources:   resources,
		users:       users,
		permissions: permissions,
	}
}

// Seed 依序處理資源、角色、使用者、權限；已存在者更新，不存在者新增。
// 使用者已存在時不覆寫，避免蓋掉線上調整過的角色與狀態。
func (s *SeedService) Seed(ctx context.Context, data SeedData) (_ *SeedReport, err error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(err) }()

	report := &SeedReport{Created: map[string]int{}, Updated: map[string]int{}}

	for _, r := range data.Resources {
		created, err := s.seedResource(ctx, r)
		if err != nil {
			return report, fmt.Errorf("seed resource %s: %w", r.Name, err)
		}
		report.add(created, "resource")
	}

	for _, r := range data.Roles {
		created, err := s.seedRole(ctx, r)
		if err != nil {
			return report, fmt.Errorf("seed role %s: %w", r.Name, err)
		}
		report.add(created, "role")
	}

	for _, u := range data.Users {
		created, err := s.seedUser(ctx, u)
		if err != nil {
			return report, fmt.Errorf("seed user %s: %w", u.Username, err)
		}
		if created {
			report.add(true, "user")
		}
	}

	for _, p := range data.Permissions {
		created, err := s.seedPermission(ctx, p)
		if err != nil {
			return report, fmt.Errorf("seed permission %s %s: %w", p.RoleName, p.ResourceName, err)
		}
		report.add(created, "permission")
	}

	s.logger.Info("seed finished",
		zap.Any("created", report.Created),
		zap.Any("updated", report.Updated),
	)
	return report, nil
}

func (s *SeedService) seedResource(ctx context.Context, r SeedResource) (bool, error) {
	existing, err := s.resources.FindByName(ctx, r.Name)
	if err != nil && !isNotFound(err) {
		return false, err
	}
	if existing == nil {
		_, err = s.resources.Create(ctx, &model.Resource{Name: r.Name, Alias: r.Alias, Type: r.Type})
		return true, err
	}
	updated, err := s.resources.UpdateByID(ctx, existing.ID, bson.M{"alias": r.Alias, "type": r.Type})
	if err != nil {
		return false, err
	}
	if updated.Alias != existing.Alias {
		if _, err = s.permissions.SyncResource(ctx, updated); err != nil {
			return false, err
		}
	}
	return false, nil
}

func (s *SeedService) seedRole(ctx context.Context, r SeedRole) (bool, error) {
	existing, err := s.roles.FindByName(ctx, r.Name)
	if err != nil && !isNotFound(err) {
		return false, err
	}
	if existing == nil {
		_, err = s.roles.Create(ctx, &model.Role{
			Name:         r.Name,
			Alias:        r.Alias,
			IsSuperAdmin: r.IsSuperAdmin,
			IsAdmin:      r.IsAdmin,
		})
		return true, err
	}
	role, err := s.roles.UpdateByID(ctx, existing.ID, bson.M{
		"alias":        r.Alias,
		"isSuperAdmin": r.IsSuperAdmin,
		"isAdmin":      r.IsAdmin,
	})
	if err != nil {
		return false, err
	}
	if role.Alias != existing.Alias {
		if _, err = s.permissions.SyncRole(ctx, role); err != nil {
			return false, err
		}
	}
	return false, nil
}

func (s *SeedService) seedUser(ctx context.Context, u SeedUser) (bool, error) {
	_, err := s.users.FindByUsername(ctx, u.Username)
	if err == nil {
		s.logger.Info("seed user exists", zap.String("username", u.Username))
		return false, nil
	}
	if !isNotFound(err) {
		return false, err
	}
	role, err := s.roles.FindByName(ctx, u.RoleName)
	if err != nil {
		return false, err
	}
	_, err = s.users.Create(ctx, &model.User{
		Username: u.Username,
		Name:     u.Name,
		Email:    u.Email,
		RoleID:   role.ID,
		Status:   core.StatusActive,
	})
	return err == nil, err
}

func (s *SeedService) seedPermission(ctx context.Context, p SeedPermission) (bool, error) {
	role, err := s.roles.FindByName(ctx, p.RoleName)
	if err != nil {
		return false, err
	}
	resource, err := s.resources.FindByName(ctx, p.ResourceName)
	if err != nil {
		return false, err
	}

	existing, err := s.permissions.FindByPair(ctx, role.ID, resource.ID)
	if err != nil && !isNotFound(err) {
		return false, err
	}
	if existing != nil {
		_, err = s.permissions.UpdateByID(ctx, existing.ID, bson.M{
			"isAllowed":  p.IsAllowed,
			"isDisabled": p.IsDisabled,
		})
		return false, err
	}
	_, err = s.permissions.Create(ctx, &model.Permission{
		RoleID:        role.ID,
		RoleName:      role.Name,
		RoleAlias:     role.Alias,
		ResourceID:    resource.ID,
		ResourceName:  resource.Name,
		ResourceAlias: resource.Alias,
		IsAllowed:     p.IsAllowed,
		IsDisabled:    p.IsDisabled,
	})
	return err == nil, err
}
