package dto

import (
	"time"

	"bastion/internal/database/mongodb/model"
	"bastion/internal/pkg/request"
)

type CreatePermissionDto struct {
	RoleID     string `json:"roleId" binding:"required,len=24,hexadecimal"`
	ResourceID string `json:"resourceId" binding:"required,len=24,hexadecimal"`
	IsAllowed  bool   `json:"isAllowed"`
	IsDisabled bool   `json:"isDisabled"`
}

func (CreatePermissionDto) GetMessages() request.ValidatorMessages {
	return request.ValidatorMessages{
		"RoleID.required":        "roleId is required",
		"RoleID.len":             "roleId must be a 24 character ObjectID",
		"RoleID.hexadecimal":     "roleId must be a 24 character ObjectID",
		"ResourceID.required":    "resourceId is required",
		"ResourceID.len":         "resourceId must be a 24 character ObjectID",
		"ResourceID.hexadecimal": "resourceId must be a 24 character ObjectID",
	}
}

// UpdatePermissionDto 角色與資源建立後不可更改
type UpdatePermissionDto struct {
	IsAllowed  *bool `json:"isAllowed,omitempty"`
	IsDisabled *bool `json:"isDisabled,omitempty"`
}

type PermissionResponseDto struct {
	ID            string     `json:"id"`
	RoleID        string     `json:"roleId"`
	RoleName      string     `json:"roleName"`
	RoleAlias     string     `json:"roleAlias"`
	ResourceID    string     `json:"resourceId"`
	ResourceName  string     `json:"resourceName"`
	ResourceAlias string     `json:"resourceAlias"`
	IsAllowed     bool       `json:"isAllowed"`
	IsDisabled    bool       `json:"isDisabled"`
	CreatedBy     *model.Ref `json:"createdBy"`
	UpdatedBy     *model.Ref `json:"updatedBy"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func ToPermissionResponseDto(m *model.Permission) *PermissionResponseDto {
	return &PermissionResponseDto{
		ID:            m.ID.Hex(),
		RoleID:        m.RoleID.Hex(),
		RoleName:      m.RoleName,
		RoleAlias:     m.RoleAlias,
		ResourceID:    m.ResourceID.Hex(),
		ResourceName:  m.ResourceName,
		ResourceAlias: m.ResourceAlias,
		IsAllowed:     m.IsAllowed,
		IsDisabled:    m.IsDisabled,
		CreatedBy:     m.CreatedBy,
		UpdatedBy:     m.UpdatedBy,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// OrphanPermissionDto 角色或資源已不存在的權限
type OrphanPermissionDto struct {
	Permission      *PermissionResponseDto `json:"permission"`
	MissingRole     bool                   `json:"missingRole"`
	MissingResource bool                   `json:"missingResource"`
}
