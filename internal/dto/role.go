package dto

import (
	"time"

	"bastion/internal/database/mongodb/model"
)

type CreateRoleDto struct {
	Name         string `json:"name" binding:"required,min=3,max=50"`
	Alias        string `json:"alias" binding:"required,min=3,max=50"`
	IsSuperAdmin bool   `json:"isSuperAdmin"`
	IsAdmin      bool   `json:"isAdmin"`
}

type UpdateRoleDto struct {
	Name         *string `json:"name,omitempty" binding:"omitempty,min=3,max=50"`
	Alias        *string `json:"alias,omitempty" binding:"omitempty,min=3,max=50"`
	IsSuperAdmin *bool   `json:"isSuperAdmin,omitempty"`
	IsAdmin      *bool   `json:"isAdmin,omitempty"`
}

type RoleResponseDto struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Alias        string     `json:"alias"`
	IsSuperAdmin bool       `json:"isSuperAdmin"`
	IsAdmin      bool       `json:"isAdmin"`
	CreatedBy    *model.Ref `json:"createdBy"`
	UpdatedBy    *model.Ref `json:"updatedBy"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func ToRoleResponseDto(m *model.Role) *RoleResponseDto {
	return &RoleResponseDto{
		ID:           m.ID.Hex(),
		Name:         m.Name,
		Alias:        m.Alias,
		IsSuperAdmin: m.IsSuperAdmin,
		IsAdmin:      m.IsAdmin,
		CreatedBy:    m.CreatedBy,
		UpdatedBy:    m.UpdatedBy,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
