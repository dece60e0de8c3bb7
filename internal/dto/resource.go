package dto

import (
	"time"

	"bastion/internal/core"
	"bastion/internal/database/mongodb/model"
)

type CreateResourceDto struct {
	// API 類型填路由樣板，例如 /api/v1/roles/:id
	Name  string            `json:"name" binding:"required,min=2,max=200"`
	Alias string            `json:"alias" binding:"required"`
	Type  core.ResourceType `json:"type" binding:"required,oneof=api client"`
}

type UpdateResourceDto struct {
	Name  *string            `json:"name,omitempty" binding:"omitempty,min=2,max=200"`
	Alias *string            `json:"alias,omitempty"`
	Type  *core.ResourceType `json:"type,omitempty" binding:"omitempty,oneof=api client"`
}

type ResourceResponseDto struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Alias     string            `json:"alias"`
	Type      core.ResourceType `json:"type"`
	CreatedBy *model.Ref        `json:"createdBy"`
	UpdatedBy *model.Ref        `json:"updatedBy"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func ToResourceResponseDto(m *model.Resource) *ResourceResponseDto {
	return &ResourceResponseDto{
		ID:        m.ID.Hex(),
		Name:      m.Name,
		Alias:     m.Alias,
		Type:      m.Type,
		CreatedBy: m.CreatedBy,
		UpdatedBy: m.UpdatedBy,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
