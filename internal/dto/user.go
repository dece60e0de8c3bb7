package dto

import (
	"time"

	"bastion/internal/core"
	"bastion/internal/database/mongodb/model"
	"bastion/internal/pkg/request"
)

// 建立用戶
type CreateUserDto struct {
	Username string      `json:"username" binding:"required,min=3,max=50"`  // 登入帳號
	Name     string      `json:"name" binding:"required"`                   // 顯示名稱
	Email    string      `json:"email,omitempty" binding:"omitempty,email"` // 信箱可選且格式驗證
	RoleID   string      `json:"roleId" binding:"required,len=24,hexadecimal"`
	Status   core.Status `json:"status" binding:"omitempty,oneof=active blocked suspended pending deleted"` // 預設 active
}

func (CreateUserDto) GetMessages() request.ValidatorMessages {
	return request.ValidatorMessages{
		"Username.required": "username is required",
		"Username.min":      "username must be 3 to 50 characters",
		"Username.max":      "username must be 3 to 50 characters",
		"Email.email":       "email format is invalid",
		"RoleID.required":   "roleId is required",
		"Status.oneof":      "status must be one of active, blocked, suspended, pending, deleted",
	}
}

// 更新用戶
type UpdateUserDto struct {
	Name   *string      `json:"name,omitempty"`
	Email  *string      `json:"email,omitempty" binding:"omitempty,email"`
	RoleID *string      `json:"roleId,omitempty" binding:"omitempty,len=24,hexadecimal"`
	Status *core.Status `json:"status,omitempty" binding:"omitempty,oneof=active blocked suspended pending deleted"`
}

type UserResponseDto struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Name      string      `json:"name,omitempty"`
	Email     string      `json:"email,omitempty"`
	RoleID    string      `json:"roleId"`
	Status    core.Status `json:"status"`
	LastSeen  *time.Time  `json:"lastSeen,omitempty"`
	CreatedBy *model.Ref  `json:"createdBy"`
	UpdatedBy *model.Ref  `json:"updatedBy"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func ToUserResponseDto(m *model.User) *UserResponseDto {
	resp := &UserResponseDto{
		ID:        m.ID.Hex(),
		Username:  m.Username,
		Name:      m.Name,
		Email:     m.Email,
		RoleID:    m.RoleID.Hex(),
		Status:    m.Status,
		CreatedBy: m.CreatedBy,
		UpdatedBy: m.UpdatedBy,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.LastSeen != nil && !m.LastSeen.IsZero() {
		resp.LastSeen = m.LastSeen
	}
	return resp
}
