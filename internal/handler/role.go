package handler

import (
	"bastion/internal/dto"
	"bastion/internal/pkg/response"
	"bastion/internal/service"
	"bastion/internal/telemetry"
	"bastion/utils/validate"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	trace       *telemetry.Trace
	roleService *service.RoleService
}

func NewRoleHandler(trace *telemetry.Trace, roleService *service.RoleService) *RoleHandler {
	return &RoleHandler{trace: trace, roleService: roleService}
}

// List 角色列表
// @Summary 取得角色列表
// @Tags Role
// @Security BearerAuth
// @Produce json
// @Param searchTerm query string false "搜尋 name / alias"
// @Param sort query string false "排序，例如 -createdAt,name"
// @Param page query int false "頁碼（預設 1）"
// @Param limit query int false "每頁筆數（預設 20，上限 1000）"
// @Param fields query string false "回傳欄位"
// @Param populate query string false "展開關聯，例如 createdBy,updatedBy:name email"
// @Success 200 {object} dto.ListResponse[dto.RoleResponseDto]
// @Failure 400 {object} response.Response
// @Router /api/v1/roles [get]
func (h *RoleHandler) List(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	opts, err := validate.BindListQuery(c)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}

	res, err := h.roleService.List(ctx, opts)
	end(err)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Get 取得角色
// @Summary 取得單一角色
// @Tags Role
// @Security BearerAuth
// @Produce json
// @Param id path string true "Role ID"
// @Success 200 {object} dto.RoleResponseDto
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/roles/{id} [get]
func (h *RoleHandler) Get(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	role, err := h.roleService.GetByID(ctx, id)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, role)
}

// Create 新增角色
// @Summary 新增角色
// @Tags Role
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreateRoleDto true "角色資訊"
// @Success 201 {object} dto.RoleResponseDto
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/roles [post]
func (h *RoleHandler) Create(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	var req dto.CreateRoleDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.roleService.Create(ctx, validate.Principal(c), &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, res)
}

// Update 更新角色
// @Summary 更新角色（名稱或別名變更會同步到權限）
// @Tags Role
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Role ID"
// @Param body body dto.UpdateRoleDto true "更新欄位"
// @Success 200 {object} dto.RoleResponseDto
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/roles/{id} [patch]
func (h *RoleHandler) Update(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	var req dto.UpdateRoleDto
	if cause, respErr = validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.roleService.Update(ctx, validate.Principal(c), id, &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Delete 刪除角色
// @Summary 刪除角色（既有權限保留，由孤兒掃描回報）
// @Tags Role
// @Security BearerAuth
// @Produce json
// @Param id path string true "Role ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/roles/{id} [delete]
func (h *RoleHandler) Delete(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	if err := h.roleService.Delete(ctx, validate.Principal(c), id); err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "role deleted successfully"})
}
