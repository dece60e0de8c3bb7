package handler

import (
	"bastion/internal/dto"
	"bastion/internal/pkg/response"
	"bastion/internal/service"
	"bastion/internal/telemetry"
	"bastion/utils/validate"

	"github.com/gin-gonic/gin"
)

type PermissionHandler struct {
	trace             *telemetry.Trace
	permissionService *service.PermissionService
}

func NewPermissionHandler(trace *telemetry.Trace, permissionService *service.PermissionService) *PermissionHandler {
	return &PermissionHandler{trace: trace, permissionService: permissionService}
}

// List 權限列表
// @Summary 取得權限列表
// @Tags Permission
// @Security BearerAuth
// @Produce json
// @Param searchTerm query string false "搜尋 roleName / resourceName"
// @Param sort query string false "排序，例如 -createdAt,name"
// @Param page query int false "頁碼（預設 1）"
// @Param limit query int false "每頁筆數（預設 20，上限 1000）"
// @Param fields query string false "回傳欄位"
// @Param populate query string false "展開關聯，例如 createdBy,updatedBy:name email"
// @Success 200 {object} dto.ListResponse[dto.PermissionResponseDto]
// @Failure 400 {object} response.Response
// @Router /api/v1/permissions [get]
func (h *PermissionHandler) List(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	opts, err := validate.BindListQuery(c)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}

	res, err := h.permissionService.List(ctx, opts)
	end(err)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Get 取得權限
// @Summary 取得單一權限
// @Tags Permission
// @Security BearerAuth
// @Produce json
// @Param id path string true "Permission ID"
// @Success 200 {object} dto.PermissionResponseDto
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/permissions/{id} [get]
func (h *PermissionHandler) Get(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	permission, err := h.permissionService.GetByID(ctx, id)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, permission)
}

// Create 新增權限
// @Summary 新增權限
// @Tags Permission
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreatePermissionDto true "權限資訊"
// @Success 201 {object} dto.PermissionResponseDto
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/permissions [post]
func (h *PermissionHandler) Create(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	var req dto.CreatePermissionDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.permissionService.Create(ctx, validate.Principal(c), &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, res)
}

// Update 更新權限
// @Summary 更新權限（只能修改 isAllowed / isDisabled）
// @Tags Permission
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Permission ID"
// @Param body body dto.UpdatePermissionDto true "更新欄位"
// @Success 200 {object} dto.PermissionResponseDto
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/permissions/{id} [patch]
func (h *PermissionHandler) Update(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	var req dto.UpdatePermissionDto
	if cause, respErr = validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.permissionService.Update(ctx, validate.Principal(c), id, &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Delete 刪除權限
// @Summary 刪除權限
// @Tags Permission
// @Security BearerAuth
// @Produce json
// @Param id path string true "Permission ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/permissions/{id} [delete]
func (h *PermissionHandler) Delete(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	if err := h.permissionService.Delete(ctx, validate.Principal(c), id); err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "permission deleted successfully"})
}

// Orphans 角色或資源已不存在的權限
// @Summary 列出孤兒權限（只回報，不修復）
// @Tags Permission
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.OrphanPermissionDto
// @Router /api/v1/permissions/orphans [get]
func (h *PermissionHandler) Orphans(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	orphans, err := h.permissionService.FindOrphans(ctx)
	end(err)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, orphans)
}
