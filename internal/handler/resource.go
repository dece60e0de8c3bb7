package handler

import (
	"bastion/internal/dto"
	"bastion/internal/pkg/response"
	"bastion/internal/service"
	"bastion/internal/telemetry"
	"bastion/utils/validate"

	"github.com/gin-gonic/gin"
)

type ResourceHandler struct {
	trace           *telemetry.Trace
	resourceService *service.ResourceService
}

func NewResourceHandler(trace *telemetry.Trace, resourceService *service.ResourceService) *ResourceHandler {
	return &ResourceHandler{trace: trace, resourceService: resourceService}
}

// List 資源列表
// @Summary 取得資源列表
// @Tags Resource
// @Security BearerAuth
// @Produce json
// @Param searchTerm query string false "搜尋 name / alias / type"
// @Param sort query string false "排序，例如 -createdAt,name"
// @Param page query int false "頁碼（預設 1）"
// @Param limit query int false "每頁筆數（預設 20，上限 1000）"
// @Param fields query string false "回傳欄位"
// @Param populate query string false "展開關聯，例如 createdBy,updatedBy:name email"
// @Success 200 {object} dto.ListResponse[dto.ResourceResponseDto]
// @Failure 400 {object} response.Response
// @Router /api/v1/resources [get]
func (h *ResourceHandler) List(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	opts, err := validate.BindListQuery(c)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}

	res, err := h.resourceService.List(ctx, opts)
	end(err)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Get 取得資源
// @Summary 取得單一資源
// @Tags Resource
// @Security BearerAuth
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} dto.ResourceResponseDto
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/resources/{id} [get]
func (h *ResourceHandler) Get(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	resource, err := h.resourceService.GetByID(ctx, id)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, resource)
}

// Create 新增資源
// @Summary 新增資源
// @Tags Resource
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreateResourceDto true "資源資訊"
// @Success 201 {object} dto.ResourceResponseDto
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/resources [post]
func (h *ResourceHandler) Create(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	var req dto.CreateResourceDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.resourceService.Create(ctx, validate.Principal(c), &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, res)
}

// Update 更新資源
// @Summary 更新資源（名稱或別名變更會同步到權限）
// @Tags Resource
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param body body dto.UpdateResourceDto true "更新欄位"
// @Success 200 {object} dto.ResourceResponseDto
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/resources/{id} [patch]
func (h *ResourceHandler) Update(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	var req dto.UpdateResourceDto
	if cause, respErr = validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.resourceService.Update(ctx, validate.Principal(c), id, &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Delete 刪除資源
// @Summary 刪除資源（既有權限保留，由孤兒掃描回報）
// @Tags Resource
// @Security BearerAuth
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/resources/{id} [delete]
func (h *ResourceHandler) Delete(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	if err := h.resourceService.Delete(ctx, validate.Principal(c), id); err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "resource deleted successfully"})
}
