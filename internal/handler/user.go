package handler

import (
	"bastion/internal/dto"
	"bastion/internal/pkg/response"
	"bastion/internal/service"
	"bastion/internal/telemetry"
	"bastion/utils/validate"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	trace       *telemetry.Trace
	userService *service.UserService
}

func NewUserHandler(trace *telemetry.Trace, userService *service.UserService) *UserHandler {
	return &UserHandler{trace: trace, userService: userService}
}

// List 用戶列表
// @Summary 取得用戶列表
// @Tags User
// @Security BearerAuth
// @Produce json
// @Param searchTerm query string false "搜尋 username / name / email"
// @Param sort query string false "排序，例如 -createdAt,name"
// @Param page query int false "頁碼（預設 1）"
// @Param limit query int false "每頁筆數（預設 20，上限 1000）"
// @Param fields query string false "回傳欄位"
// @Param populate query string false "展開關聯 createdBy, updatedBy"
// @Success 200 {object} dto.ListResponse[dto.UserResponseDto]
// @Failure 400 {object} response.Response
// @Router /api/v1/users [get]
func (h *UserHandler) List(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	opts, err := validate.BindListQuery(c)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}

	res, err := h.userService.List(ctx, opts)
	end(err)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Get 取得用戶
// @Summary 取得單一用戶
// @Tags User
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.UserResponseDto
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	user, err := h.userService.GetByID(ctx, id)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, user)
}

// Create 新增用戶
// @Summary 新增用戶
// @Tags User
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreateUserDto true "用戶資訊"
// @Success 201 {object} dto.UserResponseDto
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	var req dto.CreateUserDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.userService.Create(ctx, validate.Principal(c), &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, res)
}

// Update 更新用戶
// @Summary 更新用戶資料、角色或狀態
// @Tags User
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param body body dto.UpdateUserDto true "更新欄位"
// @Success 200 {object} dto.UserResponseDto
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{id} [patch]
func (h *UserHandler) Update(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	var req dto.UpdateUserDto
	if cause, respErr = validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.userService.Update(ctx, validate.Principal(c), id, &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Delete 刪除用戶
// @Summary 刪除用戶
// @Tags User
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	if err := h.userService.Delete(ctx, validate.Principal(c), id); err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "user deleted successfully"})
}
