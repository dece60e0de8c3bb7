package router

import (
	"bastion/internal/handler"
	"bastion/internal/middleware"

	"github.com/gin-gonic/gin"
)

// APIRouter 受保護的管理 API；每個請求依序經過驗證、使用者檢查、限流與授權
type APIRouter struct {
	authenticate      *middleware.Authenticate
	user              *middleware.User
	rateLimit         *middleware.RateLimit
	access            *middleware.Access
	roleHandler       *handler.RoleHandler
	resourceHandler   *handler.ResourceHandler
	permissionHandler *handler.PermissionHandler
	userHandler       *handler.UserHandler
}

func NewAPIRouter(
	authenticate *middleware.Authenticate,
	user *middleware.User,
	rateLimit *middleware.RateLimit,
	access *middleware.Access,
	roleHandler *handler.RoleHandler,
	resourceHandler *handler.ResourceHandler,
	permissionHandler *handler.PermissionHandler,
	userHandler *handler.UserHandler,
) *APIRouter {
	return &APIRouter{
		authenticate:      authenticate,
		user:              user,
		rateLimit:         rateLimit,
		access:            access,
		roleHandler:       roleHandler,
		resourceHandler:   resourceHandler,
		permissionHandler: permissionHandler,
		userHandler:       userHandler,
	}
}

// crud 列表、單筆、新增、部分更新、刪除
type crud interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

func registerCRUD(g *gin.RouterGroup, h crud) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (ar *APIRouter) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1",
		ar.authenticate.Handler(),
		ar.user.Handler(),
		ar.rateLimit.Guard(),
		ar.access.Guard(),
	)
	{
		registerCRUD(api.Group("/roles"), ar.roleHandler)
		registerCRUD(api.Group("/resources"), ar.resourceHandler)
		registerCRUD(api.Group("/users"), ar.userHandler)

		permissions := api.Group("/permissions")
		permissions.GET("/orphans", ar.permissionHandler.Orphans)
		registerCRUD(permissions, ar.permissionHandler)
	}
}
