package core

type Status string

const (
	StatusActive    Status = "active"    // 正常可用
	StatusBlocked   Status = "blocked"   // 被封鎖（例如濫用）
	StatusSuspended Status = "suspended" // 暫停（違規調查中）
	StatusPending   Status = "pending"   // 尚未啟用（等待審核/激活）
	StatusDeleted   Status = "deleted"   // 已刪除（軟刪除）
)

// ResourceType 受保護資源的種類
type ResourceType string

const (
	ResourceTypeAPI    ResourceType = "api"    // 後端路由
	ResourceTypeClient ResourceType = "client" // 前端頁面/元件
)
