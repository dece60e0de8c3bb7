package core

// ContextPrincipalKey 為 gin.Context 中存放已驗證使用者的 key
const ContextPrincipalKey = "principal"

// Principal 已驗證的請求者
type Principal struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	RoleID   string `json:"roleId"`
}

// HasIdentity 是否具備授權判斷所需的身分欄位
func (p *Principal) HasIdentity() bool {
	return p != nil && p.Username != "" && p.RoleID != ""
}
