package model

// AccessLog 每一次授權判斷的稽核紀錄
type AccessLog struct {
	RequestID    string `json:"request_id,omitempty"`
	UserID       string `json:"user_id,omitempty"`
	Username     string `json:"username,omitempty"`
	RoleID       string `json:"role_id,omitempty"`
	Resource     string `json:"resource"`
	Outcome      string `json:"outcome"`
	Reason       string `json:"reason"`
	PermissionID string `json:"permission_id,omitempty"`
	Version      string `json:"version,omitempty"`
	DecidedAt    string `json:"decided_at"`
	LoggedAt     string `json:"logged_at"`
}
