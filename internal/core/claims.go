package core

import "github.com/golang-jwt/jwt/v4"

// Claims 為外部簽發的存取 token 內容
type Claims struct {
	Username string `json:"username"`
	UserID   string `json:"userId"`
	RoleID   string `json:"roleId"`
	jwt.RegisteredClaims
}

// Principal 由 Claims 轉換而來
func (c *Claims) Principal() *Principal {
	if c == nil {
		return nil
	}
	return &Principal{UserID: c.UserID, Username: c.Username, RoleID: c.RoleID}
}
