package config

import "errors"

var ErrEmptyJWTSecret = errors.New("AUTH.JWT_SECRET is required")

type Auth struct {
	// HS256 簽章密鑰（token 由外部服務簽發）
	JWTSecret string `mapstructure:"JWT_SECRET" json:"jwtSecret" yaml:"jwtSecret"`
	Issuer    string `mapstructure:"ISSUER" json:"issuer" yaml:"issuer"`
}

// Validate 空密鑰等於任何人都能簽出有效 token
func (a Auth) Validate() error {
	if a.JWTSecret == "" {
		return ErrEmptyJWTSecret
	}
	return nil
}

type RateLimit struct {
	Enabled       bool  `mapstructure:"ENABLED" json:"enabled" yaml:"enabled"`
	Limit         int   `mapstructure:"LIMIT" json:"limit" yaml:"limit"`
	WindowSeconds int64 `mapstructure:"WINDOW_SECONDS" json:"windowSeconds" yaml:"windowSeconds"`
}

type Cron struct {
	// 孤兒權限掃描排程（含秒），空字串則停用
	OrphanScanSpec string `mapstructure:"ORPHAN_SCAN_SPEC" json:"orphanScanSpec" yaml:"orphanScanSpec"`
}
