package config

type Log struct {
	// debug / info / warn / error ...
	Level string `mapstructure:"LEVEL" json:"level" yaml:"level"`
	// 檔案輸出路徑；空字串代表只輸出到 stdout/stderr
	File       string `mapstructure:"FILE" json:"file" yaml:"file"`
	MaxSize    int    `mapstructure:"MAX_SIZE" json:"maxSize" yaml:"maxSize"` // MB
	MaxBackups int    `mapstructure:"MAX_BACKUPS" json:"maxBackups" yaml:"maxBackups"`
	MaxAge     int    `mapstructure:"MAX_AGE" json:"maxAge" yaml:"maxAge"` // 天
	Compress   bool   `mapstructure:"COMPRESS" json:"compress" yaml:"compress"`
}
