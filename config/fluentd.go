package config

type Fluentd struct {
	// Host 留空則以 Noop client 取代（本機開發用）
	Host      string `mapstructure:"HOST" json:"host" yaml:"host"`
	Port      int    `mapstructure:"PORT" json:"port" yaml:"port"`
	TagPrefix string `mapstructure:"TAG_PREFIX" json:"tagPrefix" yaml:"tagPrefix"`
	Timeout   int64  `mapstructure:"TIMEOUT" json:"timeout" yaml:"timeout"`
	Async     bool   `mapstructure:"ASYNC" json:"async" yaml:"async"`
}
