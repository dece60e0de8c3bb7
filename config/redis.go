package config

type Redis struct {
	Host     string `mapstructure:"HOST" json:"host" yaml:"host"`
	Port     int    `mapstructure:"PORT" json:"port" yaml:"port"`
	Password string `mapstructure:"PASSWORD" json:"password" yaml:"password"`
	DB       int    `mapstructure:"DB" json:"db" yaml:"db"`
	// 領域事件發佈頻道；留空則不發佈
	EventChannel string `mapstructure:"EVENT_CHANNEL" json:"eventChannel" yaml:"eventChannel"`
}
