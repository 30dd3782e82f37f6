package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string `mapstructure:"mode"`
	Port       int    `mapstructure:"port"`
	StaticPath string `mapstructure:"static_path"`
	Secret     string `mapstructure:"secret"`

	SendBuffer int `mapstructure:"send_buffer"`

	// RingTimeout expires unanswered invitations; 0 keeps them ringing
	// forever, matching the historical behavior.
	RingTimeout  time.Duration `mapstructure:"ring_timeout"`
	ReapInterval time.Duration `mapstructure:"reap_interval"`

	CallRateLimit    int           `mapstructure:"call_rate_limit"`
	CallRateInterval time.Duration `mapstructure:"call_rate_interval"`

	ICEServers []ICEServerConfig `mapstructure:"ice_servers"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("ring_timeout", "60s")
	v.SetDefault("reap_interval", "5s")
	v.SetDefault("call_rate_limit", 10)
	v.SetDefault("call_rate_interval", "1m")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if len(cfg.ICEServers) == 0 {
		cfg.ICEServers = defaultICEServers()
	}
	if err := cfg.validateICE(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
