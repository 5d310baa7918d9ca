package config

import (
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Env  string `mapstructure:"env"`
	Port int    `mapstructure:"port"`
}

type WSConfig struct {
	Path                 string `mapstructure:"path"`
	SweepIntervalSeconds int    `mapstructure:"sweep_interval_seconds"`
	WriteDeadlineSeconds int    `mapstructure:"write_deadline_seconds"`
	MaxMessageSizeBytes  int64  `mapstructure:"max_message_size_bytes"`
	SendBufferSize       int    `mapstructure:"send_buffer_size"`
}

type RedisConfig struct {
	Addr               string `mapstructure:"addr"`
	Pass               string `mapstructure:"password"`
	DB                 int    `mapstructure:"db"`
	Prefix             string `mapstructure:"prefix"`
	PresenceTTLSeconds int    `mapstructure:"presence_ttl_seconds"`
}

type KafkaConfig struct {
	Brokers        []string `mapstructure:"brokers"`
	LifecycleTopic string   `mapstructure:"topic_lifecycle"`
}

type HTTPConfig struct {
	StaticDir string `mapstructure:"static_dir"`
}

type Config struct {
	App   AppConfig   `mapstructure:"app"`
	WS    WSConfig    `mapstructure:"ws"`
	Redis RedisConfig `mapstructure:"redis"`
	Kafka KafkaConfig `mapstructure:"kafka"`
	HTTP  HTTPConfig  `mapstructure:"http"`

	// derived timeouts
	SweepInterval time.Duration
	WriteDeadline time.Duration
	PresenceTTL   time.Duration
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}

	if c.App.Port == 0 {
		c.App.Port = 8080
	}
	if c.WS.Path == "" {
		c.WS.Path = "/ws"
	}
	if c.WS.SweepIntervalSeconds == 0 {
		c.WS.SweepIntervalSeconds = 30
	}
	if c.WS.WriteDeadlineSeconds == 0 {
		c.WS.WriteDeadlineSeconds = 10
	}
	if c.WS.MaxMessageSizeBytes == 0 {
		c.WS.MaxMessageSizeBytes = 65536
	}
	if c.WS.SendBufferSize == 0 {
		c.WS.SendBufferSize = 256
	}
	if c.Redis.PresenceTTLSeconds == 0 {
		c.Redis.PresenceTTLSeconds = 86400
	}

	c.SweepInterval = time.Duration(c.WS.SweepIntervalSeconds) * time.Second
	c.WriteDeadline = time.Duration(c.WS.WriteDeadlineSeconds) * time.Second
	c.PresenceTTL = time.Duration(c.Redis.PresenceTTLSeconds) * time.Second
	return &c, nil
}
