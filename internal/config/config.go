package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Kafka struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type Config struct {
	ListenAddr  string `yaml:"listen_addr"`
	Market      string `yaml:"market"`
	DatabaseURL string `yaml:"database_url"`
	Kafka       Kafka  `yaml:"kafka"`
	LogLevel    string `yaml:"log_level"`

	// CommandBuffer sizes the engine's command channel.
	CommandBuffer int `yaml:"command_buffer"`
}

func Default() Config {
	return Config{
		ListenAddr:    ":8080",
		Market:        "BTC-USD",
		LogLevel:      "info",
		CommandBuffer: 1024,
	}
}

// Load reads a YAML config file on top of the defaults. A missing path
// returns the defaults; DATABASE_URL in the environment overrides the
// file either way.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.DatabaseURL = url
	}

	if cfg.CommandBuffer <= 0 {
		cfg.CommandBuffer = 1024
	}
	return cfg, nil
}

// KafkaEnabled reports whether a publisher should be wired at all.
func (c Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0 && c.Kafka.Topic != ""
}
