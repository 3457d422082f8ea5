package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		URI string `yaml:"uri"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Gemini struct {
		ApiKey string `yaml:"apiKey"`
	} `yaml:"gemini"`

	JWT struct {
		Secret        string `yaml:"secret"`
		ExpiryMinutes int    `yaml:"expiryMinutes"`
	} `yaml:"jwt"`

	Admin struct {
		Usernames []string `yaml:"usernames"`
	} `yaml:"admin"`

	Rewards struct {
		VerificationThreshold  int `yaml:"verificationThreshold"`
		DailyDetectionLimit    int `yaml:"dailyDetectionLimit"`
		MinScanIntervalSeconds int `yaml:"minScanIntervalSeconds"`
	} `yaml:"rewards"`
}

// LoadConfig reads the configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.JWT.ExpiryMinutes == 0 {
		cfg.JWT.ExpiryMinutes = 24 * 60
	}
	if cfg.Rewards.VerificationThreshold == 0 {
		cfg.Rewards.VerificationThreshold = 10
	}
	if cfg.Rewards.DailyDetectionLimit == 0 {
		cfg.Rewards.DailyDetectionLimit = 50
	}
	if cfg.Rewards.MinScanIntervalSeconds == 0 {
		cfg.Rewards.MinScanIntervalSeconds = 5
	}
}
