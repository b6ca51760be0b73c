package stagedetect

import "time"

type Config struct {
	Temperature float64
	Timeout     time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Temperature: 0.2,
		Timeout:     30 * time.Second,
	}
}
