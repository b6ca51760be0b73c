package actiongen

import "time"

type Config struct {
	Temperature float64
	Timeout     time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Temperature: 0.4,
		Timeout:     30 * time.Second,
	}
}
