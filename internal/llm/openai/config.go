package openai

import "time"

// Config holds the OpenAI-compatible endpoint settings.
type Config struct {
	BaseURL     string // default https://api.openai.com/v1
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

func (c *Config) setDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
}
