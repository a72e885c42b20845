package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	News struct {
		MaxArticles    int `yaml:"max_articles"`
		PromptArticles int `yaml:"prompt_articles"`
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"news"`
	LLM struct {
		Provider       string  `yaml:"provider"`
		Model          string  `yaml:"model"`
		MaxTokens      int     `yaml:"max_tokens"`
		Temperature    float32 `yaml:"temperature"`
		System         string  `yaml:"system"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
	} `yaml:"llm"`
	Batch struct {
		QtyEpsilon float64 `yaml:"qty_epsilon"`
	} `yaml:"batch"`
	Sync struct {
		SkipRows int `yaml:"skip_rows"`
	} `yaml:"sync"`
}

func (c *Config) Validate() error {
	if c.News.MaxArticles <= 0 {
		return fmt.Errorf("news.max_articles must be positive, got %d", c.News.MaxArticles)
	}
	if c.News.PromptArticles <= 0 || c.News.PromptArticles > c.News.MaxArticles {
		return fmt.Errorf("news.prompt_articles must be in 1..%d, got %d", c.News.MaxArticles, c.News.PromptArticles)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0-2, got %.2f", c.LLM.Temperature)
	}
	if c.Batch.QtyEpsilon <= 0 {
		return fmt.Errorf("batch.qty_epsilon must be positive, got %g", c.Batch.QtyEpsilon)
	}
	if c.LLM.Provider != "OPENROUTER" && c.LLM.Provider != "OFFLINE" {
		return fmt.Errorf("llm.provider must be 'OPENROUTER' or 'OFFLINE', got '%s'", c.LLM.Provider)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

// DefaultConfig returns a config with every default applied, used when no
// config file is present.
func DefaultConfig() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Database.Path == "" {
		c.Database.Path = "portfolio.db"
	}
	if c.News.MaxArticles == 0 {
		c.News.MaxArticles = 10
	}
	if c.News.PromptArticles == 0 {
		c.News.PromptArticles = 5
	}
	if c.News.TimeoutSeconds == 0 {
		c.News.TimeoutSeconds = 30
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "OPENROUTER"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "meta-llama/llama-3.2-3b-instruct:free"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 2000
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.7
	}
	if c.LLM.System == "" {
		c.LLM.System = "You are an experienced financial analyst specializing in stock analysis and investment recommendations. Provide clear, actionable advice based on news analysis."
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 60
	}
	if c.Batch.QtyEpsilon == 0 {
		c.Batch.QtyEpsilon = 0.0001
	}
	if c.Sync.SkipRows == 0 {
		c.Sync.SkipRows = 2
	}
}
