package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: \":9000\"\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.News.MaxArticles != 10 || cfg.News.PromptArticles != 5 {
		t.Errorf("news defaults = %d/%d", cfg.News.MaxArticles, cfg.News.PromptArticles)
	}
	if cfg.LLM.Provider != "OPENROUTER" {
		t.Errorf("provider default = %q", cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "meta-llama/llama-3.2-3b-instruct:free" {
		t.Errorf("model default = %q", cfg.LLM.Model)
	}
	if cfg.Batch.QtyEpsilon != 0.0001 {
		t.Errorf("epsilon default = %v", cfg.Batch.QtyEpsilon)
	}
}

func TestLoadConfigRejectsBadProvider(t *testing.T) {
	path := writeConfig(t, "llm:\n  provider: \"BEDROCK\"\n")

	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "llm.provider") {
		t.Errorf("error = %v, want provider validation failure", err)
	}
}

func TestLoadConfigRejectsBadPromptArticles(t *testing.T) {
	path := writeConfig(t, "news:\n  max_articles: 5\n  prompt_articles: 9\n")

	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "prompt_articles") {
		t.Errorf("error = %v, want prompt_articles validation failure", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}
