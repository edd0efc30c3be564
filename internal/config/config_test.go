package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}

func TestLoadFromPathReadsFile(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, ".muse.yaml")
	content := `x:
  api_key: "key"
  api_secret: "secret"
  access_token: "token"
  access_secret: "token-secret"
ai:
  provider: "anthropic"
  api_key: "sk-test"
telegram:
  token: "bot-token"
  chat_id: -100123456
monthly_limit: 300
logging:
  level: "debug"
`
	cfg := DefaultConfig()
	cfg2, err := LoadFromPath(cfgPath)
	if err != nil {
		t.Fatalf("missing file should yield defaults, got %v", err)
	}
	if cfg2.AI.Provider != cfg.AI.Provider {
		t.Fatalf("defaults mismatch: %q vs %q", cfg2.AI.Provider, cfg.AI.Provider)
	}

	if err := writeFile(cfgPath, content); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := LoadFromPath(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if got.X.APIKey != "key" || got.X.AccessSecret != "token-secret" {
		t.Fatalf("X config not loaded: %+v", got.X)
	}
	if got.AI.Provider != "anthropic" {
		t.Fatalf("provider %q, want anthropic", got.AI.Provider)
	}
	if got.Telegram.ChatID != -100123456 {
		t.Fatalf("chat id %d", got.Telegram.ChatID)
	}
	if got.MonthlyLimit != 300 {
		t.Fatalf("monthly limit %d, want 300", got.MonthlyLimit)
	}
	if got.Logging.Level != "debug" {
		t.Fatalf("log level %q", got.Logging.Level)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, ".muse.yaml")
	if err := writeFile(cfgPath, "ai:\n  provider: \"openai\"\n"); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("MUSE_AI_PROVIDER", "anthropic")
	t.Setenv("MUSE_DRY_RUN", "true")
	t.Setenv("MUSE_X_API_KEY", "env-key")

	got, err := LoadFromPath(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if got.AI.Provider != "anthropic" {
		t.Fatalf("env should override file, got provider %q", got.AI.Provider)
	}
	if !got.DryRun {
		t.Fatalf("MUSE_DRY_RUN=true should set DryRun")
	}
	if got.X.APIKey != "env-key" {
		t.Fatalf("X api key %q", got.X.APIKey)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatalf("missing X credentials should fail validation")
	}

	cfg.DryRun = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("dry run should skip credential checks: %v", err)
	}

	cfg.DryRun = false
	cfg.X = XConfig{APIKey: "a", APISecret: "b", AccessToken: "c", AccessSecret: "d"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("complete credentials should pass: %v", err)
	}

	cfg.AI.Provider = "mystery"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("unknown provider should fail validation")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "sub", ".muse.yaml")

	cfg := DefaultConfig()
	cfg.MonthlyLimit = 100
	cfg.Telegram.Token = "tok"
	if err := cfg.SaveToPath(cfgPath); err != nil {
		t.Fatalf("SaveToPath failed: %v", err)
	}

	got, err := LoadFromPath(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if got.MonthlyLimit != 100 || got.Telegram.Token != "tok" {
		t.Fatalf("round trip lost fields: %+v", got)
	}
}
