// Package config loads bot configuration from a YAML file next to the
// executable, with environment variable overrides for credentials and the
// runtime toggles used in scheduled jobs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

var (
	exeDirCache string
)

// getExecutableDir returns the directory where the executable is located
func getExecutableDir() string {
	if exeDirCache != "" {
		return exeDirCache
	}
	execPath, err := os.Executable()
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	exeDirCache = filepath.Dir(execPath)
	return exeDirCache
}

type Config struct {
	X        XConfig        `yaml:"x"`
	AI       AIConfig       `yaml:"ai,omitempty"`
	Telegram TelegramConfig `yaml:"telegram,omitempty"`
	Storage  StorageConfig  `yaml:"storage,omitempty"`
	Logging  LoggingConfig  `yaml:"logging"`
	DryRun   bool           `yaml:"dry_run,omitempty"`
	Loop     bool           `yaml:"loop,omitempty"`
	// MonthlyLimit caps posts per calendar month. Zero means the default.
	MonthlyLimit int `yaml:"monthly_limit,omitempty"`
}

type XConfig struct {
	APIKey       string `yaml:"api_key,omitempty"`
	APISecret    string `yaml:"api_secret,omitempty"`
	AccessToken  string `yaml:"access_token,omitempty"`
	AccessSecret string `yaml:"access_secret,omitempty"`
}

type AIConfig struct {
	Provider string `yaml:"provider,omitempty"` // "openai" or "anthropic"
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Model    string `yaml:"model,omitempty"`
}

type TelegramConfig struct {
	Token  string `yaml:"token,omitempty"`
	ChatID int64  `yaml:"chat_id,omitempty"`
}

type StorageConfig struct {
	DatabasePath string `yaml:"database_path,omitempty"`
	BackupDir    string `yaml:"backup_dir,omitempty"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		AI: AIConfig{
			Provider: "openai",
		},
		Storage: StorageConfig{
			DatabasePath: filepath.Join(ConfigDir(), "muse.db"),
			BackupDir:    filepath.Join(ConfigDir(), "backups"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func ConfigDir() string {
	exeDir := getExecutableDir()
	return filepath.Join(exeDir, ".muse")
}

func ConfigPath() string {
	exeDir := getExecutableDir()
	return filepath.Join(exeDir, ".muse.yaml")
}

// Load reads the config file and applies environment overrides. A missing
// file yields the defaults, so a fully env-configured deployment needs no
// file at all.
func Load() (*Config, error) {
	return LoadFromPath(ConfigPath())
}

// LoadFromPath is Load with an explicit file location.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.X.APIKey, "MUSE_X_API_KEY")
	setString(&c.X.APISecret, "MUSE_X_API_SECRET")
	setString(&c.X.AccessToken, "MUSE_X_ACCESS_TOKEN")
	setString(&c.X.AccessSecret, "MUSE_X_ACCESS_SECRET")

	setString(&c.AI.Provider, "MUSE_AI_PROVIDER")
	setString(&c.AI.APIKey, "MUSE_AI_API_KEY")
	setString(&c.AI.BaseURL, "MUSE_AI_BASE_URL")
	setString(&c.AI.Model, "MUSE_AI_MODEL")

	setString(&c.Telegram.Token, "MUSE_TELEGRAM_TOKEN")
	if v := os.Getenv("MUSE_TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Telegram.ChatID = id
		}
	}

	setString(&c.Storage.DatabasePath, "MUSE_DB_PATH")
	setString(&c.Storage.BackupDir, "MUSE_BACKUP_DIR")

	setBool(&c.DryRun, "MUSE_DRY_RUN")
	setBool(&c.Loop, "MUSE_LOOP")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// Validate checks that the config can drive a real publish. Dry runs skip
// the credential checks.
func (c *Config) Validate() error {
	if c.AI.Provider != "" && c.AI.Provider != "openai" && c.AI.Provider != "anthropic" {
		return fmt.Errorf("unknown ai provider %q", c.AI.Provider)
	}
	if c.DryRun {
		return nil
	}
	if c.X.APIKey == "" || c.X.APISecret == "" || c.X.AccessToken == "" || c.X.AccessSecret == "" {
		return fmt.Errorf("X credentials are incomplete (set x.* in config or MUSE_X_* env)")
	}
	return nil
}

func (c *Config) Save() error {
	return c.SaveToPath(ConfigPath())
}

// SaveToPath writes the config as YAML with restrictive permissions.
func (c *Config) SaveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
