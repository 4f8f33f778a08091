// Package config loads AliadoDoc configuration from defaults, .env files,
// an optional config.yaml, environment variables, and CLI flags.
//
// Priority (highest to lowest): flags > environment > local .env > config-dir .env > config.yaml > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration keys understood by viper.
const (
	KeyAPIKey           = "api_key"
	KeySystemPrompt     = "system_prompt"
	KeyModel            = "model"
	KeyAttachmentPolicy = "attachment.policy"
	KeyLogLevel         = "log-level"
	KeyLogFile          = "log-file"
	KeyTestMode         = "test-mode"
	KeyNoColor          = "no-color"
	KeyWordWrap         = "word-wrap"
	KeyHistoryFile      = "history-file"
	KeyBackend          = "backend"
)

// EnvPrefix prefixes every automatically bound environment variable
// (ALIADODOC_MODEL, ALIADODOC_ATTACHMENT_POLICY, ...).
const EnvPrefix = "ALIADODOC"

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// DefaultSystemPrompt is used when GEM_PROMPT is not set.
const DefaultSystemPrompt = "You are AliadoDoc, an assistant that helps people plan and document projects. " +
	"When a file is attached, analyse it before answering."

// AttachmentPolicy decides what happens to an attachment after a generation call.
type AttachmentPolicy string

const (
	// PolicyKeep keeps the attachment for later turns until replaced or detached.
	PolicyKeep AttachmentPolicy = "keep"
	// PolicyConsume detaches the attachment after one generation call.
	PolicyConsume AttachmentPolicy = "consume"
)

// ParseAttachmentPolicy validates a policy name.
func ParseAttachmentPolicy(s string) (AttachmentPolicy, error) {
	switch AttachmentPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyKeep:
		return PolicyKeep, nil
	case PolicyConsume:
		return PolicyConsume, nil
	default:
		return "", fmt.Errorf("unknown attachment policy %q (expected keep or consume)", s)
	}
}

// Paths records where configuration was looked up and what was loaded.
type Paths struct {
	ConfigDir      string
	ConfigEnvPath  string
	ConfigEnvFound bool
	LocalEnvPath   string
	LocalEnvFound  bool
	ConfigFile     string
}

// Config is the resolved configuration for one process.
type Config struct {
	APIKey           string
	SystemPrompt     string
	Model            string
	AttachmentPolicy AttachmentPolicy
	LogLevel         string
	LogFile          string
	TestMode         bool
	NoColor          bool
	WordWrap         int
	HistoryFile      string
	Backend          string
	Paths            Paths
}

// HasCredential reports whether an API key is configured. A missing key is not
// fatal: every remote call is routed into the authentication-failure path instead.
func (c *Config) HasCredential() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// LoadOptions locates the configuration sources. Empty fields use the defaults.
type LoadOptions struct {
	ConfigDir string // default: $XDG_CONFIG_HOME/aliadodoc or ~/.config/aliadodoc
	WorkDir   string // default: current directory
}

// DefaultConfigDir returns the per-user configuration directory.
func DefaultConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "aliadodoc")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "aliadodoc")
	}
	return ".aliadodoc"
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeySystemPrompt, DefaultSystemPrompt)
	v.SetDefault(KeyModel, DefaultModel)
	v.SetDefault(KeyAttachmentPolicy, string(PolicyKeep))
	v.SetDefault(KeyLogLevel, "")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyTestMode, false)
	v.SetDefault(KeyNoColor, false)
	v.SetDefault(KeyWordWrap, 100)
	v.SetDefault(KeyHistoryFile, "")
	v.SetDefault(KeyBackend, "gemini")
}

// Load resolves configuration into a Config. Flags must already be bound to v.
func Load(v *viper.Viper, opts LoadOptions) (*Config, error) {
	paths := Paths{ConfigDir: opts.ConfigDir}
	if paths.ConfigDir == "" {
		paths.ConfigDir = DefaultConfigDir()
	}
	workDir := opts.WorkDir
	if workDir == "" {
		workDir = "."
	}

	// godotenv never overrides variables that are already set, so the local
	// file is loaded first to win over the config-dir file.
	paths.LocalEnvPath = filepath.Join(workDir, ".env")
	found, err := loadDotEnv(paths.LocalEnvPath)
	if err != nil {
		return nil, err
	}
	paths.LocalEnvFound = found

	paths.ConfigEnvPath = filepath.Join(paths.ConfigDir, ".env")
	found, err = loadDotEnv(paths.ConfigEnvPath)
	if err != nil {
		return nil, err
	}
	paths.ConfigEnvFound = found

	SetDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(paths.ConfigDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		paths.ConfigFile = v.ConfigFileUsed()
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(KeyAPIKey, "GEMINI_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind api key: %w", err)
	}
	if err := v.BindEnv(KeySystemPrompt, "GEM_PROMPT"); err != nil {
		return nil, fmt.Errorf("failed to bind system prompt: %w", err)
	}

	policy, err := ParseAttachmentPolicy(v.GetString(KeyAttachmentPolicy))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		APIKey:           strings.TrimSpace(v.GetString(KeyAPIKey)),
		SystemPrompt:     v.GetString(KeySystemPrompt),
		Model:            strings.TrimSpace(v.GetString(KeyModel)),
		AttachmentPolicy: policy,
		LogLevel:         v.GetString(KeyLogLevel),
		LogFile:          v.GetString(KeyLogFile),
		TestMode:         v.GetBool(KeyTestMode),
		NoColor:          v.GetBool(KeyNoColor),
		WordWrap:         v.GetInt(KeyWordWrap),
		HistoryFile:      v.GetString(KeyHistoryFile),
		Backend:          strings.ToLower(strings.TrimSpace(v.GetString(KeyBackend))),
		Paths:            paths,
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.WordWrap <= 0 {
		cfg.WordWrap = 100
	}
	if cfg.HistoryFile == "" && !cfg.TestMode {
		cfg.HistoryFile = filepath.Join(paths.ConfigDir, "history")
	}

	return cfg, nil
}

func loadDotEnv(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return true, nil
}
