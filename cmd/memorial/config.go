package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fwojciec/memorial"
	"github.com/spf13/cobra"
)

// Storage backends.
const (
	storageFile   = "file"
	storageSQLite = "sqlite"
)

// config holds the resolved settings. Field tags are the keys of
// ~/.memorial/config.toml.
type config struct {
	Provider         string `toml:"provider"`
	Model            string `toml:"model"`
	APIKey           string `toml:"api_key"`
	BaseURL          string `toml:"base_url"`
	Storage          string `toml:"storage"`
	DataDir          string `toml:"data_dir"`
	Key              string `toml:"key"`
	SystemPromptFile string `toml:"system_prompt_file"`
	LogLevel         string `toml:"log_level"`
	LogFile          string `toml:"log_file"`
}

func defaultConfig(home string) config {
	return config{
		Storage:  storageFile,
		DataDir:  filepath.Join(home, ".memorial"),
		Key:      memorial.DefaultKey,
		LogLevel: "info",
		LogFile:  "memorial.log",
	}
}

// flags holds command-line overrides. Only flags the user set take effect.
type flags struct {
	configPath       string
	provider         string
	model            string
	apiKey           string
	baseURL          string
	storage          string
	dataDir          string
	key              string
	systemPromptFile string
	logLevel         string
}

func (f *flags) register(cmd *cobra.Command) {
	pf := cmd.Flags()
	pf.StringVarP(&f.configPath, "config", "c", "", "config file path (default ~/.memorial/config.toml)")
	pf.StringVarP(&f.provider, "provider", "p", "", "provider: gemini, anthropic, openai (auto-detected from env vars if omitted)")
	pf.StringVarP(&f.model, "model", "m", "", "model ID (default: provider default)")
	pf.StringVar(&f.apiKey, "api-key", "", "API key (overrides the provider's env var)")
	pf.StringVar(&f.baseURL, "base-url", "", "API base URL for anthropic or openai-compatible endpoints")
	pf.StringVar(&f.storage, "storage", "", "archive storage: file or sqlite")
	pf.StringVar(&f.dataDir, "data-dir", "", "directory for archives and logs (default ~/.memorial)")
	pf.StringVar(&f.key, "key", "", "archive key")
	pf.StringVar(&f.systemPromptFile, "system-prompt", "", "file replacing the Grand Councilor persona")
	pf.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// loadConfig layers defaults, the config file, the environment and flags, in
// increasing precedence. A missing default config file is not an error; a
// missing file named with --config is.
func loadConfig(f flags, changed func(name string) bool, getenv func(string) string) (config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	cfg := defaultConfig(home)

	path := f.configPath
	explicit := path != ""
	if !explicit {
		path = filepath.Join(home, ".memorial", "config.toml")
	}
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return config{}, err
		}
	}

	cfg.applyEnv(getenv)
	cfg.applyFlags(f, changed)

	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func (c *config) loadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func (c *config) applyEnv(getenv func(string) string) {
	set := func(dst *string, name string) {
		if v := getenv(name); v != "" {
			*dst = v
		}
	}
	set(&c.Provider, "MEMORIAL_PROVIDER")
	set(&c.Model, "MEMORIAL_MODEL")
	set(&c.Storage, "MEMORIAL_STORAGE")
	set(&c.DataDir, "MEMORIAL_DATA_DIR")
	set(&c.LogLevel, "MEMORIAL_LOG_LEVEL")
	set(&c.BaseURL, "OPENAI_BASE_URL")
}

func (c *config) applyFlags(f flags, changed func(name string) bool) {
	set := func(dst *string, name, v string) {
		if changed(name) {
			*dst = v
		}
	}
	set(&c.Provider, "provider", f.provider)
	set(&c.Model, "model", f.model)
	set(&c.APIKey, "api-key", f.apiKey)
	set(&c.BaseURL, "base-url", f.baseURL)
	set(&c.Storage, "storage", f.storage)
	set(&c.DataDir, "data-dir", f.dataDir)
	set(&c.Key, "key", f.key)
	set(&c.SystemPromptFile, "system-prompt", f.systemPromptFile)
	set(&c.LogLevel, "log-level", f.logLevel)
}

func (c config) validate() error {
	switch c.Storage {
	case storageFile, storageSQLite:
	default:
		return fmt.Errorf("unknown storage %q: must be %q or %q", c.Storage, storageFile, storageSQLite)
	}
	if c.DataDir == "" {
		return errors.New("data_dir must not be empty")
	}
	if c.Key == "" {
		return errors.New("key must not be empty")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// systemPrompt returns the persona instruction, read from SystemPromptFile
// when one is configured.
func (c config) systemPrompt() (string, error) {
	if c.SystemPromptFile == "" {
		return memorial.SystemPrompt, nil
	}
	data, err := os.ReadFile(c.SystemPromptFile)
	if err != nil {
		return "", fmt.Errorf("read system prompt: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("system prompt %s is empty", c.SystemPromptFile)
	}
	return prompt, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
