// Package config resolves runtime settings for chat from flags, the environment and
// .env files. It never touches config.json; values here only overlay it in memory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"chatgpt/internal/logger"
	"chatgpt/pkg/chattypes"
)

// EnvPrefix is prepended to every setting when read from the environment.
const EnvPrefix = "CHATGPT"

// Setting keys. Environment names are CHATGPT_ plus the upper-cased key with '-' as '_'.
const (
	KeyLogLevel = "log-level"
	KeyLogFile  = "log-file"
	KeyHome     = "home"
	KeyTimeout  = "timeout"
	KeyRender   = "render"
	KeySendHint = "send-hint"
	KeyAPIKey   = "api-key"
	KeyURL      = "url"
	KeyModel    = "model"
)

const defaultTimeout = "120s"

// Settings is the resolved runtime configuration for one invocation.
type Settings struct {
	LogLevel string
	LogFile  string
	Home     string
	Timeout  time.Duration
	Render   string
	SendHint bool

	// Overlays for config.json; empty means keep the stored value.
	APIKey string
	URL    string
	Model  string
}

// New returns a viper instance with defaults and environment binding configured.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyLogLevel, "")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyHome, "")
	v.SetDefault(KeyTimeout, defaultTimeout)
	v.SetDefault(KeyRender, "auto")
	v.SetDefault(KeySendHint, false)
	v.SetDefault(KeyAPIKey, "")
	v.SetDefault(KeyURL, "")
	v.SetDefault(KeyModel, "")
	return v
}

// Load reads Settings from v.
func Load(v *viper.Viper) (Settings, error) {
	timeout, err := parseTimeout(v.GetString(KeyTimeout))
	if err != nil {
		return Settings{}, err
	}

	s := Settings{
		LogLevel: v.GetString(KeyLogLevel),
		LogFile:  v.GetString(KeyLogFile),
		Home:     v.GetString(KeyHome),
		Timeout:  timeout,
		Render:   v.GetString(KeyRender),
		SendHint: v.GetBool(KeySendHint),
		APIKey:   v.GetString(KeyAPIKey),
		URL:      v.GetString(KeyURL),
		Model:    v.GetString(KeyModel),
	}
	return s, nil
}

// Apply overlays non-empty settings onto a stored Config.
func (s Settings) Apply(cfg chattypes.Config) chattypes.Config {
	if s.URL != "" {
		cfg.URL = s.URL
	}
	if s.Model != "" {
		cfg.Model = s.Model
	}
	if s.APIKey != "" {
		cfg.Key = s.APIKey
	}
	return cfg
}

// LoadDotEnv loads .env from each directory in order. Missing files are skipped and
// variables already present in the process environment are never overridden.
func LoadDotEnv(dirs ...string) ([]string, error) {
	var loaded []string
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		envPath := filepath.Join(dir, ".env")
		if !fileExists(envPath) {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			return loaded, fmt.Errorf("failed to load .env file %s: %w", envPath, err)
		}
		logger.Debug("Loaded .env file", "path", envPath)
		loaded = append(loaded, envPath)
	}
	return loaded, nil
}

// parseTimeout accepts Go durations ("90s", "2m") or a bare number of seconds.
func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = defaultTimeout
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		raw = strconv.Itoa(secs) + "s"
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", KeyTimeout, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", KeyTimeout, raw)
	}
	return d, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
