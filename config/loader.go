package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/EasterCompany/dex-vmt-service/secrets"
)

// EnvPrefix prefixes every environment override, e.g. VMT_SPEECH_WORKERS.
const EnvPrefix = "VMT"

// DefaultDir is where the config file is looked up when no path is given.
const DefaultDir = "~/Dexter/config"

// legacyEnv maps keys to the environment names older deployments use.
var legacyEnv = map[string]string{
	"discord.token":              "BOT_TOKEN",
	"translation.deepl_key":      "DEEPL_API_KEY",
	"translation.deepl_free":     "DEEPL_FREE_API",
	"voice.max_duration_seconds": "MAX_VOICE_MESSAGE_DURATION",
	"speech.openai_key":          "OPENAI_API_KEY",
	"speech.gemini_key":          "GEMINI_API_KEY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("discord.token", "")
	v.SetDefault("discord.log_channel_id", "")
	v.SetDefault("discord.guild_id", "")

	v.SetDefault("voice.max_duration_seconds", 60)
	v.SetDefault("voice.max_attachment_bytes", 25<<20)

	v.SetDefault("speech.provider", "google")
	v.SetDefault("speech.language", "en-US")
	v.SetDefault("speech.workers", 4)
	v.SetDefault("speech.queue_size", 64)
	v.SetDefault("speech.timeout", 5*time.Minute)
	v.SetDefault("speech.ffmpeg_path", "ffmpeg")
	v.SetDefault("speech.openai_key", "")
	v.SetDefault("speech.openai_base_url", "")
	v.SetDefault("speech.whisper_model", "whisper-1")
	v.SetDefault("speech.gemini_key", "")
	v.SetDefault("speech.gemini_model", "gemini-2.0-flash")

	v.SetDefault("translation.provider", "deepl")
	v.SetDefault("translation.deepl_key", "")
	v.SetDefault("translation.deepl_free", false)
	v.SetDefault("translation.deepl_base_url", "")
	v.SetDefault("translation.openai_key", "")
	v.SetDefault("translation.openai_base_url", "")
	v.SetDefault("translation.openai_model", "gpt-4o-mini")
	v.SetDefault("translation.language_file", "")
	v.SetDefault("translation.breaker_failures", 5)
	v.SetDefault("translation.breaker_timeout", 30*time.Second)

	v.SetDefault("menu.timeout", 60*time.Second)
	v.SetDefault("menu.languages_per_page", 18)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.username", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.heartbeat_interval", 30*time.Second)
	v.SetDefault("status.port", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// expandPath resolves paths like "~/" to the user's home directory.
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not get user home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// New returns a viper instance with defaults, environment bindings and the
// config file search path set up. path may be empty.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("could not bind env for %s: %w", key, err)
		}
	}

	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return nil, err
		}
		v.SetConfigFile(expanded)
		return v, nil
	}
	dir, err := expandPath(DefaultDir)
	if err != nil {
		return nil, err
	}
	v.AddConfigPath(dir)
	v.SetConfigName("vmt")
	return v, nil
}

// Load builds the configuration from defaults, the config file and the
// environment, in increasing order of precedence. A missing file is only
// an error when path was given explicitly.
func Load(path string) (*Config, error) {
	v, err := New(path)
	if err != nil {
		return nil, err
	}
	return FromViper(v, path != "")
}

// FromViper reads the config file (if any) and unmarshals v.
func FromViper(v *viper.Viper, requireFile bool) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if requireFile || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("could not read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("could not decode config: %w", err)
	}
	if cfg.Translation.LanguageFile != "" {
		p, err := expandPath(cfg.Translation.LanguageFile)
		if err != nil {
			return nil, err
		}
		cfg.Translation.LanguageFile = p
	}
	return &cfg, nil
}

// Validate reports the first setting that prevents the service starting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Discord.Token) == "" {
		return errors.New("discord.token is required (or set BOT_TOKEN)")
	}
	if c.Voice.MaxDurationSeconds <= 0 {
		return fmt.Errorf("voice.max_duration_seconds must be positive, got %d", c.Voice.MaxDurationSeconds)
	}
	if c.Speech.Workers <= 0 {
		return fmt.Errorf("speech.workers must be positive, got %d", c.Speech.Workers)
	}
	switch strings.ToLower(c.Speech.Provider) {
	case "google":
	case "whisper":
		if c.Speech.OpenAIKey == "" {
			return errors.New("speech.openai_key is required for the whisper provider")
		}
	case "gemini":
		if c.Speech.GeminiKey == "" {
			return errors.New("speech.gemini_key is required for the gemini provider")
		}
	default:
		return fmt.Errorf("unknown speech.provider %q", c.Speech.Provider)
	}
	switch strings.ToLower(c.Translation.Provider) {
	case "", "none":
	case "deepl":
		if c.Translation.DeepLKey == "" {
			return errors.New("translation.deepl_key is required (or set DEEPL_API_KEY, or translation.provider=none)")
		}
	case "openai":
		if c.Translation.OpenAIKey == "" {
			return errors.New("translation.openai_key is required for the openai provider")
		}
	default:
		return fmt.Errorf("unknown translation.provider %q", c.Translation.Provider)
	}
	return nil
}

// SecretResolver replaces secret references with their values.
type SecretResolver interface {
	ResolveAll(ctx context.Context, fields ...*string) error
}

func (c *Config) secretFields() []*string {
	return []*string{
		&c.Discord.Token,
		&c.Speech.OpenAIKey,
		&c.Speech.GeminiKey,
		&c.Translation.DeepLKey,
		&c.Translation.OpenAIKey,
		&c.Redis.Password,
	}
}

// HasSecretReferences reports whether any credential points at a secret
// store.
func (c *Config) HasSecretReferences() bool {
	for _, f := range c.secretFields() {
		if secrets.IsReference(*f) {
			return true
		}
	}
	return false
}

// ResolveSecrets replaces secret references in credential fields.
func (c *Config) ResolveSecrets(ctx context.Context, r SecretResolver) error {
	if err := r.ResolveAll(ctx, c.secretFields()...); err != nil {
		return fmt.Errorf("could not resolve secrets: %w", err)
	}
	return nil
}
