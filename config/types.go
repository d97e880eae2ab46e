package config

import "time"

// Config is the complete service configuration. It is built once by Load
// and must be treated as read-only afterwards.
type Config struct {
	Discord     DiscordConfig     `mapstructure:"discord"`
	Voice       VoiceConfig       `mapstructure:"voice"`
	Speech      SpeechConfig      `mapstructure:"speech"`
	Translation TranslationConfig `mapstructure:"translation"`
	Menu        MenuConfig        `mapstructure:"menu"`
	Redis       ConnectionConfig  `mapstructure:"redis"`
	Status      StatusConfig      `mapstructure:"status"`
	Log         LogConfig         `mapstructure:"log"`
}

// DiscordConfig holds bot credentials and optional log routing.
type DiscordConfig struct {
	Token        string `mapstructure:"token"`
	LogChannelID string `mapstructure:"log_channel_id"`
	// GuildID registers commands to one guild instead of globally.
	GuildID string `mapstructure:"guild_id"`
}

// VoiceConfig limits which voice messages are accepted.
type VoiceConfig struct {
	MaxDurationSeconds int   `mapstructure:"max_duration_seconds"`
	MaxAttachmentBytes int64 `mapstructure:"max_attachment_bytes"`
}

// MaxDuration is MaxDurationSeconds as a duration.
func (v VoiceConfig) MaxDuration() time.Duration {
	return time.Duration(v.MaxDurationSeconds) * time.Second
}

// SpeechConfig selects the recognizer and sizes the job pool.
type SpeechConfig struct {
	Provider      string        `mapstructure:"provider"`
	Language      string        `mapstructure:"language"`
	Workers       int           `mapstructure:"workers"`
	QueueSize     int           `mapstructure:"queue_size"`
	Timeout       time.Duration `mapstructure:"timeout"`
	FFmpegPath    string        `mapstructure:"ffmpeg_path"`
	OpenAIKey     string        `mapstructure:"openai_key"`
	OpenAIBaseURL string        `mapstructure:"openai_base_url"`
	WhisperModel  string        `mapstructure:"whisper_model"`
	GeminiKey     string        `mapstructure:"gemini_key"`
	GeminiModel   string        `mapstructure:"gemini_model"`
}

// TranslationConfig selects the translation backend and language table.
type TranslationConfig struct {
	Provider        string        `mapstructure:"provider"`
	DeepLKey        string        `mapstructure:"deepl_key"`
	DeepLFree       bool          `mapstructure:"deepl_free"`
	DeepLBaseURL    string        `mapstructure:"deepl_base_url"`
	OpenAIKey       string        `mapstructure:"openai_key"`
	OpenAIBaseURL   string        `mapstructure:"openai_base_url"`
	OpenAIModel     string        `mapstructure:"openai_model"`
	LanguageFile    string        `mapstructure:"language_file"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
}

// MenuConfig tunes the paginated menus.
type MenuConfig struct {
	Timeout          time.Duration `mapstructure:"timeout"`
	LanguagesPerPage int           `mapstructure:"languages_per_page"`
}

// ConnectionConfig holds the optional Redis connection used for heartbeats.
type ConnectionConfig struct {
	Addr              string        `mapstructure:"addr"`
	Username          string        `mapstructure:"username"`
	Password          string        `mapstructure:"password"`
	DB                int           `mapstructure:"db"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
}

// StatusConfig enables the local status endpoint. Port 0 disables it.
type StatusConfig struct {
	Port int `mapstructure:"port"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}
