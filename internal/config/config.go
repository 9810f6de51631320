package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AudioConfig struct {
	UploadDir        string   `yaml:"upload_dir"`
	MaxUploadBytes   int64    `yaml:"max_upload_bytes"`
	AllowedMimeTypes []string `yaml:"allowed_mime_types"`
	FFmpegPath       string   `yaml:"ffmpeg_path"`
}

type TranscriptionConfig struct {
	Provider        string        `yaml:"provider"` // vosk|openai|gemini|fake
	ModelPath       string        `yaml:"model_path"`
	OpenAIKey       string        `yaml:"openai_key"`
	OpenAIModel     string        `yaml:"openai_model"`
	GeminiKey       string        `yaml:"gemini_key"`
	GeminiURL       string        `yaml:"gemini_url"`
	GeminiModel     string        `yaml:"gemini_model"`
	Language        string        `yaml:"language"`
	Timeout         time.Duration `yaml:"timeout"`
	ConcurrentLimit int           `yaml:"concurrent_limit"` // max concurrent provider calls
	FakeText        string        `yaml:"fake_text"`
}

type ExtractionConfig struct {
	RulesPath string        `yaml:"rules_path"` // empty = embedded defaults
	Timeout   time.Duration `yaml:"timeout"`
}

type JobsConfig struct {
	Workers      int           `yaml:"workers"`
	StaleAfter   time.Duration `yaml:"stale_after"`
	ReapInterval time.Duration `yaml:"reap_interval"`
	LockTTL      time.Duration `yaml:"lock_ttl"`
	// ShutdownGrace is how long running jobs may finish after a stop signal.
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
}

type RateLimitConfig struct {
	UploadsPerMinute int `yaml:"uploads_per_minute"` // 0 disables
}

type NotifyConfig struct {
	TelegramToken string `yaml:"telegram_token"`
	ChatID        int64  `yaml:"chat_id"`
	Language      string `yaml:"language"` // alert locale: ru|en
}

type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Log           LogConfig           `yaml:"log"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Audio         AudioConfig         `yaml:"audio"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Extraction    ExtractionConfig    `yaml:"extraction"`
	Jobs          JobsConfig          `yaml:"jobs"`
	RateLimit     RateLimitConfig     `yaml:"ratelimit"`
	Notify        NotifyConfig        `yaml:"notify"`

	Runtime RuntimeConfig `yaml:"-"`
}

var defaultMimeTypes = []string{
	"audio/wav", "audio/x-wav", "audio/wave",
	"audio/mpeg", "audio/ogg", "audio/flac",
	"audio/mp4", "audio/x-m4a", "audio/webm", "video/webm",
}

// LoadConfig reads the YAML file at path, applies defaults and env overrides,
// and validates the result.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, dev)
}

// Parse is LoadConfig without the file read.
func Parse(b []byte, dev bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	switch cfg.Transcription.Provider {
	case "vosk":
		if cfg.Transcription.ModelPath == "" {
			return nil, errors.New("transcription.model_path is required for vosk")
		}
	case "openai":
		if cfg.Transcription.OpenAIKey == "" {
			return nil, errors.New("transcription.openai_key is required for openai")
		}
	case "gemini":
		if cfg.Transcription.GeminiKey == "" {
			return nil, errors.New("transcription.gemini_key is required for gemini")
		}
	case "fake":
	default:
		return nil, fmt.Errorf("unknown transcription.provider %q", cfg.Transcription.Provider)
	}
	if cfg.Notify.TelegramToken != "" && cfg.Notify.ChatID == 0 {
		return nil, errors.New("notify.chat_id is required when notify.telegram_token is set")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("ZOO_DATABASE_URL")); v != "" {
		cfg.Database.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("ZOO_REDIS_URL")); v != "" {
		cfg.Redis.URL = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8000
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 30 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	if cfg.Audio.UploadDir == "" {
		cfg.Audio.UploadDir = "data/uploads"
	}
	if cfg.Audio.MaxUploadBytes <= 0 {
		cfg.Audio.MaxUploadBytes = 25 << 20
	}
	if len(cfg.Audio.AllowedMimeTypes) == 0 {
		cfg.Audio.AllowedMimeTypes = append([]string(nil), defaultMimeTypes...)
	}
	if cfg.Audio.FFmpegPath == "" {
		cfg.Audio.FFmpegPath = "ffmpeg"
	}

	if cfg.Transcription.Provider == "" {
		cfg.Transcription.Provider = "vosk"
	}
	if cfg.Transcription.OpenAIModel == "" {
		cfg.Transcription.OpenAIModel = "whisper-1"
	}
	if cfg.Transcription.GeminiModel == "" {
		cfg.Transcription.GeminiModel = "gemini-2.0-flash"
	}
	if cfg.Transcription.Language == "" {
		cfg.Transcription.Language = "ru"
	}
	if cfg.Transcription.Timeout <= 0 {
		cfg.Transcription.Timeout = 2 * time.Minute
	}
	if cfg.Transcription.ConcurrentLimit <= 0 {
		cfg.Transcription.ConcurrentLimit = 2
	}
	if cfg.Extraction.Timeout <= 0 {
		cfg.Extraction.Timeout = 10 * time.Second
	}

	if cfg.Notify.Language == "" {
		cfg.Notify.Language = "ru"
	}

	if cfg.Jobs.Workers <= 0 {
		cfg.Jobs.Workers = 4
	}
	if cfg.Jobs.LockTTL <= 0 {
		// must outlive a full pipeline run
		cfg.Jobs.LockTTL = cfg.Transcription.Timeout + cfg.Extraction.Timeout + time.Minute
	}
	if cfg.Jobs.StaleAfter <= 0 {
		// a job may wait behind a full queue (4 per worker) before its own run
		cfg.Jobs.StaleAfter = 5 * cfg.Jobs.LockTTL
	}
	if cfg.Jobs.ReapInterval <= 0 {
		cfg.Jobs.ReapInterval = time.Minute
	}
	if cfg.Jobs.ShutdownGrace <= 0 {
		cfg.Jobs.ShutdownGrace = 30 * time.Second
	}
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
