package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	Offline      bool   `env:"MAHARDIKA_OFFLINE"`
	TextModel    string `env:"MAHARDIKA_MODEL" envDefault:"gemini-2.5-flash"`
	SpeechModel  string `env:"MAHARDIKA_TTS_MODEL" envDefault:"gemini-2.5-flash-preview-tts"`
	Speech       bool   `env:"MAHARDIKA_SPEECH"`

	Roster string `env:"MAHARDIKA_ROSTER"`
	Seed   int64  `env:"MAHARDIKA_SEED"` // 0 picks a random seed

	DiceDelay   time.Duration `env:"MAHARDIKA_DICE_DELAY" envDefault:"1s"`
	ThinkDelay  time.Duration `env:"MAHARDIKA_THINK_DELAY" envDefault:"2s"`
	AnswerDelay time.Duration `env:"MAHARDIKA_ANSWER_DELAY" envDefault:"3s"`
	BuyDelay    time.Duration `env:"MAHARDIKA_BUY_DELAY" envDefault:"1500ms"`
	MarkerTTL   time.Duration `env:"MAHARDIKA_MARKER_TTL" envDefault:"2s"`

	Log LogConfig `envPrefix:"MAHARDIKA_LOG_"`

	SimTurns int `env:"MAHARDIKA_SIM_TURNS" envDefault:"40"`
}

// LogConfig controls the log file.
type LogConfig struct {
	File       string `env:"FILE" envDefault:"mahardika.log"`
	Level      string `env:"LEVEL" envDefault:"info"`
	MaxSize    int    `env:"MAX_SIZE" envDefault:"10"` // megabytes
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"3"`
	MaxAge     int    `env:"MAX_AGE" envDefault:"7"` // days
	Compress   bool   `env:"COMPRESS"`
}

// LoadConfig loads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.GeminiAPIKey == "" && !cfg.Offline {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set (set MAHARDIKA_OFFLINE=true to play without it)")
	}
	return &cfg, nil
}
