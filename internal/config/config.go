package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AdamBeresnev/trivia-tournament/internal/bracket"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr           string        `env:"HTTP_ADDR" envDefault:":8080"`
	DatabaseDSN        string        `env:"DATABASE_DSN" envDefault:"trivia_tournament.db?_journal_mode=WAL&_txlock=immediate&_busy_timeout=5000&_foreign_keys=on"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	SessionLifetime    time.Duration `env:"SESSION_LIFETIME" envDefault:"24h"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// Completes an elimination tournament together with its final match
	AutoCompleteOnFinal bool `env:"AUTO_COMPLETE_ON_FINAL" envDefault:"false"`

	Layout LayoutConfig `envPrefix:"LAYOUT_"`
}

type LayoutConfig struct {
	BoxWidth  float64 `env:"BOX_WIDTH" envDefault:"220"`
	BoxHeight float64 `env:"BOX_HEIGHT" envDefault:"64"`
	RoundGap  float64 `env:"ROUND_GAP" envDefault:"80"`
	MatchGap  float64 `env:"MATCH_GAP" envDefault:"24"`
	Margin    float64 `env:"MARGIN" envDefault:"20"`
}

func (l LayoutConfig) Bracket() bracket.LayoutConfig {
	return bracket.LayoutConfig{
		MatchBoxWidth:      l.BoxWidth,
		MatchBoxHeight:     l.BoxHeight,
		RoundHorizontalGap: l.RoundGap,
		MatchVerticalGap:   l.MatchGap,
		Margin:             l.Margin,
	}
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN must not be empty")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	l := c.Layout
	if l.BoxWidth <= 0 || l.BoxHeight <= 0 || l.RoundGap < 0 || l.MatchGap < 0 || l.Margin < 0 {
		return fmt.Errorf("layout sizes must be positive and gaps non-negative")
	}
	return nil
}

func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}
