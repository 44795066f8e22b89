// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/skillgenie/skillgenie/internal/questions"
	"github.com/skillgenie/skillgenie/internal/quiz"
)

// Environment variable names.
const (
	EnvAddr               = "SKILLGENIE_ADDR"
	EnvPassingScore       = "SKILLGENIE_PASSING_SCORE"
	EnvSecondsPerQuestion = "SKILLGENIE_SECONDS_PER_QUESTION"
	EnvRedisURL           = "SKILLGENIE_REDIS_URL"
	EnvDB                 = "SKILLGENIE_DB"
	EnvBank               = "SKILLGENIE_BANK"
)

// Config holds settings shared by the play and serve commands.
type Config struct {
	// Server
	Addr string

	// Scoring
	PassingScore       int
	SecondsPerQuestion int

	// Storage. An empty DBPath means store.DefaultDBPath.
	DBPath string

	// RedisURL enables result publishing when set.
	RedisURL string

	// BankPath is a YAML question bank used instead of the built-in one.
	BankPath string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:               ":8080",
		PassingScore:       quiz.DefaultPassingScore,
		SecondsPerQuestion: questions.DefaultSecondsPerQuestion,
	}
}

// Load reads .env files (if present) and then the environment. Values
// already in the environment win over .env entries.
func Load(files ...string) (Config, error) {
	if err := loadDotenv(files...); err != nil {
		return Config{}, err
	}

	def := Default()
	cfg := Config{
		Addr:               getEnvOrDefault(EnvAddr, def.Addr),
		PassingScore:       getEnvAsIntOrDefault(EnvPassingScore, def.PassingScore),
		SecondsPerQuestion: getEnvAsIntOrDefault(EnvSecondsPerQuestion, def.SecondsPerQuestion),
		DBPath:             os.Getenv(EnvDB),
		RedisURL:           os.Getenv(EnvRedisURL),
		BankPath:           os.Getenv(EnvBank),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.PassingScore < 1 || c.PassingScore > 100 {
		return fmt.Errorf("%s must be between 1 and 100, got %d", EnvPassingScore, c.PassingScore)
	}
	if c.SecondsPerQuestion <= 0 {
		return fmt.Errorf("%s must be positive, got %d", EnvSecondsPerQuestion, c.SecondsPerQuestion)
	}
	return nil
}

// loadDotenv loads the given files, or ".env" when none are given. A
// missing file is not an error.
func loadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
