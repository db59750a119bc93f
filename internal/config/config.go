// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ExtractorGemini = "gemini"
	ExtractorOpenAI = "openai"
)

type Config struct {
	// HTTP server
	Port string

	// Database
	SQLiteDBPath string

	// Extraction
	Extractor         string // "gemini" or "openai"
	GeminiAPIKey      string
	GeminiModel       string
	OpenAIBaseURL     string
	OpenAIAPIKey      string
	OpenAIModel       string
	ExtractionTimeout time.Duration

	// Chart
	TopN int

	// AMQP (optional; empty URL disables event publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8082"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/receipts.db"),

		Extractor:         getEnv("EXTRACTOR", ExtractorGemini),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", ""),
		ExtractionTimeout: getEnvDuration("EXTRACTION_TIMEOUT", 30*time.Second),

		TopN: getEnvInt("CHART_TOP_N", 10),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "scontrini"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "receipt_events"),
	}
}

// Validate checks the configuration and returns all problems at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		problems = append(problems, "SQLite database path cannot be empty")
	}

	switch c.Extractor {
	case ExtractorGemini:
		if c.GeminiAPIKey == "" {
			problems = append(problems, "GEMINI_API_KEY is required when using the gemini extractor")
		}
	case ExtractorOpenAI:
		if c.OpenAIAPIKey == "" {
			problems = append(problems, "OPENAI_API_KEY is required when using the openai extractor")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid extractor '%s': must be '%s' or '%s'",
			c.Extractor, ExtractorGemini, ExtractorOpenAI))
	}

	if c.ExtractionTimeout < time.Second {
		problems = append(problems, fmt.Sprintf("invalid extraction timeout %v: must be at least 1 second", c.ExtractionTimeout))
	}

	if c.TopN < 1 {
		problems = append(problems, fmt.Sprintf("invalid chart top N %d: must be at least 1", c.TopN))
	} else if c.TopN > 100 {
		problems = append(problems, fmt.Sprintf("invalid chart top N %d: must be at most 100", c.TopN))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
