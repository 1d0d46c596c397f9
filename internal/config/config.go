// Package config provides application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port string

	// Redis session store. Empty RedisAddr selects the in-memory store.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Africa's Talking SMS gateway.
	ATUsername  string
	ATAPIKey    string
	ATBaseURL   string
	SMSSenderID string

	// Groq (OpenAI-compatible) generation backend.
	GroqAPIKey   string
	GroqBaseURL  string
	LLMModel     string
	LLMMaxTokens int

	// Session and dialog budgets.
	SessionTimeout     time.Duration
	MenuCharBudget     int
	ChatTargetChars    int
	ChatHardCeiling    int
	InteractiveTimeout time.Duration
	BackgroundTimeout  time.Duration
	ContextTurns       int
	MinQuestionChars   int
	DefaultQuizCount   int
	SMSChunkChars      int

	// USSD service code, for display only.
	ServiceCode string

	Debug bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8000"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		ATUsername:  getEnv("AT_USERNAME", "sandbox"),
		ATAPIKey:    getEnv("AT_API_KEY", ""),
		ATBaseURL:   getEnv("AT_BASE_URL", "https://api.sandbox.africastalking.com/version1/messaging"),
		SMSSenderID: getEnv("SMS_SENDER_ID", "EduBot"),

		GroqAPIKey:   getEnv("GROQ_API_KEY", ""),
		GroqBaseURL:  getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMModel:     getEnv("LLM_MODEL", "llama-3.1-8b-instant"),
		LLMMaxTokens: getEnvInt("LLM_MAX_TOKENS", 300),

		SessionTimeout:     getEnvDuration("SESSION_TIMEOUT", 5*time.Minute),
		MenuCharBudget:     getEnvInt("MAX_USSD_CHARS", 160),
		ChatTargetChars:    getEnvInt("CHAT_MAX_RESPONSE_CHARS", 90),
		ChatHardCeiling:    getEnvInt("CHAT_HARD_TRUNCATE_CHARS", 95),
		InteractiveTimeout: getEnvDuration("LLM_INTERACTIVE_TIMEOUT", 6*time.Second),
		BackgroundTimeout:  getEnvDuration("LLM_BACKGROUND_TIMEOUT", 30*time.Second),
		ContextTurns:       getEnvInt("CHAT_CONTEXT_TURNS", 3),
		MinQuestionChars:   getEnvInt("CHAT_MIN_QUESTION_CHARS", 3),
		DefaultQuizCount:   getEnvInt("QUIZ_DEFAULT_COUNT", 5),
		SMSChunkChars:      getEnvInt("SMS_CHUNK_CHARS", 153),

		ServiceCode: getEnv("USSD_SERVICE_CODE", "*384*123#"),
		Debug:       getEnvBool("DEBUG", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be > 0")
	}
	if c.ChatTargetChars <= 10 {
		return fmt.Errorf("CHAT_MAX_RESPONSE_CHARS must be > 10")
	}
	if c.ChatHardCeiling < c.ChatTargetChars {
		return fmt.Errorf("CHAT_HARD_TRUNCATE_CHARS must be >= CHAT_MAX_RESPONSE_CHARS")
	}
	if c.InteractiveTimeout <= 0 || c.BackgroundTimeout <= 0 {
		return fmt.Errorf("LLM timeouts must be > 0")
	}
	if c.BackgroundTimeout < c.InteractiveTimeout {
		return fmt.Errorf("LLM_BACKGROUND_TIMEOUT must be >= LLM_INTERACTIVE_TIMEOUT")
	}
	if c.ContextTurns <= 0 {
		return fmt.Errorf("CHAT_CONTEXT_TURNS must be > 0")
	}
	if c.DefaultQuizCount <= 0 {
		return fmt.Errorf("QUIZ_DEFAULT_COUNT must be > 0")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		// Bare numbers are seconds, matching the original deployment env.
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}
