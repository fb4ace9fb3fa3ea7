package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// AppConfig holds all process configuration. Values come from the
// environment (a local .env file is loaded first when present).
type AppConfig struct {
	LichessToken   string `env:"LICHESS_TOKEN"`
	LichessBaseURL string `env:"LICHESS_BASE_URL" envDefault:"https://lichess.org"`
	BotUsername    string `env:"BOT_USERNAME" envDefault:"HandAndBrainBot"`

	StockfishPath string `env:"STOCKFISH_PATH" envDefault:"stockfish"`

	// Weak engine plays the bot's own moves, strong engine produces the
	// piece hints whispered to the opponent.
	BotSkillLevel        int `env:"STOCKFISH_LEVEL" envDefault:"4"`
	SuggestionSkillLevel int `env:"SUGGESTION_STOCKFISH_LEVEL" envDefault:"15"`
	BotSearchDepth       int `env:"BOT_SEARCH_DEPTH" envDefault:"5"`
	SuggestionDepth      int `env:"SUGGESTION_SEARCH_DEPTH" envDefault:"12"`

	OllamaBaseURL string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	OllamaModel   string `env:"OLLAMA_MODEL" envDefault:"gemma3"`

	MessageHistoryLimit int `env:"MESSAGE_HISTORY_LIMIT" envDefault:"10"`
	MaxChatInputLen     int `env:"MAX_CHAT_INPUT_LEN" envDefault:"100"`

	// Optional. When set the per-game message cache is kept in Redis
	// instead of process memory.
	RedisURL string `env:"REDIS_URL"`
}

func Load() (*AppConfig, error) {
	// Best effort: absence of a .env file is not an error.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.LichessToken = strings.TrimSpace(cfg.LichessToken)
	if cfg.LichessToken == "" {
		return nil, errors.New("LICHESS_TOKEN is required")
	}
	if cfg.BotSkillLevel < 0 || cfg.BotSkillLevel > 20 {
		return nil, fmt.Errorf("STOCKFISH_LEVEL %d out of range 0-20", cfg.BotSkillLevel)
	}
	if cfg.SuggestionSkillLevel < 0 || cfg.SuggestionSkillLevel > 20 {
		return nil, fmt.Errorf("SUGGESTION_STOCKFISH_LEVEL %d out of range 0-20", cfg.SuggestionSkillLevel)
	}
	if cfg.MessageHistoryLimit <= 0 {
		cfg.MessageHistoryLimit = 10
	}
	if cfg.MaxChatInputLen <= 0 {
		cfg.MaxChatInputLen = 100
	}

	return cfg, nil
}
