package main

import (
	"context"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/robjcs/libre-hand-and-brain/internal/advisor"
	"github.com/robjcs/libre-hand-and-brain/internal/commentary"
	"github.com/robjcs/libre-hand-and-brain/internal/config"
	"github.com/robjcs/libre-hand-and-brain/internal/game"
	"github.com/robjcs/libre-hand-and-brain/internal/lichess"
	"github.com/robjcs/libre-hand-and-brain/internal/msgcache"
	"github.com/robjcs/libre-hand-and-brain/internal/msgcat"
	"github.com/robjcs/libre-hand-and-brain/internal/obslog"
)

func main() {
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config error", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Engine availability is fatal at startup: without it neither moves
	// nor hints can be produced.
	adv, err := advisor.New(cfg.StockfishPath)
	if err != nil {
		logger.Fatal("engine init error", zap.String("path", cfg.StockfishPath), zap.Error(err))
	}
	defer adv.Close()

	cat, err := msgcat.New()
	if err != nil {
		logger.Fatal("message catalog error", zap.Error(err))
	}

	ollama := commentary.NewOllamaClient(cfg.OllamaBaseURL, cfg.OllamaModel)
	generator := commentary.NewGenerator(ollama, cat, cfg.MaxChatInputLen)

	var cache msgcache.Store
	if strings.TrimSpace(cfg.RedisURL) != "" {
		redisStore, err := msgcache.NewRedisStoreFromURL(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("redis cache init error", zap.Error(err))
		}
		defer redisStore.Close()
		cache = redisStore
		logger.Info("message cache backed by redis")
	} else {
		cache = msgcache.NewMemoryStore()
	}

	client := lichess.NewClient(cfg.LichessBaseURL, cfg.LichessToken)

	lobby := game.NewLobby(game.LobbyConfig{
		BotUsername:  cfg.BotUsername,
		Weak:         advisor.Strength{SkillLevel: cfg.BotSkillLevel, Depth: cfg.BotSearchDepth},
		Strong:       advisor.Strength{SkillLevel: cfg.SuggestionSkillLevel, Depth: cfg.SuggestionDepth},
		HistoryLimit: cfg.MessageHistoryLimit,
	}, client, adv, generator, cache, cat)

	logger.Info("hand and brain bot starting",
		zap.String("bot", cfg.BotUsername),
		zap.Int("own_skill_level", cfg.BotSkillLevel),
		zap.Int("suggestion_skill_level", cfg.SuggestionSkillLevel),
	)

	if err := lobby.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("event stream error", zap.Error(err))
	}
	logger.Info("shutting down")
}
