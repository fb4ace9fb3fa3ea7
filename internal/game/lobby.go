package game

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/robjcs/libre-hand-and-brain/internal/advisor"
	"github.com/robjcs/libre-hand-and-brain/internal/lichess"
	"github.com/robjcs/libre-hand-and-brain/internal/msgcache"
	"github.com/robjcs/libre-hand-and-brain/internal/msgcat"
	"github.com/robjcs/libre-hand-and-brain/internal/obslog"
)

// LobbyAPI is the slice of the Lichess client the lobby needs on top of
// what each session uses.
type LobbyAPI interface {
	ServerAPI
	AcceptChallenge(ctx context.Context, challengeID string) error
	StreamEvents(ctx context.Context, handler func(lichess.AccountEvent)) error
}

// Lobby consumes the account event stream: every challenge is accepted,
// every started game gets its own session goroutine. Finished sessions
// are never evicted from the map; entries persist for process lifetime.
type Lobby struct {
	api   LobbyAPI
	adv   MoveAdvisor
	com   Commentator
	cache msgcache.Store
	cat   *msgcat.Catalog

	botUsername  string
	weak         advisor.Strength
	strong       advisor.Strength
	historyLimit int

	mu       sync.Mutex
	sessions map[string]*Session

	log *zap.Logger
}

type LobbyConfig struct {
	BotUsername  string
	Weak         advisor.Strength
	Strong       advisor.Strength
	HistoryLimit int
}

func NewLobby(cfg LobbyConfig, api LobbyAPI, adv MoveAdvisor, com Commentator, cache msgcache.Store, cat *msgcat.Catalog) *Lobby {
	return &Lobby{
		api:          api,
		adv:          adv,
		com:          com,
		cache:        cache,
		cat:          cat,
		botUsername:  cfg.BotUsername,
		weak:         cfg.Weak,
		strong:       cfg.Strong,
		historyLimit: cfg.HistoryLimit,
		sessions:     make(map[string]*Session),
		log:          obslog.L().Named("lobby"),
	}
}

// Run blocks on the account event stream until it closes or ctx is done.
func (l *Lobby) Run(ctx context.Context) error {
	l.log.Info("waiting for challenges", zap.String("bot", l.botUsername))
	return l.api.StreamEvents(ctx, func(ev lichess.AccountEvent) {
		l.HandleEvent(ctx, ev)
	})
}

// HandleEvent processes one account-level event.
func (l *Lobby) HandleEvent(ctx context.Context, ev lichess.AccountEvent) {
	switch ev.Type {
	case "challenge":
		if ev.Challenge == nil || ev.Challenge.ID == "" {
			return
		}
		// Accepted unconditionally: no variant, time-control, or rating
		// filtering.
		if err := l.api.AcceptChallenge(ctx, ev.Challenge.ID); err != nil {
			l.log.Error("accept challenge failed",
				zap.String("challenge_id", ev.Challenge.ID),
				zap.Error(err),
			)
			return
		}
		l.log.Info("challenge accepted",
			zap.String("challenge_id", ev.Challenge.ID),
			zap.String("challenger", ev.Challenge.Challenger.Name),
		)
	case "gameStart":
		if ev.Game == nil || ev.Game.ID == "" {
			return
		}
		l.startSession(ctx, ev.Game.ID)
	}
}

func (l *Lobby) startSession(ctx context.Context, gameID string) {
	l.mu.Lock()
	if _, exists := l.sessions[gameID]; exists {
		l.mu.Unlock()
		return
	}
	session := NewSession(SessionConfig{
		GameID:       gameID,
		BotUsername:  l.botUsername,
		Weak:         l.weak,
		Strong:       l.strong,
		HistoryLimit: l.historyLimit,
	}, l.api, l.adv, l.com, l.cache, l.cat)
	l.sessions[gameID] = session
	l.mu.Unlock()

	l.log.Info("game started", zap.String("game_id", gameID))
	go func() {
		_ = session.Run(ctx)
	}()
}

// ActiveSessions returns the number of sessions ever started.
func (l *Lobby) ActiveSessions() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sessions)
}
