package game

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/robjcs/libre-hand-and-brain/internal/advisor"
	"github.com/robjcs/libre-hand-and-brain/internal/lichess"
	"github.com/robjcs/libre-hand-and-brain/internal/msgcache"
	"github.com/robjcs/libre-hand-and-brain/internal/msgcat"
	"github.com/robjcs/libre-hand-and-brain/internal/obslog"
)

// ServerAPI is the slice of the Lichess client a session needs.
type ServerAPI interface {
	MakeMove(ctx context.Context, gameID, uci string) error
	SendChat(ctx context.Context, gameID, text string) error
	StreamGame(ctx context.Context, gameID string, handler func(lichess.GameEvent)) error
}

// MoveAdvisor returns the engine's best move for a position.
type MoveAdvisor interface {
	BestMove(ctx context.Context, fen string, strength advisor.Strength) (string, error)
}

// Commentator produces hints and chat replies.
type Commentator interface {
	HintForPiece(ctx context.Context, piece string, recent []string) (string, error)
	ReplyTo(ctx context.Context, text string, recent []string) (string, error)
}

// Session runs the event loop for a single game: it keeps board state
// current, plays the bot's own moves at the weak strength, and whispers
// piece hints computed at the strong strength when it is the opponent's
// turn. At most one action is emitted per event.
type Session struct {
	gameID      string
	botUsername string

	api    ServerAPI
	adv    MoveAdvisor
	com    Commentator
	cache  msgcache.Store
	cat    *msgcat.Catalog
	weak   advisor.Strength
	strong advisor.Strength

	historyLimit int

	// Set once by the first gameFull event that names us; never changed.
	color Color

	log *zap.Logger
}

type SessionConfig struct {
	GameID       string
	BotUsername  string
	Weak         advisor.Strength
	Strong       advisor.Strength
	HistoryLimit int
}

func NewSession(cfg SessionConfig, api ServerAPI, adv MoveAdvisor, com Commentator, cache msgcache.Store, cat *msgcat.Catalog) *Session {
	limit := cfg.HistoryLimit
	if limit <= 0 {
		limit = 10
	}
	return &Session{
		gameID:       cfg.GameID,
		botUsername:  cfg.BotUsername,
		api:          api,
		adv:          adv,
		com:          com,
		cache:        cache,
		cat:          cat,
		weak:         cfg.Weak,
		strong:       cfg.Strong,
		historyLimit: limit,
		color:        ColorUnknown,
		log: obslog.L().With(
			zap.String("game_id", cfg.GameID),
			zap.String("session_uuid", uuid.NewString()),
		),
	}
}

// Run greets the game chat and then consumes the per-game event stream
// until it closes. Errors from individual actions never end the loop.
func (s *Session) Run(ctx context.Context) error {
	s.greet(ctx)

	err := s.api.StreamGame(ctx, s.gameID, func(ev lichess.GameEvent) {
		s.HandleEvent(ctx, ev)
	})
	if err != nil {
		s.log.Error("game stream ended", zap.Error(err))
		return err
	}
	s.log.Info("game stream closed")
	return nil
}

// HandleEvent processes one event from the per-game stream.
func (s *Session) HandleEvent(ctx context.Context, ev lichess.GameEvent) {
	switch ev.Type {
	case "gameFull":
		s.resolveColor(ev)
		if ev.State != nil {
			s.handleState(ctx, ev.State.Moves)
		}
	case "gameState":
		s.handleState(ctx, ev.Moves)
	case "chatLine":
		s.handleChat(ctx, ev)
	}
}

func (s *Session) resolveColor(ev lichess.GameEvent) {
	if s.color != ColorUnknown {
		return
	}
	switch {
	case ev.White.Name == s.botUsername:
		s.color = ColorWhite
	case ev.Black.Name == s.botUsername:
		s.color = ColorBlack
	default:
		s.log.Warn("bot username matched neither player",
			zap.String("white", ev.White.Name),
			zap.String("black", ev.Black.Name),
		)
		return
	}
	s.log.Info("color resolved", zap.String("color", s.color.String()))
}

func (s *Session) handleState(ctx context.Context, moves string) {
	board, err := Replay(moves)
	if err != nil {
		s.log.Error("board replay failed", zap.String("moves", moves), zap.Error(err))
		return
	}

	// Events are still absorbed while the color is undetermined so board
	// state stays current; only actions are suppressed.
	if s.color == ColorUnknown || board.GameOver() {
		return
	}

	if board.SideToMove() == s.color {
		s.playOwnMove(ctx, board)
		return
	}
	s.suggestToOpponent(ctx, board)
}

func (s *Session) playOwnMove(ctx context.Context, board *Board) {
	move, err := s.adv.BestMove(ctx, board.FEN(), s.weak)
	if err != nil {
		s.log.Error("engine search failed for own move", zap.Error(err))
		return
	}
	piece := board.PieceNameAtOrigin(move)
	if err := s.api.MakeMove(ctx, s.gameID, move); err != nil {
		s.log.Error("submit move failed", zap.String("move", move), zap.Error(err))
		return
	}
	s.log.Info("played move", zap.String("move", move), zap.String("piece", piece))
}

func (s *Session) suggestToOpponent(ctx context.Context, board *Board) {
	// No hint before the opponent has anything to respond to.
	if board.Initial() {
		return
	}
	move, err := s.adv.BestMove(ctx, board.FEN(), s.strong)
	if err != nil {
		s.log.Error("engine search failed for suggestion", zap.Error(err))
		return
	}
	piece := board.PieceNameAtOrigin(move)

	recent := s.recent(ctx)
	hint, err := s.com.HintForPiece(ctx, piece, recent)
	if err != nil {
		s.log.Error("hint generation failed", zap.String("piece", piece), zap.Error(err))
		return
	}
	if hint == "" {
		s.log.Debug("hint suppressed to avoid repetition", zap.String("piece", piece))
		return
	}
	s.sendChat(ctx, hint)
	s.log.Info("suggested piece to opponent",
		zap.String("move", move),
		zap.String("piece", piece),
	)
}

func (s *Session) handleChat(ctx context.Context, ev lichess.GameEvent) {
	// Own lines echo back on the stream. Any other line gets a reply
	// regardless of room.
	if ev.Username == s.botUsername {
		return
	}
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return
	}
	s.log.Info("chat received",
		zap.String("from", ev.Username),
		zap.String("room", ev.Room),
	)

	reply, err := s.com.ReplyTo(ctx, text, s.recent(ctx))
	if err != nil {
		s.log.Error("reply generation failed", zap.Error(err))
		return
	}
	s.sendChat(ctx, reply)
}

func (s *Session) greet(ctx context.Context) {
	intro := s.cat.MustRender("greeting.intro", map[string]any{"Bot": s.botUsername},
		"Hello! I'm "+s.botUsername+"!")
	ready := s.cat.MustRender("greeting.ready", nil, "Let's have a great game!")
	s.sendChat(ctx, intro)
	s.sendChat(ctx, ready)
}

// sendChat posts a line and records it in the message cache on success.
func (s *Session) sendChat(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if err := s.api.SendChat(ctx, s.gameID, text); err != nil {
		s.log.Error("send chat failed", zap.Error(err))
		return
	}
	if err := s.cache.Append(ctx, s.gameID, text); err != nil {
		s.log.Warn("message cache append failed", zap.Error(err))
	}
	s.log.Info("chat sent", zap.String("text", text))
}

func (s *Session) recent(ctx context.Context) []string {
	recent, err := s.cache.Recent(ctx, s.gameID, s.historyLimit)
	if err != nil {
		s.log.Warn("message cache read failed", zap.Error(err))
		return nil
	}
	return recent
}
