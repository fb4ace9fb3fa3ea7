package advisor

import (
	"context"
	"fmt"

	"github.com/robjcs/libre-hand-and-brain/internal/advisor/uci"
)

const (
	defaultThreads = 2
	defaultHashMB  = 16
)

// Strength describes how hard the engine thinks: the Stockfish skill
// level (0-20) plus a search depth cap.
type Strength struct {
	SkillLevel int
	Depth      int
}

func (s Strength) validate() error {
	if s.SkillLevel < 0 || s.SkillLevel > 20 {
		return fmt.Errorf("skill level %d out of range 0-20", s.SkillLevel)
	}
	if s.Depth <= 0 {
		return fmt.Errorf("search depth must be > 0: %d", s.Depth)
	}
	return nil
}

// Advisor wraps a pooled UCI engine. BestMove never panics past this
// boundary; any internal failure surfaces as an error and the caller
// simply skips its action.
type Advisor struct {
	pool *uci.Pool
}

func New(binaryPath string) (*Advisor, error) {
	pool, err := uci.NewPool(uci.PoolConfig{BinaryPath: binaryPath})
	if err != nil {
		return nil, err
	}
	return &Advisor{pool: pool}, nil
}

// BestMove returns the engine's best move for the position at the given
// strength, in UCI notation.
func (a *Advisor) BestMove(ctx context.Context, fen string, strength Strength) (string, error) {
	if err := strength.validate(); err != nil {
		return "", err
	}

	session, err := a.pool.Acquire(ctx, optionsFor(strength))
	if err != nil {
		return "", err
	}
	var searchErr error
	defer func() {
		a.pool.Release(session, searchErr)
	}()

	move, err := session.BestMove(ctx, fen, uci.Limits{Depth: strength.Depth})
	if err != nil {
		searchErr = err
		return "", err
	}
	return move, nil
}

func (a *Advisor) Close() error {
	if a.pool == nil {
		return nil
	}
	return a.pool.Close()
}

func optionsFor(s Strength) uci.Options {
	return uci.Options{
		Threads:    defaultThreads,
		SkillLevel: s.SkillLevel,
		HashMB:     defaultHashMB,
	}
}
