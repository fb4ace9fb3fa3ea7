package uci

import (
	"strings"
	"testing"
	"time"
)

func TestBuildPositionCommand(t *testing.T) {
	cases := map[string]string{
		"":         "position startpos\n",
		"startpos": "position startpos\n",
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1": "position fen rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1\n",
	}
	for fen, want := range cases {
		if got := buildPositionCommand(fen); got != want {
			t.Fatalf("buildPositionCommand(%q): got %q want %q", fen, got, want)
		}
	}
}

func TestBuildGoTokens(t *testing.T) {
	tokens, err := buildGoTokens(Limits{Depth: 12})
	if err != nil {
		t.Fatalf("buildGoTokens: %v", err)
	}
	if got := strings.Join(tokens, " "); got != "go depth 12" {
		t.Fatalf("got %q", got)
	}

	tokens, err = buildGoTokens(Limits{Depth: 5, MoveTimeMillis: 200})
	if err != nil {
		t.Fatalf("buildGoTokens: %v", err)
	}
	if got := strings.Join(tokens, " "); got != "go depth 5 movetime 200" {
		t.Fatalf("got %q", got)
	}

	if _, err := buildGoTokens(Limits{}); err == nil {
		t.Fatalf("expected error without limits")
	}
}

func TestParseBestMove(t *testing.T) {
	mv, err := parseBestMove("bestmove e2e4 ponder e7e5")
	if err != nil || mv != "e2e4" {
		t.Fatalf("got %q, %v", mv, err)
	}
	if _, err := parseBestMove("bestmove (none)"); err == nil {
		t.Fatalf("expected error for (none)")
	}
	if _, err := parseBestMove("bestmove"); err == nil {
		t.Fatalf("expected error for bare bestmove")
	}
}

func TestComputeSearchTimeoutBounds(t *testing.T) {
	if d := computeSearchTimeout(Limits{Depth: 1}); d < 6*time.Second {
		t.Fatalf("shallow depth timeout too small: %v", d)
	}
	if d := computeSearchTimeout(Limits{Depth: 100}); d > 20*time.Second {
		t.Fatalf("deep depth timeout not capped: %v", d)
	}
}

func TestValidateOptions(t *testing.T) {
	if err := validateOptions(Options{SkillLevel: 4, HashMB: 16}); err != nil {
		t.Fatalf("valid options rejected: %v", err)
	}
	if err := validateOptions(Options{SkillLevel: 25, HashMB: 16}); err == nil {
		t.Fatalf("expected error for skill 25")
	}
	if err := validateOptions(Options{SkillLevel: 4, HashMB: 0}); err == nil {
		t.Fatalf("expected error for zero hash")
	}
}

func TestOptionsKeySeparatesStrengths(t *testing.T) {
	weak := optionsKey(Options{Threads: 2, SkillLevel: 4, HashMB: 16})
	strong := optionsKey(Options{Threads: 2, SkillLevel: 15, HashMB: 16})
	if weak == strong {
		t.Fatalf("different skill levels must not share a bucket")
	}
}
