package commentary

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/robjcs/libre-hand-and-brain/internal/msgcat"
	"github.com/robjcs/libre-hand-and-brain/internal/obslog"
)

// ChatClient is the slice of the model client the generator needs.
type ChatClient interface {
	Chat(ctx context.Context, systemPrompt, userPrompt string, opts *GenOptions) (string, error)
}

var defaultGenOptions = GenOptions{Temperature: 0.8, TopP: 0.9}

// Generator produces the bot's chat output: piece hints for the opponent
// and conversational replies. All prompts live in the message catalog.
type Generator struct {
	client      ChatClient
	cat         *msgcat.Catalog
	maxInputLen int
}

func NewGenerator(client ChatClient, cat *msgcat.Catalog, maxInputLen int) *Generator {
	if maxInputLen <= 0 {
		maxInputLen = 100
	}
	return &Generator{client: client, cat: cat, maxInputLen: maxInputLen}
}

// HintForPiece produces a short phrase naming only the given piece type.
// If the model output contains a forbidden term or closely repeats a
// recent message, a fixed fallback phrase is used instead so the hint is
// always clean. Returns an empty string when every fallback would repeat
// a recent message; the caller sends nothing in that case.
func (g *Generator) HintForPiece(ctx context.Context, piece string, recent []string) (string, error) {
	system, err := g.cat.Render("prompt.hint.system", map[string]any{
		"Forbidden": strings.Join(quoteAll(forbiddenHintTerms), ", "),
	})
	if err != nil {
		return "", fmt.Errorf("render hint system prompt: %w", err)
	}
	user, err := g.cat.Render("prompt.hint.user", map[string]any{"Piece": piece})
	if err != nil {
		return "", fmt.Errorf("render hint user prompt: %w", err)
	}

	out, err := g.client.Chat(ctx, system, user, nil)
	if err != nil {
		return "", err
	}
	if containsForbiddenTerm(out) || closelyRepeats(out, recent) {
		obslog.L().Debug("hint fell back to fixed phrase",
			zap.String("piece", piece),
			zap.String("generated", out),
		)
		return g.fallbackHint(piece, recent), nil
	}
	return out, nil
}

// fallbackHint picks the first fixed phrase that does not repeat a
// recent message. Empty when every candidate collides.
func (g *Generator) fallbackHint(piece string, recent []string) string {
	candidates := []string{
		g.cat.MustRender("hint.fallback", map[string]any{"Piece": piece},
			"You could move your "+piece+"."),
		g.cat.MustRender("hint.fallback_alt", map[string]any{"Piece": piece},
			"Take a look at your "+piece+"."),
	}
	for _, c := range candidates {
		if !closelyRepeats(c, recent) {
			return c
		}
	}
	return ""
}

// ReplyTo produces a conversational reply to a user's chat line. Screened
// input (injection patterns, excessive length) is routed to a dismissive
// generation path instead of the normal one.
func (g *Generator) ReplyTo(ctx context.Context, userText string, recent []string) (string, error) {
	if isSuspiciousInput(userText) {
		return g.dismissive(ctx, "prompt.dismissive.injection")
	}
	if len(userText) > g.maxInputLen {
		return g.dismissive(ctx, "prompt.dismissive.long")
	}

	system, err := g.cat.Render("prompt.chat.system", nil)
	if err != nil {
		return "", fmt.Errorf("render chat system prompt: %w", err)
	}
	if len(recent) > 0 {
		norepeat, err := g.cat.Render("prompt.chat.norepeat", map[string]any{
			"Recent": strings.Join(quoteAll(recent), ", "),
		})
		if err != nil {
			return "", fmt.Errorf("render norepeat context: %w", err)
		}
		system += "\n\n" + norepeat
	}

	opts := defaultGenOptions
	return g.client.Chat(ctx, system, userText, &opts)
}

func (g *Generator) dismissive(ctx context.Context, promptKey string) (string, error) {
	user, err := g.cat.Render(promptKey, nil)
	if err != nil {
		return "", fmt.Errorf("render dismissive prompt: %w", err)
	}
	return g.client.Chat(ctx, "", user, nil)
}

func containsForbiddenTerm(text string) bool {
	lower := strings.ToLower(text)
	for _, term := range forbiddenHintTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// closelyRepeats reports whether text matches any recent message after
// case folding and trimming surrounding punctuation.
func closelyRepeats(text string, recent []string) bool {
	n := normalize(text)
	if n == "" {
		return false
	}
	for _, prev := range recent {
		if normalize(prev) == n {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Trim(s, ".!?\"' ")
}

func quoteAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, fmt.Sprintf("%q", s))
	}
	return out
}
