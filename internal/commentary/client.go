package commentary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// OllamaClient calls the Ollama /api/chat endpoint with streaming off.
type OllamaClient struct {
	baseURL string
	model   string
	http    *fasthttp.Client

	defaultTimeout time.Duration
}

type OllamaOption func(*OllamaClient)

func WithTimeout(d time.Duration) OllamaOption {
	return func(c *OllamaClient) { c.defaultTimeout = d }
}

func NewOllamaClient(baseURL, model string, opts ...OllamaOption) *OllamaClient {
	c := &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http: &fasthttp.Client{
			ReadTimeout:     120 * time.Second,
			WriteTimeout:    10 * time.Second,
			MaxConnsPerHost: 4,
		},
		defaultTimeout: 120 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"` // "system" | "user" | "assistant"
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// GenOptions are passed through to the model verbatim.
type GenOptions struct {
	Temperature float64
	TopP        float64
}

// Chat sends one system+user exchange and returns the generated text.
// An empty systemPrompt sends the user message alone.
func (c *OllamaClient) Chat(ctx context.Context, systemPrompt, userPrompt string, opts *GenOptions) (string, error) {
	msgs := make([]chatMessage, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: systemPrompt})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: userPrompt})

	reqBody := chatRequest{Model: c.model, Messages: msgs, Stream: false}
	if opts != nil {
		reqBody.Options = map[string]any{
			"temperature": opts.Temperature,
			"top_p":       opts.TopP,
		}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(c.baseURL + "/api/chat")
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	if err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx)); err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("ollama api error: status=%d body=%s", status, truncate(string(resp.Body()), 512))
	}

	var out chatResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return strings.TrimSpace(out.Message.Content), nil
}

func (c *OllamaClient) computeDeadline(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		clientDL := time.Now().Add(c.defaultTimeout)
		if dl.Before(clientDL) {
			return dl
		}
		return clientDL
	}
	return time.Now().Add(c.defaultTimeout)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
