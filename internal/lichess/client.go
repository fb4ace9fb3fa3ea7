package lichess

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// Client talks to the Lichess bot API with a bearer token. Short calls
// (accept, move, chat) go through the pooled fasthttp client; the two
// long-lived ndjson streams use a separate client with no read timeout.
type Client struct {
	baseURL string
	token   string
	http    *fasthttp.Client
	stream  *fasthttp.Client

	defaultTimeout time.Duration
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   strings.TrimSpace(token),
		http: &fasthttp.Client{
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			MaxConnsPerHost: 16,
		},
		stream: &fasthttp.Client{
			StreamResponseBody: true,
			WriteTimeout:       10 * time.Second,
		},
		defaultTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AcceptChallenge accepts an incoming challenge unconditionally.
func (c *Client) AcceptChallenge(ctx context.Context, challengeID string) error {
	return c.post(ctx, "/api/challenge/"+challengeID+"/accept", "", "")
}

// MakeMove submits a move in UCI notation for the given game.
func (c *Client) MakeMove(ctx context.Context, gameID, uci string) error {
	return c.post(ctx, "/api/bot/game/"+gameID+"/move/"+uci, "", "")
}

// SendChat posts a line to the player chat room of the given game.
func (c *Client) SendChat(ctx context.Context, gameID, text string) error {
	form := url.Values{}
	form.Set("room", "player")
	form.Set("text", text)
	return c.post(ctx, "/api/bot/game/"+gameID+"/chat", form.Encode(), "application/x-www-form-urlencoded")
}

func (c *Client) post(ctx context.Context, path, body, contentType string) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(c.baseURL + path)
	c.applyAuth(&req.Header)
	if contentType != "" {
		req.Header.SetContentType(contentType)
	}
	if body != "" {
		req.SetBodyString(body)
	}

	if err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx)); err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return fmt.Errorf("lichess api error: path=%s status=%d body=%s", path, status, truncate(string(resp.Body()), 512))
	}
	return nil
}

func (c *Client) applyAuth(h *fasthttp.RequestHeader) {
	h.Set(fasthttp.HeaderAuthorization, "Bearer "+c.token)
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
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
