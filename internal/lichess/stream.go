package lichess

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/robjcs/libre-hand-and-brain/internal/obslog"
)

// Streams are newline-delimited JSON. Blank lines are keepalives; lines
// that fail to decode are skipped and the stream continues. Returning nil
// from streamLines means the server closed the stream.

const maxStreamLine = 1 << 20

// StreamEvents consumes the account-level event stream until it closes or
// ctx is done. handler is called once per decoded event.
func (c *Client) StreamEvents(ctx context.Context, handler func(AccountEvent)) error {
	return c.streamLines(ctx, "/api/stream/event", func(line []byte) {
		var ev AccountEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			obslog.L().Warn("skip malformed account event", zap.Error(err))
			return
		}
		handler(ev)
	})
}

// StreamGame consumes the per-game event stream for one game id.
func (c *Client) StreamGame(ctx context.Context, gameID string, handler func(GameEvent)) error {
	return c.streamLines(ctx, "/api/bot/game/stream/"+gameID, func(line []byte) {
		var ev GameEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			obslog.L().Warn("skip malformed game event", zap.String("game_id", gameID), zap.Error(err))
			return
		}
		handler(ev)
	})
}

func (c *Client) streamLines(ctx context.Context, path string, onLine func([]byte)) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(c.baseURL + path)
	c.applyAuth(&req.Header)

	if err := c.stream.Do(req, resp); err != nil {
		return fmt.Errorf("open stream %s: %w", path, err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return fmt.Errorf("stream %s: status=%d", path, status)
	}

	body := resp.BodyStream()

	// Let a cancelled context unblock the scanner read below. The watcher
	// must be joined before the deferred ReleaseResponse recycles resp, so
	// it never touches the body stream after the release.
	done := make(chan struct{})
	watcherExited := make(chan struct{})
	go func() {
		defer close(watcherExited)
		select {
		case <-ctx.Done():
			_ = resp.CloseBodyStream()
		case <-done:
		}
	}()
	defer func() {
		close(done)
		<-watcherExited
		_ = resp.CloseBodyStream()
	}()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), maxStreamLine)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // keepalive
		}
		onLine(line)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream %s: %w", path, err)
	}
	return nil
}
