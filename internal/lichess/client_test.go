package lichess

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPostEndpointsAndAuth(t *testing.T) {
	type call struct {
		path        string
		auth        string
		contentType string
		body        string
	}
	var calls []call

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, call{
			path:        r.URL.Path,
			auth:        r.Header.Get("Authorization"),
			contentType: r.Header.Get("Content-Type"),
			body:        string(body),
		})
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-token")
	ctx := context.Background()

	if err := c.AcceptChallenge(ctx, "ch123"); err != nil {
		t.Fatalf("AcceptChallenge: %v", err)
	}
	if err := c.MakeMove(ctx, "game1", "e2e4"); err != nil {
		t.Fatalf("MakeMove: %v", err)
	}
	if err := c.SendChat(ctx, "game1", "hello there"); err != nil {
		t.Fatalf("SendChat: %v", err)
	}

	if len(calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(calls))
	}
	wantPaths := []string{
		"/api/challenge/ch123/accept",
		"/api/bot/game/game1/move/e2e4",
		"/api/bot/game/game1/chat",
	}
	for i, want := range wantPaths {
		if calls[i].path != want {
			t.Fatalf("call %d path: got %q want %q", i, calls[i].path, want)
		}
		if calls[i].auth != "Bearer secret-token" {
			t.Fatalf("call %d auth: got %q", i, calls[i].auth)
		}
	}
	if calls[2].contentType != "application/x-www-form-urlencoded" {
		t.Fatalf("chat content type: %q", calls[2].contentType)
	}
	if calls[2].body != "room=player&text=hello+there" {
		t.Fatalf("chat body: %q", calls[2].body)
	}
}

func TestPostNonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"Not your turn"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t")
	if err := c.MakeMove(context.Background(), "game1", "e2e5"); err == nil {
		t.Fatalf("expected error on 400 response")
	}
}

func TestStreamEventsDecodesAndSkipsBadLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/stream/event" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		flusher := w.(http.Flusher)
		fmt.Fprintln(w, `{"type":"challenge","challenge":{"id":"ch1","challenger":{"id":"u1","name":"Alice"}}}`)
		fmt.Fprintln(w) // keepalive
		fmt.Fprintln(w, `this is not json`)
		fmt.Fprintln(w, `{"type":"gameStart","game":{"id":"g1"}}`)
		flusher.Flush()
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t")
	var events []AccountEvent
	err := c.StreamEvents(context.Background(), func(ev AccountEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("StreamEvents: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 decoded events, got %d: %+v", len(events), events)
	}
	if events[0].Type != "challenge" || events[0].Challenge.ID != "ch1" {
		t.Fatalf("bad challenge event: %+v", events[0])
	}
	if events[1].Type != "gameStart" || events[1].Game.ID != "g1" {
		t.Fatalf("bad gameStart event: %+v", events[1])
	}
}

func TestStreamGameDecodesAllEventShapes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/bot/game/stream/g1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprintln(w, `{"type":"gameFull","white":{"id":"bot","name":"Bot"},"black":{"id":"opp","name":"Opp"},"state":{"moves":"","status":"started"}}`)
		fmt.Fprintln(w, `{"type":"gameState","moves":"e2e4 e7e5","status":"started"}`)
		fmt.Fprintln(w, `{"type":"chatLine","username":"Opp","text":"hi","room":"player"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t")
	var events []GameEvent
	err := c.StreamGame(context.Background(), "g1", func(ev GameEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("StreamGame: %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].State == nil || events[0].White.Name != "Bot" {
		t.Fatalf("bad gameFull: %+v", events[0])
	}
	if events[1].Moves != "e2e4 e7e5" {
		t.Fatalf("bad gameState: %+v", events[1])
	}
	if events[2].Username != "Opp" || events[2].Room != "player" {
		t.Fatalf("bad chatLine: %+v", events[2])
	}
}

func TestStreamCancelledMidStreamReturnsCleanly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		fmt.Fprintln(w, `{"type":"gameStart","game":{"id":"g1"}}`)
		flusher.Flush()
		// Hold the connection open until the client gives up.
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := NewClient(srv.URL, "t")

	got := make(chan AccountEvent, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.StreamEvents(ctx, func(ev AccountEvent) {
			select {
			case got <- ev:
			default:
			}
		})
	}()

	select {
	case ev := <-got:
		if ev.Type != "gameStart" {
			t.Fatalf("unexpected event before cancel: %+v", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for first event")
	}
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("stream did not unblock after cancel")
	}
}

func TestStreamNonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad")
	if err := c.StreamEvents(context.Background(), func(AccountEvent) {}); err == nil {
		t.Fatalf("expected error on 401 stream")
	}
}
