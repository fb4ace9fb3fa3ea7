package lichess

// Account-level events arrive on /api/stream/event.
type AccountEvent struct {
	Type      string     `json:"type"` // "challenge" | "gameStart" | "gameFinish" | ...
	Challenge *Challenge `json:"challenge,omitempty"`
	Game      *GameInfo  `json:"game,omitempty"`
}

type Challenge struct {
	ID         string `json:"id"`
	Challenger Player `json:"challenger"`
}

type GameInfo struct {
	ID string `json:"id"`
}

type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GameEvent is a per-game stream line. The field set depends on Type:
// gameFull carries players and the embedded initial State, gameState
// carries Moves/Status at the top level, chatLine carries the chat fields.
type GameEvent struct {
	Type string `json:"type"` // "gameFull" | "gameState" | "chatLine" | "opponentGone"

	White Player     `json:"white"`
	Black Player     `json:"black"`
	State *GameState `json:"state,omitempty"`

	Moves  string `json:"moves"`
	Status string `json:"status"`

	Username string `json:"username"`
	Text     string `json:"text"`
	Room     string `json:"room"` // "player" | "spectator"
}

type GameState struct {
	Moves  string `json:"moves"`
	Status string `json:"status"`
}
