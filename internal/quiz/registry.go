package quiz

import (
	"sync"

	"github.com/google/uuid"
)

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{tokens: map[string]map[string]string{}}
}

// SessionRegistry enforces one authoritative connection per (room, player).
// Issuing a new token invalidates the previous one; requests carrying a
// stale token are rejected before they reach the room.
type SessionRegistry struct {
	mtx    sync.Mutex
	tokens map[string]map[string]string
}

// Issue mints a fresh token for the player, returning the token it
// replaced (empty when this is the first session).
func (g *SessionRegistry) Issue(roomID, playerID string) (token, replaced string) {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	byPlayer := g.tokens[roomID]
	if byPlayer == nil {
		byPlayer = map[string]string{}
		g.tokens[roomID] = byPlayer
	}

	replaced = byPlayer[playerID]
	token = uuid.NewString()
	byPlayer[playerID] = token
	return token, replaced
}

func (g *SessionRegistry) Validate(roomID, playerID, token string) bool {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	return token != "" && g.tokens[roomID][playerID] == token
}

// Release drops the player's token, but only if the caller still holds it.
// A disconnect of an already-replaced connection is a no-op.
func (g *SessionRegistry) Release(roomID, playerID, token string) bool {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	if g.tokens[roomID][playerID] != token {
		return false
	}
	delete(g.tokens[roomID], playerID)
	return true
}

func (g *SessionRegistry) DropRoom(roomID string) {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	delete(g.tokens, roomID)
}
