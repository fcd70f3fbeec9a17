package model

import (
	"time"

	"github.com/quizparty-games/quizparty/internal/quiz/room"
)

// State is a suspended room as written to the state bucket.
type State struct {
	room.Memento

	SavedAt time.Time `json:"savedAt"`
}
