package model

import "time"

// Result is one player's final line in a completed room.
type Result struct {
	RoomID         string    `json:"roomId"`
	PlayerID       string    `json:"playerId"`
	Name           string    `json:"name"`
	Score          int       `json:"score"`
	PenaltyPoints  int       `json:"penaltyPoints"`
	PointsRestored int       `json:"pointsRestored"`
	Winner         bool      `json:"winner"`
	CompletedAt    time.Time `json:"completedAt"`
}
