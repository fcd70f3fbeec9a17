package room

import (
	"encoding/json"
	"time"
)

type RoundType string

const (
	RoundTypeGeneralTrivia RoundType = "generalTrivia"
	RoundTypeWipeout       RoundType = "wipeout"
	RoundTypeSpeed         RoundType = "speedRound"
)

type ExtraID string

const (
	ExtraBuyHint       ExtraID = "buyHint"
	ExtraFreezeOutTeam ExtraID = "freezeOutTeam"
	ExtraRobPoints     ExtraID = "robPoints"
	ExtraRestorePoints ExtraID = "restorePoints"
)

// Targeted extras require a target player distinct from the user.
func (e ExtraID) Targeted() bool {
	return e == ExtraFreezeOutTeam || e == ExtraRobPoints
}

func (e ExtraID) SingleUse() bool {
	switch e {
	case ExtraBuyHint, ExtraFreezeOutTeam, ExtraRobPoints, ExtraRestorePoints:
		return true
	}
	return false
}

type Question struct {
	ID           string    `json:"id"`
	Prompt       string    `json:"prompt"`
	Clue         string    `json:"clue,omitempty"`
	TimeLimitSec int       `json:"timeLimitSec"`
	Difficulty   string    `json:"difficulty"`
	Answer       string    `json:"answer"`
	StartedAt    time.Time `json:"startedAt,omitempty"`
}

type RoundDefinition struct {
	Type                    RoundType      `json:"roundType"`
	Questions               []Question     `json:"questions"`
	PointsPerDifficulty     map[string]int `json:"pointsPerDifficulty"`
	PointsLostPerWrong      int            `json:"pointsLostPerWrong"`
	PointsLostPerUnanswered int            `json:"pointsLostPerUnanswered"`
	ReviewSec               int            `json:"reviewSec"`
	LeaderboardSec          int            `json:"leaderboardSec"`
	ExtrasAllowed           []ExtraID      `json:"extrasAllowed"`
}

func (d *RoundDefinition) AllowsExtra(e ExtraID) bool {
	for _, a := range d.ExtrasAllowed {
		if a == e {
			return true
		}
	}
	return false
}

func (d *RoundDefinition) PointsFor(difficulty string) int {
	return d.PointsPerDifficulty[difficulty]
}

// UnmarshalJSON accepts the deprecated all-lowercase alias
// "pointslostperunanswered" alongside the canonical field name. The canonical
// field wins when both are present.
func (d *RoundDefinition) UnmarshalJSON(data []byte) error {
	type alias RoundDefinition
	aux := struct {
		*alias
		Deprecated *int `json:"pointslostperunanswered"`
	}{alias: (*alias)(d)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if d.PointsLostPerUnanswered == 0 && aux.Deprecated != nil {
		d.PointsLostPerUnanswered = *aux.Deprecated
	}

	return nil
}

type TiebreakQuestion struct {
	ID           string  `json:"id"`
	Prompt       string  `json:"prompt"`
	Answer       float64 `json:"answer"`
	TimeLimitSec int     `json:"timeLimitSec"`
}
