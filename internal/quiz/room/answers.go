package room

import (
	"fmt"
	"strings"
	"time"
)

var (
	ErrAlreadyAnswered = fmt.Errorf("already answered")
	ErrUnknownQuestion = fmt.Errorf("unknown question")
	ErrPlayerFrozen    = fmt.Errorf("player frozen")
)

type AnswerRecord struct {
	QuestionID  string    `json:"questionId"`
	Value       *string   `json:"value"`
	SubmittedAt time.Time `json:"submittedAt"`
	AutoTimeout bool      `json:"autoTimeout"`
	Correct     bool      `json:"correct"`
	Points      int       `json:"points"`
}

func NewAnswerLedger() *AnswerLedger {
	return &AnswerLedger{records: map[string]map[string]*AnswerRecord{}}
}

// AnswerLedger keeps at most one record per (player, question). Scoring is
// computed at record time so review replays are deterministic.
type AnswerLedger struct {
	records map[string]map[string]*AnswerRecord
}

func (l *AnswerLedger) Record(
	playerID string,
	q *Question,
	def *RoundDefinition,
	value *string,
	autoTimeout bool,
	now time.Time,
) (*AnswerRecord, error) {
	if q == nil {
		return nil, ErrUnknownQuestion
	}

	byPlayer := l.records[playerID]
	if byPlayer == nil {
		byPlayer = map[string]*AnswerRecord{}
		l.records[playerID] = byPlayer
	}

	if rec, ok := byPlayer[q.ID]; ok {
		return rec, ErrAlreadyAnswered
	}

	rec := &AnswerRecord{
		QuestionID:  q.ID,
		Value:       value,
		SubmittedAt: now,
		AutoTimeout: autoTimeout,
	}

	switch {
	case value == nil:
		rec.Points = -def.PointsLostPerUnanswered
	case answersMatch(*value, q.Answer):
		rec.Correct = true
		rec.Points = def.PointsFor(q.Difficulty)
	default:
		rec.Points = -def.PointsLostPerWrong
	}

	byPlayer[q.ID] = rec

	return rec, nil
}

func (l *AnswerLedger) Get(playerID, questionID string) (*AnswerRecord, bool) {
	rec, ok := l.records[playerID][questionID]
	return rec, ok
}

// Answered reports whether every listed player holds a record for questionID.
func (l *AnswerLedger) Answered(playerIDs []string, questionID string) bool {
	for _, id := range playerIDs {
		if _, ok := l.records[id][questionID]; !ok {
			return false
		}
	}
	return true
}

func (l *AnswerLedger) Records() map[string]map[string]*AnswerRecord {
	return l.records
}

func (l *AnswerLedger) Restore(records map[string]map[string]*AnswerRecord) {
	if records != nil {
		l.records = records
	}
}

func answersMatch(submitted, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(correct))
}
