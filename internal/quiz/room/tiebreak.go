package room

import (
	"fmt"
	"math"
	"sort"

	"github.com/valyala/fastrand"
)

type TiebreakStage string

const (
	TiebreakStageStart    TiebreakStage = "start"
	TiebreakStageQuestion TiebreakStage = "question"
	TiebreakStageReview   TiebreakStage = "review"
	TiebreakStageResult   TiebreakStage = "result"
)

var (
	ErrNotTied          = fmt.Errorf("player not in tiebreak")
	ErrTiebreakResolved = fmt.Errorf("tiebreak already resolved")
	ErrNoTiebreakBank   = fmt.Errorf("tiebreak question bank exhausted")
)

func NewTiebreakerSession(players []string, bank []TiebreakQuestion) *TiebreakerSession {
	return &TiebreakerSession{
		Players: players,
		Stage:   TiebreakStageStart,
		bank:    bank,
	}
}

// TiebreakerSession resolves an exact score tie by iterative closest-guess
// rounds. Each round narrows the tied set to the players at minimum distance
// from the true answer; a player who never submits is maximally distant and
// drops out first.
type TiebreakerSession struct {
	Players  []string           `json:"players"`
	Round    int                `json:"round"`
	Question *TiebreakQuestion  `json:"question,omitempty"`
	Answers  map[string]float64 `json:"answers"`
	Winners  []string           `json:"winners,omitempty"`
	Stage    TiebreakStage      `json:"stage"`

	bank []TiebreakQuestion
	used map[string]bool
}

// NextQuestion draws an unused question from the bank and opens a new round.
func (t *TiebreakerSession) NextQuestion() (*TiebreakQuestion, error) {
	if t.Resolved() {
		return nil, ErrTiebreakResolved
	}

	if t.used == nil {
		t.used = map[string]bool{}
	}

	var avail []TiebreakQuestion
	for _, q := range t.bank {
		if !t.used[q.ID] {
			avail = append(avail, q)
		}
	}
	if len(avail) == 0 {
		return nil, ErrNoTiebreakBank
	}

	q := avail[fastrand.Uint32n(uint32(len(avail)))]
	t.used[q.ID] = true
	t.Question = &q
	t.Answers = map[string]float64{}
	t.Round++
	t.Stage = TiebreakStageQuestion

	return &q, nil
}

func (t *TiebreakerSession) Submit(playerID string, value float64) error {
	if t.Resolved() {
		return ErrTiebreakResolved
	}

	if !t.contains(playerID) {
		return ErrNotTied
	}

	if _, ok := t.Answers[playerID]; ok {
		return ErrAlreadyAnswered
	}

	t.Answers[playerID] = value
	return nil
}

func (t *TiebreakerSession) AllSubmitted() bool {
	return len(t.Answers) == len(t.Players)
}

// Resolve ranks the current round. A unique minimum-distance player becomes
// the winner; several players at minimum distance stay tied for another
// round. If nobody submitted the tied set is unchanged and the round is
// re-run with a fresh question.
func (t *TiebreakerSession) Resolve() {
	t.Stage = TiebreakStageReview

	min := math.Inf(1)
	for _, id := range t.Players {
		if d := t.distance(id); d < min {
			min = d
		}
	}

	if math.IsInf(min, 1) {
		// no submissions at all, keep everyone tied
		return
	}

	var closest []string
	for _, id := range t.Players {
		if t.distance(id) == min {
			closest = append(closest, id)
		}
	}

	if len(closest) == 1 {
		t.Winners = closest
		t.Stage = TiebreakStageResult
		return
	}

	t.Players = closest
}

// Abandon force-resolves the session with an explicit winner list.
func (t *TiebreakerSession) Abandon(winners []string) {
	t.Winners = winners
	t.Stage = TiebreakStageResult
}

func (t *TiebreakerSession) Resolved() bool {
	return len(t.Winners) > 0
}

func (t *TiebreakerSession) distance(playerID string) float64 {
	v, ok := t.Answers[playerID]
	if !ok {
		return math.Inf(1)
	}
	return math.Abs(v - t.Question.Answer)
}

// TiebreakState is the serializable form of a TiebreakerSession, minus the
// question bank, which the room config carries.
type TiebreakState struct {
	Players  []string           `json:"players"`
	Round    int                `json:"round"`
	Question *TiebreakQuestion  `json:"question,omitempty"`
	Answers  map[string]float64 `json:"answers,omitempty"`
	Winners  []string           `json:"winners,omitempty"`
	Stage    TiebreakStage      `json:"stage"`
	Used     []string           `json:"used,omitempty"`
}

func (t *TiebreakerSession) State() TiebreakState {
	used := make([]string, 0, len(t.used))
	for id := range t.used {
		used = append(used, id)
	}
	sort.Strings(used)

	return TiebreakState{
		Players:  append([]string(nil), t.Players...),
		Round:    t.Round,
		Question: t.Question,
		Answers:  t.Answers,
		Winners:  append([]string(nil), t.Winners...),
		Stage:    t.Stage,
		Used:     used,
	}
}

// RestoreTiebreaker rebuilds a session from its serialized state against the
// room's question bank. A nil state restores to no session.
func RestoreTiebreaker(state *TiebreakState, bank []TiebreakQuestion) *TiebreakerSession {
	if state == nil {
		return nil
	}

	t := &TiebreakerSession{
		Players:  state.Players,
		Round:    state.Round,
		Question: state.Question,
		Answers:  state.Answers,
		Winners:  state.Winners,
		Stage:    state.Stage,
		bank:     bank,
		used:     map[string]bool{},
	}
	if t.Answers == nil {
		t.Answers = map[string]float64{}
	}
	for _, id := range state.Used {
		t.used[id] = true
	}
	return t
}

func (t *TiebreakerSession) contains(playerID string) bool {
	for _, id := range t.Players {
		if id == playerID {
			return true
		}
	}
	return false
}
