package room

import (
	"time"

	"github.com/quizparty-games/quizparty/internal/quiz/event"
)

// Snapshot is a single-player projection of committed room state, built on
// every reconnect. It carries everything a client needs to rebuild its view
// without replaying history.
type Snapshot struct {
	RoomID        string `json:"roomId"`
	Phase         string `json:"phase"`
	RoundIndex    int    `json:"roundIndex"`
	QuestionIndex int    `json:"questionIndex"`
	RemainingSec  int    `json:"remainingSec"`

	You PlayerView `json:"you"`

	Question    *QuestionView            `json:"question,omitempty"`
	YourAnswer  *AnswerView              `json:"yourAnswer,omitempty"`
	Review      *ReviewView              `json:"review,omitempty"`
	Leaderboard []event.LeaderboardEntry `json:"leaderboard,omitempty"`
	Tiebreak    *TiebreakView            `json:"tiebreak,omitempty"`

	Winners       []string `json:"winners,omitempty"`
	CancelMessage string   `json:"cancelMessage,omitempty"`
}

type PlayerView struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Host           bool      `json:"host"`
	Score          int       `json:"score"`
	PenaltyPoints  int       `json:"penaltyPoints"`
	PointsRestored int       `json:"pointsRestored"`
	Frozen         bool      `json:"frozen"`
	FrozenBy       string    `json:"frozenBy,omitempty"`
	ExtrasGranted  []ExtraID `json:"extrasGranted"`
	ExtrasUsed     []ExtraID `json:"extrasUsed"`
	RestorableLeft int       `json:"restorableLeft"`
}

type QuestionView struct {
	ID           string `json:"id"`
	Prompt       string `json:"prompt"`
	Difficulty   string `json:"difficulty"`
	TimeLimitSec int    `json:"timeLimitSec"`
	Clue         string `json:"clue,omitempty"`
}

type AnswerView struct {
	Value       *string   `json:"value"`
	SubmittedAt time.Time `json:"submittedAt"`
	AutoTimeout bool      `json:"autoTimeout"`
}

type ReviewView struct {
	CorrectAnswer string  `json:"correctAnswer"`
	YourValue     *string `json:"yourValue"`
	Correct       bool    `json:"correct"`
	PointsEarned  int     `json:"pointsEarned"`
	AutoTimeout   bool    `json:"autoTimeout"`
	Answered      bool    `json:"answered"`
}

type TiebreakView struct {
	Stage      TiebreakStage `json:"stage"`
	Players    []string      `json:"players"`
	Round      int           `json:"round"`
	Question   *QuestionView `json:"question,omitempty"`
	YourGuess  *float64      `json:"yourGuess,omitempty"`
	Winners    []string      `json:"winners,omitempty"`
	Spectating bool          `json:"spectating"`
}

// Snapshot builds the reconnect payload for one player. It only reads:
// repeated calls with no intervening mutation return identical results.
func (r *Session) Snapshot(playerID string) (*Snapshot, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	p, ok := r.findPlayer(playerID)
	if !ok {
		return nil, ErrUnknownPlayer
	}

	snap := &Snapshot{
		RoomID:        r.Config.RoomID,
		Phase:         r.snapshotPhase(),
		RoundIndex:    r.roundIdx,
		QuestionIndex: r.questionSeq,
		RemainingSec:  r.remainingSec,
		You:           r.playerView(p),
	}

	switch r.phase {
	case PhaseAsking:
		q, _, err := r.currentQuestion()
		if err != nil {
			return nil, err
		}
		snap.Question = r.questionView(p, q)
		if rec, ok := r.answers.Get(p.ID, q.ID); ok {
			snap.YourAnswer = &AnswerView{
				Value:       rec.Value,
				SubmittedAt: rec.SubmittedAt,
				AutoTimeout: rec.AutoTimeout,
			}
		}

	case PhaseReviewing:
		q, _, err := r.currentQuestion()
		if err != nil {
			return nil, err
		}
		snap.Question = r.questionView(p, q)
		review := &ReviewView{CorrectAnswer: q.Answer}
		if rec, ok := r.answers.Get(p.ID, q.ID); ok {
			review.Answered = true
			review.YourValue = rec.Value
			review.Correct = rec.Correct
			review.PointsEarned = rec.Points
			review.AutoTimeout = rec.AutoTimeout
		}
		snap.Review = review

	case PhaseLeaderboard, PhaseComplete:
		snap.Leaderboard = r.leaderboardEntries()
		snap.Winners = append([]string(nil), r.winners...)

	case PhaseTiebreaker:
		snap.Tiebreak = r.tiebreakView(p)

	case PhaseCancelled:
		snap.CancelMessage = r.cancelMsg
	}

	return snap, nil
}

func (r *Session) snapshotPhase() string {
	if r.phase == PhaseLeaderboard && !r.lastQuestionOfQuiz() {
		return "roundLeaderboard"
	}
	return r.phase.String()
}

func (r *Session) playerView(p *Player) PlayerView {
	v := PlayerView{
		ID:             p.ID,
		Name:           p.Name,
		Host:           p.Host,
		Score:          p.Score,
		PenaltyPoints:  p.PenaltyPoints,
		PointsRestored: p.PointsRestored,
		RestorableLeft: r.extras.RestorableLeft(),
	}

	if r.freezes.IsFrozen(p.ID, r.questionSeq) {
		v.Frozen = true
		if w, ok := r.freezes.Window(p.ID); ok {
			v.FrozenBy = w.FrozenBy
		}
	}

	for _, e := range []ExtraID{ExtraBuyHint, ExtraFreezeOutTeam, ExtraRobPoints, ExtraRestorePoints} {
		if p.Granted[e] {
			v.ExtrasGranted = append(v.ExtrasGranted, e)
		}
		if p.Used[e] {
			v.ExtrasUsed = append(v.ExtrasUsed, e)
		}
	}

	return v
}

func (r *Session) questionView(p *Player, q *Question) *QuestionView {
	v := &QuestionView{
		ID:           q.ID,
		Prompt:       q.Prompt,
		Difficulty:   q.Difficulty,
		TimeLimitSec: q.TimeLimitSec,
	}
	// the clue is only projected for a player who bought the hint
	if p.Used[ExtraBuyHint] {
		v.Clue = q.Clue
	}
	return v
}

func (r *Session) tiebreakView(p *Player) *TiebreakView {
	t := r.tiebreak
	if t == nil {
		return nil
	}

	v := &TiebreakView{
		Stage:      t.Stage,
		Players:    append([]string(nil), t.Players...),
		Round:      t.Round,
		Winners:    append([]string(nil), t.Winners...),
		Spectating: !t.contains(p.ID),
	}

	if t.Question != nil && (t.Stage == TiebreakStageQuestion || t.Stage == TiebreakStageReview) {
		v.Question = &QuestionView{
			ID:           t.Question.ID,
			Prompt:       t.Question.Prompt,
			TimeLimitSec: t.Question.TimeLimitSec,
		}
	}

	if g, ok := t.Answers[p.ID]; ok {
		guess := g
		v.YourGuess = &guess
	}

	return v
}
