package event

// Kind names every message the engine emits on a room channel. Payload
// shapes live next to their kind; the transport decides the wire format.
type Kind string

const (
	KindQuestion         Kind = "question"
	KindReviewQuestion   Kind = "review_question"
	KindClueRevealed     Kind = "clue_revealed"
	KindFreezeNotice     Kind = "freeze_notice"
	KindRoundLeaderboard Kind = "round_leaderboard"
	KindLeaderboard      Kind = "leaderboard"
	KindTiebreakStart    Kind = "tiebreak_start"
	KindTiebreakQuestion Kind = "tiebreak_question"
	KindTiebreakReview   Kind = "tiebreak_review"
	KindTiebreakTieAgain Kind = "tiebreak_tie_again"
	KindTiebreakResult   Kind = "tiebreak_result"
	KindExtraUsed        Kind = "extra_used"
	KindCountdown        Kind = "countdown"
	KindQuizError        Kind = "quiz_error"
	KindQuizCancelled    Kind = "quiz_cancelled"
	KindSessionReplaced  Kind = "session_replaced"
	KindJoinAck          Kind = "join_ack"
	KindSnapshot         Kind = "snapshot"
)

type Envelope struct {
	Kind    Kind        `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type Question struct {
	RoomID        string `json:"roomId"`
	QuestionID    string `json:"questionId"`
	QuestionIndex int    `json:"questionIndex"`
	RoundIndex    int    `json:"roundIndex"`
	Prompt        string `json:"prompt"`
	Difficulty    string `json:"difficulty"`
	TimeLimitSec  int    `json:"timeLimitSec"`
}

type ReviewQuestion struct {
	RoomID        string `json:"roomId"`
	QuestionID    string `json:"questionId"`
	QuestionIndex int    `json:"questionIndex"`
	Prompt        string `json:"prompt"`
	CorrectAnswer string `json:"correctAnswer"`
}

type ClueRevealed struct {
	QuestionID string `json:"questionId"`
	Clue       string `json:"clue"`
}

type FreezeNotice struct {
	TargetID         string `json:"targetId"`
	FrozenBy         string `json:"frozenBy"`
	ForQuestionIndex int    `json:"forQuestionIndex"`
}

type LeaderboardEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Display  string `json:"display"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

type Leaderboard struct {
	RoomID  string             `json:"roomId"`
	Final   bool               `json:"final"`
	Entries []LeaderboardEntry `json:"entries"`
}

type ExtraUsed struct {
	PlayerID string `json:"playerId"`
	ExtraID  string `json:"extraId"`
	TargetID string `json:"targetId,omitempty"`
	Effect   string `json:"effect"`
}

type Countdown struct {
	QuestionID   string `json:"questionId,omitempty"`
	RemainingSec int    `json:"remainingSec"`
}

type TiebreakStart struct {
	RoomID  string   `json:"roomId"`
	Players []string `json:"players"`
	Round   int      `json:"round"`
}

type TiebreakQuestion struct {
	QuestionID   string   `json:"questionId"`
	Prompt       string   `json:"prompt"`
	Players      []string `json:"players"`
	TimeLimitSec int      `json:"timeLimitSec"`
}

type TiebreakReview struct {
	QuestionID string             `json:"questionId"`
	Answer     float64            `json:"answer"`
	Guesses    map[string]float64 `json:"guesses"`
}

type TiebreakResult struct {
	Winners []string `json:"winners"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Cancelled struct {
	Message string `json:"message"`
}
