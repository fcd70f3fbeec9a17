package room

import (
	"errors"
	"testing"
	"time"
)

func triviaRound() *RoundDefinition {
	return &RoundDefinition{
		Type: RoundTypeGeneralTrivia,
		PointsPerDifficulty: map[string]int{
			"easy":   1,
			"medium": 2,
			"hard":   3,
		},
		PointsLostPerWrong:      0,
		PointsLostPerUnanswered: 1,
	}
}

func strptr(s string) *string { return &s }

func TestAnswerLedgerScoring(t *testing.T) {
	t.Parallel()

	def := triviaRound()
	q := &Question{ID: "q1", Answer: "Paris", Difficulty: "medium"}
	now := time.Now()

	ledger := NewAnswerLedger()

	rec, err := ledger.Record("p1", q, def, strptr("  paris "), false, now)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !rec.Correct || rec.Points != 2 {
		t.Errorf("expected correct for 2 points, got %+v", rec)
	}

	rec, err = ledger.Record("p2", q, def, strptr("London"), false, now)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if rec.Correct || rec.Points != 0 {
		t.Errorf("expected wrong answer for 0 points, got %+v", rec)
	}

	rec, err = ledger.Record("p3", q, def, nil, true, now)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if rec.Points != -1 || !rec.AutoTimeout {
		t.Errorf("expected timeout penalty of -1, got %+v", rec)
	}
}

func TestAnswerLedgerWipeoutPenalty(t *testing.T) {
	t.Parallel()

	def := triviaRound()
	def.Type = RoundTypeWipeout
	def.PointsLostPerWrong = 2

	q := &Question{ID: "q1", Answer: "42", Difficulty: "easy"}

	ledger := NewAnswerLedger()
	rec, err := ledger.Record("p1", q, def, strptr("41"), false, time.Now())
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if rec.Points != -2 {
		t.Errorf("expected -2 points, got %d", rec.Points)
	}
}

func TestAnswerLedgerIdempotent(t *testing.T) {
	t.Parallel()

	def := triviaRound()
	q := &Question{ID: "q1", Answer: "Paris", Difficulty: "easy"}
	now := time.Now()

	ledger := NewAnswerLedger()

	first, err := ledger.Record("p1", q, def, strptr("Paris"), false, now)
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	second, err := ledger.Record("p1", q, def, strptr("London"), false, now.Add(time.Second))
	if !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("expected ErrAlreadyAnswered, got %v", err)
	}
	if second != first {
		t.Errorf("duplicate must return the original record")
	}
	if got, _ := ledger.Get("p1", "q1"); got != first || !got.Correct {
		t.Errorf("stored record must be the first submission, got %+v", got)
	}
}

func TestAnswerLedgerUnknownQuestion(t *testing.T) {
	t.Parallel()

	ledger := NewAnswerLedger()
	if _, err := ledger.Record("p1", nil, triviaRound(), nil, false, time.Now()); !errors.Is(err, ErrUnknownQuestion) {
		t.Fatalf("expected ErrUnknownQuestion, got %v", err)
	}
}

func TestAnswerLedgerAnswered(t *testing.T) {
	t.Parallel()

	def := triviaRound()
	q := &Question{ID: "q1", Answer: "x", Difficulty: "easy"}
	ledger := NewAnswerLedger()

	if _, err := ledger.Record("p1", q, def, strptr("x"), false, time.Now()); err != nil {
		t.Fatalf("record: %v", err)
	}

	if ledger.Answered([]string{"p1", "p2"}, "q1") {
		t.Error("p2 has not answered yet")
	}

	if _, err := ledger.Record("p2", q, def, nil, true, time.Now()); err != nil {
		t.Fatalf("record: %v", err)
	}

	if !ledger.Answered([]string{"p1", "p2"}, "q1") {
		t.Error("both players hold records now")
	}
}
