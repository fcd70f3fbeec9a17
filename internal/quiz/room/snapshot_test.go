package room

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestSnapshotRepeatedBuildsIdentical(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, Config{Rounds: testRounds(1, 60)})
	if _, err := s.AddPlayer("p2", "Pat"); err != nil {
		t.Fatalf("add player: %v", err)
	}

	if err := s.AdvancePhase("host"); err != nil {
		t.Fatalf("launch: %v", err)
	}
	waitForPhase(t, s, PhaseAsking, 5*time.Second)

	q := currentQuestionID(t, s, "host")
	if err := s.SubmitAnswer("host", q, strptr("Paris"), false); err != nil {
		t.Fatalf("host answer: %v", err)
	}
	if err := s.SubmitAnswer("p2", q, strptr("London"), false); err != nil {
		t.Fatalf("p2 answer: %v", err)
	}

	// reviewing holds no countdown ticks, so the committed state is still
	waitForPhase(t, s, PhaseReviewing, 2*time.Second)

	first, err := s.Snapshot("p2")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	second, err := s.Snapshot("p2")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("snapshots diverged with no state change:\n%s\n%s", a, b)
	}

	if first.Review == nil || first.Review.Correct || first.Review.PointsEarned != 0 {
		t.Errorf("p2 review view wrong: %+v", first.Review)
	}
}

func TestSnapshotUnknownPlayer(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, Config{Rounds: testRounds(1, 60)})
	if _, err := s.Snapshot("ghost"); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("expected ErrUnknownPlayer, got %v", err)
	}
}

func TestSnapshotClueGatedOnHint(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, Config{Rounds: testRounds(1, 60)})
	if _, err := s.AddPlayer("p2", "Pat"); err != nil {
		t.Fatalf("add player: %v", err)
	}

	if err := s.AdvancePhase("host"); err != nil {
		t.Fatalf("launch: %v", err)
	}
	waitForPhase(t, s, PhaseAsking, 5*time.Second)

	snap, err := s.Snapshot("p2")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Question.Clue != "" {
		t.Error("clue must stay hidden before the hint is bought")
	}

	if err := s.UseExtra("p2", ExtraBuyHint, ""); err != nil {
		t.Fatalf("buy hint: %v", err)
	}

	snap, err = s.Snapshot("p2")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Question.Clue == "" {
		t.Error("clue must be projected after the hint is bought")
	}

	// the hint is private: other players still see no clue
	other, err := s.Snapshot("host")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if other.Question.Clue != "" {
		t.Error("hint must not leak to other players")
	}
}

func TestSnapshotFrozenView(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, Config{Rounds: testRounds(1, 60)})
	if _, err := s.AddPlayer("p2", "Pat"); err != nil {
		t.Fatalf("add player: %v", err)
	}

	if err := s.AdvancePhase("host"); err != nil {
		t.Fatalf("launch: %v", err)
	}
	waitForPhase(t, s, PhaseAsking, 5*time.Second)

	if err := s.UseExtra("host", ExtraFreezeOutTeam, "p2"); err != nil {
		t.Fatalf("freeze: %v", err)
	}

	snap, err := s.Snapshot("p2")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !snap.You.Frozen || snap.You.FrozenBy != "host" {
		t.Errorf("frozen state missing from view: %+v", snap.You)
	}

	other, err := s.Snapshot("host")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if other.You.Frozen {
		t.Error("the freezer is not frozen")
	}
}
