package room

import (
	"errors"
	"testing"
	"time"
)

func allExtrasRound() *RoundDefinition {
	return &RoundDefinition{
		Type:                RoundTypeGeneralTrivia,
		PointsPerDifficulty: map[string]int{"easy": 1},
		ExtrasAllowed: []ExtraID{
			ExtraBuyHint, ExtraFreezeOutTeam, ExtraRobPoints, ExtraRestorePoints,
		},
	}
}

func grantedPlayer(id string) *Player {
	p := NewPlayer(id, id, false)
	p.Connected = true
	p.Grant(ExtraBuyHint, ExtraFreezeOutTeam, ExtraRobPoints, ExtraRestorePoints)
	return p
}

func rejectionReason(t *testing.T, err error) RejectReason {
	t.Helper()

	var rej *RejectionError
	if !errors.As(err, &rej) {
		t.Fatalf("expected RejectionError, got %v", err)
	}
	return rej.Reason
}

func TestExtrasSingleUse(t *testing.T) {
	t.Parallel()

	def := allExtrasRound()
	player := grantedPlayer("p1")
	ledger := NewExtrasLedger(10)

	if _, err := ledger.Use(player, ExtraBuyHint, nil, def, 0, time.Now()); err != nil {
		t.Fatalf("first use: %v", err)
	}

	_, err := ledger.Use(player, ExtraBuyHint, nil, def, 0, time.Now())
	if got := rejectionReason(t, err); got != RejectAlreadyUsed {
		t.Errorf("expected already-used, got %s", got)
	}
}

func TestExtrasNotGranted(t *testing.T) {
	t.Parallel()

	def := allExtrasRound()
	player := NewPlayer("p1", "p1", false)

	_, err := NewExtrasLedger(10).Use(player, ExtraBuyHint, nil, def, 0, time.Now())
	if got := rejectionReason(t, err); got != RejectNotGranted {
		t.Errorf("expected not-granted, got %s", got)
	}
}

func TestExtrasNotAllowedInRound(t *testing.T) {
	t.Parallel()

	def := allExtrasRound()
	def.ExtrasAllowed = []ExtraID{ExtraBuyHint}
	player := grantedPlayer("p1")

	_, err := NewExtrasLedger(10).Use(player, ExtraRobPoints, grantedPlayer("p2"), def, 0, time.Now())
	if got := rejectionReason(t, err); got != RejectNotApplicable {
		t.Errorf("expected not-applicable, got %s", got)
	}
}

func TestExtrasTargetValidation(t *testing.T) {
	t.Parallel()

	def := allExtrasRound()
	player := grantedPlayer("p1")
	ledger := NewExtrasLedger(10)

	_, err := ledger.Use(player, ExtraFreezeOutTeam, nil, def, 0, time.Now())
	if got := rejectionReason(t, err); got != RejectInvalidTarget {
		t.Errorf("missing target: expected invalid-target, got %s", got)
	}

	_, err = ledger.Use(player, ExtraFreezeOutTeam, player, def, 0, time.Now())
	if got := rejectionReason(t, err); got != RejectInvalidTarget {
		t.Errorf("self target: expected invalid-target, got %s", got)
	}

	offline := grantedPlayer("p2")
	offline.Connected = false
	_, err = ledger.Use(player, ExtraFreezeOutTeam, offline, def, 0, time.Now())
	if got := rejectionReason(t, err); got != RejectInvalidTarget {
		t.Errorf("offline target: expected invalid-target, got %s", got)
	}
}

func TestExtrasRestoreCap(t *testing.T) {
	t.Parallel()

	def := allExtrasRound()
	ledger := NewExtrasLedger(3)

	if _, err := ledger.Use(grantedPlayer("p1"), ExtraRestorePoints, nil, def, 2, time.Now()); err != nil {
		t.Fatalf("first restore: %v", err)
	}
	if ledger.RestorableLeft() != 1 {
		t.Errorf("expected 1 restorable point left, got %d", ledger.RestorableLeft())
	}

	_, err := ledger.Use(grantedPlayer("p2"), ExtraRestorePoints, nil, def, 2, time.Now())
	if got := rejectionReason(t, err); got != RejectCapExceeded {
		t.Errorf("expected cap-exceeded, got %s", got)
	}

	// the rejected use leaves no trace: a smaller amount still fits
	if _, err := ledger.Use(grantedPlayer("p2"), ExtraRestorePoints, nil, def, 1, time.Now()); err != nil {
		t.Fatalf("restore within cap: %v", err)
	}
	if ledger.RestoredTotal() != 3 {
		t.Errorf("expected 3 restored in total, got %d", ledger.RestoredTotal())
	}
}

func TestExtrasRejectionLeavesNoTrace(t *testing.T) {
	t.Parallel()

	def := allExtrasRound()
	player := grantedPlayer("p1")
	ledger := NewExtrasLedger(10)

	if _, err := ledger.Use(player, ExtraRobPoints, nil, def, 0, time.Now()); err == nil {
		t.Fatal("expected rejection")
	}
	if player.Used[ExtraRobPoints] {
		t.Error("rejected use must not mark the extra as used")
	}

	if _, err := ledger.Use(player, ExtraRobPoints, grantedPlayer("p2"), def, 0, time.Now()); err != nil {
		t.Fatalf("valid retry after rejection: %v", err)
	}
}
