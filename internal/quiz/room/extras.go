package room

import (
	"fmt"
	"time"
)

type RejectReason string

const (
	RejectNotGranted    RejectReason = "not-granted"
	RejectAlreadyUsed   RejectReason = "already-used"
	RejectInvalidTarget RejectReason = "invalid-target"
	RejectCapExceeded   RejectReason = "cap-exceeded"
	RejectNotApplicable RejectReason = "not-applicable"
)

type RejectionError struct {
	Reason RejectReason
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("extra rejected: %s", e.Reason)
}

func reject(reason RejectReason) error {
	return &RejectionError{Reason: reason}
}

type ExtraUsage struct {
	ExtraID  ExtraID   `json:"extraId"`
	TargetID string    `json:"targetId,omitempty"`
	At       time.Time `json:"at"`
}

func NewExtrasLedger(restoreCap int) *ExtrasLedger {
	return &ExtrasLedger{
		usages:     map[string]map[ExtraID]*ExtraUsage{},
		restoreCap: restoreCap,
	}
}

// ExtrasLedger validates and records power-up usage. It never applies
// effects itself; a use is marked only after every check passes, so a
// rejection leaves no trace.
type ExtrasLedger struct {
	usages        map[string]map[ExtraID]*ExtraUsage
	restoreCap    int
	restoredTotal int
}

func (l *ExtrasLedger) Use(
	player *Player,
	extra ExtraID,
	target *Player,
	def *RoundDefinition,
	restoreAmount int,
	now time.Time,
) (*ExtraUsage, error) {
	if !player.Granted[extra] {
		return nil, reject(RejectNotGranted)
	}

	if !def.AllowsExtra(extra) {
		return nil, reject(RejectNotApplicable)
	}

	if extra.SingleUse() && l.used(player.ID, extra) {
		return nil, reject(RejectAlreadyUsed)
	}

	if extra.Targeted() {
		if target == nil || target.ID == player.ID || !target.Connected {
			return nil, reject(RejectInvalidTarget)
		}
	}

	if extra == ExtraRestorePoints && l.restoredTotal+restoreAmount > l.restoreCap {
		return nil, reject(RejectCapExceeded)
	}

	usage := &ExtraUsage{ExtraID: extra, At: now}
	if target != nil {
		usage.TargetID = target.ID
	}

	byPlayer := l.usages[player.ID]
	if byPlayer == nil {
		byPlayer = map[ExtraID]*ExtraUsage{}
		l.usages[player.ID] = byPlayer
	}
	byPlayer[extra] = usage
	player.Used[extra] = true

	if extra == ExtraRestorePoints {
		l.restoredTotal += restoreAmount
	}

	return usage, nil
}

func (l *ExtrasLedger) used(playerID string, extra ExtraID) bool {
	_, ok := l.usages[playerID][extra]
	return ok
}

func (l *ExtrasLedger) RestoredTotal() int {
	return l.restoredTotal
}

func (l *ExtrasLedger) RestorableLeft() int {
	left := l.restoreCap - l.restoredTotal
	if left < 0 {
		return 0
	}
	return left
}

func (l *ExtrasLedger) Usages() map[string]map[ExtraID]*ExtraUsage {
	return l.usages
}

func (l *ExtrasLedger) Restore(usages map[string]map[ExtraID]*ExtraUsage, restoredTotal int) {
	if usages != nil {
		l.usages = usages
	}
	l.restoredTotal = restoredTotal
}
