package room

import "time"

type FreezeWindow struct {
	PlayerID      string    `json:"playerId"`
	FrozenBy      string    `json:"frozenBy"`
	QuestionIndex int       `json:"questionIndex"`
	At            time.Time `json:"at"`
}

func NewFreezeCoordinator() *FreezeCoordinator {
	return &FreezeCoordinator{windows: map[string]*FreezeWindow{}}
}

// FreezeCoordinator pins a disruption to one exact question index. A window
// is never cleared explicitly: advancing the room's question index past the
// stored index makes it inert.
type FreezeCoordinator struct {
	windows map[string]*FreezeWindow
}

func (f *FreezeCoordinator) Freeze(targetID, byID string, questionIndex int, now time.Time) *FreezeWindow {
	w := &FreezeWindow{
		PlayerID:      targetID,
		FrozenBy:      byID,
		QuestionIndex: questionIndex,
		At:            now,
	}
	f.windows[targetID] = w
	return w
}

// IsFrozen holds iff the player's stored window index equals the room's
// current question index.
func (f *FreezeCoordinator) IsFrozen(playerID string, currentIndex int) bool {
	w, ok := f.windows[playerID]
	return ok && w.QuestionIndex == currentIndex
}

func (f *FreezeCoordinator) Window(playerID string) (*FreezeWindow, bool) {
	w, ok := f.windows[playerID]
	return w, ok
}

func (f *FreezeCoordinator) Windows() map[string]*FreezeWindow {
	return f.windows
}

func (f *FreezeCoordinator) Restore(windows map[string]*FreezeWindow) {
	if windows != nil {
		f.windows = windows
	}
}
