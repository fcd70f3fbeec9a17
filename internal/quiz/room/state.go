package room

import (
	"time"
)

// Memento is the serializable form of a live room, written to the state
// database on shutdown and restored at boot.
type Memento struct {
	RoomID   string `json:"roomId"`
	HostID   string `json:"hostId"`
	HostName string `json:"hostName"`

	Rounds       []RoundDefinition  `json:"rounds"`
	TiebreakBank []TiebreakQuestion `json:"tiebreakBank"`

	PrizePlaces      int           `json:"prizePlaces"`
	RestorePointsCap int           `json:"restorePointsCap"`
	RestorePerUse    int           `json:"restorePerUse"`
	RobAmount        int           `json:"robAmount"`
	Timeout          time.Duration `json:"timeout"`

	Phase        uint8 `json:"phase"`
	QuestionSeq  int   `json:"questionSeq"`
	RoundIdx     int   `json:"roundIdx"`
	RoundPos     int   `json:"roundPos"`
	RemainingSec int   `json:"remainingSec"`

	Players       []*Player                           `json:"players"`
	Answers       map[string]map[string]*AnswerRecord `json:"answers"`
	Extras        map[string]map[ExtraID]*ExtraUsage  `json:"extras"`
	RestoredTotal int                                 `json:"restoredTotal"`
	Freezes       map[string]*FreezeWindow            `json:"freezes"`
	Tiebreak      *TiebreakState                      `json:"tiebreak,omitempty"`
	Winners       []string                            `json:"winners"`

	CreatedAt time.Time `json:"createdAt"`
}

func (r *Session) Export() Memento {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	players := make([]*Player, len(r.players))
	copy(players, r.players)

	var tiebreak *TiebreakState
	if r.tiebreak != nil {
		state := r.tiebreak.State()
		tiebreak = &state
	}

	return Memento{
		RoomID:           r.Config.RoomID,
		HostID:           r.Config.HostID,
		HostName:         r.Config.HostName,
		Rounds:           r.Config.Rounds,
		TiebreakBank:     r.Config.TiebreakBank,
		PrizePlaces:      r.Config.PrizePlaces,
		RestorePointsCap: r.Config.RestorePointsCap,
		RestorePerUse:    r.Config.RestorePerUse,
		RobAmount:        r.Config.RobAmount,
		Timeout:          r.Config.Timeout,
		Phase:            uint8(r.phase),
		QuestionSeq:      r.questionSeq,
		RoundIdx:         r.roundIdx,
		RoundPos:         r.roundPos,
		RemainingSec:     r.remainingSec,
		Players:          players,
		Answers:          r.answers.Records(),
		Extras:           r.extras.Usages(),
		RestoredTotal:    r.extras.RestoredTotal(),
		Freezes:          r.freezes.Windows(),
		Tiebreak:         tiebreak,
		Winners:          append([]string(nil), r.winners...),
		CreatedAt:        r.CreatedAt,
	}
}

// NewFromMemento rebuilds a suspended room. The caller supplies the
// runtime-only config pieces (callbacks, timeout override).
func NewFromMemento(m Memento, doneFn, warnFn func(*Session) error) *Session {
	s := NewSession(Config{
		RoomID:           m.RoomID,
		HostID:           m.HostID,
		HostName:         m.HostName,
		Rounds:           m.Rounds,
		TiebreakBank:     m.TiebreakBank,
		PrizePlaces:      m.PrizePlaces,
		RestorePointsCap: m.RestorePointsCap,
		RestorePerUse:    m.RestorePerUse,
		RobAmount:        m.RobAmount,
		Timeout:          m.Timeout,
		DoneFn:           doneFn,
		WarnFn:           warnFn,
	})

	s.CreatedAt = m.CreatedAt
	s.phase = Phase(m.Phase)
	s.questionSeq = m.QuestionSeq
	s.roundIdx = m.RoundIdx
	s.roundPos = m.RoundPos
	s.remainingSec = m.RemainingSec
	if len(m.Players) > 0 {
		s.players = m.Players
		for _, p := range s.players {
			p.Connected = false
		}
	}
	s.answers.Restore(m.Answers)
	s.extras.Restore(m.Extras, m.RestoredTotal)
	s.freezes.Restore(m.Freezes)
	s.tiebreak = RestoreTiebreaker(m.Tiebreak, m.TiebreakBank)
	s.winners = m.Winners

	return s
}

// Resume re-arms the scheduler of a restored room so a suspended phase
// picks up where it left off.
func (r *Session) Resume() {
	_ = r.do(func() error {
		r.mtx.Lock()
		defer r.mtx.Unlock()

		switch r.phase {
		case PhaseLaunched:
			r.sched.Arm(launchCountdown, nil, func() {
				r.mtx.Lock()
				defer r.mtx.Unlock()
				r.startQuestion()
			})
		case PhaseAsking:
			left := time.Duration(r.remainingSec) * time.Second
			if left <= 0 {
				left = time.Second
			}
			questionID := ""
			if q, _, err := r.currentQuestion(); err == nil {
				questionID = q.ID
			}
			r.sched.Arm(left,
				func(remaining int) {
					r.mtx.Lock()
					defer r.mtx.Unlock()
					if r.phase != PhaseAsking {
						return
					}
					r.remainingSec = remaining
					r.broadcastCountdown(questionID, remaining)
				},
				func() {
					r.mtx.Lock()
					defer r.mtx.Unlock()
					r.expireQuestion()
				})
		case PhaseReviewing:
			r.sched.Arm(time.Duration(max(r.remainingSec, 1))*time.Second, nil, func() {
				r.mtx.Lock()
				defer r.mtx.Unlock()
				r.toLeaderboard()
			})
		case PhaseLeaderboard:
			r.sched.Arm(time.Duration(max(r.remainingSec, 1))*time.Second, nil, func() {
				r.mtx.Lock()
				defer r.mtx.Unlock()
				r.advanceFromLeaderboard()
			})
		case PhaseTiebreaker:
			// an open question picks its countdown back up; the other
			// stages re-enter through the usual pause
			if r.tiebreak != nil && r.tiebreak.Stage == TiebreakStageQuestion {
				r.sched.Arm(time.Duration(max(r.remainingSec, 1))*time.Second, nil, func() {
					r.mtx.Lock()
					defer r.mtx.Unlock()
					r.resolveTiebreak()
				})
				break
			}
			r.sched.Arm(tiebreakPauseSec*time.Second, nil, func() {
				r.mtx.Lock()
				defer r.mtx.Unlock()
				r.advanceTiebreak()
			})
		}
		return nil
	})
}

func (r *Session) Winners() []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return append([]string(nil), r.winners...)
}
