package room

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/quizparty-games/quizparty/internal/logging"
	"github.com/quizparty-games/quizparty/internal/quiz/event"
)

type Phase uint8

const (
	PhaseWaiting Phase = iota + 1
	PhaseLaunched
	PhaseAsking
	PhaseReviewing
	PhaseLeaderboard
	PhaseTiebreaker
	PhaseComplete
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseLaunched:
		return "launched"
	case PhaseAsking:
		return "asking"
	case PhaseReviewing:
		return "reviewing"
	case PhaseLeaderboard:
		return "leaderboard"
	case PhaseTiebreaker:
		return "tiebreaker"
	case PhaseComplete:
		return "complete"
	case PhaseCancelled:
		return "cancelled"
	}
	return "unknown"
}

func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseCancelled
}

var (
	ErrRoomTerminated = fmt.Errorf("room-not-found")
	ErrNotHost        = fmt.Errorf("host only")
	ErrUnknownPlayer  = fmt.Errorf("unknown player")
	ErrBadPhase       = fmt.Errorf("not allowed in current phase")
	ErrMissingRound   = fmt.Errorf("room missing round definition")
)

// Subscriber receives room events. Notify must not block; slow consumers
// are the transport's problem.
type Subscriber interface {
	Notify(env event.Envelope)
}

const (
	launchCountdown  = 3 * time.Second
	tiebreakPauseSec = 3

	defaultReviewSec      = 10
	defaultLeaderboardSec = 8
	defaultTiebreakSec    = 20
)

type Config struct {
	RoomID   string
	HostID   string
	HostName string

	Rounds       []RoundDefinition
	TiebreakBank []TiebreakQuestion

	PrizePlaces      int
	RestorePointsCap int
	RestorePerUse    int
	RobAmount        int

	Timeout time.Duration

	DoneFn func(s *Session) error
	WarnFn func(s *Session) error
}

func NewSession(config Config) *Session {
	if config.PrizePlaces <= 0 {
		config.PrizePlaces = 1
	}

	s := &Session{
		Config:    config,
		CreatedAt: time.Now(),
		phase:     PhaseWaiting,
		players:   []*Player{},
		answers:   NewAnswerLedger(),
		extras:    NewExtrasLedger(config.RestorePointsCap),
		freezes:   NewFreezeCoordinator(),
		subs:      map[string]Subscriber{},
		reqCh:     make(chan func(), 64),
		closed:    make(chan struct{}),
	}
	s.sched = newScheduler(s.enqueue)

	host := NewPlayer(config.HostID, config.HostName, true)
	host.Connected = true
	s.grantExtras(host)
	s.players = append(s.players, host)

	return s
}

// Session is the per-room actor. All mutation goes through the request
// queue consumed by loop; snapshots read the committed state under RLock.
type Session struct {
	Config    Config
	CreatedAt time.Time

	mtx   sync.RWMutex
	phase Phase
	// questionSeq is the room-wide monotonic question counter; freeze
	// windows are pinned to it. roundIdx/roundPos locate the live question.
	questionSeq int
	roundIdx    int
	roundPos    int

	remainingSec int
	players      []*Player
	answers      *AnswerLedger
	extras       *ExtrasLedger
	freezes      *FreezeCoordinator
	tiebreak     *TiebreakerSession
	winners      []string
	cancelMsg    string

	subs map[string]Subscriber

	reqCh  chan func()
	closed chan struct{}
	sched  *Scheduler
	cancel func()
	sema   sync.Once
}

func (r *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.Config.Timeout)
	r.cancel = cancel
	logger := logging.FromContext(ctx)
	r.sema.Do(func() {
		go r.loop(ctx)
	})
	logger.Infof("quiz room created, id: %s, host: %s", r.Config.RoomID, r.Config.HostName)
}

func (r *Session) Stop() {
	r.cancel()
}

func (r *Session) loop(ctx context.Context) {
	defer r.shutdown(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-r.reqCh:
			fn()
		}
	}
}

func (r *Session) shutdown(ctx context.Context) {
	logger := logging.FromContext(ctx).Named("room.shutdown")
	r.sched.Cancel()
	close(r.closed)

	if !r.Phase().Terminal() {
		if err := r.Config.WarnFn(r); err != nil {
			logger.Errorf("warn function: %v", err)
		}
		logger.Infof("quiz room suspended, id: %s", r.Config.RoomID)
		return
	}

	logger.Infof("quiz room closed, id: %s", r.Config.RoomID)
}

// do runs fn on the room's single-writer queue and waits for its result.
func (r *Session) do(fn func() error) error {
	errCh := make(chan error, 1)

	select {
	case r.reqCh <- func() { errCh <- fn() }:
	case <-r.closed:
		return ErrRoomTerminated
	}

	select {
	case err := <-errCh:
		return err
	case <-r.closed:
		return ErrRoomTerminated
	}
}

// enqueue submits a request without waiting. Timer fires come through here.
func (r *Session) enqueue(fn func()) {
	select {
	case r.reqCh <- fn:
	case <-r.closed:
	}
}

func (r *Session) Phase() Phase {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return r.phase
}

// ---- membership ----

// AddPlayer registers a new player in the waiting phase, or marks an
// existing player connected on reconnect. Unknown players cannot join a
// running quiz.
func (r *Session) AddPlayer(id, name string) (*Player, error) {
	var player *Player
	err := r.do(func() error {
		r.mtx.Lock()
		defer r.mtx.Unlock()

		if p, ok := r.findPlayer(id); ok {
			p.Connected = true
			if name != "" {
				p.Name = name
			}
			player = p
			return nil
		}

		if r.phase != PhaseWaiting {
			return ErrUnknownPlayer
		}

		p := NewPlayer(id, name, false)
		p.Connected = true
		r.grantExtras(p)
		r.players = append(r.players, p)
		player = p
		return nil
	})
	return player, err
}

func (r *Session) MarkDisconnected(id string) {
	_ = r.do(func() error {
		r.mtx.Lock()
		defer r.mtx.Unlock()
		if p, ok := r.findPlayer(id); ok {
			p.Connected = false
		}
		delete(r.subs, id)
		return nil
	})
}

// Subscribe attaches the player's event sink. A displaced subscriber is
// told to stop issuing mutating requests before it is dropped.
func (r *Session) Subscribe(id string, sub Subscriber) {
	_ = r.do(func() error {
		r.mtx.Lock()
		defer r.mtx.Unlock()
		if old, ok := r.subs[id]; ok && old != sub {
			old.Notify(event.Envelope{Kind: event.KindSessionReplaced})
		}
		r.subs[id] = sub
		return nil
	})
}

// grantExtras hands a player every extra any round of this room allows.
func (r *Session) grantExtras(p *Player) {
	for i := range r.Config.Rounds {
		p.Grant(r.Config.Rounds[i].ExtrasAllowed...)
	}
}

func (r *Session) findPlayer(id string) (*Player, bool) {
	for _, p := range r.players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// ---- public operations ----

// AdvancePhase is the host control for driving the quiz forward; the same
// transitions fire from the scheduler when timers elapse.
func (r *Session) AdvancePhase(playerID string) error {
	return r.do(func() error {
		r.mtx.Lock()
		defer r.mtx.Unlock()

		p, ok := r.findPlayer(playerID)
		if !ok {
			return ErrUnknownPlayer
		}
		if !p.Host {
			return ErrNotHost
		}

		switch r.phase {
		case PhaseWaiting:
			return r.launch()
		case PhaseAsking:
			r.endQuestion()
		case PhaseReviewing:
			r.toLeaderboard()
		case PhaseLeaderboard:
			r.advanceFromLeaderboard()
		case PhaseTiebreaker:
			r.advanceTiebreak()
		default:
			return ErrBadPhase
		}
		return nil
	})
}

func (r *Session) SubmitAnswer(playerID, questionID string, value *string, autoTimeout bool) error {
	return r.do(func() error {
		r.mtx.Lock()
		defer r.mtx.Unlock()

		if r.phase != PhaseAsking {
			return ErrBadPhase
		}

		p, ok := r.findPlayer(playerID)
		if !ok {
			return ErrUnknownPlayer
		}

		q, def, err := r.currentQuestion()
		if err != nil {
			return err
		}
		if q.ID != questionID {
			return ErrUnknownQuestion
		}

		if r.freezes.IsFrozen(p.ID, r.questionSeq) {
			return ErrPlayerFrozen
		}

		if err := r.applyAnswer(p, q, def, value, autoTimeout); err != nil {
			return err
		}

		r.maybeEndQuestion()
		return nil
	})
}

func (r *Session) UseExtra(playerID string, extra ExtraID, targetID string) error {
	return r.do(func() error {
		r.mtx.Lock()
		defer r.mtx.Unlock()

		if r.phase.Terminal() || r.phase == PhaseWaiting {
			return ErrBadPhase
		}

		p, ok := r.findPlayer(playerID)
		if !ok {
			return ErrUnknownPlayer
		}

		var target *Player
		if targetID != "" {
			target, _ = r.findPlayer(targetID)
		}

		def := &r.Config.Rounds[r.roundIdx]

		restoreAmount := 0
		if extra == ExtraRestorePoints {
			restoreAmount = r.Config.RestorePerUse
			if p.PenaltyPoints-p.PointsRestored < restoreAmount {
				restoreAmount = p.PenaltyPoints - p.PointsRestored
			}
			if restoreAmount <= 0 {
				return reject(RejectNotApplicable)
			}
		}

		usage, err := r.extras.Use(p, extra, target, def, restoreAmount, time.Now())
		if err != nil {
			return err
		}

		effect := r.applyExtraEffect(p, target, extra, restoreAmount)

		r.broadcast(event.Envelope{Kind: event.KindExtraUsed, Payload: event.ExtraUsed{
			PlayerID: p.ID,
			ExtraID:  string(extra),
			TargetID: usage.TargetID,
			Effect:   effect,
		}})
		return nil
	})
}

func (r *Session) applyExtraEffect(p, target *Player, extra ExtraID, restoreAmount int) string {
	switch extra {
	case ExtraBuyHint:
		if q, _, err := r.currentQuestion(); err == nil && q.Clue != "" {
			r.sendTo(p.ID, event.Envelope{Kind: event.KindClueRevealed, Payload: event.ClueRevealed{
				QuestionID: q.ID,
				Clue:       q.Clue,
			}})
		}
		return "hint revealed"

	case ExtraFreezeOutTeam:
		w := r.freezes.Freeze(target.ID, p.ID, r.questionSeq, time.Now())
		r.broadcast(event.Envelope{Kind: event.KindFreezeNotice, Payload: event.FreezeNotice{
			TargetID:         target.ID,
			FrozenBy:         p.ID,
			ForQuestionIndex: w.QuestionIndex,
		}})
		return fmt.Sprintf("%s frozen for this question", target.Name)

	case ExtraRobPoints:
		amount := r.Config.RobAmount
		if target.Score < amount {
			amount = target.Score
		}
		target.Score -= amount
		p.Score += amount
		return fmt.Sprintf("robbed %d points from %s", amount, target.Name)

	case ExtraRestorePoints:
		p.Score += restoreAmount
		p.PointsRestored += restoreAmount
		return fmt.Sprintf("restored %d points", restoreAmount)
	}
	return ""
}

func (r *Session) SubmitTiebreak(playerID string, value float64) error {
	return r.do(func() error {
		r.mtx.Lock()
		defer r.mtx.Unlock()

		if r.phase != PhaseTiebreaker || r.tiebreak == nil || r.tiebreak.Stage != TiebreakStageQuestion {
			return ErrBadPhase
		}

		if err := r.tiebreak.Submit(playerID, value); err != nil {
			return err
		}

		if r.tiebreak.AllSubmitted() {
			r.resolveTiebreak()
		}
		return nil
	})
}

// DeclareWinners lets the host settle the quiz explicitly, abandoning an
// active tiebreak.
func (r *Session) DeclareWinners(playerID string, winnerIDs []string) error {
	return r.do(func() error {
		r.mtx.Lock()
		defer r.mtx.Unlock()

		p, ok := r.findPlayer(playerID)
		if !ok {
			return ErrUnknownPlayer
		}
		if !p.Host {
			return ErrNotHost
		}

		if r.tiebreak != nil && !r.tiebreak.Resolved() {
			r.tiebreak.Abandon(winnerIDs)
		}

		r.complete(winnerIDs)
		return nil
	})
}

func (r *Session) CancelQuiz(playerID, message string) error {
	return r.do(func() error {
		r.mtx.Lock()
		defer r.mtx.Unlock()

		p, ok := r.findPlayer(playerID)
		if !ok {
			return ErrUnknownPlayer
		}
		if !p.Host {
			return ErrNotHost
		}

		r.terminate(message)
		return nil
	})
}

// ---- transitions (only run on the loop goroutine, under write lock) ----

func (r *Session) launch() error {
	if len(r.Config.Rounds) == 0 || len(r.Config.Rounds[0].Questions) == 0 {
		r.terminate("room has no rounds configured")
		return ErrMissingRound
	}

	r.phase = PhaseLaunched
	r.remainingSec = int(launchCountdown / time.Second)
	r.broadcast(event.Envelope{Kind: event.KindCountdown, Payload: event.Countdown{
		RemainingSec: r.remainingSec,
	}})

	r.sched.Arm(launchCountdown, nil, func() {
		r.mtx.Lock()
		defer r.mtx.Unlock()
		r.startQuestion()
	})
	return nil
}

func (r *Session) startQuestion() {
	def := &r.Config.Rounds[r.roundIdx]
	if r.roundPos >= len(def.Questions) {
		r.terminate("round definition out of questions")
		return
	}

	q := &def.Questions[r.roundPos]
	q.StartedAt = time.Now()
	r.questionSeq++
	r.phase = PhaseAsking
	r.remainingSec = q.TimeLimitSec

	r.broadcast(event.Envelope{Kind: event.KindQuestion, Payload: event.Question{
		RoomID:        r.Config.RoomID,
		QuestionID:    q.ID,
		QuestionIndex: r.questionSeq,
		RoundIndex:    r.roundIdx,
		Prompt:        q.Prompt,
		Difficulty:    q.Difficulty,
		TimeLimitSec:  q.TimeLimitSec,
	}})

	questionID := q.ID
	r.sched.Arm(time.Duration(q.TimeLimitSec)*time.Second,
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
}

func (r *Session) broadcastCountdown(questionID string, remaining int) {
	r.broadcast(event.Envelope{Kind: event.KindCountdown, Payload: event.Countdown{
		QuestionID:   questionID,
		RemainingSec: remaining,
	}})
}

// expireQuestion auto-submits a null answer for everyone without a record,
// through the same scoring path as a real submission.
func (r *Session) expireQuestion() {
	if r.phase != PhaseAsking {
		return
	}

	q, def, err := r.currentQuestion()
	if err != nil {
		r.terminate(err.Error())
		return
	}

	for _, p := range r.players {
		if _, ok := r.answers.Get(p.ID, q.ID); ok {
			continue
		}
		_ = r.applyAnswer(p, q, def, nil, true)
	}

	r.endQuestion()
}

func (r *Session) applyAnswer(p *Player, q *Question, def *RoundDefinition, value *string, autoTimeout bool) error {
	rec, err := r.answers.Record(p.ID, q, def, value, autoTimeout, time.Now())
	if err != nil {
		return err
	}

	p.Score += rec.Points
	if rec.Points < 0 {
		p.PenaltyPoints += -rec.Points
	}
	return nil
}

// maybeEndQuestion closes the question early once every connected,
// non-frozen player has a record.
func (r *Session) maybeEndQuestion() {
	q, _, err := r.currentQuestion()
	if err != nil {
		return
	}

	var waiting []string
	for _, p := range r.players {
		if !p.Connected || r.freezes.IsFrozen(p.ID, r.questionSeq) {
			continue
		}
		waiting = append(waiting, p.ID)
	}

	if len(waiting) > 0 && r.answers.Answered(waiting, q.ID) {
		r.endQuestion()
	}
}

func (r *Session) endQuestion() {
	if r.phase != PhaseAsking {
		return
	}

	q, def, err := r.currentQuestion()
	if err != nil {
		r.terminate(err.Error())
		return
	}

	r.phase = PhaseReviewing
	r.broadcast(event.Envelope{Kind: event.KindReviewQuestion, Payload: event.ReviewQuestion{
		RoomID:        r.Config.RoomID,
		QuestionID:    q.ID,
		QuestionIndex: r.questionSeq,
		Prompt:        q.Prompt,
		CorrectAnswer: q.Answer,
	}})

	reviewSec := def.ReviewSec
	if reviewSec <= 0 {
		reviewSec = defaultReviewSec
	}
	r.remainingSec = reviewSec

	r.sched.Arm(time.Duration(reviewSec)*time.Second, nil, func() {
		r.mtx.Lock()
		defer r.mtx.Unlock()
		r.toLeaderboard()
	})
}

func (r *Session) toLeaderboard() {
	if r.phase != PhaseReviewing {
		return
	}

	r.phase = PhaseLeaderboard
	final := r.lastQuestionOfQuiz()

	if !final {
		def := &r.Config.Rounds[r.roundIdx]
		r.broadcast(event.Envelope{Kind: event.KindRoundLeaderboard, Payload: event.Leaderboard{
			RoomID:  r.Config.RoomID,
			Entries: r.leaderboardEntries(),
		}})

		lbSec := def.LeaderboardSec
		if lbSec <= 0 {
			lbSec = defaultLeaderboardSec
		}
		r.remainingSec = lbSec

		r.sched.Arm(time.Duration(lbSec)*time.Second, nil, func() {
			r.mtx.Lock()
			defer r.mtx.Unlock()
			r.advanceFromLeaderboard()
		})
		return
	}

	tied := r.tiedAtPrizeBoundary()
	if len(tied) >= 2 {
		r.startTiebreak(tied)
		return
	}

	r.complete(r.topWinners(nil))
}

func (r *Session) advanceFromLeaderboard() {
	if r.phase != PhaseLeaderboard {
		return
	}

	def := &r.Config.Rounds[r.roundIdx]
	if r.roundPos+1 < len(def.Questions) {
		r.roundPos++
	} else if r.roundIdx+1 < len(r.Config.Rounds) {
		r.roundIdx++
		r.roundPos = 0
	} else {
		// final leaderboard already handled in toLeaderboard
		return
	}

	r.startQuestion()
}

func (r *Session) lastQuestionOfQuiz() bool {
	return r.roundIdx == len(r.Config.Rounds)-1 &&
		r.roundPos == len(r.Config.Rounds[r.roundIdx].Questions)-1
}

// ---- tiebreak ----

func (r *Session) startTiebreak(tied []string) {
	r.phase = PhaseTiebreaker
	r.tiebreak = NewTiebreakerSession(tied, r.Config.TiebreakBank)

	r.broadcast(event.Envelope{Kind: event.KindTiebreakStart, Payload: event.TiebreakStart{
		RoomID:  r.Config.RoomID,
		Players: tied,
		Round:   1,
	}})

	r.sched.Arm(tiebreakPauseSec*time.Second, nil, func() {
		r.mtx.Lock()
		defer r.mtx.Unlock()
		r.tiebreakQuestion()
	})
}

func (r *Session) tiebreakQuestion() {
	if r.phase != PhaseTiebreaker || r.tiebreak == nil {
		return
	}

	q, err := r.tiebreak.NextQuestion()
	if err != nil {
		// bank exhausted: the remaining tied players share the place
		r.tiebreak.Abandon(r.tiebreak.Players)
		r.complete(r.topWinners(r.tiebreak.Players))
		return
	}

	limit := q.TimeLimitSec
	if limit <= 0 {
		limit = defaultTiebreakSec
	}
	r.remainingSec = limit

	r.broadcast(event.Envelope{Kind: event.KindTiebreakQuestion, Payload: event.TiebreakQuestion{
		QuestionID:   q.ID,
		Prompt:       q.Prompt,
		Players:      r.tiebreak.Players,
		TimeLimitSec: limit,
	}})

	r.sched.Arm(time.Duration(limit)*time.Second, nil, func() {
		r.mtx.Lock()
		defer r.mtx.Unlock()
		r.resolveTiebreak()
	})
}

func (r *Session) resolveTiebreak() {
	if r.phase != PhaseTiebreaker || r.tiebreak == nil || r.tiebreak.Stage != TiebreakStageQuestion {
		return
	}

	guesses := make(map[string]float64, len(r.tiebreak.Answers))
	for id, v := range r.tiebreak.Answers {
		guesses[id] = v
	}

	r.tiebreak.Resolve()

	r.broadcast(event.Envelope{Kind: event.KindTiebreakReview, Payload: event.TiebreakReview{
		QuestionID: r.tiebreak.Question.ID,
		Answer:     r.tiebreak.Question.Answer,
		Guesses:    guesses,
	}})

	r.sched.Arm(tiebreakPauseSec*time.Second, nil, func() {
		r.mtx.Lock()
		defer r.mtx.Unlock()
		r.advanceTiebreak()
	})
}

func (r *Session) advanceTiebreak() {
	if r.phase != PhaseTiebreaker || r.tiebreak == nil {
		return
	}

	switch r.tiebreak.Stage {
	case TiebreakStageStart:
		r.tiebreakQuestion()
	case TiebreakStageQuestion:
		r.resolveTiebreak()
	case TiebreakStageReview:
		r.broadcast(event.Envelope{Kind: event.KindTiebreakTieAgain, Payload: event.TiebreakStart{
			RoomID:  r.Config.RoomID,
			Players: r.tiebreak.Players,
			Round:   r.tiebreak.Round + 1,
		}})
		r.tiebreakQuestion()
	case TiebreakStageResult:
		r.broadcast(event.Envelope{Kind: event.KindTiebreakResult, Payload: event.TiebreakResult{
			Winners: r.tiebreak.Winners,
		}})
		r.complete(r.topWinners(r.tiebreak.Winners))
	}
}

// ---- completion ----

// topWinners returns the prize winners: players strictly above the cut plus
// the tiebreak (or abandoned) winners of the contested place.
func (r *Session) topWinners(tiebreakWinners []string) []string {
	sorted := r.sortedPlayers()

	var winners []string
	boundary := r.Config.PrizePlaces
	if boundary > len(sorted) {
		boundary = len(sorted)
	}

	tied := r.tiedAtPrizeBoundary()
	tiedSet := map[string]bool{}
	for _, id := range tied {
		tiedSet[id] = true
	}

	for i := 0; i < boundary; i++ {
		if !tiedSet[sorted[i].ID] {
			winners = append(winners, sorted[i].ID)
		}
	}
	winners = append(winners, tiebreakWinners...)

	if len(winners) == 0 {
		for i := 0; i < boundary; i++ {
			winners = append(winners, sorted[i].ID)
		}
	}

	return winners
}

func (r *Session) complete(winners []string) {
	if r.phase.Terminal() {
		return
	}

	r.phase = PhaseComplete
	r.winners = winners
	r.remainingSec = 0
	r.sched.Cancel()

	r.broadcast(event.Envelope{Kind: event.KindLeaderboard, Payload: event.Leaderboard{
		RoomID:  r.Config.RoomID,
		Final:   true,
		Entries: r.leaderboardEntries(),
	}})

	r.finish()
}

// terminate is the fatal path: host cancellation or an unrecoverable
// invariant violation.
func (r *Session) terminate(message string) {
	if r.phase.Terminal() {
		return
	}

	r.phase = PhaseCancelled
	r.cancelMsg = message
	r.remainingSec = 0
	r.sched.Cancel()

	r.broadcast(event.Envelope{Kind: event.KindQuizCancelled, Payload: event.Cancelled{
		Message: message,
	}})

	r.finish()
}

// finish hands the terminal room back to its owner. DoneFn runs off the
// loop goroutine because it reads session state under RLock.
func (r *Session) finish() {
	go func() {
		if err := r.Config.DoneFn(r); err != nil {
			logging.DefaultLogger().Errorf("done function: %v", err)
		}
		r.cancel()
	}()
}

// ---- leaderboard and ties ----

func (r *Session) sortedPlayers() []*Player {
	sorted := make([]*Player, len(r.players))
	copy(sorted, r.players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	return sorted
}

func (r *Session) leaderboardEntries() []event.LeaderboardEntry {
	sorted := r.sortedPlayers()
	entries := make([]event.LeaderboardEntry, len(sorted))
	for i, p := range sorted {
		entries[i] = event.LeaderboardEntry{
			PlayerID: p.ID,
			Name:     p.Name,
			Display:  p.Display(),
			Score:    p.Score,
			Rank:     i + 1,
		}
	}
	return entries
}

// tiedAtPrizeBoundary returns the players exactly tied across the prize
// cut, or nil when the cut falls cleanly.
func (r *Session) tiedAtPrizeBoundary() []string {
	sorted := r.sortedPlayers()
	cut := r.Config.PrizePlaces
	if cut >= len(sorted) {
		return nil
	}

	boundaryScore := sorted[cut-1].Score
	if sorted[cut].Score != boundaryScore {
		return nil
	}

	var tied []string
	for _, p := range sorted {
		if p.Score == boundaryScore {
			tied = append(tied, p.ID)
		}
	}
	return tied
}

// ---- helpers ----

func (r *Session) currentQuestion() (*Question, *RoundDefinition, error) {
	if r.roundIdx >= len(r.Config.Rounds) {
		return nil, nil, ErrMissingRound
	}
	def := &r.Config.Rounds[r.roundIdx]
	if r.roundPos >= len(def.Questions) {
		return nil, nil, ErrMissingRound
	}
	return &def.Questions[r.roundPos], def, nil
}

func (r *Session) broadcast(env event.Envelope) {
	for _, sub := range r.subs {
		sub.Notify(env)
	}
}

func (r *Session) sendTo(playerID string, env event.Envelope) {
	if sub, ok := r.subs[playerID]; ok {
		sub.Notify(env)
	}
}
