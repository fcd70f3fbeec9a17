package quiz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	stateDB "github.com/quizparty-games/quizparty/internal/database/roomstate/database"
	stateModel "github.com/quizparty-games/quizparty/internal/database/roomstate/model"
	resultsDB "github.com/quizparty-games/quizparty/internal/database/results/database"
	resultsModel "github.com/quizparty-games/quizparty/internal/database/results/model"
	"github.com/quizparty-games/quizparty/internal/logging"
	"github.com/quizparty-games/quizparty/internal/quiz/room"
)

var (
	ErrRoomNotFound = fmt.Errorf("room not found")
	ErrStaleSession = fmt.Errorf("stale session token")
)

func NewManager(config *Config, stateDb *stateDB.DB, resultsDb *resultsDB.DB) *Manager {
	return &Manager{
		config:    config,
		rooms:     map[string]*room.Session{},
		registry:  NewSessionRegistry(),
		stateDb:   stateDb,
		resultsDb: resultsDb,
		ready:     make(chan struct{}),
	}
}

// Manager owns the set of live rooms. It gates every mutating request on
// the caller's session token and routes it to the room's single-writer
// queue.
type Manager struct {
	mtx sync.RWMutex

	config   *Config
	rooms    map[string]*room.Session
	registry *SessionRegistry

	stateDb   *stateDB.DB
	resultsDb *resultsDB.DB

	cancel     func()
	ctxSess    context.Context
	cancelSess func()

	// closed once Run has restored suspended rooms and accepts requests
	ready chan struct{}
}

// Ready unblocks when the manager is serving.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

func (m *Manager) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.ctxSess, m.cancelSess = context.WithCancel(logging.WithLogger(
		context.Background(), logging.FromContext(ctx),
	))

	if err := m.deserialize(); err != nil {
		return fmt.Errorf("deserialize: %w", err)
	}

	close(m.ready)

	<-ctx.Done()
	m.shutdown()
	return nil
}

func (m *Manager) Stop() {
	m.cancel()
}

// shutdown cancels every room and waits for each to hand itself back
// through done/warn callbacks.
func (m *Manager) shutdown() {
	m.cancelSess()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	deadline := time.After(10 * time.Second)
	for {
		m.mtx.RLock()
		n := len(m.rooms)
		m.mtx.RUnlock()
		if n == 0 {
			return
		}

		select {
		case <-ticker.C:
		case <-deadline:
			return
		}
	}
}

// ---- room lifecycle ----

type RoomOptions struct {
	Rounds       []room.RoundDefinition
	TiebreakBank []room.TiebreakQuestion
	PrizePlaces  int
}

func (m *Manager) CreateRoom(hostID, hostName string, opts RoomOptions) (string, error) {
	if hostID == "" || len(opts.Rounds) == 0 {
		return "", fmt.Errorf("invalid room options")
	}

	prizePlaces := opts.PrizePlaces
	if prizePlaces <= 0 {
		prizePlaces = m.config.PrizePlaces
	}

	roomID := uuid.NewString()
	session := room.NewSession(room.Config{
		RoomID:           roomID,
		HostID:           hostID,
		HostName:         hostName,
		Rounds:           opts.Rounds,
		TiebreakBank:     opts.TiebreakBank,
		PrizePlaces:      prizePlaces,
		RestorePointsCap: m.config.RestorePointsCap,
		RestorePerUse:    m.config.RestorePerUse,
		RobAmount:        m.config.RobAmount,
		Timeout:          m.config.RoomTimeout,
		DoneFn:           m.roomDoneFn,
		WarnFn:           m.roomWarnFn,
	})
	session.Run(m.ctxSess)

	m.mtx.Lock()
	m.rooms[roomID] = session
	m.mtx.Unlock()

	return roomID, nil
}

// JoinAndRecover registers (or reconnects) the player, issues a fresh
// session token invalidating any prior one, and returns a full snapshot so
// the client can rebuild state without replaying history.
func (m *Manager) JoinAndRecover(roomID, playerID, name string, sub room.Subscriber) (string, *room.Snapshot, error) {
	session, ok := m.room(roomID)
	if !ok {
		return "", nil, ErrRoomNotFound
	}

	if _, err := session.AddPlayer(playerID, name); err != nil {
		if errors.Is(err, room.ErrRoomTerminated) {
			return "", nil, ErrRoomNotFound
		}
		return "", nil, err
	}

	token, _ := m.registry.Issue(roomID, playerID)
	session.Subscribe(playerID, sub)

	snap, err := session.Snapshot(playerID)
	if err != nil {
		return "", nil, err
	}

	return token, snap, nil
}

func (m *Manager) Disconnect(roomID, playerID, token string) {
	if !m.registry.Release(roomID, playerID, token) {
		return
	}
	if session, ok := m.room(roomID); ok {
		session.MarkDisconnected(playerID)
	}
}

// ---- gated operations ----

func (m *Manager) SubmitAnswer(roomID, playerID, token, questionID string, value *string, autoTimeout bool) error {
	session, err := m.gated(roomID, playerID, token)
	if err != nil {
		return err
	}
	return mapTerminated(session.SubmitAnswer(playerID, questionID, value, autoTimeout))
}

func (m *Manager) UseExtra(roomID, playerID, token string, extra room.ExtraID, targetID string) error {
	session, err := m.gated(roomID, playerID, token)
	if err != nil {
		return err
	}
	return mapTerminated(session.UseExtra(playerID, extra, targetID))
}

func (m *Manager) SubmitTiebreak(roomID, playerID, token string, value float64) error {
	session, err := m.gated(roomID, playerID, token)
	if err != nil {
		return err
	}
	return mapTerminated(session.SubmitTiebreak(playerID, value))
}

func (m *Manager) AdvancePhase(roomID, playerID, token string) error {
	session, err := m.gated(roomID, playerID, token)
	if err != nil {
		return err
	}
	return mapTerminated(session.AdvancePhase(playerID))
}

func (m *Manager) DeclareWinners(roomID, playerID, token string, winnerIDs []string) error {
	session, err := m.gated(roomID, playerID, token)
	if err != nil {
		return err
	}
	return mapTerminated(session.DeclareWinners(playerID, winnerIDs))
}

func (m *Manager) CancelQuiz(roomID, playerID, token, message string) error {
	session, err := m.gated(roomID, playerID, token)
	if err != nil {
		return err
	}
	return mapTerminated(session.CancelQuiz(playerID, message))
}

// Snapshot is the read path: no token needed, never blocks on the room's
// mutation queue.
func (m *Manager) Snapshot(roomID, playerID string) (*room.Snapshot, error) {
	session, ok := m.room(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	return session.Snapshot(playerID)
}

func (m *Manager) Results(roomID string) ([]resultsModel.Result, error) {
	return m.resultsDb.FetchByRoomID(roomID)
}

func (m *Manager) gated(roomID, playerID, token string) (*room.Session, error) {
	session, ok := m.room(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	if !m.registry.Validate(roomID, playerID, token) {
		return nil, ErrStaleSession
	}
	return session, nil
}

func (m *Manager) room(roomID string) (*room.Session, bool) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	session, ok := m.rooms[roomID]
	return session, ok
}

func mapTerminated(err error) error {
	if errors.Is(err, room.ErrRoomTerminated) {
		return ErrRoomNotFound
	}
	return err
}

// ---- done/warn callbacks ----

// roomDoneFn archives a terminal room and forgets it.
func (m *Manager) roomDoneFn(session *room.Session) error {
	memento := session.Export()

	if room.Phase(memento.Phase) == room.PhaseComplete {
		if err := m.appendResults(memento); err != nil {
			return fmt.Errorf("append results: %w", err)
		}
	}

	m.forget(session.Config.RoomID)
	return nil
}

// roomWarnFn suspends an unfinished room to the state database so a
// restart can pick it back up.
func (m *Manager) roomWarnFn(session *room.Session) error {
	memento := session.Export()

	if err := m.stateDb.Add(stateModel.State{
		Memento: memento,
		SavedAt: time.Now(),
	}); err != nil {
		return fmt.Errorf("state db add: %w", err)
	}

	m.forget(session.Config.RoomID)
	return nil
}

func (m *Manager) forget(roomID string) {
	m.registry.DropRoom(roomID)
	m.mtx.Lock()
	delete(m.rooms, roomID)
	m.mtx.Unlock()
}

func (m *Manager) appendResults(memento room.Memento) error {
	winners := map[string]bool{}
	for _, id := range memento.Winners {
		winners[id] = true
	}

	completedAt := time.Now()
	results := make([]resultsModel.Result, 0, len(memento.Players))
	for _, p := range memento.Players {
		results = append(results, resultsModel.Result{
			RoomID:         memento.RoomID,
			PlayerID:       p.ID,
			Name:           p.Name,
			Score:          p.Score,
			PenaltyPoints:  p.PenaltyPoints,
			PointsRestored: p.PointsRestored,
			Winner:         winners[p.ID],
			CompletedAt:    completedAt,
		})
	}

	if err := m.resultsDb.Add(results); err != nil {
		return fmt.Errorf("results db add: %w", err)
	}

	return nil
}

// ---- restart hand-off ----

func (m *Manager) deserialize() error {
	states, err := m.stateDb.FetchAll()
	if err != nil && !errors.Is(err, stateDB.ErrEntryNotFound) {
		return fmt.Errorf("state db fetch all: %w", err)
	}

	m.mtx.Lock()
	for _, state := range states {
		session := room.NewFromMemento(state.Memento, m.roomDoneFn, m.roomWarnFn)
		session.Run(m.ctxSess)
		session.Resume()
		m.rooms[session.Config.RoomID] = session
	}
	m.mtx.Unlock()

	if len(states) > 0 {
		if err := m.stateDb.Clean(); err != nil {
			if !errors.Is(err, stateDB.ErrBucketNotFound) {
				return fmt.Errorf("state db clean: %w", err)
			}
		}
	}

	return nil
}
