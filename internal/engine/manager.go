package engine

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"hazardhunt/internal/models"
)

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = errors.New("engine: session not found")

// CompletionFunc receives the terminal session record and its result, e.g.
// to persist them. Called exactly once per session, outside the session lock.
type CompletionFunc func(models.GameSession, models.GameResult)

// Manager tracks active sessions and runs their countdown timers. One
// session belongs to one trainee; the manager only routes by id.
type Manager struct {
	mu         sync.Mutex
	log        *zap.Logger
	clock      Clock
	sessions   map[string]*Session
	onComplete CompletionFunc
}

// NewManager creates a session manager. A nil clock means wall clock.
func NewManager(log *zap.Logger, clock Clock, onComplete CompletionFunc) *Manager {
	if clock == nil {
		clock = RealClock()
	}
	return &Manager{
		log:        log,
		clock:      clock,
		sessions:   make(map[string]*Session),
		onComplete: onComplete,
	}
}

// Start creates an Active session for the game and begins its timer.
func (m *Manager) Start(game models.Game, playerName string) (*Session, error) {
	session, err := Start(game, playerName, m.clock)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[session.data.ID] = session
	m.mu.Unlock()

	go session.runTimer()
	go m.watchCompletion(session)

	m.log.Info("Session started",
		zap.String("session_id", session.data.ID),
		zap.String("game_id", game.ID),
		zap.String("player", playerName),
	)
	return session, nil
}

// Get returns an active or just-completed session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// watchCompletion waits for the session's terminal transition, hands the
// frozen record to the completion hook, and drops the session from the
// active map.
func (m *Manager) watchCompletion(s *Session) {
	<-s.stop

	record := s.Snapshot()
	result, _ := s.Result()
	if m.onComplete != nil {
		m.onComplete(record, result)
	}

	m.mu.Lock()
	delete(m.sessions, record.ID)
	m.mu.Unlock()

	m.log.Info("Session completed",
		zap.String("session_id", record.ID),
		zap.String("reason", record.EndReason),
		zap.Int("score", record.Score),
		zap.Int("clicks", len(record.Clicks)),
		zap.Int("found", len(record.FoundZoneIDs)),
	)
}
