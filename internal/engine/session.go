// Package engine owns the play-session state machine: NotStarted -> Active ->
// Completed, with three mutually exclusive completion triggers (target
// reached, click budget exhausted, timeout). All transitions for one session
// run under its mutex, so clicks and timer ticks are serialized even when the
// HTTP layer delivers them concurrently.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"hazardhunt/internal/editor"
	"hazardhunt/internal/geometry"
	"hazardhunt/internal/models"
	"hazardhunt/internal/scoring"
)

// Session states.
const (
	StateNotStarted = "not_started"
	StateActive     = "active"
	StateCompleted  = "completed"
)

var (
	// ErrSessionNotActive is returned when a click or tick reaches a session
	// that is not in the Active state. This is a caller bug, surfaced loudly
	// rather than swallowed.
	ErrSessionNotActive = errors.New("engine: session is not active")
	// ErrGameNotPlayable is returned by Start for games that cannot be played.
	ErrGameNotPlayable = errors.New("engine: game is not playable")
)

// Session is one trainee's active play-through. The embedded GameSession is
// the serializable record; the rest is runtime state.
type Session struct {
	mu    sync.Mutex
	clock Clock
	game  models.Game
	state string

	data          models.GameSession
	timeRemaining int

	result *models.GameResult
	stop   chan struct{}
}

// Start validates the game and creates an Active session. The game must
// carry at least one image (there is nothing to click on otherwise) and must
// satisfy its own invariants.
func Start(game models.Game, playerName string, clock Clock) (*Session, error) {
	if playerName == "" {
		return nil, fmt.Errorf("%w: player name is required", ErrGameNotPlayable)
	}
	if len(game.Images) == 0 {
		return nil, fmt.Errorf("%w: game has no images", ErrGameNotPlayable)
	}
	game.ApplyDefaults()
	if err := game.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGameNotPlayable, err)
	}
	if clock == nil {
		clock = RealClock()
	}

	now := clock.Now()
	return &Session{
		clock: clock,
		game:  game,
		state: StateActive,
		data: models.GameSession{
			ID:           models.NewID(),
			GameID:       game.ID,
			PlayerName:   playerName,
			StartTime:    now,
			FoundZoneIDs: []string{},
		},
		timeRemaining: game.TimeLimitSeconds,
		stop:          make(chan struct{}),
	}, nil
}

// ClickOutcome tells the caller what a recorded click did.
type ClickOutcome struct {
	Click      models.Click
	Recorded   bool
	HitZoneID  string
	NewlyFound bool
	Completed  bool
	EndReason  string
}

// RecordClick processes one pointer press already mapped to natural
// coordinates. Only legal while Active.
//
// If the click budget is somehow already exhausted, the call completes the
// session instead of recording; otherwise the click is appended, first-time
// zone hits are credited, and target/budget completion is evaluated after
// recording.
func (s *Session) RecordClick(p geometry.Point) (ClickOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return ClickOutcome{}, ErrSessionNotActive
	}

	if len(s.data.Clicks) >= s.game.MaxClicks {
		s.completeLocked(models.EndReasonClicksExhausted)
		return ClickOutcome{Completed: true, EndReason: s.data.EndReason}, nil
	}

	click := models.Click{
		ID:        models.NewID(),
		SessionID: s.data.ID,
		Ordinal:   len(s.data.Clicks),
		X:         p.X,
		Y:         p.Y,
		Timestamp: s.clock.Now(),
	}
	outcome := ClickOutcome{Recorded: true}

	if hit, ok := editor.FindHit(s.game.RiskZones, p); ok {
		zoneID := hit.ID
		click.HitZoneID = &zoneID
		outcome.HitZoneID = zoneID
		if !s.data.Found(zoneID) {
			s.data.FoundZoneIDs = append(s.data.FoundZoneIDs, zoneID)
			outcome.NewlyFound = true
		}
	}
	s.data.Clicks = append(s.data.Clicks, click)
	outcome.Click = click

	switch {
	case len(s.data.FoundZoneIDs) >= s.game.TargetRiskCount:
		s.completeLocked(models.EndReasonTargetReached)
	case len(s.data.Clicks) >= s.game.MaxClicks:
		s.completeLocked(models.EndReasonClicksExhausted)
	}
	outcome.Completed = s.state == StateCompleted
	outcome.EndReason = s.data.EndReason
	return outcome, nil
}

// Tick consumes one second of the time budget. Reaching zero completes the
// session with the timeout reason. Only legal while Active.
func (s *Session) Tick() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return false, ErrSessionNotActive
	}
	s.timeRemaining--
	if s.timeRemaining <= 0 {
		s.timeRemaining = 0
		s.completeLocked(models.EndReasonTimeout)
		return true, nil
	}
	return false, nil
}

// End completes the session with the given reason. Idempotent: ending an
// already-completed session returns the terminal record unchanged and never
// recomputes the score.
func (s *Session) End(reason string) models.GameSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateCompleted {
		return s.snapshotLocked()
	}
	s.completeLocked(reason)
	return s.snapshotLocked()
}

// completeLocked finalizes the session: stamps end time and time spent,
// scores exactly once, and signals the timer loop to stop. Callers hold the
// mutex.
func (s *Session) completeLocked(reason string) {
	now := s.clock.Now()
	s.data.EndTime = &now
	s.data.TimeSpentSeconds = s.game.TimeLimitSeconds - s.timeRemaining
	s.data.EndReason = reason
	s.data.Completed = true

	breakdown := scoring.Evaluate(s.data, s.game)
	s.data.Score = breakdown.Score

	result := models.BuildResult(s.snapshotLocked(), s.game, breakdown.Accuracy, breakdown.Efficiency)
	s.result = &result

	s.state = StateCompleted
	close(s.stop)
}

// runTimer drives Tick once per clock second until the session completes or
// is torn down. Runs on its own goroutine; the stop channel closed by
// completion cancels the ticker so no tick fires against a terminal session.
func (s *Session) runTimer() {
	ticker := s.clock.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C():
			done, err := s.Tick()
			if err != nil || done {
				return
			}
		}
	}
}

// State returns the machine state.
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// TimeRemaining returns the seconds left on the clock.
func (s *Session) TimeRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeRemaining
}

// Game returns the immutable game definition being played.
func (s *Session) Game() models.Game { return s.game }

// Snapshot returns a copy of the serializable session record.
func (s *Session) Snapshot() models.GameSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() models.GameSession {
	out := s.data
	out.Clicks = make([]models.Click, len(s.data.Clicks))
	copy(out.Clicks, s.data.Clicks)
	out.FoundZoneIDs = append(out.FoundZoneIDs[:0:0], s.data.FoundZoneIDs...)
	return out
}

// Result returns the derived GameResult once completed.
func (s *Session) Result() (models.GameResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return models.GameResult{}, false
	}
	return *s.result, true
}
