package engine

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"hazardhunt/internal/geometry"
	"hazardhunt/internal/models"
)

func testLogger(t *testing.T) *zap.Logger {
	t.Helper()
	return zap.NewNop()
}

// manualClock hands out a fixed, advanceable time and never fires tickers on
// its own; tests drive Tick directly.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *manualClock) NewTicker(time.Duration) Ticker { return manualTicker{} }

type manualTicker struct{}

func (manualTicker) C() <-chan time.Time { return nil }
func (manualTicker) Stop()               {}

func oneCircleGame() models.Game {
	return models.Game{
		ID:    "g1",
		Title: "Factory floor",
		Images: []models.GameImage{
			{ID: "img1", GameID: "g1", URL: "https://example.com/floor.jpg", Width: 800, Height: 600},
		},
		RiskZones: []models.RiskZone{
			{
				ID:      "z1",
				GameID:  "g1",
				Ordinal: 0,
				Shape:   models.Shape{Shape: geometry.Circle{Center: geometry.Point{X: 100, Y: 100}, Radius: 20}},
			},
		},
		TimeLimitSeconds: 60,
		MaxClicks:        1,
		TargetRiskCount:  1,
		Difficulty:       models.DifficultyEasy,
	}
}

func TestStart_RequiresImageAndName(t *testing.T) {
	clock := newManualClock()

	game := oneCircleGame()
	game.Images = nil
	if _, err := Start(game, "alice", clock); !errors.Is(err, ErrGameNotPlayable) {
		t.Errorf("err = %v, want ErrGameNotPlayable for game without images", err)
	}

	if _, err := Start(oneCircleGame(), "", clock); !errors.Is(err, ErrGameNotPlayable) {
		t.Errorf("err = %v, want ErrGameNotPlayable for empty player name", err)
	}

	s, err := Start(oneCircleGame(), "alice", clock)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.State() != StateActive {
		t.Errorf("state %q, want active", s.State())
	}
	if s.TimeRemaining() != 60 {
		t.Errorf("TimeRemaining %d, want 60", s.TimeRemaining())
	}
}

func TestRecordClick_TargetReached(t *testing.T) {
	// Scenario: one circle zone, maxClicks=1, target=1; a dead-center click
	// completes the session immediately with a full-accuracy score.
	clock := newManualClock()
	s, err := Start(oneCircleGame(), "alice", clock)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	clock.Advance(5 * time.Second)
	for i := 0; i < 5; i++ {
		if _, err := s.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}

	outcome, err := s.RecordClick(geometry.Point{X: 100, Y: 100})
	if err != nil {
		t.Fatalf("RecordClick: %v", err)
	}
	if !outcome.Recorded || !outcome.NewlyFound {
		t.Errorf("outcome %+v, want recorded and newly found", outcome)
	}
	if !outcome.Completed || outcome.EndReason != models.EndReasonTargetReached {
		t.Errorf("outcome %+v, want completion via target_reached", outcome)
	}

	record := s.Snapshot()
	if len(record.FoundZoneIDs) != 1 || record.FoundZoneIDs[0] != "z1" {
		t.Errorf("FoundZoneIDs %v, want [z1]", record.FoundZoneIDs)
	}
	if record.TimeSpentSeconds != 5 {
		t.Errorf("TimeSpentSeconds %d, want 5", record.TimeSpentSeconds)
	}
	if record.Score <= 0 {
		t.Errorf("score %d, want > 0", record.Score)
	}
	if record.EndTime == nil {
		t.Error("EndTime should be stamped")
	}

	result, ok := s.Result()
	if !ok {
		t.Fatal("Result should exist after completion")
	}
	if result.Accuracy != 1.0 {
		t.Errorf("accuracy %v, want 1.0", result.Accuracy)
	}
	if len(result.MissedZones) != 0 {
		t.Errorf("missed zones %v, want none", result.MissedZones)
	}
}

func TestRecordClick_BudgetExhaustedOnMiss(t *testing.T) {
	// Scenario: the single allowed click misses; the session completes via
	// click-budget exhaustion with accuracy 0.
	clock := newManualClock()
	s, _ := Start(oneCircleGame(), "alice", clock)

	outcome, err := s.RecordClick(geometry.Point{X: 500, Y: 500})
	if err != nil {
		t.Fatalf("RecordClick: %v", err)
	}
	if !outcome.Recorded {
		t.Error("the final budget click must still be recorded")
	}
	if outcome.HitZoneID != "" || outcome.NewlyFound {
		t.Errorf("outcome %+v, want a miss", outcome)
	}
	if !outcome.Completed || outcome.EndReason != models.EndReasonClicksExhausted {
		t.Errorf("outcome %+v, want completion via clicks_exhausted", outcome)
	}

	record := s.Snapshot()
	if len(record.FoundZoneIDs) != 0 {
		t.Errorf("FoundZoneIDs %v, want empty", record.FoundZoneIDs)
	}
	if len(record.Clicks) != 1 {
		t.Errorf("clicks %d, want 1", len(record.Clicks))
	}
	// Accuracy is zero but the time-efficiency term still contributes.
	if record.Score <= 0 {
		t.Errorf("score %d, want > 0 from efficiency terms", record.Score)
	}
}

func TestTick_Timeout(t *testing.T) {
	// Scenario: 300 ticks on a 300s game with no clicks ends in timeout with
	// the full time budget spent.
	clock := newManualClock()
	game := oneCircleGame()
	game.TimeLimitSeconds = 300
	game.MaxClicks = 17
	s, _ := Start(game, "alice", clock)

	for i := 0; i < 299; i++ {
		done, err := s.Tick()
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if done {
			t.Fatalf("tick %d completed early", i)
		}
	}
	done, err := s.Tick()
	if err != nil {
		t.Fatalf("final tick: %v", err)
	}
	if !done {
		t.Fatal("300th tick should complete the session")
	}

	record := s.Snapshot()
	if record.EndReason != models.EndReasonTimeout {
		t.Errorf("EndReason %q, want timeout", record.EndReason)
	}
	if record.TimeSpentSeconds != 300 {
		t.Errorf("TimeSpentSeconds %d, want 300", record.TimeSpentSeconds)
	}
	if len(record.FoundZoneIDs) != 0 {
		t.Errorf("FoundZoneIDs %v, want empty", record.FoundZoneIDs)
	}
}

func TestRecordClick_AfterCompletionIsLoud(t *testing.T) {
	clock := newManualClock()
	s, _ := Start(oneCircleGame(), "alice", clock)
	s.RecordClick(geometry.Point{X: 100, Y: 100})

	if _, err := s.RecordClick(geometry.Point{X: 100, Y: 100}); !errors.Is(err, ErrSessionNotActive) {
		t.Errorf("click on completed session: err = %v, want ErrSessionNotActive", err)
	}
	if _, err := s.Tick(); !errors.Is(err, ErrSessionNotActive) {
		t.Errorf("tick on completed session: err = %v, want ErrSessionNotActive", err)
	}
}

func TestEnd_Idempotent(t *testing.T) {
	clock := newManualClock()
	s, _ := Start(oneCircleGame(), "alice", clock)

	first := s.End(models.EndReasonAbandoned)
	clock.Advance(10 * time.Second)
	second := s.End(models.EndReasonTimeout)

	if second.Score != first.Score {
		t.Errorf("second End changed score: %d -> %d", first.Score, second.Score)
	}
	if second.EndReason != first.EndReason {
		t.Errorf("second End changed reason: %q -> %q", first.EndReason, second.EndReason)
	}
	if !second.EndTime.Equal(*first.EndTime) {
		t.Error("second End changed EndTime")
	}
}

func TestRecordClick_RepeatHitCountsBudgetOnce(t *testing.T) {
	clock := newManualClock()
	game := oneCircleGame()
	game.MaxClicks = 3
	game.RiskZones = append(game.RiskZones, models.RiskZone{
		ID:      "z2",
		GameID:  "g1",
		Ordinal: 1,
		Shape:   models.Shape{Shape: geometry.Rect{Origin: geometry.Point{X: 300, Y: 300}, Width: 50, Height: 50}},
	})
	game.TargetRiskCount = 2
	s, _ := Start(game, "alice", clock)

	first, _ := s.RecordClick(geometry.Point{X: 100, Y: 100})
	if !first.NewlyFound {
		t.Fatal("first hit should be newly found")
	}
	second, _ := s.RecordClick(geometry.Point{X: 100, Y: 100})
	if second.NewlyFound {
		t.Error("re-clicking a found zone must not re-trigger found")
	}
	if second.HitZoneID != "z1" {
		t.Errorf("re-click HitZoneID %q, want z1", second.HitZoneID)
	}

	record := s.Snapshot()
	if len(record.Clicks) != 2 {
		t.Errorf("clicks %d, want 2 (repeat clicks still consume budget)", len(record.Clicks))
	}
	if len(record.FoundZoneIDs) != 1 {
		t.Errorf("FoundZoneIDs %v, want one entry", record.FoundZoneIDs)
	}

	// Third click exhausts the budget without reaching the target.
	third, _ := s.RecordClick(geometry.Point{X: 10, Y: 10})
	if !third.Completed || third.EndReason != models.EndReasonClicksExhausted {
		t.Errorf("outcome %+v, want clicks_exhausted", third)
	}
}

func TestFoundZones_Monotonic(t *testing.T) {
	clock := newManualClock()
	game := oneCircleGame()
	game.MaxClicks = 10
	game.RiskZones = append(game.RiskZones, models.RiskZone{
		ID:      "z2",
		GameID:  "g1",
		Ordinal: 1,
		Shape:   models.Shape{Shape: geometry.Rect{Origin: geometry.Point{X: 300, Y: 300}, Width: 50, Height: 50}},
	})
	game.TargetRiskCount = 2
	s, _ := Start(game, "alice", clock)

	points := []geometry.Point{
		{X: 500, Y: 500}, // miss
		{X: 100, Y: 100}, // hit z1
		{X: 500, Y: 500}, // miss
		{X: 100, Y: 100}, // repeat z1
		{X: 325, Y: 325}, // hit z2 -> target reached
	}
	prev := 0
	for i, p := range points {
		s.RecordClick(p)
		found := len(s.Snapshot().FoundZoneIDs)
		if found < prev {
			t.Fatalf("click %d shrank found set: %d -> %d", i, prev, found)
		}
		prev = found
	}
	if s.State() != StateCompleted {
		t.Error("session should complete once target reached")
	}
	if got := len(s.Snapshot().Clicks); got > game.MaxClicks {
		t.Errorf("clicks %d exceed budget %d", got, game.MaxClicks)
	}
}

func TestManager_StartGetAndComplete(t *testing.T) {
	clock := newManualClock()
	var (
		mu        sync.Mutex
		completed []models.GameSession
	)
	m := NewManager(testLogger(t), clock, func(record models.GameSession, _ models.GameResult) {
		mu.Lock()
		defer mu.Unlock()
		completed = append(completed, record)
	})

	s, err := m.Start(oneCircleGame(), "alice")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	id := s.Snapshot().ID
	if _, err := m.Get(id); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := m.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}

	s.RecordClick(geometry.Point{X: 100, Y: 100})

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(completed)
		mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("completion hook never fired")
		}
		time.Sleep(5 * time.Millisecond)
	}

	mu.Lock()
	record := completed[0]
	mu.Unlock()
	if record.ID != id || !record.Completed {
		t.Errorf("completion hook got %+v", record)
	}
}
