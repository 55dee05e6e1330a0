package models

import (
	"time"

	"github.com/lib/pq"
)

// Reasons a session reached its terminal state. Exactly one applies.
const (
	EndReasonTargetReached   = "target_reached"
	EndReasonClicksExhausted = "clicks_exhausted"
	EndReasonTimeout         = "timeout"
	EndReasonAbandoned       = "abandoned"
)

// GameSession is one trainee's play-through of one game. It is mutated only
// by the session engine while active and is immutable once completed.
type GameSession struct {
	ID               string         `gorm:"primaryKey" json:"id"`
	GameID           string         `gorm:"index" json:"gameId"`
	PlayerName       string         `json:"playerName"`
	StartTime        time.Time      `json:"startTime"`
	EndTime          *time.Time     `json:"endTime,omitempty"`
	Clicks           []Click        `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"clicks"`
	FoundZoneIDs     pq.StringArray `gorm:"type:text[]" json:"foundZoneIds"`
	Score            int            `json:"score"`
	TimeSpentSeconds int            `json:"timeSpentSeconds"`
	Completed        bool           `gorm:"index" json:"completed"`
	EndReason        string         `json:"endReason,omitempty"`
}

// Click is one recorded pointer press, in natural image coordinates.
type Click struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"index" json:"-"`
	Ordinal   int       `json:"ordinal"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Timestamp time.Time `json:"timestamp"`
	HitZoneID *string   `json:"hitZoneId,omitempty"`
}

// Found reports whether the zone id has already been credited this session.
func (s *GameSession) Found(zoneID string) bool {
	for _, id := range s.FoundZoneIDs {
		if id == zoneID {
			return true
		}
	}
	return false
}

// GameResult is the derived outcome of a completed session. It is computed
// once at completion and never stored or mutated.
type GameResult struct {
	Session     GameSession `json:"session"`
	Game        Game        `json:"game"`
	FoundZones  []RiskZone  `json:"foundZones"`
	MissedZones []RiskZone  `json:"missedZones"`
	Accuracy    float64     `json:"accuracy"`
	Efficiency  float64     `json:"efficiency"`
}

// BuildResult splits the game's zones into found and missed sets for a
// completed session. Accuracy and efficiency are supplied by the scoring
// engine so the split and the numbers always agree.
func BuildResult(session GameSession, game Game, accuracy, efficiency float64) GameResult {
	result := GameResult{
		Session:    session,
		Game:       game,
		Accuracy:   accuracy,
		Efficiency: efficiency,
	}
	for _, zone := range game.RiskZones {
		if session.Found(zone.ID) {
			result.FoundZones = append(result.FoundZones, zone)
		} else {
			result.MissedZones = append(result.MissedZones, zone)
		}
	}
	return result
}
