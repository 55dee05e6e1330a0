package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hazardhunt/internal/geometry"
)

// Severity levels for a risk zone.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Difficulty levels for a game.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
	DifficultyExpert = "expert"
)

// Publish states.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Default budgets applied when the builder leaves them unset.
const (
	DefaultTimeLimitSeconds = 300
	DefaultMaxClicks        = 17
)

// Game is an authored hazard-spotting assessment.
type Game struct {
	ID               string      `gorm:"primaryKey" json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Images           []GameImage `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE" json:"images"`
	RiskZones        []RiskZone  `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE" json:"riskZones"`
	TimeLimitSeconds int         `json:"timeLimitSeconds"`
	MaxClicks        int         `json:"maxClicks"`
	TargetRiskCount  int         `json:"targetRiskCount"`
	Difficulty       string      `json:"difficulty"`
	Status           string      `json:"status"`
	IsActive         bool        `json:"isActive"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// GameImage is a background image with its natural dimensions. The binary is
// hosted elsewhere; only the URL and measurements live here.
type GameImage struct {
	ID     string  `gorm:"primaryKey" json:"id"`
	GameID string  `gorm:"index" json:"-"`
	URL    string  `json:"url"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Alt    string  `json:"alt,omitempty"`
}

// RiskZone is one hazard region authored on a game's image. Coordinates are
// in the image's natural pixel space.
type RiskZone struct {
	ID          string `gorm:"primaryKey" json:"id"`
	GameID      string `gorm:"index" json:"-"`
	Ordinal     int    `gorm:"index" json:"ordinal"`
	Shape       Shape  `gorm:"type:jsonb" json:"shape"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Color       string `json:"color"`
}

// ApplyDefaults fills unset budgets the way the player screens used to:
// 300s time limit, 17 clicks, target = every authored zone.
func (g *Game) ApplyDefaults() {
	if g.TimeLimitSeconds <= 0 {
		g.TimeLimitSeconds = DefaultTimeLimitSeconds
	}
	if g.MaxClicks <= 0 {
		g.MaxClicks = DefaultMaxClicks
	}
	if g.TargetRiskCount <= 0 || g.TargetRiskCount > len(g.RiskZones) {
		g.TargetRiskCount = len(g.RiskZones)
	}
	if g.Difficulty == "" {
		g.Difficulty = DifficultyMedium
	}
	if g.Status == "" {
		g.Status = StatusDraft
	}
}

// Validate checks the invariants a game must hold before it is stored or
// played.
func (g *Game) Validate() error {
	if g.Title == "" {
		return errors.New("game title is required")
	}
	if g.TargetRiskCount > len(g.RiskZones) {
		return fmt.Errorf("target risk count %d exceeds zone count %d", g.TargetRiskCount, len(g.RiskZones))
	}
	switch g.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert:
	default:
		return fmt.Errorf("unknown difficulty %q", g.Difficulty)
	}
	return nil
}

// ZoneByID returns the zone with the given id, if present.
func (g *Game) ZoneByID(id string) (RiskZone, bool) {
	for _, z := range g.RiskZones {
		if z.ID == id {
			return z, true
		}
	}
	return RiskZone{}, false
}

// Shape wraps the geometry sum type so it can travel through GORM as a JSONB
// envelope and through the API as tagged JSON, while staying a proper variant
// in memory.
type Shape struct {
	geometry.Shape
}

type shapeEnvelope struct {
	Kind   string            `json:"kind"`
	Circle *geometry.Circle  `json:"circle,omitempty"`
	Rect   *geometry.Rect    `json:"rectangle,omitempty"`
}

// MarshalJSON encodes the shape with its discriminant.
func (s Shape) MarshalJSON() ([]byte, error) {
	if s.Shape == nil {
		return []byte("null"), nil
	}
	env := shapeEnvelope{Kind: s.Kind()}
	switch v := s.Shape.(type) {
	case geometry.Circle:
		env.Circle = &v
	case geometry.Rect:
		env.Rect = &v
	default:
		return nil, fmt.Errorf("unknown shape kind %q", s.Kind())
	}
	return json.Marshal(env)
}

// UnmarshalJSON decodes the tagged envelope back into the matching variant.
func (s *Shape) UnmarshalJSON(data []byte) error {
	var env shapeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	switch env.Kind {
	case geometry.KindCircle:
		if env.Circle == nil {
			return errors.New("circle shape missing circle payload")
		}
		s.Shape = *env.Circle
	case geometry.KindRectangle:
		if env.Rect == nil {
			return errors.New("rectangle shape missing rectangle payload")
		}
		s.Shape = *env.Rect
	case "":
		s.Shape = nil
	default:
		return fmt.Errorf("unknown shape kind %q", env.Kind)
	}
	return nil
}

// Value implements driver.Valuer for the jsonb column.
func (s Shape) Value() (driver.Value, error) {
	data, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner for the jsonb column.
func (s *Shape) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		s.Shape = nil
		return nil
	case []byte:
		return s.UnmarshalJSON(v)
	case string:
		return s.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("cannot scan %T into Shape", src)
	}
}
