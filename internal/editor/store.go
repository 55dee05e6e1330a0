// Package editor holds the authoring-side state of a game's zone list: an
// ordered store with stable ids, minimum-size validation, first-hit lookup,
// and a bounded undo/redo history of full snapshots.
package editor

import (
	"errors"
	"fmt"
	"sync"

	"hazardhunt/internal/geometry"
	"hazardhunt/internal/models"
)

// MinZoneSpan is the smallest drag span that produces a zone. A rectangle
// needs both sides above it, a circle needs its radius above it; anything
// smaller is treated as an accidental click and rejected.
const MinZoneSpan = 10.0

var (
	ErrZoneTooSmall = errors.New("editor: zone below minimum size")
	ErrZoneNotFound = errors.New("editor: zone not found")
)

// Store is the ordered zone collection for one game being edited. Mutations
// are serialized with a mutex; the authoring UI is the only writer, the play
// path only ever reads a committed copy of the zones.
type Store struct {
	mu         sync.Mutex
	gameID     string
	zones      []models.RiskZone
	selectedID string
}

// NewStore wraps an existing zone list for editing. The slice is copied so
// later mutations cannot leak into the caller's game object.
func NewStore(gameID string, zones []models.RiskZone) *Store {
	s := &Store{gameID: gameID}
	s.zones = cloneZones(zones)
	return s
}

// ZoneDraft carries the fields of a create request before an id is assigned.
type ZoneDraft struct {
	Shape       geometry.Shape
	Description string
	Severity    string
	Color       string
}

// Create validates the drawn shape and appends a zone with a fresh id.
// Degenerate shapes are rejected and nothing is stored.
func (s *Store) Create(draft ZoneDraft) (models.RiskZone, error) {
	if draft.Shape == nil {
		return models.RiskZone{}, fmt.Errorf("%w: no shape", ErrZoneTooSmall)
	}
	if geometry.Span(draft.Shape) <= MinZoneSpan {
		return models.RiskZone{}, fmt.Errorf("%w: span %.1fpx, need > %.0fpx",
			ErrZoneTooSmall, geometry.Span(draft.Shape), MinZoneSpan)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	severity := draft.Severity
	if severity == "" {
		severity = models.SeverityMedium
	}
	zone := models.RiskZone{
		ID:          models.NewID(),
		GameID:      s.gameID,
		Ordinal:     len(s.zones),
		Shape:       models.Shape{Shape: draft.Shape},
		Description: draft.Description,
		Severity:    severity,
		Color:       draft.Color,
	}
	s.zones = append(s.zones, zone)
	return zone, nil
}

// ZoneUpdate lists the editable fields; nil means leave unchanged.
type ZoneUpdate struct {
	Shape       geometry.Shape
	Description *string
	Severity    *string
	Color       *string
}

// Update applies a partial edit to an existing zone.
func (s *Store) Update(id string, update ZoneUpdate) (models.RiskZone, error) {
	if update.Shape != nil && geometry.Span(update.Shape) <= MinZoneSpan {
		return models.RiskZone{}, fmt.Errorf("%w: resized below minimum", ErrZoneTooSmall)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.zones {
		if s.zones[i].ID != id {
			continue
		}
		if update.Shape != nil {
			s.zones[i].Shape = models.Shape{Shape: update.Shape}
		}
		if update.Description != nil {
			s.zones[i].Description = *update.Description
		}
		if update.Severity != nil {
			s.zones[i].Severity = *update.Severity
		}
		if update.Color != nil {
			s.zones[i].Color = *update.Color
		}
		return s.zones[i], nil
	}
	return models.RiskZone{}, fmt.Errorf("%w: %s", ErrZoneNotFound, id)
}

// Delete removes a zone and renumbers the survivors. Deleting the selected
// zone clears the selection.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.zones {
		if s.zones[i].ID != id {
			continue
		}
		s.zones = append(s.zones[:i], s.zones[i+1:]...)
		for j := range s.zones {
			s.zones[j].Ordinal = j
		}
		if s.selectedID == id {
			s.selectedID = ""
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrZoneNotFound, id)
}

// Select marks a zone as the active editing target.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, z := range s.zones {
		if z.ID == id {
			s.selectedID = id
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrZoneNotFound, id)
}

// Selected returns the currently selected zone id, empty when none.
func (s *Store) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID
}

// FindHit returns the first zone in authored order containing the point.
// Authored order is the tie-break when zones overlap.
func (s *Store) FindHit(p geometry.Point) (models.RiskZone, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FindHit(s.zones, p)
}

// Zones returns a snapshot copy of the ordered zone list.
func (s *Store) Zones() []models.RiskZone {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneZones(s.zones)
}

// Restore replaces the zone list wholesale (undo/redo). The selection is
// dropped if its zone no longer exists.
func (s *Store) Restore(zones []models.RiskZone) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zones = cloneZones(zones)
	if s.selectedID != "" {
		found := false
		for _, z := range s.zones {
			if z.ID == s.selectedID {
				found = true
				break
			}
		}
		if !found {
			s.selectedID = ""
		}
	}
}

// FindHit scans zones in order and returns the first containing the point.
// Shared with the play path, which hit-tests against a committed game.
func FindHit(zones []models.RiskZone, p geometry.Point) (models.RiskZone, bool) {
	for _, z := range zones {
		if z.Shape.Shape != nil && z.Shape.Contains(p) {
			return z, true
		}
	}
	return models.RiskZone{}, false
}

func cloneZones(zones []models.RiskZone) []models.RiskZone {
	out := make([]models.RiskZone, len(zones))
	copy(out, zones)
	return out
}
