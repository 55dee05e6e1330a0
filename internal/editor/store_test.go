package editor

import (
	"errors"
	"testing"

	"hazardhunt/internal/geometry"
	"hazardhunt/internal/models"
)

func TestStore_Create(t *testing.T) {
	s := NewStore("g1", nil)

	zone, err := s.Create(ZoneDraft{
		Shape:       geometry.Circle{Center: geometry.Point{X: 100, Y: 100}, Radius: 20},
		Description: "unguarded machinery",
		Severity:    models.SeverityHigh,
		Color:       "#ef4444",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if zone.ID == "" {
		t.Error("created zone should have an id")
	}
	if zone.Ordinal != 0 {
		t.Errorf("Ordinal %d, want 0", zone.Ordinal)
	}
	if got := s.Zones(); len(got) != 1 {
		t.Errorf("len(Zones) %d, want 1", len(got))
	}
}

func TestStore_Create_RejectsTooSmall(t *testing.T) {
	s := NewStore("g1", nil)

	_, err := s.Create(ZoneDraft{
		Shape: geometry.Rect{Origin: geometry.Point{X: 0, Y: 0}, Width: 5, Height: 5},
	})
	if !errors.Is(err, ErrZoneTooSmall) {
		t.Fatalf("err = %v, want ErrZoneTooSmall", err)
	}
	if len(s.Zones()) != 0 {
		t.Error("store should be unchanged after rejection")
	}

	// The boundary itself is rejected too: the drag must exceed 10px.
	_, err = s.Create(ZoneDraft{
		Shape: geometry.Circle{Center: geometry.Point{X: 50, Y: 50}, Radius: 10},
	})
	if !errors.Is(err, ErrZoneTooSmall) {
		t.Fatalf("radius 10 should be rejected, got %v", err)
	}
}

func TestStore_Update(t *testing.T) {
	s := NewStore("g1", nil)
	zone, _ := s.Create(ZoneDraft{
		Shape:    geometry.Circle{Center: geometry.Point{X: 100, Y: 100}, Radius: 20},
		Severity: models.SeverityLow,
	})

	desc := "chemical storage"
	updated, err := s.Update(zone.ID, ZoneUpdate{Description: &desc})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Description != desc {
		t.Errorf("Description %q, want %q", updated.Description, desc)
	}
	if updated.Severity != models.SeverityLow {
		t.Error("unset fields should be untouched")
	}

	_, err = s.Update("missing", ZoneUpdate{Description: &desc})
	if !errors.Is(err, ErrZoneNotFound) {
		t.Errorf("err = %v, want ErrZoneNotFound", err)
	}
}

func TestStore_Delete_ClearsSelection(t *testing.T) {
	s := NewStore("g1", nil)
	z1, _ := s.Create(ZoneDraft{Shape: geometry.Circle{Center: geometry.Point{X: 100, Y: 100}, Radius: 20}})
	z2, _ := s.Create(ZoneDraft{Shape: geometry.Circle{Center: geometry.Point{X: 300, Y: 300}, Radius: 30}})

	if err := s.Select(z1.ID); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := s.Delete(z1.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Selected() != "" {
		t.Error("deleting the selected zone should clear selection")
	}
	zones := s.Zones()
	if len(zones) != 1 || zones[0].ID != z2.ID {
		t.Fatalf("unexpected zones after delete: %+v", zones)
	}
	if zones[0].Ordinal != 0 {
		t.Errorf("survivor Ordinal %d, want 0 after renumbering", zones[0].Ordinal)
	}

	if err := s.Delete(z1.ID); !errors.Is(err, ErrZoneNotFound) {
		t.Errorf("second delete err = %v, want ErrZoneNotFound", err)
	}
}

func TestStore_FindHit_FirstInOrderWins(t *testing.T) {
	s := NewStore("g1", nil)
	z1, _ := s.Create(ZoneDraft{Shape: geometry.Circle{Center: geometry.Point{X: 100, Y: 100}, Radius: 40}})
	z2, _ := s.Create(ZoneDraft{Shape: geometry.Circle{Center: geometry.Point{X: 110, Y: 100}, Radius: 40}})

	// Point inside both zones: authored order breaks the tie.
	hit, ok := s.FindHit(geometry.Point{X: 105, Y: 100})
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.ID != z1.ID {
		t.Errorf("hit %s, want first-authored %s", hit.ID, z1.ID)
	}

	// Point inside only the second zone.
	hit, ok = s.FindHit(geometry.Point{X: 148, Y: 100})
	if !ok {
		t.Fatal("expected a hit on second zone")
	}
	if hit.ID != z2.ID {
		t.Errorf("hit %s, want %s", hit.ID, z2.ID)
	}

	if _, ok := s.FindHit(geometry.Point{X: 500, Y: 500}); ok {
		t.Error("point outside all zones should miss")
	}
}
