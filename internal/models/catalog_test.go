package models

import (
	"os"
	"path/filepath"
	"testing"

	"hazardhunt/internal/geometry"
)

const sampleCatalog = `
games:
  - title: "Dock Walkthrough"
    description: "Spot the dock hazards."
    difficulty: "hard"
    time_limit: 240
    max_clicks: 12
    target_risks: 2
    images:
      - url: "/assets/dock.jpg"
        width: 1600
        height: 900
        alt: "Loading dock"
    zones:
      - type: "circle"
        x: 100
        y: 120
        radius: 40
        severity: "high"
        color: "#e74c3c"
        description: "Worker in the travel lane"
      - type: "rectangle"
        x: 400
        y: 500
        width: 120
        height: 80
        severity: "medium"
        color: "#f39c12"
        description: "Unmarked spill"
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "games.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing catalog: %v", err)
	}
	return path
}

func TestLoadCatalogToGame(t *testing.T) {
	catalog, err := LoadCatalog(writeCatalog(t, sampleCatalog))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(catalog.Games) != 1 {
		t.Fatalf("got %d games, want 1", len(catalog.Games))
	}

	game, err := catalog.Games[0].ToGame()
	if err != nil {
		t.Fatalf("ToGame: %v", err)
	}
	if game.ID == "" {
		t.Error("game id not assigned")
	}
	if game.Status != StatusPublished || !game.IsActive {
		t.Errorf("seeded game status %q active=%v, want published and active", game.Status, game.IsActive)
	}
	if game.TimeLimitSeconds != 240 || game.MaxClicks != 12 || game.TargetRiskCount != 2 {
		t.Errorf("budgets %d/%d/%d, want 240/12/2",
			game.TimeLimitSeconds, game.MaxClicks, game.TargetRiskCount)
	}
	if len(game.RiskZones) != 2 {
		t.Fatalf("got %d zones, want 2", len(game.RiskZones))
	}

	circle, ok := game.RiskZones[0].Shape.Shape.(geometry.Circle)
	if !ok {
		t.Fatalf("zone 0 shape is %T, want Circle", game.RiskZones[0].Shape.Shape)
	}
	if circle.Radius != 40 {
		t.Errorf("circle radius %v, want 40", circle.Radius)
	}
	rect, ok := game.RiskZones[1].Shape.Shape.(geometry.Rect)
	if !ok {
		t.Fatalf("zone 1 shape is %T, want Rect", game.RiskZones[1].Shape.Shape)
	}
	if rect.Width != 120 || rect.Height != 80 {
		t.Errorf("rect %vx%v, want 120x80", rect.Width, rect.Height)
	}
	for i, zone := range game.RiskZones {
		if zone.Ordinal != i {
			t.Errorf("zone %d ordinal %d", i, zone.Ordinal)
		}
		if zone.GameID != game.ID {
			t.Errorf("zone %d game id %q, want %q", i, zone.GameID, game.ID)
		}
	}
}

func TestLoadCatalogUnknownShape(t *testing.T) {
	catalog, err := LoadCatalog(writeCatalog(t, `
games:
  - title: "Broken"
    difficulty: "easy"
    images:
      - url: "/assets/x.jpg"
        width: 100
        height: 100
    zones:
      - type: "triangle"
        x: 10
        y: 10
`))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if _, err := catalog.Games[0].ToGame(); err == nil {
		t.Error("expected error for unknown shape type")
	}
}
