package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"hazardhunt/internal/geometry"
)

// Catalog is a set of seed games shipped with the server, loaded from YAML at
// startup so a fresh install has something to play.
type Catalog struct {
	Games []CatalogGame `yaml:"games"`
}

// CatalogGame mirrors the YAML structure for one seed game.
type CatalogGame struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Difficulty  string         `yaml:"difficulty"`
	TimeLimit   int            `yaml:"time_limit"`
	MaxClicks   int            `yaml:"max_clicks"`
	TargetRisks int            `yaml:"target_risks"`
	Images      []CatalogImage `yaml:"images"`
	Zones       []CatalogZone  `yaml:"zones"`
}

type CatalogImage struct {
	URL    string  `yaml:"url"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Alt    string  `yaml:"alt"`
}

type CatalogZone struct {
	Type        string  `yaml:"type"`
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	Radius      float64 `yaml:"radius"`
	Severity    string  `yaml:"severity"`
	Color       string  `yaml:"color"`
	Description string  `yaml:"description"`
}

// LoadCatalog reads and parses the seed games file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog YAML: %w", err)
	}
	return &catalog, nil
}

// ToGame converts a catalog entry into a storable Game with fresh ids.
func (cg CatalogGame) ToGame() (Game, error) {
	game := Game{
		ID:               NewID(),
		Title:            cg.Title,
		Description:      cg.Description,
		Difficulty:       cg.Difficulty,
		TimeLimitSeconds: cg.TimeLimit,
		MaxClicks:        cg.MaxClicks,
		TargetRiskCount:  cg.TargetRisks,
		Status:           StatusPublished,
		IsActive:         true,
	}
	for _, img := range cg.Images {
		game.Images = append(game.Images, GameImage{
			ID:     NewID(),
			GameID: game.ID,
			URL:    img.URL,
			Width:  img.Width,
			Height: img.Height,
			Alt:    img.Alt,
		})
	}
	for i, cz := range cg.Zones {
		var shape geometry.Shape
		switch cz.Type {
		case geometry.KindCircle:
			shape = geometry.Circle{Center: geometry.Point{X: cz.X, Y: cz.Y}, Radius: cz.Radius}
		case geometry.KindRectangle:
			shape = geometry.Rect{Origin: geometry.Point{X: cz.X, Y: cz.Y}, Width: cz.Width, Height: cz.Height}
		default:
			return Game{}, fmt.Errorf("catalog game %q zone %d: unknown type %q", cg.Title, i, cz.Type)
		}
		game.RiskZones = append(game.RiskZones, RiskZone{
			ID:          NewID(),
			GameID:      game.ID,
			Ordinal:     i,
			Shape:       Shape{shape},
			Description: cz.Description,
			Severity:    cz.Severity,
			Color:       cz.Color,
		})
	}
	game.ApplyDefaults()
	if err := game.Validate(); err != nil {
		return Game{}, fmt.Errorf("catalog game %q: %w", cg.Title, err)
	}
	return game, nil
}
