// Package repository persists games and sessions behind GORM. Functions are
// context-aware and return typed not-found errors; nothing here mutates the
// in-memory engine state.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"hazardhunt/internal/database"
	"hazardhunt/internal/models"
)

// ErrGameNotFound is returned for unknown game ids.
var ErrGameNotFound = errors.New("repository: game not found")

// GetGame loads a game with its images and zones in authored order.
func GetGame(ctx context.Context, id string) (*models.Game, error) {
	var game models.Game
	err := database.DB.WithContext(ctx).
		Preload("Images").
		Preload("RiskZones", func(db *gorm.DB) *gorm.DB {
			return db.Order("risk_zones.ordinal ASC")
		}).
		First(&game, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// GameFilter narrows ListGames.
type GameFilter struct {
	Difficulty string
	IsActive   *bool
	Page       int
	Limit      int
}

// ListGames returns a page of games plus the unpaginated total.
func ListGames(ctx context.Context, filter GameFilter) ([]models.Game, int64, error) {
	query := database.DB.WithContext(ctx).Model(&models.Game{})
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}

	var games []models.Game
	err := query.
		Preload("Images").
		Preload("RiskZones", func(db *gorm.DB) *gorm.DB {
			return db.Order("risk_zones.ordinal ASC")
		}).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&games).Error
	return games, total, err
}

// CreateGame validates and stores a new game.
func CreateGame(ctx context.Context, game *models.Game) error {
	if game.ID == "" {
		game.ID = models.NewID()
	}
	game.ApplyDefaults()
	if err := game.Validate(); err != nil {
		return err
	}
	return database.DB.WithContext(ctx).Create(game).Error
}

// SaveGame persists edits to an existing game, replacing its zone list so
// ordinals and deletions stick.
func SaveGame(ctx context.Context, game *models.Game) error {
	game.ApplyDefaults()
	if err := game.Validate(); err != nil {
		return err
	}
	game.UpdatedAt = time.Now().UTC()

	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Game
		if err := tx.First(&existing, "id = ?", game.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrGameNotFound, game.ID)
			}
			return err
		}
		if err := tx.Where("game_id = ?", game.ID).Delete(&models.RiskZone{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(game).Error
	})
}

// DeleteGame removes a game and everything hanging off it. Irreversible.
func DeleteGame(ctx context.Context, id string) error {
	result := database.DB.WithContext(ctx).Delete(&models.Game{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return nil
}

// DuplicateGame deep-copies a game, its images and its zones under fresh
// ids. The copy starts as an inactive draft.
func DuplicateGame(ctx context.Context, id string, title string) (*models.Game, error) {
	original, err := GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	copyGame := *original
	copyGame.ID = models.NewID()
	if title != "" {
		copyGame.Title = title
	} else {
		copyGame.Title = original.Title + " (Copy)"
	}
	copyGame.Status = models.StatusDraft
	copyGame.IsActive = false
	copyGame.CreatedAt = time.Time{}
	copyGame.UpdatedAt = time.Time{}

	copyGame.Images = make([]models.GameImage, len(original.Images))
	for i, img := range original.Images {
		img.ID = models.NewID()
		img.GameID = copyGame.ID
		copyGame.Images[i] = img
	}
	copyGame.RiskZones = make([]models.RiskZone, len(original.RiskZones))
	for i, zone := range original.RiskZones {
		zone.ID = models.NewID()
		zone.GameID = copyGame.ID
		copyGame.RiskZones[i] = zone
	}

	if err := database.DB.WithContext(ctx).Create(&copyGame).Error; err != nil {
		return nil, err
	}
	return &copyGame, nil
}

// SeedCatalog inserts catalog games on an empty games table. Re-running
// against a populated database is a no-op.
func SeedCatalog(ctx context.Context, catalog *models.Catalog) (int, error) {
	var count int64
	if err := database.DB.WithContext(ctx).Model(&models.Game{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	seeded := 0
	for _, entry := range catalog.Games {
		game, err := entry.ToGame()
		if err != nil {
			return seeded, err
		}
		if err := database.DB.WithContext(ctx).Create(&game).Error; err != nil {
			return seeded, err
		}
		seeded++
	}
	return seeded, nil
}
