package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"hazardhunt/internal/database"
	"hazardhunt/internal/models"
)

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = errors.New("repository: session not found")

// SaveSession stores a terminal session record with its click log.
func SaveSession(ctx context.Context, session *models.GameSession) error {
	return database.DB.WithContext(ctx).Create(session).Error
}

// GetSession loads a stored session with its clicks in recorded order.
func GetSession(ctx context.Context, id string) (*models.GameSession, error) {
	var session models.GameSession
	err := database.DB.WithContext(ctx).
		Preload("Clicks", func(db *gorm.DB) *gorm.DB {
			return db.Order("clicks.ordinal ASC")
		}).
		First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListGameSessions returns completed sessions for a game, newest first.
func ListGameSessions(ctx context.Context, gameID string) ([]models.GameSession, error) {
	var sessions []models.GameSession
	err := database.DB.WithContext(ctx).
		Preload("Clicks", func(db *gorm.DB) *gorm.DB {
			return db.Order("clicks.ordinal ASC")
		}).
		Where("game_id = ? AND completed = ?", gameID, true).
		Order("start_time DESC").
		Find(&sessions).Error
	return sessions, err
}

// AnalyticsSummary aggregates completed sessions for one game.
type AnalyticsSummary struct {
	TotalSessions   int64   `json:"totalSessions"`
	AverageScore    float64 `json:"averageScore"`
	AverageAccuracy float64 `json:"averageAccuracy"`
	AverageTime     float64 `json:"averageTimeSeconds"`
	CompletionRate  float64 `json:"completionRate"`
}

// GetAnalytics computes the per-game aggregates in one pass. Accuracy is
// derived from the stored found-zone arrays against the game's zone count;
// completion rate is the share of sessions that reached their target.
func GetAnalytics(ctx context.Context, gameID string) (AnalyticsSummary, error) {
	var summary AnalyticsSummary

	query := `
		SELECT
			COUNT(*) AS total_sessions,
			COALESCE(AVG(s.score), 0) AS average_score,
			COALESCE(AVG(s.time_spent_seconds), 0) AS average_time,
			COALESCE(AVG(
				CASE WHEN z.zone_count > 0
					THEN cardinality(s.found_zone_ids)::float / z.zone_count
					ELSE 0 END
			), 0) AS average_accuracy,
			COALESCE(AVG(
				CASE WHEN s.end_reason = 'target_reached' THEN 1.0 ELSE 0.0 END
			), 0) AS completion_rate
		FROM game_sessions s
		JOIN (
			SELECT g.id, COUNT(rz.id) AS zone_count
			FROM games g
			LEFT JOIN risk_zones rz ON rz.game_id = g.id
			GROUP BY g.id
		) z ON z.id = s.game_id
		WHERE s.game_id = ? AND s.completed = true;
	`

	type row struct {
		TotalSessions   int64
		AverageScore    float64
		AverageTime     float64
		AverageAccuracy float64
		CompletionRate  float64
	}
	var r row
	if err := database.DB.WithContext(ctx).Raw(query, gameID).Scan(&r).Error; err != nil {
		return summary, err
	}

	summary = AnalyticsSummary{
		TotalSessions:   r.TotalSessions,
		AverageScore:    r.AverageScore,
		AverageAccuracy: r.AverageAccuracy,
		AverageTime:     r.AverageTime,
		CompletionRate:  r.CompletionRate,
	}
	return summary, nil
}

// ScorePoint is one completed session on the score timeline.
type ScorePoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// GetScoreTimeline returns completed-session scores in start order, for the
// analytics chart.
func GetScoreTimeline(ctx context.Context, gameID string) ([]ScorePoint, error) {
	var points []ScorePoint
	query := `
		SELECT
			to_char(s.start_time, 'YYYY-MM-DD HH24:MI:SS') AS date,
			s.score::float AS value
		FROM game_sessions s
		WHERE s.game_id = ? AND s.completed = true
		ORDER BY s.start_time;
	`
	err := database.DB.WithContext(ctx).Raw(query, gameID).Scan(&points).Error
	return points, err
}
