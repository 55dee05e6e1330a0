// Package scoring turns a completed session and its game definition into a
// final score. Everything here is a pure function of frozen session values:
// the same inputs always produce the same score.
package scoring

import (
	"math"

	"hazardhunt/internal/models"
)

// Efficiency blend weights.
const (
	clickWeight     = 0.3
	timeWeight      = 0.3
	precisionWeight = 0.4
)

// Breakdown carries the intermediate terms alongside the final score, for
// result screens and analytics.
type Breakdown struct {
	Accuracy   float64 `json:"accuracy"`
	Efficiency float64 `json:"efficiency"`
	Score      int     `json:"score"`
}

// Score computes the final score for a completed session.
func Score(session models.GameSession, game models.Game) int {
	return Evaluate(session, game).Score
}

// Evaluate computes accuracy, efficiency and the final score.
func Evaluate(session models.GameSession, game models.Game) Breakdown {
	accuracy := Accuracy(session, game)
	efficiency := Efficiency(session, game)

	base := 1000.0 + 500.0*accuracy + 300.0*efficiency

	timeLimit := game.TimeLimitSeconds
	if timeLimit <= 0 {
		timeLimit = models.DefaultTimeLimitSeconds
	}
	timeRatio := float64(session.TimeSpentSeconds) / float64(timeLimit)
	switch {
	case timeRatio < 0.5:
		base += 200
	case timeRatio < 0.8:
		base += 100
	}
	if timeRatio > 1 {
		base -= 200
	}

	final := math.Round(math.Max(0, base) * difficultyMultiplier(game.Difficulty))
	return Breakdown{
		Accuracy:   accuracy,
		Efficiency: efficiency,
		Score:      int(final),
	}
}

// Accuracy is the fraction of authored zones the trainee found. A game with
// no zones scores 0, never NaN.
func Accuracy(session models.GameSession, game models.Game) float64 {
	if len(game.RiskZones) == 0 {
		return 0
	}
	return float64(len(session.FoundZoneIDs)) / float64(len(game.RiskZones))
}

// Efficiency blends click thrift, time thrift and precision, each clamped to
// [0,1]. The precision term is 0 when no clicks were recorded.
func Efficiency(session models.GameSession, game models.Game) float64 {
	maxClicks := game.MaxClicks
	if maxClicks <= 0 {
		maxClicks = models.DefaultMaxClicks
	}
	timeLimit := game.TimeLimitSeconds
	if timeLimit <= 0 {
		timeLimit = models.DefaultTimeLimitSeconds
	}

	clicksUsed := len(session.Clicks)
	clickEfficiency := clamp01(1 - float64(clicksUsed)/float64(maxClicks))
	timeEfficiency := clamp01(1 - float64(session.TimeSpentSeconds)/float64(timeLimit))

	precision := 0.0
	if clicksUsed > 0 {
		precision = clamp01(float64(len(session.FoundZoneIDs)) / float64(clicksUsed))
	}

	return clickWeight*clickEfficiency + timeWeight*timeEfficiency + precisionWeight*precision
}

func difficultyMultiplier(difficulty string) float64 {
	switch difficulty {
	case models.DifficultyEasy:
		return 1
	case models.DifficultyMedium:
		return 1.2
	case models.DifficultyHard:
		return 1.5
	case models.DifficultyExpert:
		return 2
	default:
		return 1
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
