// Package export renders completed sessions as CSV for reporting tools.
// Session fields are all primitives, so rows are a straight projection.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"hazardhunt/internal/models"
	"hazardhunt/internal/scoring"
)

var header = []string{
	"session_id",
	"game_id",
	"game_title",
	"player",
	"started_at",
	"ended_at",
	"end_reason",
	"score",
	"accuracy",
	"efficiency",
	"clicks_used",
	"zones_found",
	"zones_total",
	"time_spent_seconds",
}

// WriteSessions writes one CSV row per completed session of a game.
func WriteSessions(w io.Writer, game models.Game, sessions []models.GameSession) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, session := range sessions {
		if !session.Completed {
			continue
		}
		breakdown := scoring.Evaluate(session, game)

		endedAt := ""
		if session.EndTime != nil {
			endedAt = session.EndTime.UTC().Format(time.RFC3339)
		}
		row := []string{
			session.ID,
			game.ID,
			game.Title,
			session.PlayerName,
			session.StartTime.UTC().Format(time.RFC3339),
			endedAt,
			session.EndReason,
			fmt.Sprintf("%d", session.Score),
			fmt.Sprintf("%.4f", breakdown.Accuracy),
			fmt.Sprintf("%.4f", breakdown.Efficiency),
			fmt.Sprintf("%d", len(session.Clicks)),
			fmt.Sprintf("%d", len(session.FoundZoneIDs)),
			fmt.Sprintf("%d", len(game.RiskZones)),
			fmt.Sprintf("%d", session.TimeSpentSeconds),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
