package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"go.uber.org/zap"

	"hazardhunt/internal/export"
	"hazardhunt/internal/models"
	"hazardhunt/internal/repository"
	"hazardhunt/internal/scoring"
)

// ResultsHandler serves completed-session results, per-game analytics, the
// score timeline chart and the CSV export.
type ResultsHandler struct {
	log *zap.Logger
}

func NewResultsHandler(log *zap.Logger) *ResultsHandler {
	return &ResultsHandler{log: log}
}

// GetResult handles GET /api/sessions/:id. The breakdown is recomputed from
// the stored record; the formula is deterministic so it always matches the
// stored score.
func (h *ResultsHandler) GetResult(c *gin.Context) {
	session, err := repository.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	game, err := repository.GetGame(c.Request.Context(), session.GameID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	breakdown := scoring.Evaluate(*session, *game)
	result := models.BuildResult(*session, *game, breakdown.Accuracy, breakdown.Efficiency)
	c.JSON(http.StatusOK, result)
}

// Analytics handles GET /api/games/:id/analytics.
func (h *ResultsHandler) Analytics(c *gin.Context) {
	gameID := c.Param("id")
	if _, err := repository.GetGame(c.Request.Context(), gameID); err != nil {
		h.respondError(c, err)
		return
	}

	summary, err := repository.GetAnalytics(c.Request.Context(), gameID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ScoreChart handles GET /api/games/:id/analytics/chart, rendering the score
// timeline as a standalone HTML page.
func (h *ResultsHandler) ScoreChart(c *gin.Context) {
	game, err := repository.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	points, err := repository.GetScoreTimeline(c.Request.Context(), game.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	line := generateScoreChart(points, game.Title)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := line.Render(c.Writer); err != nil {
		h.log.Error("Failed to render score chart", zap.Error(err))
	}
}

// ExportCSV handles GET /api/games/:id/export, streaming every completed
// session of the game as CSV.
func (h *ResultsHandler) ExportCSV(c *gin.Context) {
	game, err := repository.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	sessions, err := repository.ListGameSessions(c.Request.Context(), game.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="sessions-%s.csv"`, game.ID))
	if err := export.WriteSessions(c.Writer, *game, sessions); err != nil {
		h.log.Error("Failed to write CSV export",
			zap.String("game_id", game.ID), zap.Error(err))
	}
}

func (h *ResultsHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrGameNotFound),
		errors.Is(err, repository.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error("Results request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func generateScoreChart(points []repository.ScorePoint, gameTitle string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Scores Over Time",
			Subtitle: gameTitle,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "time",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	items := make([]opts.LineData, 0, len(points))
	for _, point := range points {
		items = append(items, opts.LineData{Value: []interface{}{point.Date, point.Value}})
	}

	line.AddSeries("Score", items).SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}
