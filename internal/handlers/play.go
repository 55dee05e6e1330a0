package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hazardhunt/internal/canvas"
	"hazardhunt/internal/engine"
	"hazardhunt/internal/geometry"
	"hazardhunt/internal/models"
	"hazardhunt/internal/repository"
)

const playerNameKey = "playerName"

// PlayHandler drives the player-facing flow: start a timed session, feed it
// clicks, poll state, give up. Clicks arrive in screen coordinates and are
// mapped to the image's natural space here, so the engine only ever sees
// natural coordinates.
type PlayHandler struct {
	log     *zap.Logger
	manager *engine.Manager
}

func NewPlayHandler(log *zap.Logger, manager *engine.Manager) *PlayHandler {
	return &PlayHandler{log: log, manager: manager}
}

type startRequest struct {
	GameID     string `json:"gameId" binding:"required"`
	PlayerName string `json:"playerName"`
}

// Start handles POST /api/play. The player name falls back to the cookie
// session from a previous run and is remembered on success.
func (h *PlayHandler) Start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cookieSession := sessions.Default(c)
	if req.PlayerName == "" {
		if remembered, ok := cookieSession.Get(playerNameKey).(string); ok {
			req.PlayerName = remembered
		}
	}

	game, err := repository.GetGame(c.Request.Context(), req.GameID)
	if err != nil {
		if errors.Is(err, repository.ErrGameNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("Failed to load game for play", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if !game.IsActive || game.Status != models.StatusPublished {
		c.JSON(http.StatusConflict, gin.H{"error": "game is not published"})
		return
	}

	session, err := h.manager.Start(*game, req.PlayerName)
	if err != nil {
		if errors.Is(err, engine.ErrGameNotPlayable) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("Failed to start session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	cookieSession.Set(playerNameKey, req.PlayerName)
	if err := cookieSession.Save(); err != nil {
		h.log.Warn("Failed to save player cookie", zap.Error(err))
	}

	record := session.Snapshot()
	c.JSON(http.StatusCreated, gin.H{
		"sessionId":        record.ID,
		"state":            session.State(),
		"timeLimitSeconds": session.Game().TimeLimitSeconds,
		"maxClicks":        session.Game().MaxClicks,
		"targetRiskCount":  session.Game().TargetRiskCount,
		"game": gin.H{
			"id":     game.ID,
			"title":  game.Title,
			"images": game.Images,
		},
	})
}

type clickRequest struct {
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Rendered canvas.Size `json:"rendered"`
}

// Click handles POST /api/play/:id/clicks. The rendered size measured by the
// client at press time maps the screen point into natural coordinates; a
// click sent before the image was measured is rejected, not guessed at.
func (h *PlayHandler) Click(c *gin.Context) {
	var req clickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.manager.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	game := session.Game()
	image := game.Images[0]
	mapper := canvas.NewMapper(req.Rendered, canvas.Size{Width: image.Width, Height: image.Height})
	natural, err := mapper.ToNatural(geometry.Point{X: req.X, Y: req.Y})
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	outcome, err := session.RecordClick(natural)
	if err != nil {
		if errors.Is(err, engine.ErrSessionNotActive) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("Failed to record click", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	record := session.Snapshot()
	response := gin.H{
		"recorded":        outcome.Recorded,
		"newlyFound":      outcome.NewlyFound,
		"completed":       outcome.Completed,
		"clicksUsed":      len(record.Clicks),
		"clicksRemaining": game.MaxClicks - len(record.Clicks),
		"foundCount":      len(record.FoundZoneIDs),
		"timeRemaining":   session.TimeRemaining(),
	}
	if outcome.HitZoneID != "" {
		if zone, ok := game.ZoneByID(outcome.HitZoneID); ok {
			response["hitZone"] = zone
		}
	}
	if outcome.Completed {
		response["endReason"] = outcome.EndReason
		if result, ok := session.Result(); ok {
			response["result"] = result
		}
	}
	c.JSON(http.StatusOK, response)
}

// State handles GET /api/play/:id. Completed sessions leave the manager once
// persisted, so the database is the fallback.
func (h *PlayHandler) State(c *gin.Context) {
	id := c.Param("id")

	if session, err := h.manager.Get(id); err == nil {
		record := session.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"state":         session.State(),
			"session":       record,
			"timeRemaining": session.TimeRemaining(),
			"foundCount":    len(record.FoundZoneIDs),
			"clicksUsed":    len(record.Clicks),
		})
		return
	}

	record, err := repository.GetSession(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("Failed to load session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state":         engine.StateCompleted,
		"session":       record,
		"timeRemaining": 0,
		"foundCount":    len(record.FoundZoneIDs),
		"clicksUsed":    len(record.Clicks),
	})
}

// End handles POST /api/play/:id/end, the explicit give-up. Ending an
// already-completed session returns its unchanged record.
func (h *PlayHandler) End(c *gin.Context) {
	session, err := h.manager.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	record := session.End(models.EndReasonAbandoned)
	response := gin.H{
		"state":   engine.StateCompleted,
		"session": record,
	}
	if result, ok := session.Result(); ok {
		response["result"] = result
	}
	c.JSON(http.StatusOK, response)
}
