// Package handlers exposes the JSON API consumed by the builder and player
// screens. Handlers are thin: they bind requests, call the repository or the
// session engine, and map domain errors onto HTTP statuses.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hazardhunt/internal/editor"
	"hazardhunt/internal/models"
	"hazardhunt/internal/repository"
)

// GamesHandler serves game CRUD plus the zone-authoring endpoints. Each game
// being edited gets an in-memory editor store with its own undo history;
// every mutation is persisted immediately so a crash loses nothing but the
// undo stack.
type GamesHandler struct {
	log *zap.Logger

	mu      sync.Mutex
	editing map[string]*editSession
}

type editSession struct {
	store   *editor.Store
	history *editor.History
}

func NewGamesHandler(log *zap.Logger) *GamesHandler {
	return &GamesHandler{
		log:     log,
		editing: make(map[string]*editSession),
	}
}

// List handles GET /api/games with optional difficulty/active filters and
// pagination.
func (h *GamesHandler) List(c *gin.Context) {
	filter := repository.GameFilter{
		Difficulty: c.Query("difficulty"),
	}
	if raw := c.Query("active"); raw != "" {
		active := raw == "true"
		filter.IsActive = &active
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	games, total, err := repository.ListGames(c.Request.Context(), filter)
	if err != nil {
		h.log.Error("Failed to list games", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list games"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games, "total": total})
}

// Get handles GET /api/games/:id.
func (h *GamesHandler) Get(c *gin.Context) {
	game, err := repository.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, game)
}

// Create handles POST /api/games.
func (h *GamesHandler) Create(c *gin.Context) {
	var game models.Game
	if err := c.ShouldBindJSON(&game); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	game.ID = ""
	if err := repository.CreateGame(c.Request.Context(), &game); err != nil {
		h.respondError(c, err)
		return
	}
	h.log.Info("Game created", zap.String("game_id", game.ID), zap.String("title", game.Title))
	c.JSON(http.StatusCreated, game)
}

// Update handles PUT /api/games/:id. Zone edits go through the zone
// endpoints; this route covers metadata, budgets and images, and the stored
// zone list is carried over untouched.
func (h *GamesHandler) Update(c *gin.Context) {
	var game models.Game
	if err := c.ShouldBindJSON(&game); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current, err := repository.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	game.ID = current.ID
	game.RiskZones = current.RiskZones
	game.CreatedAt = current.CreatedAt

	if err := repository.SaveGame(c.Request.Context(), &game); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, game)
}

// Delete handles DELETE /api/games/:id.
func (h *GamesHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := repository.DeleteGame(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	h.dropEditSession(id)
	h.log.Info("Game deleted", zap.String("game_id", id))
	c.Status(http.StatusNoContent)
}

// Duplicate handles POST /api/games/:id/duplicate.
func (h *GamesHandler) Duplicate(c *gin.Context) {
	var req struct {
		Title string `json:"title"`
	}
	_ = c.ShouldBindJSON(&req)

	copyGame, err := repository.DuplicateGame(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, copyGame)
}

type zoneCreateRequest struct {
	Shape       models.Shape `json:"shape"`
	Description string       `json:"description"`
	Severity    string       `json:"severity"`
	Color       string       `json:"color"`
}

// CreateZone handles POST /api/games/:id/zones. The snapshot taken before the
// append is what Undo restores.
func (h *GamesHandler) CreateZone(c *gin.Context) {
	var req zoneCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	edit, err := h.editSessionFor(c, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	before := edit.store.Zones()
	zone, err := edit.store.Create(editor.ZoneDraft{
		Shape:       req.Shape.Shape,
		Description: req.Description,
		Severity:    req.Severity,
		Color:       req.Color,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	edit.history.Push(before)

	if err := h.commitZones(c, edit); err != nil {
		return
	}
	c.JSON(http.StatusCreated, h.zoneState(edit, zone))
}

type zoneUpdateRequest struct {
	Shape       *models.Shape `json:"shape"`
	Description *string       `json:"description"`
	Severity    *string       `json:"severity"`
	Color       *string       `json:"color"`
}

// UpdateZone handles PATCH /api/games/:id/zones/:zoneID with partial edits.
func (h *GamesHandler) UpdateZone(c *gin.Context) {
	var req zoneUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	edit, err := h.editSessionFor(c, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	update := editor.ZoneUpdate{
		Description: req.Description,
		Severity:    req.Severity,
		Color:       req.Color,
	}
	if req.Shape != nil {
		update.Shape = req.Shape.Shape
	}

	before := edit.store.Zones()
	zone, err := edit.store.Update(c.Param("zoneID"), update)
	if err != nil {
		h.respondError(c, err)
		return
	}
	edit.history.Push(before)

	if err := h.commitZones(c, edit); err != nil {
		return
	}
	c.JSON(http.StatusOK, h.zoneState(edit, zone))
}

// DeleteZone handles DELETE /api/games/:id/zones/:zoneID.
func (h *GamesHandler) DeleteZone(c *gin.Context) {
	edit, err := h.editSessionFor(c, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	before := edit.store.Zones()
	if err := edit.store.Delete(c.Param("zoneID")); err != nil {
		h.respondError(c, err)
		return
	}
	edit.history.Push(before)

	if err := h.commitZones(c, edit); err != nil {
		return
	}
	c.JSON(http.StatusOK, h.editorState(edit))
}

// SelectZone handles POST /api/games/:id/zones/:zoneID/select. Selection is
// editor state only and is not journaled in the undo history.
func (h *GamesHandler) SelectZone(c *gin.Context) {
	edit, err := h.editSessionFor(c, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := edit.store.Select(c.Param("zoneID")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.editorState(edit))
}

// Undo handles POST /api/games/:id/zones/undo. With no history it responds
// 200 with the unchanged state, mirroring a disabled undo button.
func (h *GamesHandler) Undo(c *gin.Context) {
	edit, err := h.editSessionFor(c, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	if restored, ok := edit.history.Undo(edit.store.Zones()); ok {
		edit.store.Restore(restored)
		if err := h.commitZones(c, edit); err != nil {
			return
		}
	}
	c.JSON(http.StatusOK, h.editorState(edit))
}

// Redo handles POST /api/games/:id/zones/redo.
func (h *GamesHandler) Redo(c *gin.Context) {
	edit, err := h.editSessionFor(c, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	if restored, ok := edit.history.Redo(edit.store.Zones()); ok {
		edit.store.Restore(restored)
		if err := h.commitZones(c, edit); err != nil {
			return
		}
	}
	c.JSON(http.StatusOK, h.editorState(edit))
}

// editSessionFor returns the live editor state for a game, loading it from
// the database on first touch.
func (h *GamesHandler) editSessionFor(c *gin.Context, gameID string) (*editSession, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if edit, ok := h.editing[gameID]; ok {
		return edit, nil
	}

	game, err := repository.GetGame(c.Request.Context(), gameID)
	if err != nil {
		return nil, err
	}
	edit := &editSession{
		store:   editor.NewStore(game.ID, game.RiskZones),
		history: editor.NewHistory(),
	}
	h.editing[gameID] = edit
	return edit, nil
}

func (h *GamesHandler) dropEditSession(gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.editing, gameID)
}

// commitZones persists the store's current zone list. On failure it responds
// 500 itself and returns the error so the caller can bail out.
func (h *GamesHandler) commitZones(c *gin.Context, edit *editSession) error {
	zones := edit.store.Zones()
	gameID := c.Param("id")

	game, err := repository.GetGame(c.Request.Context(), gameID)
	if err == nil {
		game.RiskZones = zones
		// Keep the default target in step with the zone count.
		if game.TargetRiskCount > len(zones) {
			game.TargetRiskCount = len(zones)
		}
		err = repository.SaveGame(c.Request.Context(), game)
	}
	if err != nil {
		h.log.Error("Failed to persist zone edit",
			zap.String("game_id", gameID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save zones"})
		return err
	}
	return nil
}

func (h *GamesHandler) editorState(edit *editSession) gin.H {
	return gin.H{
		"zones":      edit.store.Zones(),
		"selectedId": edit.store.Selected(),
		"canUndo":    edit.history.CanUndo(),
		"canRedo":    edit.history.CanRedo(),
	}
}

func (h *GamesHandler) zoneState(edit *editSession, zone models.RiskZone) gin.H {
	state := h.editorState(edit)
	state["zone"] = zone
	return state
}

func (h *GamesHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrGameNotFound),
		errors.Is(err, editor.ErrZoneNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, editor.ErrZoneTooSmall):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.log.Error("Game request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
