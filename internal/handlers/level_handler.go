package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crewpoint/staff-events-backend/internal/services"
)

// LevelHandler handles level ladder administration
type LevelHandler struct {
	levelService *services.LevelService
	auditService *services.AuditService
}

// NewLevelHandler creates a new level handler
func NewLevelHandler(levelService *services.LevelService, auditService *services.AuditService) *LevelHandler {
	return &LevelHandler{
		levelService: levelService,
		auditService: auditService,
	}
}

// LevelRequest represents the request to create or update a level
type LevelRequest struct {
	Name      string `json:"name" binding:"required"`
	MinPoints int    `json:"min_points"`
}

// List handles GET /api/v1/levels
func (h *LevelHandler) List(c *gin.Context) {
	levels, err := h.levelService.List()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"levels": levels,
		"count":  len(levels),
	})
}

// Create handles POST /api/v1/levels
func (h *LevelHandler) Create(c *gin.Context) {
	var req LevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	level, err := h.levelService.Create(req.Name, req.MinPoints)
	if err != nil {
		respondError(c, err)
		return
	}

	h.auditService.Record(auditEntry(c, "level.create", "level", &level.ID, map[string]interface{}{
		"name":       level.Name,
		"min_points": level.MinPoints,
	}))

	c.JSON(http.StatusCreated, gin.H{
		"message": "Level created",
		"level":   level,
	})
}

// Update handles PUT /api/v1/levels/:id
func (h *LevelHandler) Update(c *gin.Context) {
	var req LevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	level, err := h.levelService.Update(c.Param("id"), req.Name, req.MinPoints)
	if err != nil {
		respondError(c, err)
		return
	}

	h.auditService.Record(auditEntry(c, "level.update", "level", &level.ID, map[string]interface{}{
		"name":       level.Name,
		"min_points": level.MinPoints,
	}))

	c.JSON(http.StatusOK, gin.H{
		"message": "Level updated",
		"level":   level,
	})
}

// Delete handles DELETE /api/v1/levels/:id
func (h *LevelHandler) Delete(c *gin.Context) {
	levelID := c.Param("id")

	if err := h.levelService.Delete(levelID); err != nil {
		respondError(c, err)
		return
	}

	h.auditService.Record(auditEntry(c, "level.delete", "level", &levelID, nil))

	c.JSON(http.StatusOK, gin.H{"message": "Level deleted"})
}

// ReorderRequest represents the full ordering of the ladder, most
// prestigious level first
type ReorderRequest struct {
	OrderedIDs []string `json:"ordered_ids" binding:"required"`
}

// Reorder handles PUT /api/v1/levels/reorder
func (h *LevelHandler) Reorder(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	if err := h.levelService.Reorder(req.OrderedIDs); err != nil {
		respondError(c, err)
		return
	}

	h.auditService.Record(auditEntry(c, "level.reorder", "level", nil, map[string]interface{}{
		"count": len(req.OrderedIDs),
	}))

	c.JSON(http.StatusOK, gin.H{"message": "Ladder reordered"})
}
