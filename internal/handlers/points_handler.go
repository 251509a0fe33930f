package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crewpoint/staff-events-backend/internal/middleware"
	"github.com/crewpoint/staff-events-backend/internal/services"
)

// PointsHandler handles manual point adjustments and recomputation
type PointsHandler struct {
	pointsService *services.PointsService
	auditService  *services.AuditService
}

// NewPointsHandler creates a new points handler
func NewPointsHandler(pointsService *services.PointsService, auditService *services.AuditService) *PointsHandler {
	return &PointsHandler{
		pointsService: pointsService,
		auditService:  auditService,
	}
}

// AdjustRequest represents a manual point adjustment. Delta may be
// negative; reason is mandatory.
type AdjustRequest struct {
	StaffID string  `json:"staff_id" binding:"required"`
	Delta   int     `json:"delta" binding:"required"`
	Reason  string  `json:"reason" binding:"required"`
	EventID *string `json:"event_id"`
}

// Adjust handles POST /api/v1/points/adjust
func (h *PointsHandler) Adjust(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	adjustment, standing, err := h.pointsService.AdjustPoints(req.StaffID, req.Delta, req.Reason, userCtx.UserID, req.EventID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.auditService.Record(auditEntry(c, "points.adjust", "staff", &req.StaffID, map[string]interface{}{
		"delta":  req.Delta,
		"reason": req.Reason,
	}))

	c.JSON(http.StatusOK, gin.H{
		"message":    "Points adjusted",
		"adjustment": adjustment,
		"standing":   standing,
	})
}

// ConfirmOne handles POST /api/v1/events/:id/confirm/:staff_id. Confirming
// an already-paid signup is a no-op success with awarded=false.
func (h *PointsHandler) ConfirmOne(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)
	eventID := c.Param("id")
	staffID := c.Param("staff_id")

	awarded, standing, err := h.pointsService.Confirm(eventID, staffID, userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.auditService.Record(auditEntry(c, "points.confirm", "event", &eventID, map[string]interface{}{
		"staff_id": staffID,
		"awarded":  awarded,
	}))

	c.JSON(http.StatusOK, gin.H{
		"message":  "Participation confirmed",
		"awarded":  awarded,
		"standing": standing,
	})
}

// ConfirmAll handles POST /api/v1/events/:id/confirm-all. Every signup on
// the event that has not been paid yet is confirmed and awarded.
func (h *PointsHandler) ConfirmAll(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)
	eventID := c.Param("id")

	summary, err := h.pointsService.ConfirmAll(eventID, userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.auditService.Record(auditEntry(c, "points.confirm_all", "event", &eventID, map[string]interface{}{
		"confirmed":       len(summary.Confirmed),
		"already_awarded": len(summary.AlreadyAwarded),
		"failed":          len(summary.Failed),
	}))

	c.JSON(http.StatusOK, gin.H{
		"message": "Participations confirmed",
		"summary": summary,
	})
}

// Recompute handles POST /api/v1/points/:id/recompute
func (h *PointsHandler) Recompute(c *gin.Context) {
	staffID := c.Param("id")

	standing, err := h.pointsService.Recompute(staffID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.auditService.Record(auditEntry(c, "points.recompute", "staff", &staffID, map[string]interface{}{
		"points": standing.Points,
		"level":  standing.LevelName,
	}))

	c.JSON(http.StatusOK, gin.H{
		"message":  "Standing recomputed",
		"standing": standing,
	})
}
