package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crewpoint/staff-events-backend/internal/services"
)

// StaffHandler handles staff administration and standing lookups
type StaffHandler struct {
	staffService  *services.StaffService
	pointsService *services.PointsService
	auditService  *services.AuditService
}

// NewStaffHandler creates a new staff handler
func NewStaffHandler(
	staffService *services.StaffService,
	pointsService *services.PointsService,
	auditService *services.AuditService,
) *StaffHandler {
	return &StaffHandler{
		staffService:  staffService,
		pointsService: pointsService,
		auditService:  auditService,
	}
}

// List handles GET /api/v1/staff
func (h *StaffHandler) List(c *gin.Context) {
	members, err := h.staffService.List()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"staff": members,
		"count": len(members),
	})
}

// Get handles GET /api/v1/staff/:id
func (h *StaffHandler) Get(c *gin.Context) {
	member, err := h.staffService.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}

// Activate handles POST /api/v1/staff/:id/activate
func (h *StaffHandler) Activate(c *gin.Context) {
	member, err := h.staffService.Activate(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.auditService.Record(auditEntry(c, "staff.activate", "staff", &member.ID, nil))

	c.JSON(http.StatusOK, gin.H{
		"message": "Account activated",
		"staff":   member,
	})
}

// Deactivate handles POST /api/v1/staff/:id/deactivate
func (h *StaffHandler) Deactivate(c *gin.Context) {
	member, err := h.staffService.Deactivate(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.auditService.Record(auditEntry(c, "staff.deactivate", "staff", &member.ID, nil))

	c.JSON(http.StatusOK, gin.H{
		"message": "Account deactivated",
		"staff":   member,
	})
}

// GrantRoleRequest represents the request to grant a role
type GrantRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// GrantRole handles POST /api/v1/staff/:id/roles
func (h *StaffHandler) GrantRole(c *gin.Context) {
	var req GrantRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	member, err := h.staffService.GrantRole(c.Param("id"), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	h.auditService.Record(auditEntry(c, "staff.grant_role", "staff", &member.ID, map[string]interface{}{
		"role": req.Role,
	}))

	c.JSON(http.StatusOK, gin.H{
		"message": "Role granted",
		"staff":   member,
	})
}

// Standing handles GET /api/v1/staff/:id/standing
func (h *StaffHandler) Standing(c *gin.Context) {
	member, err := h.staffService.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, services.Standing{
		StaffID:   member.ID,
		Points:    member.Points,
		LevelName: member.LevelName,
	})
}

// History handles GET /api/v1/staff/:id/history
func (h *StaffHandler) History(c *gin.Context) {
	history, err := h.pointsService.History(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"history": history,
		"count":   len(history),
	})
}
