package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crewpoint/staff-events-backend/internal/engine"
	"github.com/crewpoint/staff-events-backend/internal/middleware"
	"github.com/crewpoint/staff-events-backend/internal/models"
	"github.com/crewpoint/staff-events-backend/internal/services"
)

// EventHandler handles event lifecycle and signup HTTP requests
type EventHandler struct {
	eventService *services.EventService
	auditService *services.AuditService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *services.EventService, auditService *services.AuditService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		auditService: auditService,
	}
}

// EventRequest represents the request to create or update an event.
// Dates arrive as strings: event_date and end_date as YYYY-MM-DD,
// signup_deadline as RFC 3339.
type EventRequest struct {
	Name            string  `json:"name" binding:"required"`
	EventDate       string  `json:"event_date" binding:"required"`
	EndDate         *string `json:"end_date"`
	StartTime       string  `json:"start_time"`
	Duration        *string `json:"duration"`
	Location        string  `json:"location"`
	Description     *string `json:"description"`
	Points          int     `json:"points"`
	RequiredLevelID string  `json:"required_level_id" binding:"required"`
	SignupDeadline  *string `json:"signup_deadline"`

	// Status is honored on create only: "open" publishes the event
	// immediately, anything else leaves it in draft.
	Status string `json:"status"`
}

func (r *EventRequest) toInput() (services.EventInput, string) {
	eventDate, err := time.Parse("2006-01-02", r.EventDate)
	if err != nil {
		return services.EventInput{}, "event_date must be formatted as YYYY-MM-DD"
	}

	input := services.EventInput{
		Name:            r.Name,
		EventDate:       eventDate,
		StartTime:       r.StartTime,
		Duration:        r.Duration,
		Location:        r.Location,
		Description:     r.Description,
		Points:          r.Points,
		RequiredLevelID: r.RequiredLevelID,
	}

	if r.EndDate != nil {
		endDate, err := time.Parse("2006-01-02", *r.EndDate)
		if err != nil {
			return services.EventInput{}, "end_date must be formatted as YYYY-MM-DD"
		}
		input.EndDate = &endDate
	}

	if r.SignupDeadline != nil {
		deadline, err := time.Parse(time.RFC3339, *r.SignupDeadline)
		if err != nil {
			return services.EventInput{}, "signup_deadline must be an RFC 3339 timestamp"
		}
		input.SignupDeadline = &deadline
	}

	return input, ""
}

// Create handles POST /api/v1/events
func (h *EventHandler) Create(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	input, msg := req.toInput()
	if msg != "" {
		respondBadRequest(c, msg)
		return
	}

	if req.Status != "" && req.Status != string(models.EventStatusDraft) && req.Status != string(models.EventStatusOpen) {
		respondBadRequest(c, "status must be draft or open")
		return
	}

	event, err := h.eventService.Create(input)
	if err != nil {
		respondError(c, err)
		return
	}

	if req.Status == string(models.EventStatusOpen) {
		event, err = h.eventService.Open(event.ID)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	h.auditService.Record(auditEntry(c, "event.create", "event", &event.ID, map[string]interface{}{
		"name":   event.Name,
		"points": event.Points,
	}))

	c.JSON(http.StatusCreated, gin.H{
		"message": "Event created",
		"event":   event,
	})
}

// Update handles PUT /api/v1/events/:id
func (h *EventHandler) Update(c *gin.Context) {
	eventID := c.Param("id")

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	input, msg := req.toInput()
	if msg != "" {
		respondBadRequest(c, msg)
		return
	}

	event, err := h.eventService.Update(eventID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	h.auditService.Record(auditEntry(c, "event.update", "event", &event.ID, map[string]interface{}{
		"name": event.Name,
	}))

	c.JSON(http.StatusOK, gin.H{
		"message": "Event updated",
		"event":   event,
	})
}

// Delete handles DELETE /api/v1/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	eventID := c.Param("id")

	if err := h.eventService.Delete(eventID); err != nil {
		respondError(c, err)
		return
	}

	h.auditService.Record(auditEntry(c, "event.delete", "event", &eventID, nil))

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}

// Get handles GET /api/v1/events/:id
func (h *EventHandler) Get(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	event, err := h.eventService.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	// Staff only see what the visible listing would show them
	if userCtx.Role != models.RoleAdmin && !h.eventService.VisibleTo(event, userCtx.UserID) {
		respondError(c, engine.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, event)
}

// List handles GET /api/v1/events.
// Administrators see every event and may filter by ?status=; staff see
// open events plus any event they hold a signup on.
func (h *EventHandler) List(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var (
		events []models.Event
		err    error
	)
	if userCtx.Role == models.RoleAdmin {
		events, err = h.eventService.List(models.EventStatus(c.Query("status")))
	} else {
		events, err = h.eventService.ListVisible(userCtx.UserID)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"count":  len(events),
	})
}

// Open handles POST /api/v1/events/:id/open
func (h *EventHandler) Open(c *gin.Context) {
	h.transition(c, "event.open", h.eventService.Open)
}

// Cancel handles POST /api/v1/events/:id/cancel
func (h *EventHandler) Cancel(c *gin.Context) {
	h.transition(c, "event.cancel", h.eventService.Cancel)
}

// Reinstate handles POST /api/v1/events/:id/reinstate
func (h *EventHandler) Reinstate(c *gin.Context) {
	h.transition(c, "event.reinstate", h.eventService.Reinstate)
}

func (h *EventHandler) transition(c *gin.Context, action string, fn func(string) (*models.Event, error)) {
	eventID := c.Param("id")

	event, err := fn(eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.auditService.Record(auditEntry(c, action, "event", &event.ID, map[string]interface{}{
		"status": event.Status,
	}))

	c.JSON(http.StatusOK, gin.H{
		"message": "Event is now " + string(event.Status),
		"event":   event,
	})
}

// CloseRequest represents the selection submitted when closing an event
type CloseRequest struct {
	SelectedIDs []string `json:"selected_ids"`
}

// Close handles POST /api/v1/events/:id/close
func (h *EventHandler) Close(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)
	eventID := c.Param("id")

	var req CloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	summary, err := h.eventService.Close(eventID, req.SelectedIDs, userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.auditService.Record(auditEntry(c, "event.close", "event", &eventID, map[string]interface{}{
		"awarded":  len(summary.Awarded),
		"rejected": len(summary.Rejected),
	}))

	c.JSON(http.StatusOK, gin.H{
		"message": "Event closed",
		"summary": summary,
	})
}

// Signups handles GET /api/v1/events/:id/signups
func (h *EventHandler) Signups(c *gin.Context) {
	signups, err := h.eventService.Signups(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"signups": signups,
		"count":   len(signups),
	})
}

// SignUp handles POST /api/v1/events/:id/signup
func (h *EventHandler) SignUp(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)
	eventID := c.Param("id")

	if err := h.eventService.SignUp(eventID, userCtx.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Signed up for event"})
}

// CancelSignUp handles DELETE /api/v1/events/:id/signup
func (h *EventHandler) CancelSignUp(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)
	eventID := c.Param("id")

	if err := h.eventService.CancelSignUp(eventID, userCtx.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Signup withdrawn"})
}

// BulkSignUpRequest represents an administrator signing up several staff
type BulkSignUpRequest struct {
	StaffIDs []string `json:"staff_ids" binding:"required"`
}

// BulkSignUp handles POST /api/v1/events/:id/signups/bulk
func (h *EventHandler) BulkSignUp(c *gin.Context) {
	eventID := c.Param("id")

	var req BulkSignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	results, err := h.eventService.BulkSignUp(eventID, req.StaffIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	succeeded := 0
	for _, r := range results {
		if r.OK {
			succeeded++
		}
	}

	h.auditService.Record(auditEntry(c, "event.bulk_signup", "event", &eventID, map[string]interface{}{
		"requested": len(req.StaffIDs),
		"succeeded": succeeded,
	}))

	c.JSON(http.StatusOK, gin.H{
		"results":   results,
		"succeeded": succeeded,
	})
}
