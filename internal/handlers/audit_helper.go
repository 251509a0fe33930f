package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/crewpoint/staff-events-backend/internal/middleware"
	"github.com/crewpoint/staff-events-backend/internal/services"
	"github.com/crewpoint/staff-events-backend/internal/utils"
)

// auditEntry assembles an audit entry from the request context: the acting
// user (when authenticated), the real client IP, and the user agent.
func auditEntry(c *gin.Context, action, entityType string, entityID *string, details map[string]interface{}) services.Entry {
	entry := services.Entry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		IPAddress:  utils.GetRealIP(c),
		UserAgent:  utils.GetUserAgent(c),
		Details:    details,
	}
	if userCtx, ok := middleware.GetUserContext(c); ok {
		actorID := userCtx.UserID
		entry.ActorID = &actorID
	}
	return entry
}
