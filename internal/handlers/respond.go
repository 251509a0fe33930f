package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crewpoint/staff-events-backend/internal/engine"
	"github.com/crewpoint/staff-events-backend/internal/services"
)

// respondError maps a service error onto an HTTP status and the standard
// error body. Unrecognized errors become a 500 with a generic message so
// internals never leak to clients.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	switch {
	case errors.Is(err, engine.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": err.Error(),
			"code":    "INVALID_REQUEST",
		})
		return
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": err.Error(),
			"code":    "INVALID_CREDENTIALS",
		})
		return
	case errors.Is(err, engine.ErrInvalidTransition),
		errors.Is(err, engine.ErrAlreadySignedUp),
		errors.Is(err, engine.ErrLevelInUse):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrEventNotOpen),
		errors.Is(err, engine.ErrDeadlinePassed),
		errors.Is(err, engine.ErrLevelNotMet),
		errors.Is(err, engine.ErrNotSignedUp),
		errors.Is(err, engine.ErrInvalidReason):
		status = http.StatusUnprocessableEntity
	}

	code := engine.CodeFor(err)
	if status == http.StatusInternalServerError {
		message = "Something went wrong. Please try again later."
	}

	c.JSON(status, gin.H{
		"error":   http.StatusText(status),
		"message": message,
		"code":    code,
	})
}

// respondBadRequest is used for malformed request bodies
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "bad_request",
		"message": message,
		"code":    "INVALID_REQUEST",
	})
}
