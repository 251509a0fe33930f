package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crewpoint/staff-events-backend/internal/middleware"
	"github.com/crewpoint/staff-events-backend/internal/services"
)

// AuthHandler handles registration, login, and token refresh
type AuthHandler struct {
	authService  *services.AuthService
	staffService *services.StaffService
	auditService *services.AuditService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	authService *services.AuthService,
	staffService *services.StaffService,
	auditService *services.AuditService,
) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		staffService: staffService,
		auditService: auditService,
	}
}

// RegisterRequest represents the request to create a staff account
type RegisterRequest struct {
	Email    string  `json:"email" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Password string  `json:"password" binding:"required"`
	Phone    *string `json:"phone"`
	ChatID   *string `json:"chat_id"`
}

// LoginRequest represents the request to log in with email and password
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the request to rotate an access token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	member, err := h.authService.Register(req.Email, req.Name, req.Password, req.Phone, req.ChatID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.auditService.Record(auditEntry(c, "auth.register", "staff", &member.ID, map[string]interface{}{
		"email": member.Email,
	}))

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created. An administrator will review your registration.",
		"staff":   member,
	})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	member, tokens, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.auditService.Record(auditEntry(c, "auth.login", "staff", &member.ID, map[string]interface{}{
		"email": member.Email,
	}))

	c.JSON(http.StatusOK, gin.H{
		"message":       "Logged in successfully",
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"token_type":    "Bearer",
		"staff":         member,
	})
}

// Refresh handles POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	tokens, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"token_type":    "Bearer",
	})
}

// GetProfile handles GET /api/v1/auth/profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	member, err := h.staffService.GetByID(userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}

// UpdateProfileRequest represents the request to update the caller's profile
type UpdateProfileRequest struct {
	Name   string  `json:"name" binding:"required"`
	Phone  *string `json:"phone"`
	ChatID *string `json:"chat_id"`
}

// UpdateProfile handles PUT /api/v1/auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	member, err := h.staffService.UpdateProfile(userCtx.UserID, req.Name, req.Phone, req.ChatID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"profile": member,
	})
}
