package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/crewpoint/staff-events-backend/internal/engine"
	"github.com/crewpoint/staff-events-backend/internal/models"
	"github.com/crewpoint/staff-events-backend/pkg/jwt"
)

// ErrInvalidCredentials is returned for any login failure so the response
// never reveals whether the email exists.
var ErrInvalidCredentials = errors.New("invalid email or password")

// TokenPair holds a freshly issued access and refresh token
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService handles registration, login, and token refresh
type AuthService struct {
	staff      StaffStore
	jwtService *jwt.Service
	bcryptCost int
}

// NewAuthService creates a new AuthService
func NewAuthService(staff StaffStore, jwtService *jwt.Service, bcryptCost int) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		staff:      staff,
		jwtService: jwtService,
		bcryptCost: bcryptCost,
	}
}

// Register creates a new staff account in pending status. An admin has to
// activate the account before it can sign up for events.
func (s *AuthService) Register(email, name, password string, phone, chatID *string) (*models.StaffMember, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email address is required", ErrInvalidInput)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	existing, err := s.staff.GetByEmail(email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: an account with this email already exists", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hash)

	member := &models.StaffMember{
		Email:        email,
		Name:         strings.TrimSpace(name),
		Phone:        phone,
		ChatID:       chatID,
		PasswordHash: &hashStr,
		Status:       models.StaffStatusPending,
	}

	if err := s.staff.Create(member); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return member, nil
}

// Login verifies credentials and issues a token pair
func (s *AuthService) Login(email, password string) (*models.StaffMember, TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	member, err := s.staff.GetByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, TokenPair{}, ErrInvalidCredentials
		}
		return nil, TokenPair{}, fmt.Errorf("failed to load account: %w", err)
	}

	if member.PasswordHash == nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*member.PasswordHash), []byte(password)); err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	if member.Status == models.StaffStatusInactive {
		return nil, TokenPair{}, fmt.Errorf("%w: account is deactivated", engine.ErrForbidden)
	}

	pair, err := s.issueTokens(member)
	if err != nil {
		return nil, TokenPair{}, err
	}

	return member, pair, nil
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *AuthService) Refresh(refreshToken string) (TokenPair, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, fmt.Errorf("invalid refresh token: %w", err)
	}

	member, err := s.staff.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TokenPair{}, fmt.Errorf("%w: staff %s", engine.ErrNotFound, claims.UserID)
		}
		return TokenPair{}, fmt.Errorf("failed to load account: %w", err)
	}

	if member.Status == models.StaffStatusInactive {
		return TokenPair{}, fmt.Errorf("%w: account is deactivated", engine.ErrForbidden)
	}

	return s.issueTokens(member)
}

func (s *AuthService) issueTokens(member *models.StaffMember) (TokenPair, error) {
	role := models.RoleStaff
	if member.HasRole(models.RoleAdmin) {
		role = models.RoleAdmin
	}

	access, err := s.jwtService.GenerateAccessToken(member.ID, member.Email, role)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, err := s.jwtService.GenerateRefreshToken(member.ID, member.Email)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
