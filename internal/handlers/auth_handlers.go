package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const tokenLifetime = 12 * time.Hour

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	jwtSecret  string
	accessCode string
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(jwtSecret, accessCode string) *AuthHandlers {
	return &AuthHandlers{jwtSecret: jwtSecret, accessCode: accessCode}
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Operator   string `json:"operator" validate:"required"`
	AccessCode string `json:"access_code" validate:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token     string `json:"token"`
	Operator  string `json:"operator"`
	ExpiresAt string `json:"expires_at"`
}

// Login exchanges the operator name and shared store access code for a JWT.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	req.Operator = strings.TrimSpace(req.Operator)
	if req.Operator == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Operator name is required")
	}
	if req.AccessCode != h.accessCode {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid access code")
	}

	expiresAt := time.Now().Add(tokenLifetime)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"operator": req.Operator,
		"iat":      time.Now().Unix(),
		"exp":      expiresAt.Unix(),
	})

	signed, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to sign token")
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Token:     signed,
		Operator:  req.Operator,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}
