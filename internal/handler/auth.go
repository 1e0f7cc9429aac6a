package handler

import (
	"net/http"
	"time"

	"compliance-tracker/internal/config"
	"compliance-tracker/internal/logger"
	"compliance-tracker/internal/middleware"
	"compliance-tracker/internal/model"
	"compliance-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth *service.AuthService
	cfg  config.AuthConfig
}

func NewAuthHandler(auth *service.AuthService, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{auth: auth, cfg: cfg}
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, business, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("owner registered", "uid", user.ID, "business", business.ID)

	p := model.Principal{UserID: user.ID, BusinessID: business.ID, Role: model.RoleOwner}
	token, err := middleware.IssueToken([]byte(h.cfg.JWTSecret), p, h.tokenTTL())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.LoginResponse{Token: token, User: p})
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		logger.Warn("login failed", "email", req.Email)
		respondError(c, err)
		return
	}

	businessID := 0
	if user.BusinessID != nil {
		businessID = *user.BusinessID
	}
	p := model.Principal{UserID: user.ID, BusinessID: businessID, Role: user.Role}
	token, err := middleware.IssueToken([]byte(h.cfg.JWTSecret), p, h.tokenTTL())
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("login ok", "uid", user.ID, "role", user.Role)
	c.JSON(http.StatusOK, model.LoginResponse{Token: token, User: p})
}

func (h *AuthHandler) tokenTTL() time.Duration {
	return time.Duration(h.cfg.TokenTTLHrs) * time.Hour
}
