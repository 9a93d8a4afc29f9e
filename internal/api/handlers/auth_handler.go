package handlers

import (
	"context"
	"net/http"

	"github.com/andresuchdata/joyeria/backend-go/internal/api/middleware"
	"github.com/andresuchdata/joyeria/backend-go/internal/auth"
	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/andresuchdata/joyeria/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type AuthService interface {
	SignUp(ctx context.Context, in domain.SignUpInput) (*domain.User, error)
	SignIn(ctx context.Context, in domain.SignInInput, client domain.ClientInfo) (*service.Session, error)
	SignOut(ctx context.Context, claims *auth.Claims, client domain.ClientInfo)
	Me(ctx context.Context, userID string) (*domain.User, error)
}

type AuthHandler struct {
	auth AuthService
}

func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var in domain.SignUpInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := h.auth.SignUp(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var in domain.SignInInput
	if !bindJSON(c, &in) {
		return
	}
	session, err := h.auth.SignIn(c.Request.Context(), in, clientInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SignOut only records the logout; the client drops its token.
func (h *AuthHandler) SignOut(c *gin.Context) {
	if claims, ok := middleware.Claims(c); ok {
		h.auth.SignOut(c.Request.Context(), claims, clientInfo(c))
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		respondError(c, domain.ErrUnauthorized)
		return
	}
	user, err := h.auth.Me(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func clientInfo(c *gin.Context) domain.ClientInfo {
	return domain.ClientInfo{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}
