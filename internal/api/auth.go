package api

import (
	"crypto/subtle"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodtracking/backend/internal/types"
)

// TokenIssuer signs bearer tokens for clients.
type TokenIssuer interface {
	Issue(clientID string) (string, error)
}

// AuthHandler exchanges the shared client secret for a bearer token.
type AuthHandler struct {
	issuer TokenIssuer
	secret string
}

// NewAuthHandler creates a new AuthHandler. An empty secret disables the
// exchange; tokens must then be minted with foodctl.
func NewAuthHandler(issuer TokenIssuer, secret string) *AuthHandler {
	return &AuthHandler{issuer: issuer, secret: secret}
}

// RegisterRoutes registers the unauthenticated auth routes.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/token", h.Token)
	}
}

func (h *AuthHandler) Token(c *gin.Context) {
	if h.secret == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "token exchange is disabled"})
		return
	}

	var req types.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_id and secret are required"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.secret)) != 1 {
		log.Printf("[AuthHandler] Rejected token request for client %q", req.ClientID)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.issuer.Issue(req.ClientID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "token_type": "Bearer"})
}
