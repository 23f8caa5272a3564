package handler

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quickbill/backend/internal/domain/identity"
	"github.com/quickbill/backend/internal/infrastructure/auth"
	"github.com/quickbill/backend/internal/infrastructure/config"
	"github.com/quickbill/backend/internal/infrastructure/logger"
	"github.com/quickbill/backend/internal/interfaces/http/dto"
	"github.com/quickbill/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// AuthHandler signs the operator in and out. Credentials come from
// configuration; this is a single-operator tool, not a user directory.
type AuthHandler struct {
	BaseHandler
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	sessions   *auth.SessionProvider
	operator   config.OperatorConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(jwtService *auth.JWTService, blacklist auth.TokenBlacklist, sessions *auth.SessionProvider, operator config.OperatorConfig) *AuthHandler {
	return &AuthHandler{
		jwtService: jwtService,
		blacklist:  blacklist,
		sessions:   sessions,
		operator:   operator,
	}
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/auth")
	group.POST("/login", h.Login)
	group.POST("/logout", h.Logout)
}

// operatorID derives a stable operator id from the username so invoice
// ownership survives restarts and re-logins.
func operatorID(username string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("quickbill:operator:"+username))
}

// Login authenticates the operator and issues a session token
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Username and password are required")
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.operator.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.operator.Password)) == 1
	if !userOK || !passOK {
		logger.FromGin(c).Warn("login rejected", zap.String("username", req.Username))
		h.Unauthorized(c, "Invalid credentials")
		return
	}

	op := identity.Operator{ID: operatorID(req.Username), Name: req.Username}
	issued, err := h.jwtService.GenerateToken(op.ID, op.Name)
	if err != nil {
		logger.FromGin(c).Error("token generation failed", zap.Error(err))
		h.InternalError(c, "Could not issue session token")
		return
	}

	h.sessions.SetCurrent(op)
	logger.FromGin(c).Info("operator signed in", zap.String("operator_id", op.ID.String()))

	h.Success(c, dto.LoginResponse{
		Token:     issued.Token,
		TokenType: issued.TokenType,
		ExpiresAt: issued.ExpiresAt,
		Operator: dto.OperatorResponse{
			ID:   op.ID.String(),
			Name: op.Name,
		},
	})
}

// Logout revokes the session token and clears the operator identity
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "No active session")
		return
	}

	if claims.ID != "" {
		if err := h.blacklist.AddToBlacklist(c.Request.Context(), claims.ID, claims.GetRemainingTTL()); err != nil {
			logger.FromGin(c).Error("token revocation failed", zap.Error(err))
		}
	}

	h.sessions.Clear()
	logger.FromGin(c).Info("operator signed out", zap.String("operator_id", claims.OperatorID))
	h.NoContent(c)
}
