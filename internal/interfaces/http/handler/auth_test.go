package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quickbill/backend/internal/infrastructure/auth"
	"github.com/quickbill/backend/internal/infrastructure/config"
	"github.com/quickbill/backend/internal/interfaces/http/dto"
	"github.com/quickbill/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthRouter() (*gin.Engine, *auth.SessionProvider, auth.TokenBlacklist) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:          "test-secret-for-unit-tests-only-0000",
		TokenExpiration: time.Hour,
		Issuer:          "quickbill-test",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	sessions := auth.NewSessionProvider()

	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths:      []string{"/api/v1/auth/login"},
	}))

	h := NewAuthHandler(jwtService, blacklist, sessions, config.OperatorConfig{
		Username: "operator",
		Password: "s3cret",
	})
	h.RegisterRoutes(api)
	return engine, sessions, blacklist
}

func doLogin(t *testing.T, engine *gin.Engine, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(dto.LoginRequest{Username: username, Password: password})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("valid credentials issue a token and set the operator", func(t *testing.T) {
		engine, sessions, _ := setupAuthRouter()

		w := doLogin(t, engine, "operator", "s3cret")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data dto.LoginResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Data.Token)
		assert.Equal(t, "Bearer", resp.Data.TokenType)
		assert.Equal(t, "operator", resp.Data.Operator.Name)

		op, ok := sessions.Current(context.Background())
		require.True(t, ok)
		assert.Equal(t, "operator", op.Name)
	})

	t.Run("same username always maps to the same operator id", func(t *testing.T) {
		engine, sessions, _ := setupAuthRouter()

		doLogin(t, engine, "operator", "s3cret")
		first, _ := sessions.Current(context.Background())
		doLogin(t, engine, "operator", "s3cret")
		second, _ := sessions.Current(context.Background())

		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		engine, sessions, _ := setupAuthRouter()

		w := doLogin(t, engine, "operator", "wrong")
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		_, ok := sessions.Current(context.Background())
		assert.False(t, ok)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	engine, sessions, _ := setupAuthRouter()

	w := doLogin(t, engine, "operator", "s3cret")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data dto.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	token := resp.Data.Token

	t.Run("logout revokes the token and clears the operator", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusNoContent, w.Code)

		_, ok := sessions.Current(context.Background())
		assert.False(t, ok)
	})

	t.Run("revoked token is rejected afterwards", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("logout without a token is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
