package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcatalog "github.com/quickbill/backend/internal/application/catalog"
	"github.com/quickbill/backend/internal/domain/catalog"
	"github.com/quickbill/backend/internal/interfaces/http/dto"
	"github.com/quickbill/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) FindAll(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *mockProductRepository) Delete(ctx context.Context, remoteRef uuid.UUID) error {
	args := m.Called(ctx, remoteRef)
	return args.Error(0)
}

func setupCatalogRouter(repo *mockProductRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
	engine := gin.New()
	store := appcatalog.NewStore(repo, zap.NewNop())
	h := NewCatalogHandler(store)
	h.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func TestCatalogHandler_List(t *testing.T) {
	repo := new(mockProductRepository)
	engine := setupCatalogRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool              `json:"success"`
		Data    []catalog.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 6)
	assert.Equal(t, "Groundnut Oil 1L", resp.Data[0].Name)
}

func TestCatalogHandler_Add(t *testing.T) {
	t.Run("creates product remote-first", func(t *testing.T) {
		repo := new(mockProductRepository)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)
		engine := setupCatalogRouter(repo)

		body, _ := json.Marshal(dto.AddProductRequest{Name: "Olive Oil 250ml", Price: "399.50"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Data catalog.Product `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 7, resp.Data.CatalogID)
		assert.Equal(t, "Olive Oil 250ml", resp.Data.Name)
		repo.AssertExpectations(t)
	})

	t.Run("rejects non-decimal price before any remote call", func(t *testing.T) {
		repo := new(mockProductRepository)
		engine := setupCatalogRouter(repo)

		body := []byte(`{"name":"Olive Oil","price":"cheap"}`)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("maps remote write failure to 502", func(t *testing.T) {
		repo := new(mockProductRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)
		engine := setupCatalogRouter(repo)

		body, _ := json.Marshal(dto.AddProductRequest{Name: "Olive Oil 250ml", Price: "399.50"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadGateway, w.Code)

		var resp struct {
			Error *dto.ErrorInfo `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, "REMOTE_WRITE_FAILURE", resp.Error.Code)
	})
}

func TestCatalogHandler_Delete(t *testing.T) {
	t.Run("resolves remote ref from catalog id", func(t *testing.T) {
		repo := new(mockProductRepository)
		remoteRef := uuid.New()
		repo.On("FindAll", mock.Anything).Return([]catalog.Product{
			{RemoteRef: remoteRef, CatalogID: 1, Name: "Groundnut Oil 1L"},
		}, nil)
		repo.On("Delete", mock.Anything, remoteRef).Return(nil)

		gin.SetMode(gin.TestMode)
		engine := gin.New()
		store := appcatalog.NewStore(repo, zap.NewNop())
		store.Load(context.Background())
		NewCatalogHandler(store).RegisterRoutes(engine.Group("/api/v1"))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/1", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		repo.AssertExpectations(t)
	})

	t.Run("unresolvable product yields validation error", func(t *testing.T) {
		repo := new(mockProductRepository)
		engine := setupCatalogRouter(repo)

		// Default catalog entries carry no remote ref
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/1", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
