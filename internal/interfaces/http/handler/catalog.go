package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcatalog "github.com/quickbill/backend/internal/application/catalog"
	"github.com/quickbill/backend/internal/domain/shared/valueobject"
	"github.com/quickbill/backend/internal/interfaces/http/dto"
)

// CatalogHandler exposes the working catalog over HTTP
type CatalogHandler struct {
	BaseHandler
	store *appcatalog.Store
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(store *appcatalog.Store) *CatalogHandler {
	return &CatalogHandler{store: store}
}

// RegisterRoutes registers catalog routes
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/products")
	group.GET("", h.List)
	group.POST("", h.Add)
	group.DELETE("/:id", h.Delete)
}

// List returns the working catalog snapshot
func (h *CatalogHandler) List(c *gin.Context) {
	h.Success(c, h.store.Products())
}

// Add validates and writes a new product, remote-first
func (h *CatalogHandler) Add(c *gin.Context) {
	var req dto.AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Product name and price are required")
		return
	}

	price, err := valueobject.NewMoneyINRFromString(req.Price)
	if err != nil {
		h.BadRequest(c, "Price must be a decimal number")
		return
	}

	product, err := h.store.Add(c.Request.Context(), req.Name, price)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Delete removes a product, remote-first. Invoices that referenced it
// keep their snapshots.
func (h *CatalogHandler) Delete(c *gin.Context) {
	var req dto.ProductIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Product id must be a positive integer")
		return
	}

	var query dto.DeleteProductQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "remote_ref must be a UUID")
		return
	}

	remoteRef := uuid.Nil
	if query.RemoteRef != "" {
		remoteRef = uuid.MustParse(query.RemoteRef)
	}

	if err := h.store.Delete(c.Request.Context(), req.ID, remoteRef); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
