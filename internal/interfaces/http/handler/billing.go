package handler

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbilling "github.com/quickbill/backend/internal/application/billing"
	appcatalog "github.com/quickbill/backend/internal/application/catalog"
	"github.com/quickbill/backend/internal/domain/billing"
	"github.com/quickbill/backend/internal/interfaces/http/dto"
	"github.com/quickbill/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
)

// billResponse is the composed bill with live totals
type billResponse struct {
	State         string             `json:"state"`
	CustomerName  string             `json:"customer_name"`
	CustomerPhone string             `json:"customer_phone"`
	Lines         []billing.LineItem `json:"lines"`
	Totals        billing.Totals     `json:"totals"`
}

// BillingHandler exposes bill composition, the invoice lifecycle and
// invoice history over HTTP. The composer is a single shared session;
// this is a one-operator tool.
type BillingHandler struct {
	BaseHandler
	store     *appcatalog.Store
	lifecycle *appbilling.Lifecycle
	history   *appbilling.History
	taxRate   decimal.Decimal

	mu       sync.Mutex
	composer *appbilling.Composer
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(store *appcatalog.Store, lifecycle *appbilling.Lifecycle, history *appbilling.History, taxRate decimal.Decimal) *BillingHandler {
	return &BillingHandler{
		store:     store,
		lifecycle: lifecycle,
		history:   history,
		taxRate:   taxRate,
		composer:  appbilling.NewComposer(),
	}
}

// RegisterRoutes registers billing routes
func (h *BillingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	bill := rg.Group("/bill")
	bill.GET("", h.GetBill)
	bill.DELETE("", h.ClearBill)
	bill.POST("/lines", h.AddLine)
	bill.PUT("/lines/:line_id", h.SetQuantity)
	bill.DELETE("/lines/:line_id", h.RemoveLine)
	bill.PUT("/customer", h.SetCustomer)

	invoices := rg.Group("/invoices")
	invoices.POST("/draft", h.GenerateDraft)
	invoices.POST("", h.SaveDraft)
	invoices.GET("", h.ListInvoices)
	invoices.POST("/:id/view", h.ViewInvoice)
}

func (h *BillingHandler) bill() billResponse {
	h.mu.Lock()
	defer h.mu.Unlock()
	name, phone := h.composer.Customer()
	lines := h.composer.Lines()
	return billResponse{
		State:         string(h.lifecycle.State()),
		CustomerName:  name,
		CustomerPhone: phone,
		Lines:         lines,
		Totals:        billing.ComputeTotals(lines, h.taxRate),
	}
}

// GetBill returns the in-progress bill with live totals
func (h *BillingHandler) GetBill(c *gin.Context) {
	h.Success(c, h.bill())
}

// ClearBill discards the composed bill and any unsaved draft
func (h *BillingHandler) ClearBill(c *gin.Context) {
	h.mu.Lock()
	h.composer.Clear()
	h.mu.Unlock()
	h.lifecycle.Discard()
	h.NoContent(c)
}

// AddLine snapshots a catalog product onto the bill
func (h *BillingHandler) AddLine(c *gin.Context) {
	var req dto.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "catalog_id and a quantity of at least 1 are required")
		return
	}

	product, ok := h.store.FindByCatalogID(req.CatalogID)
	if !ok {
		h.NotFound(c, "Product is not in the catalog")
		return
	}

	h.mu.Lock()
	line, err := h.composer.AddLine(product, req.Quantity)
	h.mu.Unlock()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, line)
}

// SetQuantity replaces the quantity of an existing line
func (h *BillingHandler) SetQuantity(c *gin.Context) {
	var uri dto.LineIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "line_id must be a UUID")
		return
	}
	var req dto.QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "quantity is required")
		return
	}

	h.mu.Lock()
	err := h.composer.SetQuantity(uuid.MustParse(uri.LineID), req.Quantity)
	h.mu.Unlock()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.bill())
}

// RemoveLine drops a line from the bill
func (h *BillingHandler) RemoveLine(c *gin.Context) {
	var uri dto.LineIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "line_id must be a UUID")
		return
	}

	h.mu.Lock()
	err := h.composer.RemoveLine(uuid.MustParse(uri.LineID))
	h.mu.Unlock()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SetCustomer records the free-text customer details
func (h *BillingHandler) SetCustomer(c *gin.Context) {
	var req dto.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Customer details are malformed")
		return
	}

	h.mu.Lock()
	h.composer.SetCustomer(req.Name, req.Phone)
	h.mu.Unlock()
	h.Success(c, h.bill())
}

// GenerateDraft computes totals and stamps an invoice number. Purely
// local; nothing is written until SaveDraft.
func (h *BillingHandler) GenerateDraft(c *gin.Context) {
	h.mu.Lock()
	name, phone := h.composer.Customer()
	lines := h.composer.Lines()
	h.mu.Unlock()

	draft, err := h.lifecycle.GenerateDraft(c.Request.Context(), name, phone, lines)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, draft)
}

// SaveDraft persists the computed draft. On failure the draft is kept
// for retry; on success the composed bill is cleared.
func (h *BillingHandler) SaveDraft(c *gin.Context) {
	invoice, err := h.lifecycle.SaveDraft(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.mu.Lock()
	h.composer.Clear()
	h.mu.Unlock()
	h.Created(c, invoice)
}

// ListInvoices returns the operator's saved invoices, newest first,
// optionally filtered case-insensitively by number, customer or date.
func (h *BillingHandler) ListInvoices(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "No active session")
		return
	}
	ownerID, err := claims.GetOperatorUUID()
	if err != nil {
		h.Unauthorized(c, "Invalid operator identity")
		return
	}

	var req dto.HistoryRequest
	_ = c.ShouldBindQuery(&req)

	invoices, err := h.history.List(c.Request.Context(), ownerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.history.Filter(invoices, req.Query))
}

// ViewInvoice recalls a saved invoice read-only; stored totals are
// displayed as-is.
func (h *BillingHandler) ViewInvoice(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "No active session")
		return
	}
	ownerID, err := claims.GetOperatorUUID()
	if err != nil {
		h.Unauthorized(c, "Invalid operator identity")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invoice id must be a UUID")
		return
	}

	invoices, err := h.history.List(c.Request.Context(), ownerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	for _, inv := range invoices {
		if inv.PersistedID != nil && *inv.PersistedID == invoiceID {
			if err := h.lifecycle.View(inv); err != nil {
				h.HandleError(c, err)
				return
			}
			h.Success(c, inv)
			return
		}
	}
	h.NotFound(c, "Invoice not found")
}
