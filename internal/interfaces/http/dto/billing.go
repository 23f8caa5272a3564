package dto

// AddLineRequest adds a catalog product to the in-progress bill
type AddLineRequest struct {
	CatalogID int   `json:"catalog_id" binding:"required,min=1"`
	Quantity  int64 `json:"quantity" binding:"required,min=1"`
}

// QuantityRequest replaces the quantity of an existing line
type QuantityRequest struct {
	Quantity int64 `json:"quantity" binding:"required"`
}

// CustomerRequest records free-text customer details on the bill
type CustomerRequest struct {
	Name  string `json:"name" binding:"max=200"`
	Phone string `json:"phone" binding:"max=32"`
}

// LineIDRequest identifies a line item by its id path parameter
type LineIDRequest struct {
	LineID string `uri:"line_id" binding:"required,uuid"`
}

// HistoryRequest carries the optional case-insensitive history filter
type HistoryRequest struct {
	Query string `form:"q"`
}
