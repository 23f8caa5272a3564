package dto

// AddProductRequest is the payload for adding a catalog product.
// Price is a decimal string so values arrive exact.
type AddProductRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Price string `json:"price" binding:"required,decimal"`
}

// ProductIDRequest identifies a product by its catalog id path parameter
type ProductIDRequest struct {
	ID int `uri:"id" binding:"required,min=1"`
}

// DeleteProductQuery optionally carries the remote ref; when absent the
// server resolves it from the working catalog.
type DeleteProductQuery struct {
	RemoteRef string `form:"remote_ref" binding:"omitempty,uuid"`
}
