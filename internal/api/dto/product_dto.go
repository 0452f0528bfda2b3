package dto

type ProductDTO struct {
	ProductID    string `json:"product_id"`
	Sku          string `json:"sku"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	ProductType  string `json:"product_type"`
	SellingPrice string `json:"selling_price"`
	Stock        int    `json:"stock"`
	IsActive     bool   `json:"is_active"`
}
