package dto

import "time"

type CheckoutDTO struct {
	ClientID string `json:"client_id"`
}

type SetStatusDTO struct {
	Status string `json:"status"`
}

type OrderItemDTO struct {
	ProductID   string `json:"product_id"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Subtotal    string `json:"subtotal"`
}

type OrderResponse struct {
	OrderID     string         `json:"order_id"`
	ClientID    string         `json:"client_id"`
	CouponID    string         `json:"coupon_id,omitempty"`
	Status      string         `json:"status"`
	TotalAmount string         `json:"total_amount"`
	Items       []OrderItemDTO `json:"items"`
	CreatedAt   time.Time      `json:"created_at"`
}

type PagingMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

type TimelineEntryDTO struct {
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
