package dto

// AddCartItemDTO replace 為 true 時直接覆寫數量, 否則累加
type AddCartItemDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Replace   bool   `json:"replace"`
}

type ApplyCouponDTO struct {
	Code string `json:"code"`
}

type CartItemDTO struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

type CartResponse struct {
	Items        []CartItemDTO `json:"items"`
	CouponID     string        `json:"coupon_id,omitempty"`
	TotalPrice   string        `json:"total_price"`
	ItemCount    int           `json:"item_count"`
	LimitReached bool          `json:"limit_reached,omitempty"`
}
