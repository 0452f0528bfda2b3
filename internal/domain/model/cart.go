package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CartOwner 購物車擁有者
// 登入用戶用 client id，匿名訪客用 session key，由表現層解析成單一 key
type CartOwner struct {
	ClientID   string
	SessionKey string
}

func UserCartOwner(clientID string) CartOwner {
	return CartOwner{ClientID: clientID}
}

func SessionCartOwner(sessionKey string) CartOwner {
	return CartOwner{SessionKey: sessionKey}
}

func (o CartOwner) Key() string {
	if o.ClientID != "" {
		return fmt.Sprintf("user:%s", o.ClientID)
	}
	return fmt.Sprintf("session:%s", o.SessionKey)
}

// Cart 購物車只存在 Redis，結帳成功後整車轉入訂單並清空
type Cart struct {
	Owner    CartOwner  `json:"owner"`
	Items    []CartItem `json:"items"`
	CouponID string     `json:"coupon_id,omitempty"`
}

// CartItem 加入購物車當下快照單價，之後商品改價不影響已暫存的項目
type CartItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (i *CartItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// TotalPrice 未折扣小計加總
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ItemCount 數量加總（非品項數），給前台顯示與空車檢查用
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

func (c *Cart) IsEmpty() bool {
	return c.ItemCount() == 0
}

// ResolvedCartItem 購物車項目加上即時商品資訊，給前台顯示用
type ResolvedCartItem struct {
	Product   *Product        `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}
