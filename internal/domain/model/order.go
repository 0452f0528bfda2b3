package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusQuote      OrderStatus = "QUOTE"       // 報價單，尚未付款
	OrderStatusApproved   OrderStatus = "APPROVED"    // 付款已確認
	OrderStatusInProgress OrderStatus = "IN_PROGRESS" // 備貨/施工中
	OrderStatusReady      OrderStatus = "READY"       // 可取貨
	OrderStatusFinished   OrderStatus = "FINISHED"    // 終態
	OrderStatusCanceled   OrderStatus = "CANCELED"    // 終態
)

// IsTerminal 終態訂單不允許任何狀態轉移
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusFinished || s == OrderStatusCanceled
}

type Order struct {
	OrderID     string          `gorm:"primaryKey;type:varchar(36)" json:"order_id"`
	ClientID    string          `gorm:"not null;type:varchar(36);index" json:"client_id"`
	Client      *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	CouponID    *string         `gorm:"type:varchar(36)" json:"coupon_id,omitempty"`
	Coupon      *Coupon         `gorm:"foreignKey:CouponID" json:"coupon,omitempty"`
	Status      OrderStatus     `gorm:"not null;type:varchar(20);default:'QUOTE'" json:"status"`
	TotalAmount decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"total_amount"`
	OrderItems  []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items"`
	Timeline    []OrderTimeline `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"timeline,omitempty"`
	BaseModel
}

// ComputeTotal 重新計算訂單總額
// 小計加總後套用折扣，不允許手動修改 TotalAmount
func (o *Order) ComputeTotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range o.OrderItems {
		subtotal = subtotal.Add(item.Subtotal())
	}
	if o.Coupon != nil && o.Coupon.Active {
		discount := subtotal.Mul(decimal.NewFromInt(int64(o.Coupon.DiscountPercent))).Div(decimal.NewFromInt(100))
		return subtotal.Sub(discount)
	}
	return subtotal
}

// OrderItem 建單時凍結商品描述與單價，之後商品改價不影響既有訂單
type OrderItem struct {
	OrderID     string          `gorm:"primaryKey;type:varchar(36)" json:"order_id"`
	ProductID   string          `gorm:"primaryKey;type:varchar(36)" json:"product_id"`
	Description string          `gorm:"not null;type:varchar(150)" json:"description"`
	Quantity    int             `gorm:"not null;type:int" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"unit_price"`
	ProductType ProductType     `gorm:"not null;type:varchar(20)" json:"product_type"`
	BaseModel
}

func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderTimeline 每次狀態變更追加一筆，當作審計紀錄
type OrderTimeline struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	OrderID   string      `gorm:"not null;type:varchar(36);index" json:"order_id"`
	Status    OrderStatus `gorm:"not null;type:varchar(20)" json:"status"`
	Note      string      `gorm:"type:varchar(200)" json:"note"`
	Timestamp time.Time   `gorm:"not null;default:now()" json:"timestamp"`
}
