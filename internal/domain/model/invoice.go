package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodPix        PaymentMethod = "PIX"
	PaymentMethodCreditCard PaymentMethod = "CC"
	PaymentMethodDebitCard  PaymentMethod = "CD"
	PaymentMethodCash       PaymentMethod = "CASH"
)

// Invoice 一張訂單對應一張發票
type Invoice struct {
	InvoiceID     string    `gorm:"primaryKey;type:varchar(36)" json:"invoice_id"`
	OrderID       string    `gorm:"not null;type:varchar(36);unique" json:"order_id"`
	Order         *Order    `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	InvoiceNumber string    `gorm:"not null;type:varchar(50);unique" json:"invoice_number"`
	DueDate       time.Time `gorm:"not null" json:"due_date"`
	IsPaid        bool      `gorm:"not null;default:false" json:"is_paid"`
	Payments      []Payment `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
	BaseModel
}

// Payment 一張發票可以收多筆款（訂金 + 尾款）
type Payment struct {
	PaymentID     string          `gorm:"primaryKey;type:varchar(36)" json:"payment_id"`
	InvoiceID     string          `gorm:"not null;type:varchar(36);index" json:"invoice_id"`
	Amount        decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"amount"`
	Method        PaymentMethod   `gorm:"not null;type:varchar(10)" json:"method"`
	TransactionID string          `gorm:"type:varchar(100)" json:"transaction_id"`
	BaseModel
}
