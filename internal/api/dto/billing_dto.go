package dto

import "time"

type CreateInvoiceDTO struct {
	OrderID string    `json:"order_id"`
	DueDate time.Time `json:"due_date"`
}

// PaymentWebhookDTO 金流回呼, status 為 confirmed / denied
type PaymentWebhookDTO struct {
	OrderID       string `json:"order_id"`
	Status        string `json:"status"`
	Method        string `json:"method"`
	TransactionID string `json:"transaction_id"`
	Reason        string `json:"reason,omitempty"`
}

type PaymentDTO struct {
	PaymentID     string    `json:"payment_id"`
	Amount        string    `json:"amount"`
	Method        string    `json:"method"`
	TransactionID string    `json:"transaction_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type InvoiceResponse struct {
	InvoiceID     string       `json:"invoice_id"`
	OrderID       string       `json:"order_id"`
	InvoiceNumber string       `json:"invoice_number"`
	DueDate       time.Time    `json:"due_date"`
	IsPaid        bool         `json:"is_paid"`
	Payments      []PaymentDTO `json:"payments,omitempty"`
}
