package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/bikeshop/internal/domain/model"
	"github.com/RoyceAzure/lab/bikeshop/internal/infra/repository/db"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type IBillingService interface {
	CreateInvoiceForOrder(ctx context.Context, orderID string, dueDate time.Time) (*model.Invoice, error)
	GetInvoice(ctx context.Context, orderID string) (*model.Invoice, error)
	HandlePaymentConfirmed(ctx context.Context, orderID string, method model.PaymentMethod, transactionID string) error
	HandlePaymentDenied(ctx context.Context, orderID string, reason string) error
}

// BillingService 帳務，金流回呼在這裡落地成付款紀錄並驅動訂單狀態
type BillingService struct {
	store  db.UnifiedDB
	orders IOrderService
	logger *zerolog.Logger
}

func NewBillingService(store db.UnifiedDB, orders IOrderService, logger *zerolog.Logger) *BillingService {
	return &BillingService{
		store:  store,
		orders: orders,
		logger: logger,
	}
}

// CreateInvoiceForOrder 一張訂單只開一張發票，重複呼叫回傳既有那張
func (s *BillingService) CreateInvoiceForOrder(ctx context.Context, orderID string, dueDate time.Time) (*model.Invoice, error) {
	existing, err := s.store.GetInvoiceByOrderID(ctx, orderID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, db.ErrInvoiceNotFound) {
		return nil, err
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	invoice := &model.Invoice{
		InvoiceID:     uuid.New().String(),
		OrderID:       order.OrderID,
		InvoiceNumber: fmt.Sprintf("INV-%s-%s", time.Now().Format("20060102"), order.OrderID[:8]),
		DueDate:       dueDate,
	}

	err = s.store.Transaction(ctx, func(tx *gorm.DB) error {
		return s.store.CreateInvoice(ctx, tx, invoice)
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *BillingService) GetInvoice(ctx context.Context, orderID string) (*model.Invoice, error) {
	return s.store.GetInvoiceByOrderID(ctx, orderID)
}

// HandlePaymentConfirmed 金流確認回呼
//
// 寫入付款紀錄並把發票標記已付，再轉單為 APPROVED。
// ApprovePayment 本身冪等，重複回呼不會重複轉移
func (s *BillingService) HandlePaymentConfirmed(ctx context.Context, orderID string, method model.PaymentMethod, transactionID string) error {
	invoice, err := s.store.GetInvoiceByOrderID(ctx, orderID)
	if err != nil {
		return err
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !invoice.IsPaid {
		payment := &model.Payment{
			PaymentID:     uuid.New().String(),
			InvoiceID:     invoice.InvoiceID,
			Amount:        order.TotalAmount,
			Method:        method,
			TransactionID: transactionID,
		}
		err = s.store.Transaction(ctx, func(tx *gorm.DB) error {
			return s.store.AddPayment(ctx, tx, payment)
		})
		if err != nil {
			return err
		}
	}

	return s.orders.ApprovePayment(ctx, orderID)
}

// HandlePaymentDenied 金流拒絕回呼，取消報價單讓商品回到可售狀態
func (s *BillingService) HandlePaymentDenied(ctx context.Context, orderID string, reason string) error {
	s.logger.Warn().
		Str("order_id", orderID).
		Str("reason", reason).
		Msg("payment denied, canceling order")

	return s.orders.CancelOrder(ctx, orderID)
}

var _ IBillingService = (*BillingService)(nil)
