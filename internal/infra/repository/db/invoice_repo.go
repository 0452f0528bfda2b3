package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/bikeshop/internal/domain/model"
	"gorm.io/gorm"
)

var (
	// ErrInvoiceNotFound 發票不存在
	ErrInvoiceNotFound = errors.New("invoice not found")
)

type InvoiceRepo struct {
	db *DbDao
}

func NewInvoiceRepo(db *DbDao) *InvoiceRepo {
	return &InvoiceRepo{db: db}
}

func (s *InvoiceRepo) CreateInvoice(ctx context.Context, tx *gorm.DB, invoice *model.Invoice) error {
	if tx == nil {
		tx = s.db.DB
	}
	return tx.WithContext(ctx).Create(invoice).Error
}

func (s *InvoiceRepo) GetInvoiceByOrderID(ctx context.Context, orderID string) (*model.Invoice, error) {
	var invoice model.Invoice
	err := s.db.WithContext(ctx).
		Preload("Payments").
		Where("order_id = ?", orderID).
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// AddPayment 收款入帳並標記發票已付
func (s *InvoiceRepo) AddPayment(ctx context.Context, tx *gorm.DB, payment *model.Payment) error {
	if tx == nil {
		tx = s.db.DB
	}
	if err := tx.WithContext(ctx).Create(payment).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Model(&model.Invoice{}).
		Where("invoice_id = ?", payment.InvoiceID).
		Update("is_paid", true).Error
}
