package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/bikeshop/internal/domain/model"
	"gorm.io/gorm"
)

var (
	// ErrOrderNotFound 訂單不存在
	ErrOrderNotFound = errors.New("order not found")
)

type OrderRepo struct {
	db *DbDao
}

func NewOrderRepo(db *DbDao) *OrderRepo {
	return &OrderRepo{db: db}
}

// Create - 創建訂單（含訂單項目）
func (s *OrderRepo) CreateOrder(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	if tx == nil {
		tx = s.db.DB
	}
	return tx.WithContext(ctx).Create(order).Error
}

// Read - 根據ID查詢訂單
func (s *OrderRepo) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).
		Preload("OrderItems").
		Preload("Coupon").
		Preload("Client").
		First(&order, "order_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderByIDForUpdate 鎖定訂單列後回傳，狀態轉移期間擋住並發的重複操作
func (s *OrderRepo) GetOrderByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*model.Order, error) {
	var order model.Order
	err := tx.WithContext(ctx).
		Clauses(lockForUpdate()).
		First(&order, "order_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := tx.WithContext(ctx).Where("order_id = ?", id).Find(&order.OrderItems).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// Read - 根據客戶查詢訂單，新到舊
func (s *OrderRepo) GetOrdersByClientID(ctx context.Context, clientID string) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).
		Preload("OrderItems").
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// Read - 查詢所有訂單
func (s *OrderRepo) GetAllOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).
		Preload("OrderItems").
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// Read - 根據狀態查詢訂單，給後台看板用
func (s *OrderRepo) GetOrdersByStatus(ctx context.Context, statuses ...model.OrderStatus) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).
		Preload("OrderItems").
		Where("status IN ?", statuses).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// Update - 更新訂單狀態
func (s *OrderRepo) UpdateOrderStatus(ctx context.Context, tx *gorm.DB, id string, status model.OrderStatus) error {
	if tx == nil {
		tx = s.db.DB
	}
	return tx.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", id).
		Update("status", status).Error
}

// AppendTimeline 狀態變更追加審計紀錄
func (s *OrderRepo) AppendTimeline(ctx context.Context, tx *gorm.DB, entry *model.OrderTimeline) error {
	if tx == nil {
		tx = s.db.DB
	}
	return tx.WithContext(ctx).Create(entry).Error
}

// Read - 查詢訂單審計紀錄，舊到新
func (s *OrderRepo) GetTimeline(ctx context.Context, orderID string) ([]model.OrderTimeline, error) {
	var entries []model.OrderTimeline
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("timestamp ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

// Delete - 硬刪除訂單（項目與審計紀錄級聯刪除）
func (s *OrderRepo) HardDeleteOrder(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Unscoped().Where("order_id = ?", id).Delete(&model.Order{}).Error
}

// 分頁查詢訂單
func (s *OrderRepo) GetOrdersPaginated(ctx context.Context, page, pageSize int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	offset := (page - 1) * pageSize

	s.db.WithContext(ctx).Model(&model.Order{}).Count(&total)

	err := s.db.WithContext(ctx).
		Preload("OrderItems").
		Order("created_at DESC").
		Offset(offset).Limit(pageSize).
		Find(&orders).Error

	return orders, total, err
}
