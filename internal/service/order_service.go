package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/RoyceAzure/lab/bikeshop/internal/domain/model"
	"github.com/RoyceAzure/lab/bikeshop/internal/infra/producer"
	"github.com/RoyceAzure/lab/bikeshop/internal/infra/repository/db"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type IOrderService interface {
	Checkout(ctx context.Context, owner model.CartOwner, clientID string) (*model.Order, error)
	ApprovePayment(ctx context.Context, orderID string) error
	CancelOrder(ctx context.Context, orderID string) error
	SetStatus(ctx context.Context, orderID string, status model.OrderStatus) error
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
	GetOrdersByClientID(ctx context.Context, clientID string) ([]model.Order, error)
	GetAllOrders(ctx context.Context) ([]model.Order, error)
	GetOrdersPaginated(ctx context.Context, page, pageSize int) ([]model.Order, int64, error)
	GetTimeline(ctx context.Context, orderID string) ([]model.OrderTimeline, error)
}

// OrderService 訂單事務協調器
//
// 庫存扣減只發生一次：結帳（購物車轉訂單）時。付款確認是純狀態轉移，
// 取消訂單時用凍結數量做補償返還。並發安全全靠商品列的行鎖，
// 事務內固定依商品ID排序加鎖避免死鎖。
type OrderService struct {
	store  db.UnifiedDB
	carts  CartStore
	events producer.OrderEventProducer
	logger *zerolog.Logger
}

func NewOrderService(store db.UnifiedDB, carts CartStore, events producer.OrderEventProducer, logger *zerolog.Logger) *OrderService {
	return &OrderService{
		store:  store,
		carts:  carts,
		events: events,
		logger: logger,
	}
}

// setStatusTransitions SetStatus 只處理沒有庫存副作用的轉移
// APPROVED / CANCELED 各有專屬操作
var setStatusTransitions = map[model.OrderStatus]model.OrderStatus{
	model.OrderStatusInProgress: model.OrderStatusApproved,
	model.OrderStatusReady:      model.OrderStatusInProgress,
	model.OrderStatusFinished:   model.OrderStatusReady,
}

// Checkout 購物車轉訂單
//
// 整段在單一事務內執行：逐項鎖定商品列複檢庫存，任何一項不足就整筆
// 回滾（不建單、不扣庫存、購物車保留原狀），全部通過才扣庫存、
// 凍結單價與描述建單。事務成功後清空購物車。
func (s *OrderService) Checkout(ctx context.Context, owner model.CartOwner, clientID string) (*model.Order, error) {
	cart, err := s.carts.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	client, err := s.store.GetClientByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !client.IsComplete() {
		return nil, &IncompleteProfileError{
			ClientID: clientID,
			Missing:  client.MissingFields(),
		}
	}

	// 折扣碼已停用或被刪除時照常結帳，只是不套折扣
	var coupon *model.Coupon
	if cart.CouponID != "" {
		c, err := s.store.GetCouponByID(ctx, cart.CouponID)
		if err != nil && !errors.Is(err, db.ErrCouponNotFound) {
			return nil, err
		}
		if c != nil && c.Active {
			coupon = c
		}
	}

	// 先批次撈商品快照資訊（描述、類型），庫存的權威複檢在事務內做
	items := make([]model.CartItem, len(cart.Items))
	copy(items, cart.Items)
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.store.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	productByID := make(map[string]*model.Product, len(products))
	for i := range products {
		productByID[products[i].ProductID] = &products[i]
	}

	order := &model.Order{
		OrderID:  uuid.New().String(),
		ClientID: client.ClientID,
		Status:   model.OrderStatusQuote,
	}
	if coupon != nil {
		order.CouponID = &coupon.CouponID
		order.Coupon = coupon
	}

	err = s.store.Transaction(ctx, func(tx *gorm.DB) error {
		for _, item := range items {
			meta, ok := productByID[item.ProductID]
			if !ok {
				return db.ErrProductNotFound
			}

			// 服務類不佔庫存，跳過鎖定與扣減
			if !meta.IsService() {
				locked, err := s.store.ReserveStock(ctx, tx, item.ProductID, item.Quantity)
				if errors.Is(err, db.ErrProductStockNotEnough) {
					return &StockExhaustedError{
						ProductID: item.ProductID,
						Name:      locked.Name,
						Requested: item.Quantity,
						Available: locked.Stock,
					}
				}
				if err != nil {
					return err
				}
			}

			order.OrderItems = append(order.OrderItems, model.OrderItem{
				OrderID:     order.OrderID,
				ProductID:   item.ProductID,
				Description: itemDescription(meta),
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				ProductType: meta.ProductType,
			})
		}

		order.TotalAmount = order.ComputeTotal()

		if err := s.store.CreateOrder(ctx, tx, order); err != nil {
			return err
		}

		return s.store.AppendTimeline(ctx, tx, &model.OrderTimeline{
			OrderID: order.OrderID,
			Status:  model.OrderStatusQuote,
			Note:    "訂單建立",
		})
	})
	if err != nil {
		return nil, err
	}

	// 事務已提交，清空購物車；失敗只記錄，下一次結帳的空車檢查會擋掉重複下單
	if err := s.carts.Clear(ctx, owner); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.OrderID).Msg("failed to clear cart after checkout")
	}

	s.publishStatusChange(ctx, order, client, "", model.OrderStatusQuote)

	return order, nil
}

// ApprovePayment 付款確認
//
// 已是 APPROVED 時靜默略過（容忍金流重複回呼）。庫存已於結帳時扣除，
// 這裡是純狀態轉移，不再動庫存。
func (s *OrderService) ApprovePayment(ctx context.Context, orderID string) error {
	var order *model.Order
	changed := false

	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		order, err = s.store.GetOrderByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if order.Status == model.OrderStatusApproved {
			// 冪等防護
			return nil
		}
		if order.Status != model.OrderStatusQuote {
			return &InvalidTransitionError{From: order.Status, To: model.OrderStatusApproved}
		}

		if err := s.store.UpdateOrderStatus(ctx, tx, orderID, model.OrderStatusApproved); err != nil {
			return err
		}
		if err := s.store.AppendTimeline(ctx, tx, &model.OrderTimeline{
			OrderID: orderID,
			Status:  model.OrderStatusApproved,
			Note:    "付款確認",
		}); err != nil {
			return err
		}

		changed = true
		return nil
	})
	if err != nil {
		return err
	}

	if changed {
		s.notifyStatusChange(ctx, orderID, model.OrderStatusQuote, model.OrderStatusApproved)
	}
	return nil
}

// CancelOrder 取消訂單
//
// 已是 CANCELED 時靜默略過。從 APPROVED / IN_PROGRESS / READY 取消時
// 用訂單凍結數量返還庫存（服務類跳過）；從 QUOTE 取消不動庫存。
func (s *OrderService) CancelOrder(ctx context.Context, orderID string) error {
	var oldStatus model.OrderStatus
	changed := false

	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		order, err := s.store.GetOrderByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if order.Status == model.OrderStatusCanceled {
			// 冪等防護
			return nil
		}
		if order.Status == model.OrderStatusFinished {
			return &InvalidTransitionError{From: order.Status, To: model.OrderStatusCanceled}
		}

		oldStatus = order.Status

		note := "訂單取消"
		if oldStatus == model.OrderStatusApproved ||
			oldStatus == model.OrderStatusInProgress ||
			oldStatus == model.OrderStatusReady {
			// 與結帳同樣依商品ID排序加鎖，避免跟並發結帳互相等鎖
			items := make([]model.OrderItem, len(order.OrderItems))
			copy(items, order.OrderItems)
			sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

			for _, item := range items {
				if item.ProductType == model.ProductTypeService {
					continue
				}
				if _, err := s.store.ReleaseStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
			note = "訂單取消, 庫存返還"
		}

		if err := s.store.UpdateOrderStatus(ctx, tx, orderID, model.OrderStatusCanceled); err != nil {
			return err
		}
		if err := s.store.AppendTimeline(ctx, tx, &model.OrderTimeline{
			OrderID: orderID,
			Status:  model.OrderStatusCanceled,
			Note:    note,
		}); err != nil {
			return err
		}

		changed = true
		return nil
	})
	if err != nil {
		return err
	}

	if changed {
		s.notifyStatusChange(ctx, orderID, oldStatus, model.OrderStatusCanceled)
	}
	return nil
}

// SetStatus 沒有庫存副作用的一般狀態轉移（IN_PROGRESS / READY / FINISHED）
// 終態不允許離開，APPROVED / CANCELED 要走專屬操作
func (s *OrderService) SetStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	var oldStatus model.OrderStatus
	changed := false

	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		order, err := s.store.GetOrderByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if order.Status == status {
			return nil
		}

		from, ok := setStatusTransitions[status]
		if !ok || order.Status.IsTerminal() || order.Status != from {
			return &InvalidTransitionError{From: order.Status, To: status}
		}

		oldStatus = order.Status

		if err := s.store.UpdateOrderStatus(ctx, tx, orderID, status); err != nil {
			return err
		}
		if err := s.store.AppendTimeline(ctx, tx, &model.OrderTimeline{
			OrderID: orderID,
			Status:  status,
			Note:    fmt.Sprintf("狀態更新為 %s", status),
		}); err != nil {
			return err
		}

		changed = true
		return nil
	})
	if err != nil {
		return err
	}

	if changed {
		s.notifyStatusChange(ctx, orderID, oldStatus, status)
	}
	return nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return s.store.GetOrderByID(ctx, orderID)
}

func (s *OrderService) GetOrdersByClientID(ctx context.Context, clientID string) ([]model.Order, error) {
	return s.store.GetOrdersByClientID(ctx, clientID)
}

func (s *OrderService) GetAllOrders(ctx context.Context) ([]model.Order, error) {
	return s.store.GetAllOrders(ctx)
}

func (s *OrderService) GetOrdersPaginated(ctx context.Context, page, pageSize int) ([]model.Order, int64, error) {
	return s.store.GetOrdersPaginated(ctx, page, pageSize)
}

func (s *OrderService) GetTimeline(ctx context.Context, orderID string) ([]model.OrderTimeline, error) {
	return s.store.GetTimeline(ctx, orderID)
}

// notifyStatusChange 發佈狀態變更事件，投遞失敗只記錄不影響已提交的事務
func (s *OrderService) notifyStatusChange(ctx context.Context, orderID string, oldStatus, newStatus model.OrderStatus) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID).Msg("failed to load order for status event")
		return
	}
	s.publishStatusChange(ctx, order, order.Client, oldStatus, newStatus)
}

func (s *OrderService) publishStatusChange(ctx context.Context, order *model.Order, client *model.Client, oldStatus, newStatus model.OrderStatus) {
	if s.events == nil {
		return
	}

	event := producer.OrderStatusEvent{
		OrderID:   order.OrderID,
		ClientID:  order.ClientID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}
	if client != nil {
		event.ClientEmail = client.Email
	}

	if err := s.events.PublishStatusChange(ctx, event); err != nil {
		s.logger.Error().Err(err).
			Str("order_id", order.OrderID).
			Str("new_status", string(newStatus)).
			Msg("failed to publish order status event")
	}
}

func itemDescription(product *model.Product) string {
	if product.Sku != "" {
		return fmt.Sprintf("[%s] %s", product.Sku, product.Name)
	}
	return product.Name
}

var _ IOrderService = (*OrderService)(nil)
