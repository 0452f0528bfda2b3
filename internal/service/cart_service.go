package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/bikeshop/internal/domain/model"
	"github.com/RoyceAzure/lab/bikeshop/internal/infra/repository/db"
	"github.com/shopspring/decimal"
)

// CartStore 購物車儲存介面，實作在 redis_repo
type CartStore interface {
	SetItem(ctx context.Context, owner model.CartOwner, item model.CartItem) error
	Get(ctx context.Context, owner model.CartOwner) (*model.Cart, error)
	GetItem(ctx context.Context, owner model.CartOwner, productID string) (*model.CartItem, error)
	DeleteItem(ctx context.Context, owner model.CartOwner, productID string) error
	Clear(ctx context.Context, owner model.CartOwner) error
	SetCoupon(ctx context.Context, owner model.CartOwner, couponID string) error
	ClearCoupon(ctx context.Context, owner model.CartOwner) error
}

type ICartService interface {
	Add(ctx context.Context, owner model.CartOwner, productID string, quantity int, replace bool) (bool, error)
	Remove(ctx context.Context, owner model.CartOwner, productID string) error
	Clear(ctx context.Context, owner model.CartOwner) error
	ApplyCoupon(ctx context.Context, owner model.CartOwner, code string) (*model.Coupon, error)
	RemoveCoupon(ctx context.Context, owner model.CartOwner) error
	GetCart(ctx context.Context, owner model.CartOwner) (*model.Cart, error)
	ResolveItems(ctx context.Context, cart *model.Cart) ([]model.ResolvedCartItem, error)
	TotalAfterDiscount(ctx context.Context, cart *model.Cart) (decimal.Decimal, error)
}

// CartService 購物車聚合
// 加入時做軟性庫存檢查（不加鎖，可能過期），權威檢查在結帳事務內
type CartService struct {
	carts       CartStore
	productRepo db.IProductRepository
	couponRepo  db.ICouponRepository
}

func NewCartService(carts CartStore, productRepo db.IProductRepository, couponRepo db.ICouponRepository) *CartService {
	return &CartService{
		carts:       carts,
		productRepo: productRepo,
		couponRepo:  couponRepo,
	}
}

// Add 加入商品
// replace=false 累加既有暫存數量，replace=true 直接覆蓋
// 結果數量超過當下觀察到的庫存時壓到庫存上限，回傳 true 讓呼叫端提示用戶
func (s *CartService) Add(ctx context.Context, owner model.CartOwner, productID string, quantity int, replace bool) (bool, error) {
	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		return false, err
	}

	current := 0
	var snapshotPrice decimal.Decimal
	existing, err := s.carts.GetItem(ctx, owner, productID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		current = existing.Quantity
		// 單價以第一次加入當下為準
		snapshotPrice = existing.UnitPrice
	} else {
		snapshotPrice = product.SellingPrice
	}

	desired := quantity
	if !replace {
		desired = current + quantity
	}

	if desired <= 0 {
		return false, s.carts.DeleteItem(ctx, owner, productID)
	}

	// 軟性庫存上限，服務類不佔庫存不設限
	limitReached := false
	if !product.IsService() && desired > product.Stock {
		desired = product.Stock
		limitReached = true
	}

	if desired <= 0 {
		// 庫存歸零，整個項目撤掉
		if err := s.carts.DeleteItem(ctx, owner, productID); err != nil {
			return false, err
		}
		return limitReached, nil
	}

	err = s.carts.SetItem(ctx, owner, model.CartItem{
		ProductID: productID,
		Quantity:  desired,
		UnitPrice: snapshotPrice,
	})
	if err != nil {
		return false, err
	}
	return limitReached, nil
}

// Remove 移除商品，不存在也不回報錯誤
func (s *CartService) Remove(ctx context.Context, owner model.CartOwner, productID string) error {
	return s.carts.DeleteItem(ctx, owner, productID)
}

// Clear 清空購物車並解除折扣碼
func (s *CartService) Clear(ctx context.Context, owner model.CartOwner) error {
	return s.carts.Clear(ctx, owner)
}

// ApplyCoupon 套用折扣碼
// 查無啟用中的折扣碼時解除既有綁定並回傳 ErrInvalidCoupon
func (s *CartService) ApplyCoupon(ctx context.Context, owner model.CartOwner, code string) (*model.Coupon, error) {
	coupon, err := s.couponRepo.GetActiveCouponByCode(ctx, code)
	if errors.Is(err, db.ErrCouponNotFound) {
		if clearErr := s.carts.ClearCoupon(ctx, owner); clearErr != nil {
			return nil, clearErr
		}
		return nil, ErrInvalidCoupon
	}
	if err != nil {
		return nil, err
	}

	if err := s.carts.SetCoupon(ctx, owner, coupon.CouponID); err != nil {
		return nil, err
	}
	return coupon, nil
}

// RemoveCoupon 移除折扣碼, 沒有掛折扣碼時也靜默成功
func (s *CartService) RemoveCoupon(ctx context.Context, owner model.CartOwner) error {
	return s.carts.ClearCoupon(ctx, owner)
}

func (s *CartService) GetCart(ctx context.Context, owner model.CartOwner) (*model.Cart, error) {
	return s.carts.Get(ctx, owner)
}

// ResolveItems 展開購物車給前台顯示
// 即時商品資訊一次批次撈齊，單價與小計用快照價
func (s *CartService) ResolveItems(ctx context.Context, cart *model.Cart) ([]model.ResolvedCartItem, error) {
	if len(cart.Items) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	productByID := make(map[string]*model.Product, len(products))
	for i := range products {
		productByID[products[i].ProductID] = &products[i]
	}

	resolved := make([]model.ResolvedCartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		product, ok := productByID[item.ProductID]
		if !ok {
			// 商品已下架，顯示時直接略過
			continue
		}
		resolved = append(resolved, model.ResolvedCartItem{
			Product:   product,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
		})
	}
	return resolved, nil
}

// TotalAfterDiscount 套用折扣後總額
// 折扣碼已停用或被刪除時不套用折扣
func (s *CartService) TotalAfterDiscount(ctx context.Context, cart *model.Cart) (decimal.Decimal, error) {
	total := cart.TotalPrice()
	if cart.CouponID == "" {
		return total, nil
	}

	coupon, err := s.couponRepo.GetCouponByID(ctx, cart.CouponID)
	if errors.Is(err, db.ErrCouponNotFound) {
		return total, nil
	}
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !coupon.Active {
		return total, nil
	}

	discount := total.Mul(decimal.NewFromInt(int64(coupon.DiscountPercent))).Div(decimal.NewFromInt(100))
	return total.Sub(discount), nil
}

var _ ICartService = (*CartService)(nil)
