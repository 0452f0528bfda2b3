package service

import (
	"context"
	"strings"

	"github.com/RoyceAzure/lab/bikeshop/internal/domain/model"
	"github.com/RoyceAzure/lab/bikeshop/internal/infra/repository/db"
	"gorm.io/gorm"
)

// fakeCartStore 記憶體版購物車儲存，單元測試用
type fakeCartStore struct {
	items   map[string]map[string]model.CartItem
	coupons map[string]string
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{
		items:   make(map[string]map[string]model.CartItem),
		coupons: make(map[string]string),
	}
}

func (f *fakeCartStore) SetItem(ctx context.Context, owner model.CartOwner, item model.CartItem) error {
	key := owner.Key()
	if f.items[key] == nil {
		f.items[key] = make(map[string]model.CartItem)
	}
	f.items[key][item.ProductID] = item
	return nil
}

func (f *fakeCartStore) Get(ctx context.Context, owner model.CartOwner) (*model.Cart, error) {
	cart := &model.Cart{
		Owner:    owner,
		CouponID: f.coupons[owner.Key()],
	}
	for _, item := range f.items[owner.Key()] {
		cart.Items = append(cart.Items, item)
	}
	return cart, nil
}

func (f *fakeCartStore) GetItem(ctx context.Context, owner model.CartOwner, productID string) (*model.CartItem, error) {
	item, ok := f.items[owner.Key()][productID]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (f *fakeCartStore) DeleteItem(ctx context.Context, owner model.CartOwner, productID string) error {
	delete(f.items[owner.Key()], productID)
	return nil
}

func (f *fakeCartStore) Clear(ctx context.Context, owner model.CartOwner) error {
	delete(f.items, owner.Key())
	delete(f.coupons, owner.Key())
	return nil
}

func (f *fakeCartStore) SetCoupon(ctx context.Context, owner model.CartOwner, couponID string) error {
	f.coupons[owner.Key()] = couponID
	return nil
}

func (f *fakeCartStore) ClearCoupon(ctx context.Context, owner model.CartOwner) error {
	delete(f.coupons, owner.Key())
	return nil
}

var _ CartStore = (*fakeCartStore)(nil)

// fakeProductRepo 只實作 CartService 會用到的查詢
type fakeProductRepo struct {
	db.IProductRepository
	products map[string]*model.Product
}

func newFakeProductRepo(products ...*model.Product) *fakeProductRepo {
	m := make(map[string]*model.Product, len(products))
	for _, p := range products {
		m[p.ProductID] = p
	}
	return &fakeProductRepo{products: m}
}

func (f *fakeProductRepo) GetProductByID(ctx context.Context, productID string) (*model.Product, error) {
	product, ok := f.products[productID]
	if !ok {
		return nil, db.ErrProductNotFound
	}
	return product, nil
}

func (f *fakeProductRepo) GetProductsByIDs(ctx context.Context, productIDs []string) ([]model.Product, error) {
	var result []model.Product
	for _, id := range productIDs {
		if product, ok := f.products[id]; ok {
			result = append(result, *product)
		}
	}
	return result, nil
}

// fakeCouponRepo 只實作 CartService 會用到的查詢
type fakeCouponRepo struct {
	db.ICouponRepository
	coupons map[string]*model.Coupon
}

func newFakeCouponRepo(coupons ...*model.Coupon) *fakeCouponRepo {
	m := make(map[string]*model.Coupon, len(coupons))
	for _, c := range coupons {
		m[c.CouponID] = c
	}
	return &fakeCouponRepo{coupons: m}
}

func (f *fakeCouponRepo) GetCouponByID(ctx context.Context, id string) (*model.Coupon, error) {
	coupon, ok := f.coupons[id]
	if !ok {
		return nil, db.ErrCouponNotFound
	}
	return coupon, nil
}

func (f *fakeCouponRepo) GetActiveCouponByCode(ctx context.Context, code string) (*model.Coupon, error) {
	for _, coupon := range f.coupons {
		if strings.EqualFold(coupon.Code, code) && coupon.Active {
			return coupon, nil
		}
	}
	return nil, db.ErrCouponNotFound
}

// fakeOrderStore 只實作取消訂單路徑會用到的操作，記錄庫存返還的先後順序
type fakeOrderStore struct {
	db.UnifiedDB
	order    *model.Order
	released []string
}

func (f *fakeOrderStore) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (f *fakeOrderStore) GetOrderByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*model.Order, error) {
	return f.order, nil
}

func (f *fakeOrderStore) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	return f.order, nil
}

func (f *fakeOrderStore) ReleaseStock(ctx context.Context, tx *gorm.DB, productID string, quantity int) (*model.Product, error) {
	f.released = append(f.released, productID)
	return &model.Product{ProductID: productID}, nil
}

func (f *fakeOrderStore) UpdateOrderStatus(ctx context.Context, tx *gorm.DB, id string, status model.OrderStatus) error {
	f.order.Status = status
	return nil
}

func (f *fakeOrderStore) AppendTimeline(ctx context.Context, tx *gorm.DB, entry *model.OrderTimeline) error {
	return nil
}
