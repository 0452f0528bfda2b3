package service

import (
	"context"
	"testing"

	"github.com/RoyceAzure/lab/bikeshop/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestCartService(products []*model.Product, coupons []*model.Coupon) (*CartService, *fakeCartStore) {
	store := newFakeCartStore()
	svc := NewCartService(store, newFakeProductRepo(products...), newFakeCouponRepo(coupons...))
	return svc, store
}

func testProduct(id string, price float64, stock int) *model.Product {
	return &model.Product{
		ProductID:    id,
		Sku:          "SKU-" + id,
		Name:         "Product " + id,
		ProductType:  model.ProductTypeComponent,
		SellingPrice: decimal.NewFromFloat(price),
		Stock:        stock,
		IsActive:     true,
	}
}

func TestAddAccumulates(t *testing.T) {
	svc, _ := newTestCartService([]*model.Product{testProduct("p1", 100, 10)}, nil)
	owner := model.UserCartOwner("u1")
	ctx := context.Background()

	limitReached, err := svc.Add(ctx, owner, "p1", 2, false)
	require.NoError(t, err)
	require.False(t, limitReached)

	limitReached, err = svc.Add(ctx, owner, "p1", 3, false)
	require.NoError(t, err)
	require.False(t, limitReached)

	cart, err := svc.GetCart(ctx, owner)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Equal(t, 5, cart.Items[0].Quantity)
}

func TestAddReplaceOverwrites(t *testing.T) {
	svc, _ := newTestCartService([]*model.Product{testProduct("p1", 100, 10)}, nil)
	owner := model.UserCartOwner("u1")
	ctx := context.Background()

	_, err := svc.Add(ctx, owner, "p1", 5, false)
	require.NoError(t, err)

	_, err = svc.Add(ctx, owner, "p1", 2, true)
	require.NoError(t, err)

	cart, err := svc.GetCart(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, 2, cart.Items[0].Quantity)
}

func TestAddClampsToStock(t *testing.T) {
	svc, _ := newTestCartService([]*model.Product{testProduct("p1", 100, 3)}, nil)
	owner := model.UserCartOwner("u1")
	ctx := context.Background()

	// 超出庫存, 壓到上限並回報
	limitReached, err := svc.Add(ctx, owner, "p1", 5, false)
	require.NoError(t, err)
	require.True(t, limitReached)

	cart, err := svc.GetCart(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, 3, cart.Items[0].Quantity)
}

func TestAddServiceNotClamped(t *testing.T) {
	svcProduct := testProduct("s1", 80, 0)
	svcProduct.ProductType = model.ProductTypeService
	svc, _ := newTestCartService([]*model.Product{svcProduct}, nil)
	owner := model.UserCartOwner("u1")
	ctx := context.Background()

	// 服務類不佔庫存, 零庫存也能加
	limitReached, err := svc.Add(ctx, owner, "s1", 2, false)
	require.NoError(t, err)
	require.False(t, limitReached)

	cart, err := svc.GetCart(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, 2, cart.Items[0].Quantity)
}

func TestAddZeroStockRemovesItem(t *testing.T) {
	svc, store := newTestCartService([]*model.Product{testProduct("p1", 100, 0)}, nil)
	owner := model.UserCartOwner("u1")
	ctx := context.Background()

	limitReached, err := svc.Add(ctx, owner, "p1", 2, false)
	require.NoError(t, err)
	require.True(t, limitReached)

	item, err := store.GetItem(ctx, owner, "p1")
	require.NoError(t, err)
	require.Nil(t, item)
}

func TestAddNonPositiveQuantityRemovesItem(t *testing.T) {
	svc, store := newTestCartService([]*model.Product{testProduct("p1", 100, 10)}, nil)
	owner := model.UserCartOwner("u1")
	ctx := context.Background()

	_, err := svc.Add(ctx, owner, "p1", 3, false)
	require.NoError(t, err)

	_, err = svc.Add(ctx, owner, "p1", 0, true)
	require.NoError(t, err)

	item, err := store.GetItem(ctx, owner, "p1")
	require.NoError(t, err)
	require.Nil(t, item)
}

func TestAddKeepsSnapshotPrice(t *testing.T) {
	product := testProduct("p1", 100, 10)
	svc, _ := newTestCartService([]*model.Product{product}, nil)
	owner := model.UserCartOwner("u1")
	ctx := context.Background()

	_, err := svc.Add(ctx, owner, "p1", 1, false)
	require.NoError(t, err)

	// 商品改價後再加, 快照價不變
	product.SellingPrice = decimal.NewFromInt(200)
	_, err = svc.Add(ctx, owner, "p1", 1, false)
	require.NoError(t, err)

	cart, err := svc.GetCart(ctx, owner)
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(100).Equal(cart.Items[0].UnitPrice))
}

func TestApplyCouponInvalidDetaches(t *testing.T) {
	coupon := &model.Coupon{CouponID: "c1", Code: "TEN", DiscountPercent: 10, Active: true}
	svc, _ := newTestCartService([]*model.Product{testProduct("p1", 100, 10)}, []*model.Coupon{coupon})
	owner := model.UserCartOwner("u1")
	ctx := context.Background()

	applied, err := svc.ApplyCoupon(ctx, owner, "ten")
	require.NoError(t, err)
	require.Equal(t, "c1", applied.CouponID)

	// 無效折扣碼要同時解除原本掛的
	_, err = svc.ApplyCoupon(ctx, owner, "NOPE")
	require.ErrorIs(t, err, ErrInvalidCoupon)

	cart, err := svc.GetCart(ctx, owner)
	require.NoError(t, err)
	require.Empty(t, cart.CouponID)
}

func TestTotalAfterDiscount(t *testing.T) {
	coupon := &model.Coupon{CouponID: "c1", Code: "TEN", DiscountPercent: 10, Active: true}
	svc, _ := newTestCartService([]*model.Product{testProduct("p1", 100, 10)}, []*model.Coupon{coupon})
	owner := model.UserCartOwner("u1")
	ctx := context.Background()

	_, err := svc.Add(ctx, owner, "p1", 2, false)
	require.NoError(t, err)
	_, err = svc.ApplyCoupon(ctx, owner, "TEN")
	require.NoError(t, err)

	cart, err := svc.GetCart(ctx, owner)
	require.NoError(t, err)

	total, err := svc.TotalAfterDiscount(ctx, cart)
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(180).Equal(total), "total should be 180, got %s", total)
}

func TestTotalAfterDiscountInactiveCoupon(t *testing.T) {
	coupon := &model.Coupon{CouponID: "c1", Code: "DEAD", DiscountPercent: 50, Active: false}
	svc, store := newTestCartService([]*model.Product{testProduct("p1", 100, 10)}, []*model.Coupon{coupon})
	owner := model.UserCartOwner("u1")
	ctx := context.Background()

	_, err := svc.Add(ctx, owner, "p1", 1, false)
	require.NoError(t, err)
	// 直接掛上已停用的折扣碼, 模擬掛上後才被停用
	require.NoError(t, store.SetCoupon(ctx, owner, "c1"))

	cart, err := svc.GetCart(ctx, owner)
	require.NoError(t, err)

	total, err := svc.TotalAfterDiscount(ctx, cart)
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(100).Equal(total))
}

func TestResolveItemsSkipsVanishedProduct(t *testing.T) {
	svc, store := newTestCartService([]*model.Product{testProduct("p1", 100, 10)}, nil)
	owner := model.UserCartOwner("u1")
	ctx := context.Background()

	_, err := svc.Add(ctx, owner, "p1", 1, false)
	require.NoError(t, err)
	// 商品已下架但還留在購物車
	require.NoError(t, store.SetItem(ctx, owner, model.CartItem{
		ProductID: "gone",
		Quantity:  1,
		UnitPrice: decimal.NewFromInt(50),
	}))

	cart, err := svc.GetCart(ctx, owner)
	require.NoError(t, err)

	resolved, err := svc.ResolveItems(ctx, cart)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	require.Equal(t, "p1", resolved[0].Product.ProductID)
}
