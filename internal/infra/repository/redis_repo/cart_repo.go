package redis_repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/bikeshop/internal/domain/model"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

var (
	// ErrCartNotFound 購物車不存在
	ErrCartNotFound = errors.New("cart not found")
)

// cartTTL 棄置購物車的存活時間
// 匿名 session 不會回來清理，每次寫入都重設存活時間
const cartTTL = 7 * 24 * time.Hour

// CartRepo 購物車只存在 Redis，不落 DB
// 結帳成功後由訂單服務整車轉入訂單並清空
type CartRepo struct {
	CartCache *redis.Client
}

func NewCartRepo(cartCache *redis.Client) *CartRepo {
	return &CartRepo{CartCache: cartCache}
}

func generateCartItemKey(owner model.CartOwner) string {
	return fmt.Sprintf("cart:%s:items", owner.Key())
}

func generateCartMetaKey(owner model.CartOwner) string {
	return fmt.Sprintf("cart:%s:meta", owner.Key())
}

// cartItemValue 存進 hash value 的項目快照
// 單價在加入購物車當下凍結
type cartItemValue struct {
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// SetItem 寫入（覆蓋）單一商品的暫存數量與快照單價
func (r *CartRepo) SetItem(ctx context.Context, owner model.CartOwner, item model.CartItem) error {
	itemsKey := generateCartItemKey(owner)
	metaKey := generateCartMetaKey(owner)

	val, err := json.Marshal(cartItemValue{
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cart item: %w", err)
	}

	pipe := r.CartCache.TxPipeline()
	pipe.HSet(ctx, itemsKey, item.ProductID, val)
	pipe.Expire(ctx, itemsKey, cartTTL)
	pipe.Expire(ctx, metaKey, cartTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set cart item: %w", err)
	}
	return nil
}

// Get 取回整台購物車，空車回傳空 Items 而不是錯誤
func (r *CartRepo) Get(ctx context.Context, owner model.CartOwner) (*model.Cart, error) {
	itemsKey := generateCartItemKey(owner)
	metaKey := generateCartMetaKey(owner)

	items, err := r.CartCache.HGetAll(ctx, itemsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}

	cart := &model.Cart{Owner: owner}
	for productID, raw := range items {
		var v cartItemValue
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("invalid cart item for product %s: %w", productID, err)
		}
		if v.Quantity <= 0 {
			continue
		}
		price, err := parsePrice(v.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid unit price for product %s: %w", productID, err)
		}
		cart.Items = append(cart.Items, model.CartItem{
			ProductID: productID,
			Quantity:  v.Quantity,
			UnitPrice: price,
		})
	}

	couponID, err := r.CartCache.HGet(ctx, metaKey, "coupon_id").Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get cart meta: %w", err)
	}
	cart.CouponID = couponID

	return cart, nil
}

// GetItem 取單一商品暫存項目，不存在回傳 nil
func (r *CartRepo) GetItem(ctx context.Context, owner model.CartOwner, productID string) (*model.CartItem, error) {
	itemsKey := generateCartItemKey(owner)

	raw, err := r.CartCache.HGet(ctx, itemsKey, productID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}

	var v cartItemValue
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("invalid cart item for product %s: %w", productID, err)
	}
	price, err := parsePrice(v.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid unit price for product %s: %w", productID, err)
	}
	return &model.CartItem{
		ProductID: productID,
		Quantity:  v.Quantity,
		UnitPrice: price,
	}, nil
}

// DeleteItem 移除指定商品，冪等
func (r *CartRepo) DeleteItem(ctx context.Context, owner model.CartOwner, productID string) error {
	itemsKey := generateCartItemKey(owner)

	if err := r.CartCache.HDel(ctx, itemsKey, productID).Err(); err != nil {
		return fmt.Errorf("failed to delete item from cart: %w", err)
	}
	return nil
}

// Clear 清空購物車並解除折扣碼
// 使用 Lua 腳本確保原子性
func (r *CartRepo) Clear(ctx context.Context, owner model.CartOwner) error {
	itemsKey := generateCartItemKey(owner)
	metaKey := generateCartMetaKey(owner)

	luaScript := `
		redis.call('DEL', KEYS[1])
		redis.call('DEL', KEYS[2])
		return 1
	`
	if err := r.CartCache.Eval(ctx, luaScript, []string{itemsKey, metaKey}).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// SetCoupon 綁定折扣碼
func (r *CartRepo) SetCoupon(ctx context.Context, owner model.CartOwner, couponID string) error {
	metaKey := generateCartMetaKey(owner)

	pipe := r.CartCache.TxPipeline()
	pipe.HSet(ctx, metaKey, "coupon_id", couponID)
	pipe.Expire(ctx, metaKey, cartTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set cart coupon: %w", err)
	}
	return nil
}

// ClearCoupon 解除折扣碼，冪等
func (r *CartRepo) ClearCoupon(ctx context.Context, owner model.CartOwner) error {
	metaKey := generateCartMetaKey(owner)

	if err := r.CartCache.HDel(ctx, metaKey, "coupon_id").Err(); err != nil {
		return fmt.Errorf("failed to clear cart coupon: %w", err)
	}
	return nil
}

func parsePrice(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
