package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/RoyceAzure/lab/bikeshop/internal/domain/model"
)

var (
	// ErrEmptyCart 空購物車不允許結帳
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidCoupon 折扣碼不存在或已停用
	ErrInvalidCoupon = errors.New("coupon is invalid or inactive")
)

// IncompleteProfileError 客戶資料不齊全，附上缺少的欄位讓表現層導去補資料
type IncompleteProfileError struct {
	ClientID string
	Missing  []string
}

func (e *IncompleteProfileError) Error() string {
	return fmt.Sprintf("client %s profile is incomplete, missing: %s", e.ClientID, strings.Join(e.Missing, ", "))
}

// StockExhaustedError 結帳時鎖定後複檢庫存不足，整筆訂單回滾
type StockExhaustedError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *StockExhaustedError) Error() string {
	return fmt.Sprintf("stock exhausted for product %s (%s): requested %d, available %d",
		e.ProductID, e.Name, e.Requested, e.Available)
}

// Deficit 缺口數量
func (e *StockExhaustedError) Deficit() int {
	return e.Requested - e.Available
}

// InvalidTransitionError 不允許的訂單狀態轉移
type InvalidTransitionError struct {
	From model.OrderStatus
	To   model.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition: %s -> %s", e.From, e.To)
}
