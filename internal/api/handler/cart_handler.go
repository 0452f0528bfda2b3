package handler

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/bikeshop/pkg/api"
	"github.com/RoyceAzure/lab/bikeshop/internal/api/dto"
	"github.com/RoyceAzure/lab/bikeshop/internal/api/middleware"
	"github.com/RoyceAzure/lab/bikeshop/internal/domain/model"
	"github.com/RoyceAzure/lab/bikeshop/internal/service"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	cartService service.ICartService
}

func NewCartHandler(cartService service.ICartService) *CartHandler {
	if cartService == nil {
		panic("cartService cannot be nil")
	}
	return &CartHandler{
		cartService: cartService,
	}
}

// GetCart 查看購物車, 套用即時商品資訊與折扣後總額
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := middleware.GetCartOwner(ctx)
	if !ok {
		api.ErrorJSON(w, http.StatusBadRequest, nil, "cart owner not resolved")
		return
	}

	cart, err := h.cartService.GetCart(ctx, owner)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp, err := h.buildCartResponse(r, cart, false)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	api.SuccessJSON(w, resp, nil)
}

// AddItem 加入或更新購物車項目
// 數量超出現有庫存時軟性截斷並回傳 limit_reached
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var addDTO dto.AddCartItemDTO
	if err := json.NewDecoder(r.Body).Decode(&addDTO); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err, "invalid request body")
		return
	}
	if addDTO.ProductID == "" {
		api.ErrorJSON(w, http.StatusBadRequest, nil, "product_id is required")
		return
	}

	ctx := r.Context()
	owner, ok := middleware.GetCartOwner(ctx)
	if !ok {
		api.ErrorJSON(w, http.StatusBadRequest, nil, "cart owner not resolved")
		return
	}

	limitReached, err := h.cartService.Add(ctx, owner, addDTO.ProductID, addDTO.Quantity, addDTO.Replace)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	cart, err := h.cartService.GetCart(ctx, owner)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp, err := h.buildCartResponse(r, cart, limitReached)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	api.SuccessJSON(w, resp, nil)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	ctx := r.Context()
	owner, ok := middleware.GetCartOwner(ctx)
	if !ok {
		api.ErrorJSON(w, http.StatusBadRequest, nil, "cart owner not resolved")
		return
	}

	if err := h.cartService.Remove(ctx, owner, productID); err != nil {
		writeServiceError(w, err)
		return
	}

	api.SuccessJSON(w, nil, nil)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := middleware.GetCartOwner(ctx)
	if !ok {
		api.ErrorJSON(w, http.StatusBadRequest, nil, "cart owner not resolved")
		return
	}

	if err := h.cartService.Clear(ctx, owner); err != nil {
		writeServiceError(w, err)
		return
	}

	api.SuccessJSON(w, nil, nil)
}

// ApplyCoupon 折扣碼無效時會同時解除掛在車上的舊折扣碼
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var couponDTO dto.ApplyCouponDTO
	if err := json.NewDecoder(r.Body).Decode(&couponDTO); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err, "invalid request body")
		return
	}

	ctx := r.Context()
	owner, ok := middleware.GetCartOwner(ctx)
	if !ok {
		api.ErrorJSON(w, http.StatusBadRequest, nil, "cart owner not resolved")
		return
	}

	coupon, err := h.cartService.ApplyCoupon(ctx, owner, couponDTO.Code)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	api.SuccessJSON(w, map[string]any{
		"coupon_id":        coupon.CouponID,
		"code":             coupon.Code,
		"discount_percent": coupon.DiscountPercent,
	}, nil)
}

func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := middleware.GetCartOwner(ctx)
	if !ok {
		api.ErrorJSON(w, http.StatusBadRequest, nil, "cart owner not resolved")
		return
	}

	if err := h.cartService.RemoveCoupon(ctx, owner); err != nil {
		writeServiceError(w, err)
		return
	}

	api.SuccessJSON(w, nil, nil)
}

func (h *CartHandler) buildCartResponse(r *http.Request, cart *model.Cart, limitReached bool) (*dto.CartResponse, error) {
	ctx := r.Context()

	resolved, err := h.cartService.ResolveItems(ctx, cart)
	if err != nil {
		return nil, err
	}

	total, err := h.cartService.TotalAfterDiscount(ctx, cart)
	if err != nil {
		return nil, err
	}

	items := make([]dto.CartItemDTO, 0, len(resolved))
	for _, item := range resolved {
		items = append(items, dto.CartItemDTO{
			ProductID: item.Product.ProductID,
			Name:      item.Product.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.String(),
			Subtotal:  item.Subtotal.String(),
		})
	}

	return &dto.CartResponse{
		Items:        items,
		CouponID:     cart.CouponID,
		TotalPrice:   total.String(),
		ItemCount:    cart.ItemCount(),
		LimitReached: limitReached,
	}, nil
}
