package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/bikeshop/pkg/api"
	"github.com/RoyceAzure/lab/bikeshop/internal/api/dto"
	"github.com/RoyceAzure/lab/bikeshop/internal/api/middleware"
	"github.com/RoyceAzure/lab/bikeshop/internal/constants"
	"github.com/RoyceAzure/lab/bikeshop/internal/domain/model"
	"github.com/RoyceAzure/lab/bikeshop/internal/service"
	"github.com/go-chi/chi/v5"
)

type OrderHandler struct {
	orderService service.IOrderService
}

func NewOrderHandler(orderService service.IOrderService) *OrderHandler {
	if orderService == nil {
		panic("orderService cannot be nil")
	}
	return &OrderHandler{
		orderService: orderService,
	}
}

// Checkout 購物車轉訂單
// 庫存不足回 409, 客戶資料不完整回 422, 兩者都不會動到購物車
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var checkoutDTO dto.CheckoutDTO
	if err := json.NewDecoder(r.Body).Decode(&checkoutDTO); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err, "invalid request body")
		return
	}
	if checkoutDTO.ClientID == "" {
		api.ErrorJSON(w, http.StatusBadRequest, nil, "client_id is required")
		return
	}

	ctx := r.Context()
	owner, ok := middleware.GetCartOwner(ctx)
	if !ok {
		api.ErrorJSON(w, http.StatusBadRequest, nil, "cart owner not resolved")
		return
	}

	order, err := h.orderService.Checkout(ctx, owner, checkoutDTO.ClientID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	api.SuccessJSON(w, convertOrderToDTO(order), nil)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	order, err := h.orderService.GetOrder(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	api.SuccessJSON(w, convertOrderToDTO(order), nil)
}

func (h *OrderHandler) GetClientOrders(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")

	orders, err := h.orderService.GetOrdersByClientID(r.Context(), clientID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	api.SuccessJSON(w, convertOrdersToDTO(orders), nil)
}

// ListOrders 帶 page 參數時走分頁，meta 回傳總筆數
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.URL.Query().Get("page") == "" {
		orders, err := h.orderService.GetAllOrders(ctx)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		api.SuccessJSON(w, convertOrdersToDTO(orders), nil)
		return
	}

	page := constants.DefaultPaging
	pageSize := constants.DefaultPagingSize
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v > 0 {
		pageSize = v
	}

	orders, total, err := h.orderService.GetOrdersPaginated(ctx, page, pageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	api.SuccessJSON(w, convertOrdersToDTO(orders), dto.PagingMeta{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	})
}

// ApprovePayment 付款確認, 冪等, 重複呼叫不報錯
func (h *OrderHandler) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	if err := h.orderService.ApprovePayment(r.Context(), orderID); err != nil {
		writeServiceError(w, err)
		return
	}

	api.SuccessJSON(w, nil, nil)
}

// CancelOrder 取消訂單並返還庫存, 冪等
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	if err := h.orderService.CancelOrder(r.Context(), orderID); err != nil {
		writeServiceError(w, err)
		return
	}

	api.SuccessJSON(w, nil, nil)
}

// SetStatus 履行流程的狀態推進 (IN_PROGRESS / READY / FINISHED)
func (h *OrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var statusDTO dto.SetStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&statusDTO); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err, "invalid request body")
		return
	}

	if err := h.orderService.SetStatus(r.Context(), orderID, model.OrderStatus(statusDTO.Status)); err != nil {
		writeServiceError(w, err)
		return
	}

	api.SuccessJSON(w, nil, nil)
}

func (h *OrderHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	entries, err := h.orderService.GetTimeline(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	timeline := make([]dto.TimelineEntryDTO, 0, len(entries))
	for _, entry := range entries {
		timeline = append(timeline, dto.TimelineEntryDTO{
			Status:    string(entry.Status),
			Note:      entry.Note,
			Timestamp: entry.Timestamp,
		})
	}

	api.SuccessJSON(w, timeline, nil)
}

func convertOrderToDTO(order *model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemDTO, 0, len(order.OrderItems))
	for i := range order.OrderItems {
		item := &order.OrderItems[i]
		items = append(items, dto.OrderItemDTO{
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.String(),
			Subtotal:    item.Subtotal().String(),
		})
	}

	resp := dto.OrderResponse{
		OrderID:     order.OrderID,
		ClientID:    order.ClientID,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount.String(),
		Items:       items,
		CreatedAt:   order.CreatedAt,
	}
	if order.CouponID != nil {
		resp.CouponID = *order.CouponID
	}
	return resp
}

func convertOrdersToDTO(orders []model.Order) []dto.OrderResponse {
	result := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		result = append(result, convertOrderToDTO(&orders[i]))
	}
	return result
}
