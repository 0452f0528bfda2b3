package handler

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/bikeshop/pkg/api"
	"github.com/RoyceAzure/lab/bikeshop/internal/api/dto"
	"github.com/RoyceAzure/lab/bikeshop/internal/domain/model"
	"github.com/RoyceAzure/lab/bikeshop/internal/service"
	"github.com/go-chi/chi/v5"
)

type BillingHandler struct {
	billingService service.IBillingService
}

func NewBillingHandler(billingService service.IBillingService) *BillingHandler {
	if billingService == nil {
		panic("billingService cannot be nil")
	}
	return &BillingHandler{
		billingService: billingService,
	}
}

func (h *BillingHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var createDTO dto.CreateInvoiceDTO
	if err := json.NewDecoder(r.Body).Decode(&createDTO); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err, "invalid request body")
		return
	}
	if createDTO.OrderID == "" {
		api.ErrorJSON(w, http.StatusBadRequest, nil, "order_id is required")
		return
	}

	invoice, err := h.billingService.CreateInvoiceForOrder(r.Context(), createDTO.OrderID, createDTO.DueDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	api.SuccessJSON(w, convertInvoiceToDTO(invoice), nil)
}

func (h *BillingHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	invoice, err := h.billingService.GetInvoice(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	api.SuccessJSON(w, convertInvoiceToDTO(invoice), nil)
}

// PaymentWebhook 金流回呼入口
// confirmed 落地付款紀錄並轉單, denied 取消訂單返還庫存
func (h *BillingHandler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	var webhookDTO dto.PaymentWebhookDTO
	if err := json.NewDecoder(r.Body).Decode(&webhookDTO); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err, "invalid request body")
		return
	}

	ctx := r.Context()

	switch webhookDTO.Status {
	case "confirmed":
		err := h.billingService.HandlePaymentConfirmed(ctx, webhookDTO.OrderID,
			model.PaymentMethod(webhookDTO.Method), webhookDTO.TransactionID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
	case "denied":
		if err := h.billingService.HandlePaymentDenied(ctx, webhookDTO.OrderID, webhookDTO.Reason); err != nil {
			writeServiceError(w, err)
			return
		}
	default:
		api.ErrorJSON(w, http.StatusBadRequest, nil, "status must be confirmed or denied")
		return
	}

	api.SuccessJSON(w, nil, nil)
}

func convertInvoiceToDTO(invoice *model.Invoice) dto.InvoiceResponse {
	payments := make([]dto.PaymentDTO, 0, len(invoice.Payments))
	for i := range invoice.Payments {
		p := &invoice.Payments[i]
		payments = append(payments, dto.PaymentDTO{
			PaymentID:     p.PaymentID,
			Amount:        p.Amount.String(),
			Method:        string(p.Method),
			TransactionID: p.TransactionID,
			CreatedAt:     p.CreatedAt,
		})
	}

	return dto.InvoiceResponse{
		InvoiceID:     invoice.InvoiceID,
		OrderID:       invoice.OrderID,
		InvoiceNumber: invoice.InvoiceNumber,
		DueDate:       invoice.DueDate,
		IsPaid:        invoice.IsPaid,
		Payments:      payments,
	}
}
