package handler

import (
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/bikeshop/pkg/api"
	"github.com/RoyceAzure/lab/bikeshop/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/bikeshop/internal/service"
)

// writeServiceError 把 service 層錯誤轉成對應的 HTTP 狀態碼
// 庫存不足與狀態機衝突給 409, 資料不完整給 422, 其他未知錯誤一律 500
func writeServiceError(w http.ResponseWriter, err error) {
	var stockErr *service.StockExhaustedError
	var transitionErr *service.InvalidTransitionError
	var profileErr *service.IncompleteProfileError

	switch {
	case errors.Is(err, db.ErrProductNotFound),
		errors.Is(err, db.ErrOrderNotFound),
		errors.Is(err, db.ErrClientNotFound),
		errors.Is(err, db.ErrCouponNotFound),
		errors.Is(err, db.ErrInvoiceNotFound):
		api.ErrorJSON(w, http.StatusNotFound, err, "")
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidCoupon):
		api.ErrorJSON(w, http.StatusBadRequest, err, "")
	case errors.As(err, &stockErr),
		errors.As(err, &transitionErr):
		api.ErrorJSON(w, http.StatusConflict, err, "")
	case errors.As(err, &profileErr):
		api.ErrorJSON(w, http.StatusUnprocessableEntity, err, "")
	default:
		api.ErrorJSON(w, http.StatusInternalServerError, nil, "Internal Server Error")
	}
}
