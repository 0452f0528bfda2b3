package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/bikeshop/internal/constants"
	"github.com/RoyceAzure/lab/bikeshop/internal/domain/model"
)

// CartOwnerMiddleware 解析購物車歸屬
//
// 有 X-Client-ID 視為登入客戶的購物車, 否則用 X-Session-Key 的匿名購物車
// 兩者都沒有就拒絕, 匿名購物車沒有 session 沒辦法定位
func CartOwnerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var owner model.CartOwner

		if clientID := r.Header.Get("X-Client-ID"); clientID != "" {
			owner = model.UserCartOwner(clientID)
		} else if sessionKey := r.Header.Get(constants.SessionKeyHeader); sessionKey != "" {
			owner = model.SessionCartOwner(sessionKey)
		} else {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "missing X-Client-ID or X-Session-Key header",
			})
			return
		}

		ctx := context.WithValue(r.Context(), constants.CartOwnerKey, owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCartOwner 從 context 取出購物車歸屬, 只在掛了 CartOwnerMiddleware 的路由下有值
func GetCartOwner(ctx context.Context) (model.CartOwner, bool) {
	owner, ok := ctx.Value(constants.CartOwnerKey).(model.CartOwner)
	return owner, ok
}
