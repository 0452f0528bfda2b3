package router

import (
	"fmt"
	"net/http"

	"github.com/RoyceAzure/lab/bikeshop/internal/api"
	m "github.com/RoyceAzure/lab/bikeshop/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func SetupRouter(server *api.Server, redisClient *redis.Client, logger *zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(middleware.RealIP)
	r.Use(m.LoggerMiddleware(logger))

	// API 路由
	r.Route("/api/v1", func(r chi.Router) {
		// 購物車路由需要能定位歸屬
		r.Group(func(r chi.Router) {
			r.Use(m.CartOwnerMiddleware)
			// 結帳類操作限流, 擋腳本狂打
			r.Use(m.RateLimitMiddleware(redisClient, 20, 5))
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", server.CartHandler.GetCart)
				r.Delete("/", server.CartHandler.ClearCart)
				r.Post("/items", server.CartHandler.AddItem)
				r.Delete("/items/{productID}", server.CartHandler.RemoveItem)
				r.Post("/coupon", server.CartHandler.ApplyCoupon)
				r.Delete("/coupon", server.CartHandler.RemoveCoupon)
				r.Post("/checkout", server.OrderHandler.Checkout)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", server.OrderHandler.ListOrders)
			r.Get("/{orderID}", server.OrderHandler.GetOrder)
			r.Get("/{orderID}/timeline", server.OrderHandler.GetTimeline)
			r.Post("/{orderID}/approve", server.OrderHandler.ApprovePayment)
			r.Post("/{orderID}/cancel", server.OrderHandler.CancelOrder)
			r.Put("/{orderID}/status", server.OrderHandler.SetStatus)
			r.Get("/{orderID}/invoice", server.BillingHandler.GetInvoice)
		})

		r.Get("/clients/{clientID}/orders", server.OrderHandler.GetClientOrders)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", server.ProductHandler.ListProducts)
			r.Get("/low-stock", server.ProductHandler.LowStockReport)
			r.Get("/{productID}", server.ProductHandler.GetProduct)
		})

		r.Route("/billing", func(r chi.Router) {
			r.Post("/invoices", server.BillingHandler.CreateInvoice)
			r.Post("/webhook", server.BillingHandler.PaymentWebhook)
		})
	})

	// 在設置完所有路由後打印路由樹
	fmt.Println(chi.Walk(r, func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		fmt.Printf("%s %s\n", method, route)
		return nil
	}))
	return r
}
