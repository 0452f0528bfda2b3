package api

import "github.com/RoyceAzure/lab/bikeshop/internal/api/handler"

type Server struct {
	CartHandler    *handler.CartHandler
	OrderHandler   *handler.OrderHandler
	ProductHandler *handler.ProductHandler
	BillingHandler *handler.BillingHandler
}

func NewServer(
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	productHandler *handler.ProductHandler,
	billingHandler *handler.BillingHandler,
) *Server {
	return &Server{
		CartHandler:    cartHandler,
		OrderHandler:   orderHandler,
		ProductHandler: productHandler,
		BillingHandler: billingHandler,
	}
}
