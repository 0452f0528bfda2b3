package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/bikeshop/internal/api"
	"github.com/RoyceAzure/lab/bikeshop/internal/api/handler"
	"github.com/RoyceAzure/lab/bikeshop/internal/api/router"
	"github.com/RoyceAzure/lab/bikeshop/internal/appcontext"
	"github.com/RoyceAzure/lab/bikeshop/internal/config"
)

func main() {
	cf, err := config.Load(".env")
	if err != nil {
		log.Fatal(err)
		return
	}

	app, err := appcontext.NewApplicationContext(cf)
	if err != nil {
		log.Fatal(err)
		return
	}

	// .env 改動時熱套用可重載的設定
	config.Watch(app.Reload)

	// 初始化 handler
	cartHandler := handler.NewCartHandler(app.CartService)
	orderHandler := handler.NewOrderHandler(app.OrderService)
	productHandler := handler.NewProductHandler(app.ProductService)
	billingHandler := handler.NewBillingHandler(app.BillingService)

	server := api.NewServer(cartHandler, orderHandler, productHandler, billingHandler)

	// 設置路由
	r := router.SetupRouter(server, app.RedisClient, app.Logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", app.Cf.ServerPort),
		Handler: r,
	}

	// 設置訊號監聽
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutDonwCompleted := make(chan struct{}, 1)
	// 監聽退出訊號
	go func() {
		<-sigChan
		log.Println("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}

		if err := app.Shutdown(shutdownCtx); err != nil {
			log.Printf("Application shutdown error: %v", err)
		}

		shutDonwCompleted <- struct{}{}
	}()

	// 啟動服務
	log.Printf("Server starting on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal(err)
	}
	<-shutDonwCompleted
	log.Printf("closed completed")
}
