package service

import (
	"context"

	"github.com/RoyceAzure/lab/bikeshop/internal/domain/model"
	"github.com/RoyceAzure/lab/bikeshop/internal/infra/repository/db"
)

type IProductService interface {
	GetProduct(ctx context.Context, productID string) (*model.Product, error)
	GetProductBySku(ctx context.Context, sku string) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	ListAvailableProducts(ctx context.Context) ([]model.Product, error)
	LowStockReport(ctx context.Context) ([]model.Product, error)
}

// ProductService 商品目錄查詢，庫存異動一律走訂單事務，這裡只讀
type ProductService struct {
	productRepo db.IProductRepository
}

func NewProductService(productRepo db.IProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

func (s *ProductService) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	return s.productRepo.GetProductByID(ctx, productID)
}

func (s *ProductService) GetProductBySku(ctx context.Context, sku string) (*model.Product, error) {
	return s.productRepo.GetProductBySku(ctx, sku)
}

func (s *ProductService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.GetAllProducts(ctx)
}

// ListAvailableProducts 有庫存的商品加上服務類（服務不佔庫存）
func (s *ProductService) ListAvailableProducts(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.GetProductsInStock(ctx)
}

// LowStockReport 庫存低於警戒值的商品清單
func (s *ProductService) LowStockReport(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.GetLowStockProducts(ctx)
}

var _ IProductService = (*ProductService)(nil)
