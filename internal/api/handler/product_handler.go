package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/bikeshop/pkg/api"
	"github.com/RoyceAzure/lab/bikeshop/internal/api/dto"
	"github.com/RoyceAzure/lab/bikeshop/internal/domain/model"
	"github.com/RoyceAzure/lab/bikeshop/internal/service"
	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	productService service.IProductService
}

func NewProductHandler(productService service.IProductService) *ProductHandler {
	if productService == nil {
		panic("productService cannot be nil")
	}
	return &ProductHandler{
		productService: productService,
	}
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	product, err := h.productService.GetProduct(r.Context(), productID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	api.SuccessJSON(w, convertProductToDTO(product), nil)
}

// ListProducts available=true 時只回有庫存的商品與服務類
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var products []model.Product
	var err error
	if r.URL.Query().Get("available") == "true" {
		products, err = h.productService.ListAvailableProducts(ctx)
	} else {
		products, err = h.productService.ListProducts(ctx)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	api.SuccessJSON(w, convertProductsToDTO(products), nil)
}

// LowStockReport 店內補貨報表
func (h *ProductHandler) LowStockReport(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.LowStockReport(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	api.SuccessJSON(w, convertProductsToDTO(products), nil)
}

func convertProductToDTO(product *model.Product) dto.ProductDTO {
	return dto.ProductDTO{
		ProductID:    product.ProductID,
		Sku:          product.Sku,
		Name:         product.Name,
		Description:  product.Description,
		ProductType:  string(product.ProductType),
		SellingPrice: product.SellingPrice.String(),
		Stock:        product.Stock,
		IsActive:     product.IsActive,
	}
}

func convertProductsToDTO(products []model.Product) []dto.ProductDTO {
	result := make([]dto.ProductDTO, 0, len(products))
	for i := range products {
		result = append(result, convertProductToDTO(&products[i]))
	}
	return result
}
