package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/bikeshop/internal/domain/model"
	"gorm.io/gorm"
)

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrProductStockNotEnough 商品庫存不足
	ErrProductStockNotEnough = errors.New("product stock not enough")
	// ErrNotInTransaction 庫存增減必須在外層事務內執行
	ErrNotInTransaction = errors.New("stock mutation requires an enclosing transaction")
)

// ProductRepo 商品目錄查詢 + 庫存帳
// 庫存欄位只允許透過 ReserveStock / ReleaseStock 增減
type ProductRepo struct {
	db *DbDao
}

func NewProductRepo(db *DbDao) *ProductRepo {
	return &ProductRepo{db: db}
}

func (s *ProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Create(product).Error
}

func (s *ProductRepo) GetProductByID(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).First(&product, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductsByIDs 批次查詢，購物車展開時一次撈齊避免 N+1
func (s *ProductRepo) GetProductsByIDs(ctx context.Context, productIDs []string) ([]model.Product, error) {
	var products []model.Product
	err := s.db.WithContext(ctx).Where("product_id IN ?", productIDs).Find(&products).Error
	return products, err
}

func (s *ProductRepo) GetProductBySku(ctx context.Context, sku string) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).Where("sku = ?", sku).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductRepo) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := s.db.WithContext(ctx).Find(&products).Error
	return products, err
}

// Read - 查詢上架且有庫存的商品（服務類不佔庫存，一律視為可售）
func (s *ProductRepo) GetProductsInStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := s.db.WithContext(ctx).
		Where("is_active = true AND (stock > 0 OR product_type = ?)", model.ProductTypeService).
		Find(&products).Error
	return products, err
}

// Read - 庫存低於警戒值的商品，給後台補貨報表用
func (s *ProductRepo) GetLowStockProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := s.db.WithContext(ctx).
		Where("product_type <> ? AND stock <= min_stock_alert", model.ProductTypeService).
		Find(&products).Error
	return products, err
}

func (s *ProductRepo) UpdateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Save(product).Error
}

func (s *ProductRepo) HardDeleteProduct(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Unscoped().Where("product_id = ?", id).Delete(&model.Product{}).Error
}

// ReserveStock 庫存預留（扣減）
// 必須在外層事務內呼叫，鎖定商品列後檢查再扣，檢查失敗回傳
// ErrProductStockNotEnough 並附上鎖定當下的商品狀態，整筆事務由呼叫端回滾
func (s *ProductRepo) ReserveStock(ctx context.Context, tx *gorm.DB, productID string, quantity int) (*model.Product, error) {
	if tx == nil {
		return nil, ErrNotInTransaction
	}

	// 先鎖定記錄 (SELECT ... FOR UPDATE)
	var product model.Product
	err := tx.WithContext(ctx).
		Clauses(lockForUpdate()).
		First(&product, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	if product.Stock < quantity {
		return &product, ErrProductStockNotEnough
	}

	if err := tx.WithContext(ctx).Model(&model.Product{}).
		Where("product_id = ?", productID).
		Update("stock", gorm.Expr("stock - ?", quantity)).Error; err != nil {
		return nil, err
	}

	product.Stock -= quantity
	return &product, nil
}

// ReleaseStock 庫存返還（取消訂單的補償操作）
// 同樣要求外層事務與行鎖，除了商品不存在外不會失敗
func (s *ProductRepo) ReleaseStock(ctx context.Context, tx *gorm.DB, productID string, quantity int) (*model.Product, error) {
	if tx == nil {
		return nil, ErrNotInTransaction
	}

	var product model.Product
	err := tx.WithContext(ctx).
		Clauses(lockForUpdate()).
		First(&product, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := tx.WithContext(ctx).Model(&model.Product{}).
		Where("product_id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", quantity)).Error; err != nil {
		return nil, err
	}

	product.Stock += quantity
	return &product, nil
}
