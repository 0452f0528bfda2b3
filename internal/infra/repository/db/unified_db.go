package db

import (
	"context"

	"github.com/RoyceAzure/lab/bikeshop/internal/domain/model"
	"gorm.io/gorm"
)

// UnifiedDB 統一的資料庫介面
type UnifiedDB interface {
	// 基礎操作
	GetDB() *gorm.DB
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	InitMigrate() error

	IProductRepository
	IOrderRepository
	IClientRepository
	ICouponRepository
	IInvoiceRepository
}

// IProductRepository 商品目錄 + 庫存帳介面
type IProductRepository interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, productID string) (*model.Product, error)
	GetProductsByIDs(ctx context.Context, productIDs []string) ([]model.Product, error)
	GetProductBySku(ctx context.Context, sku string) (*model.Product, error)
	GetAllProducts(ctx context.Context) ([]model.Product, error)
	GetProductsInStock(ctx context.Context) ([]model.Product, error)
	GetLowStockProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, product *model.Product) error
	HardDeleteProduct(ctx context.Context, id string) error
	ReserveStock(ctx context.Context, tx *gorm.DB, productID string, quantity int) (*model.Product, error)
	ReleaseStock(ctx context.Context, tx *gorm.DB, productID string, quantity int) (*model.Product, error)
}

// IOrderRepository 訂單相關操作介面
type IOrderRepository interface {
	CreateOrder(ctx context.Context, tx *gorm.DB, order *model.Order) error
	GetOrderByID(ctx context.Context, id string) (*model.Order, error)
	GetOrderByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*model.Order, error)
	GetOrdersByClientID(ctx context.Context, clientID string) ([]model.Order, error)
	GetAllOrders(ctx context.Context) ([]model.Order, error)
	GetOrdersByStatus(ctx context.Context, statuses ...model.OrderStatus) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, tx *gorm.DB, id string, status model.OrderStatus) error
	AppendTimeline(ctx context.Context, tx *gorm.DB, entry *model.OrderTimeline) error
	GetTimeline(ctx context.Context, orderID string) ([]model.OrderTimeline, error)
	HardDeleteOrder(ctx context.Context, id string) error
	GetOrdersPaginated(ctx context.Context, page, pageSize int) ([]model.Order, int64, error)
}

// IClientRepository 客戶相關操作介面
type IClientRepository interface {
	CreateClient(ctx context.Context, client *model.Client) error
	GetClientByID(ctx context.Context, id string) (*model.Client, error)
	GetClientByEmail(ctx context.Context, email string) (*model.Client, error)
	UpdateClient(ctx context.Context, client *model.Client) error
	DeleteClient(ctx context.Context, id string) error
}

// ICouponRepository 折扣碼相關操作介面
type ICouponRepository interface {
	CreateCoupon(ctx context.Context, coupon *model.Coupon) error
	GetCouponByID(ctx context.Context, id string) (*model.Coupon, error)
	GetActiveCouponByCode(ctx context.Context, code string) (*model.Coupon, error)
	UpdateCoupon(ctx context.Context, coupon *model.Coupon) error
}

// IInvoiceRepository 帳務相關操作介面
type IInvoiceRepository interface {
	CreateInvoice(ctx context.Context, tx *gorm.DB, invoice *model.Invoice) error
	GetInvoiceByOrderID(ctx context.Context, orderID string) (*model.Invoice, error)
	AddPayment(ctx context.Context, tx *gorm.DB, payment *model.Payment) error
}

// UnifiedDBImpl 統一資料庫實現
type UnifiedDBImpl struct {
	db    *gorm.DB
	dbDao *DbDao
	*ProductRepo
	*OrderRepo
	*ClientRepo
	*CouponRepo
	*InvoiceRepo
}

// NewUnifiedDB 創建新的統一資料庫實例
func NewUnifiedDB(db *gorm.DB) *UnifiedDBImpl {
	dbDao := NewDbDao(db)
	return &UnifiedDBImpl{
		db:          db,
		dbDao:       dbDao,
		ProductRepo: NewProductRepo(dbDao),
		OrderRepo:   NewOrderRepo(dbDao),
		ClientRepo:  NewClientRepo(dbDao),
		CouponRepo:  NewCouponRepo(dbDao),
		InvoiceRepo: NewInvoiceRepo(dbDao),
	}
}

func (u *UnifiedDBImpl) InitMigrate() error {
	return u.dbDao.InitMigrate()
}

// GetDB 獲取資料庫連接
func (u *UnifiedDBImpl) GetDB() *gorm.DB {
	return u.db
}

// Transaction 開啟事務，fn 回傳錯誤則整筆回滾
func (u *UnifiedDBImpl) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return u.db.WithContext(ctx).Transaction(fn)
}

var (
	_ UnifiedDB          = (*UnifiedDBImpl)(nil)
	_ IProductRepository = (*UnifiedDBImpl)(nil)
	_ IOrderRepository   = (*UnifiedDBImpl)(nil)
	_ IClientRepository  = (*UnifiedDBImpl)(nil)
	_ ICouponRepository  = (*UnifiedDBImpl)(nil)
	_ IInvoiceRepository = (*UnifiedDBImpl)(nil)
)
