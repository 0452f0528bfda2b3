package service

import (
	"context"
	"testing"

	"github.com/RoyceAzure/lab/bikeshop/internal/domain/model"
	"github.com/RoyceAzure/lab/bikeshop/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/bikeshop/internal/infra/repository/redis_repo"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
)

const (
	testDbName        = "lab_bikeshop"
	testDbHost        = "localhost"
	testDbPort        = "5432"
	testDbUser        = "royce"
	testDbPas         = "password"
	testRedisAddr     = "localhost:6379"
	testRedisPassword = "password"
)

// OrderServiceTestSuite 走真實 postgres + redis 的整合測試
type OrderServiceTestSuite struct {
	suite.Suite
	store        *db.UnifiedDBImpl
	redisClient  *redis.Client
	cartRepo     *redis_repo.CartRepo
	cartService  *CartService
	orderService *OrderService
	testClient   *model.Client
}

func (suite *OrderServiceTestSuite) SetupSuite() {
	conn, err := db.GetDbConn(testDbName, testDbHost, testDbPort, testDbUser, testDbPas)
	require.NoError(suite.T(), err)

	store := db.NewUnifiedDB(conn)
	require.NoError(suite.T(), store.InitMigrate())

	suite.store = store
	suite.redisClient = redis.NewClient(&redis.Options{
		Addr:     testRedisAddr,
		Password: testRedisPassword,
	})
	suite.cartRepo = redis_repo.NewCartRepo(suite.redisClient)
	suite.cartService = NewCartService(suite.cartRepo, store, store)

	logger := zerolog.Nop()
	suite.orderService = NewOrderService(store, suite.cartRepo, nil, &logger)
}

func (suite *OrderServiceTestSuite) SetupTest() {
	conn := suite.store.GetDB()
	conn.Exec("DELETE FROM order_timelines")
	conn.Exec("DELETE FROM payments")
	conn.Exec("DELETE FROM invoices")
	conn.Exec("DELETE FROM order_items")
	conn.Exec("DELETE FROM orders")
	conn.Exec("DELETE FROM products")
	conn.Exec("DELETE FROM coupons")
	conn.Exec("DELETE FROM clients")

	suite.testClient = &model.Client{
		ClientID: uuid.New().String(),
		Name:     "Test Client",
		Email:    uuid.New().String() + "@example.com",
		TaxID:    "12345678901",
		Phone:    "11999998888",
		Address:  "Rua A, 10",
		City:     "Sao Paulo",
		State:    "SP",
		ZipCode:  "01000-000",
	}
	require.NoError(suite.T(), suite.store.CreateClient(context.Background(), suite.testClient))
}

func (suite *OrderServiceTestSuite) TearDownSuite() {
	suite.redisClient.Close()
	conn, err := suite.store.GetDB().DB()
	require.NoError(suite.T(), err)
	conn.Close()
}

func (suite *OrderServiceTestSuite) createProduct(stock int, productType model.ProductType) *model.Product {
	product := &model.Product{
		ProductID:    uuid.New().String(),
		Sku:          "SKU-" + uuid.New().String()[:8],
		Name:         "Test Product",
		ProductType:  productType,
		CostPrice:    decimal.NewFromInt(50),
		SellingPrice: decimal.NewFromInt(100),
		Stock:        stock,
		IsActive:     true,
	}
	require.NoError(suite.T(), suite.store.CreateProduct(context.Background(), product))
	return product
}

func (suite *OrderServiceTestSuite) stockOf(productID string) int {
	product, err := suite.store.GetProductByID(context.Background(), productID)
	require.NoError(suite.T(), err)
	return product.Stock
}

func (suite *OrderServiceTestSuite) checkoutWith(owner model.CartOwner, product *model.Product, qty int) *model.Order {
	ctx := context.Background()
	_, err := suite.cartService.Add(ctx, owner, product.ProductID, qty, false)
	require.NoError(suite.T(), err)

	order, err := suite.orderService.Checkout(ctx, owner, suite.testClient.ClientID)
	require.NoError(suite.T(), err)
	return order
}

func (suite *OrderServiceTestSuite) TestCheckoutCreatesQuoteAndDecrementsStock() {
	ctx := context.Background()
	owner := model.SessionCartOwner(uuid.New().String())
	product := suite.createProduct(10, model.ProductTypeComponent)

	order := suite.checkoutWith(owner, product, 2)

	require.Equal(suite.T(), model.OrderStatusQuote, order.Status)
	require.Len(suite.T(), order.OrderItems, 1)
	require.Equal(suite.T(), 2, order.OrderItems[0].Quantity)
	require.True(suite.T(), decimal.NewFromInt(200).Equal(order.TotalAmount))
	require.Contains(suite.T(), order.OrderItems[0].Description, product.Sku)

	// 庫存在結帳當下扣除
	require.Equal(suite.T(), 8, suite.stockOf(product.ProductID))

	// 購物車已清空
	cart, err := suite.cartRepo.Get(ctx, owner)
	require.NoError(suite.T(), err)
	require.True(suite.T(), cart.IsEmpty())

	// 審計紀錄
	timeline, err := suite.store.GetTimeline(ctx, order.OrderID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), timeline, 1)
	require.Equal(suite.T(), model.OrderStatusQuote, timeline[0].Status)
}

func (suite *OrderServiceTestSuite) TestCheckoutEmptyCart() {
	owner := model.SessionCartOwner(uuid.New().String())

	_, err := suite.orderService.Checkout(context.Background(), owner, suite.testClient.ClientID)
	require.ErrorIs(suite.T(), err, ErrEmptyCart)
}

func (suite *OrderServiceTestSuite) TestCheckoutIncompleteProfile() {
	ctx := context.Background()
	owner := model.SessionCartOwner(uuid.New().String())
	product := suite.createProduct(10, model.ProductTypeComponent)

	incomplete := &model.Client{
		ClientID: uuid.New().String(),
		Name:     "Incomplete",
		Email:    uuid.New().String() + "@example.com",
	}
	require.NoError(suite.T(), suite.store.CreateClient(ctx, incomplete))

	_, err := suite.cartService.Add(ctx, owner, product.ProductID, 1, false)
	require.NoError(suite.T(), err)

	_, err = suite.orderService.Checkout(ctx, owner, incomplete.ClientID)

	var profileErr *IncompleteProfileError
	require.ErrorAs(suite.T(), err, &profileErr)
	require.Contains(suite.T(), profileErr.Missing, "phone")

	// 失敗不動庫存也不清購物車
	require.Equal(suite.T(), 10, suite.stockOf(product.ProductID))
	cart, err := suite.cartRepo.Get(ctx, owner)
	require.NoError(suite.T(), err)
	require.False(suite.T(), cart.IsEmpty())
}

func (suite *OrderServiceTestSuite) TestCheckoutInsufficientStockRollsBack() {
	ctx := context.Background()
	owner := model.SessionCartOwner(uuid.New().String())
	product := suite.createProduct(2, model.ProductTypeComponent)

	// 直接塞超量項目, 模擬加入購物車後被別人買走的過期暫存
	require.NoError(suite.T(), suite.cartRepo.SetItem(ctx, owner, model.CartItem{
		ProductID: product.ProductID,
		Quantity:  5,
		UnitPrice: product.SellingPrice,
	}))

	_, err := suite.orderService.Checkout(ctx, owner, suite.testClient.ClientID)

	var stockErr *StockExhaustedError
	require.ErrorAs(suite.T(), err, &stockErr)
	require.Equal(suite.T(), 5, stockErr.Requested)
	require.Equal(suite.T(), 2, stockErr.Available)

	// 整筆回滾: 不建單、不扣庫存、購物車保留
	require.Equal(suite.T(), 2, suite.stockOf(product.ProductID))
	orders, err := suite.store.GetOrdersByClientID(ctx, suite.testClient.ClientID)
	require.NoError(suite.T(), err)
	require.Empty(suite.T(), orders)
	cart, err := suite.cartRepo.Get(ctx, owner)
	require.NoError(suite.T(), err)
	require.False(suite.T(), cart.IsEmpty())
}

func (suite *OrderServiceTestSuite) TestCheckoutServiceItemNoStockEffect() {
	owner := model.SessionCartOwner(uuid.New().String())
	product := suite.createProduct(0, model.ProductTypeService)

	order := suite.checkoutWith(owner, product, 1)

	require.Equal(suite.T(), model.OrderStatusQuote, order.Status)
	require.Equal(suite.T(), 0, suite.stockOf(product.ProductID))
}

func (suite *OrderServiceTestSuite) TestCheckoutWithCoupon() {
	ctx := context.Background()
	owner := model.SessionCartOwner(uuid.New().String())
	product := suite.createProduct(10, model.ProductTypeComponent)

	coupon := &model.Coupon{
		CouponID:        uuid.New().String(),
		Code:            "TEN",
		DiscountPercent: 10,
		Active:          true,
	}
	require.NoError(suite.T(), suite.store.CreateCoupon(ctx, coupon))

	_, err := suite.cartService.Add(ctx, owner, product.ProductID, 2, false)
	require.NoError(suite.T(), err)
	_, err = suite.cartService.ApplyCoupon(ctx, owner, "TEN")
	require.NoError(suite.T(), err)

	order, err := suite.orderService.Checkout(ctx, owner, suite.testClient.ClientID)
	require.NoError(suite.T(), err)

	require.NotNil(suite.T(), order.CouponID)
	require.True(suite.T(), decimal.NewFromInt(180).Equal(order.TotalAmount),
		"total should be 180, got %s", order.TotalAmount)
}

func (suite *OrderServiceTestSuite) TestApprovePaymentIdempotent() {
	ctx := context.Background()
	owner := model.SessionCartOwner(uuid.New().String())
	product := suite.createProduct(10, model.ProductTypeComponent)
	order := suite.checkoutWith(owner, product, 2)

	require.NoError(suite.T(), suite.orderService.ApprovePayment(ctx, order.OrderID))

	// 付款確認是純狀態轉移, 不再扣庫存
	require.Equal(suite.T(), 8, suite.stockOf(product.ProductID))

	retrieved, err := suite.store.GetOrderByID(ctx, order.OrderID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), model.OrderStatusApproved, retrieved.Status)

	// 重複確認靜默略過, 不追加審計紀錄
	require.NoError(suite.T(), suite.orderService.ApprovePayment(ctx, order.OrderID))
	timeline, err := suite.store.GetTimeline(ctx, order.OrderID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), timeline, 2)
	require.Equal(suite.T(), 8, suite.stockOf(product.ProductID))
}

func (suite *OrderServiceTestSuite) TestApprovePaymentInvalidFromCanceled() {
	ctx := context.Background()
	owner := model.SessionCartOwner(uuid.New().String())
	product := suite.createProduct(10, model.ProductTypeComponent)
	order := suite.checkoutWith(owner, product, 1)

	require.NoError(suite.T(), suite.orderService.CancelOrder(ctx, order.OrderID))

	err := suite.orderService.ApprovePayment(ctx, order.OrderID)
	var transitionErr *InvalidTransitionError
	require.ErrorAs(suite.T(), err, &transitionErr)
	require.Equal(suite.T(), model.OrderStatusCanceled, transitionErr.From)
}

func (suite *OrderServiceTestSuite) TestCancelFromApprovedReleasesStock() {
	ctx := context.Background()
	owner := model.SessionCartOwner(uuid.New().String())
	product := suite.createProduct(10, model.ProductTypeComponent)
	order := suite.checkoutWith(owner, product, 2)

	require.NoError(suite.T(), suite.orderService.ApprovePayment(ctx, order.OrderID))
	require.Equal(suite.T(), 8, suite.stockOf(product.ProductID))

	require.NoError(suite.T(), suite.orderService.CancelOrder(ctx, order.OrderID))

	// 用凍結數量返還
	require.Equal(suite.T(), 10, suite.stockOf(product.ProductID))

	retrieved, err := suite.store.GetOrderByID(ctx, order.OrderID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), model.OrderStatusCanceled, retrieved.Status)
}

func (suite *OrderServiceTestSuite) TestCancelFromQuoteStatusOnly() {
	ctx := context.Background()
	owner := model.SessionCartOwner(uuid.New().String())
	product := suite.createProduct(10, model.ProductTypeComponent)
	order := suite.checkoutWith(owner, product, 2)

	require.NoError(suite.T(), suite.orderService.CancelOrder(ctx, order.OrderID))

	retrieved, err := suite.store.GetOrderByID(ctx, order.OrderID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), model.OrderStatusCanceled, retrieved.Status)

	// 報價單取消只改狀態, 不做庫存補償
	require.Equal(suite.T(), 8, suite.stockOf(product.ProductID))
}

func (suite *OrderServiceTestSuite) TestCancelIdempotentNoDoubleRelease() {
	ctx := context.Background()
	owner := model.SessionCartOwner(uuid.New().String())
	product := suite.createProduct(10, model.ProductTypeComponent)
	order := suite.checkoutWith(owner, product, 2)

	require.NoError(suite.T(), suite.orderService.ApprovePayment(ctx, order.OrderID))
	require.NoError(suite.T(), suite.orderService.CancelOrder(ctx, order.OrderID))
	// 重複取消靜默略過, 不能再返還一次
	require.NoError(suite.T(), suite.orderService.CancelOrder(ctx, order.OrderID))

	require.Equal(suite.T(), 10, suite.stockOf(product.ProductID))
}

func (suite *OrderServiceTestSuite) TestCancelFinishedRejected() {
	ctx := context.Background()
	owner := model.SessionCartOwner(uuid.New().String())
	product := suite.createProduct(10, model.ProductTypeComponent)
	order := suite.checkoutWith(owner, product, 1)

	require.NoError(suite.T(), suite.orderService.ApprovePayment(ctx, order.OrderID))
	require.NoError(suite.T(), suite.orderService.SetStatus(ctx, order.OrderID, model.OrderStatusInProgress))
	require.NoError(suite.T(), suite.orderService.SetStatus(ctx, order.OrderID, model.OrderStatusReady))
	require.NoError(suite.T(), suite.orderService.SetStatus(ctx, order.OrderID, model.OrderStatusFinished))

	err := suite.orderService.CancelOrder(ctx, order.OrderID)
	var transitionErr *InvalidTransitionError
	require.ErrorAs(suite.T(), err, &transitionErr)
}

func (suite *OrderServiceTestSuite) TestSetStatusRejectsSkippedStep() {
	ctx := context.Background()
	owner := model.SessionCartOwner(uuid.New().String())
	product := suite.createProduct(10, model.ProductTypeComponent)
	order := suite.checkoutWith(owner, product, 1)

	// QUOTE 不能直接跳 READY
	err := suite.orderService.SetStatus(ctx, order.OrderID, model.OrderStatusReady)
	var transitionErr *InvalidTransitionError
	require.ErrorAs(suite.T(), err, &transitionErr)
	require.Equal(suite.T(), model.OrderStatusQuote, transitionErr.From)
	require.Equal(suite.T(), model.OrderStatusReady, transitionErr.To)
}

func (suite *OrderServiceTestSuite) TestSetStatusSameStatusNoOp() {
	ctx := context.Background()
	owner := model.SessionCartOwner(uuid.New().String())
	product := suite.createProduct(10, model.ProductTypeComponent)
	order := suite.checkoutWith(owner, product, 1)

	require.NoError(suite.T(), suite.orderService.ApprovePayment(ctx, order.OrderID))
	require.NoError(suite.T(), suite.orderService.SetStatus(ctx, order.OrderID, model.OrderStatusInProgress))

	timelineBefore, err := suite.store.GetTimeline(ctx, order.OrderID)
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), suite.orderService.SetStatus(ctx, order.OrderID, model.OrderStatusInProgress))

	timelineAfter, err := suite.store.GetTimeline(ctx, order.OrderID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), timelineAfter, len(timelineBefore))
}

// TestConcurrentCheckoutLastUnit 兩台購物車同時搶最後一件
// 恰好一筆成單, 另一筆拿到庫存不足, 庫存不會變負數
func (suite *OrderServiceTestSuite) TestConcurrentCheckoutLastUnit() {
	ctx := context.Background()
	product := suite.createProduct(1, model.ProductTypeComponent)

	owners := []model.CartOwner{
		model.SessionCartOwner(uuid.New().String()),
		model.SessionCartOwner(uuid.New().String()),
	}
	for _, owner := range owners {
		require.NoError(suite.T(), suite.cartRepo.SetItem(ctx, owner, model.CartItem{
			ProductID: product.ProductID,
			Quantity:  1,
			UnitPrice: product.SellingPrice,
		}))
	}

	results := make(chan error, len(owners))
	var g errgroup.Group
	for _, owner := range owners {
		owner := owner
		g.Go(func() error {
			_, err := suite.orderService.Checkout(ctx, owner, suite.testClient.ClientID)
			results <- err
			return nil
		})
	}
	require.NoError(suite.T(), g.Wait())
	close(results)

	succeeded, failed := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			var stockErr *StockExhaustedError
			require.ErrorAs(suite.T(), err, &stockErr)
			failed++
		}
	}
	require.Equal(suite.T(), 1, succeeded)
	require.Equal(suite.T(), 1, failed)
	require.Equal(suite.T(), 0, suite.stockOf(product.ProductID))

	orders, err := suite.store.GetOrdersByClientID(ctx, suite.testClient.ClientID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), orders, 1)
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
