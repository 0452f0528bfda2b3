package appcontext

import (
	"context"
	"os"
	"strings"

	"github.com/RoyceAzure/lab/bikeshop/internal/config"
	"github.com/RoyceAzure/lab/bikeshop/internal/infra/producer"
	"github.com/RoyceAzure/lab/bikeshop/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/bikeshop/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/bikeshop/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type ApplicationContext struct {
	Cf             *config.Config
	Logger         *zerolog.Logger
	DbConn         *gorm.DB
	Store          db.UnifiedDB
	RedisClient    *redis.Client
	CartRepo       *redis_repo.CartRepo
	EventProducer  producer.OrderEventProducer
	CartService    service.ICartService
	OrderService   service.IOrderService
	ProductService service.IProductService
	BillingService service.IBillingService
}

func NewApplicationContext(cf *config.Config) (*ApplicationContext, error) {
	app := ApplicationContext{
		Cf: cf,
	}
	if err := app.Init(); err != nil {
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init() error {
	app.setUpLogger()
	if err := app.setUpDbConn(); err != nil {
		return err
	}
	app.setUpRedis()
	app.setUpProducer()
	app.setUpServices()
	return nil
}

func (app *ApplicationContext) setUpLogger() {
	level, err := zerolog.ParseLevel(app.Cf.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	app.Logger = &logger
}

func (app *ApplicationContext) setUpDbConn() error {
	conn, err := db.GetDbConn(app.Cf.DbName, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbUser, app.Cf.DbPas)
	if err != nil {
		return err
	}
	app.DbConn = conn

	store := db.NewUnifiedDB(conn)
	if err := store.InitMigrate(); err != nil {
		return err
	}
	app.Store = store
	return nil
}

func (app *ApplicationContext) setUpRedis() {
	app.RedisClient = redis.NewClient(&redis.Options{
		Addr:     app.Cf.RedisAddr,
		Password: app.Cf.RedisPassword,
		DB:       app.Cf.RedisDB,
	})
	app.CartRepo = redis_repo.NewCartRepo(app.RedisClient)
}

func (app *ApplicationContext) setUpProducer() {
	// 沒設定 broker 就不發事件, OrderService 對 nil producer 容錯
	if app.Cf.KafkaBrokers == "" {
		return
	}
	brokers := strings.Split(app.Cf.KafkaBrokers, ",")
	app.EventProducer = producer.NewOrderEventProducer(brokers, app.Cf.KafkaOrderTopic, app.Logger)
}

func (app *ApplicationContext) setUpServices() {
	app.CartService = service.NewCartService(app.CartRepo, app.Store, app.Store)
	app.OrderService = service.NewOrderService(app.Store, app.CartRepo, app.EventProducer, app.Logger)
	app.ProductService = service.NewProductService(app.Store)
	app.BillingService = service.NewBillingService(app.Store, app.OrderService, app.Logger)
}

// Reload 套用重載後的設定
// 連線類設定改了要重啟才生效，目前只有 log level 能熱套用
func (app *ApplicationContext) Reload(cf *config.Config) {
	level, err := zerolog.ParseLevel(cf.LogLevel)
	if err != nil {
		app.Logger.Warn().Str("log_level", cf.LogLevel).Msg("invalid log level on reload, keeping current")
		return
	}

	*app.Logger = app.Logger.Level(level)
	app.Cf.LogLevel = cf.LogLevel
	app.Logger.Info().Str("log_level", level.String()).Msg("config reloaded")
}

func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	if app.EventProducer != nil {
		if err := app.EventProducer.Close(); err != nil {
			app.Logger.Error().Err(err).Msg("failed to close event producer")
		}
	}
	if app.RedisClient != nil {
		if err := app.RedisClient.Close(); err != nil {
			app.Logger.Error().Err(err).Msg("failed to close redis client")
		}
	}
	if app.DbConn != nil {
		sqlDB, err := app.DbConn.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
