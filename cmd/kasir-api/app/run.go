package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/seiawanrizqi9-cyber/Kasir-BE/configs"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/adapter/cache"
	apphttp "github.com/seiawanrizqi9-cyber/Kasir-BE/internal/adapter/http"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/adapter/http/middleware"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/adapter/queue"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/adapter/repo"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/logging"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logging.Init(cfg.App.Name, cfg.App.LogFile)
	log := logging.New("app")

	// init database
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, nil, err
	}

	log.Info("kasir-api: starting up")

	// init redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	// init rabbitmq producer; sale events stay off when no broker is configured
	var events usecase.SaleEvents
	var rabbitConn *amqp091.Connection
	if cfg.Rabbit.URL != "" {
		rabbitConn, err = amqp091.Dial(cfg.Rabbit.URL)
		if err != nil {
			_ = db.Close()
			_ = rdb.Close()
			return nil, nil, err
		}
		ch, err := rabbitConn.Channel()
		if err != nil {
			_ = db.Close()
			_ = rdb.Close()
			_ = rabbitConn.Close()
			return nil, nil, err
		}
		events, err = queue.NewRabbitProducer(ch)
		if err != nil {
			_ = db.Close()
			_ = rdb.Close()
			_ = rabbitConn.Close()
			return nil, nil, err
		}
	} else {
		log.Warn("rabbitmq url not set, sale.recorded events disabled")
	}

	// infra
	saleStore := repo.NewMySQLSaleStore(db)
	productRepo := repo.NewMySQLProductRepo(db)
	categoryRepo := repo.NewMySQLCategoryRepo(db)
	userRepo := repo.NewMySQLUserRepo(db)
	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)

	// usecases
	createSale := usecase.NewCreateSale(saleStore, saleStore, idem, events, logging.New("sale"))
	saleQueries := usecase.NewSaleQueries(saleStore)
	products := usecase.NewProducts(productRepo, categoryRepo)
	categories := usecase.NewCategories(categoryRepo)
	auth := usecase.NewAuth(userRepo)
	stats := usecase.NewStats(saleStore)

	// handlers + router + middleware
	handlers := apphttp.Handlers{
		Auth:       apphttp.NewAuthHandler(auth, cfg),
		Sales:      apphttp.NewSaleHandler(createSale, saleQueries),
		Products:   apphttp.NewProductHandler(products),
		Categories: apphttp.NewCategoryHandler(categories),
		Stats:      apphttp.NewStatsHandler(stats),
	}
	authz := middleware.NewAuthz(cfg)
	router := apphttp.NewRouter(handlers, authz, logging.New("http"))

	cleanup := func() {
		_ = db.Close()
		_ = rdb.Close()
		if rabbitConn != nil {
			_ = rabbitConn.Close()
		}
	}

	return &App{Router: router}, cleanup, nil
}
