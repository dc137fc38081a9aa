package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/restaurant-order-system/internal/config"
	"github.com/iliyamo/restaurant-order-system/internal/database"
	"github.com/iliyamo/restaurant-order-system/internal/event"
	"github.com/iliyamo/restaurant-order-system/internal/handler"
	"github.com/iliyamo/restaurant-order-system/internal/repository"
	"github.com/iliyamo/restaurant-order-system/internal/router"
	"github.com/iliyamo/restaurant-order-system/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.RunMigrations(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrations: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient() // nil when Redis is unreachable; caching degrades
	if rdb == nil {
		log.Println("redis unavailable, cache and rate limiting disabled")
	}

	// event plumbing: WebSocket hub for live displays, RabbitMQ for durable consumers
	hub := event.NewHub()
	go hub.Run()
	var pub *event.Publisher
	if cfg.AMQPURL != "" {
		pub = event.NewPublisher(cfg.AMQPURL)
		go func() {
			if err := event.StartConsumer(cfg.AMQPURL); err != nil {
				log.Printf("event consumer stopped: %v", err)
			}
		}()
	}
	events := event.NewBroadcaster(hub, pub)

	// repositories
	orderRepo := repository.NewOrderRepo(db)
	kitchenRepo := repository.NewKitchenOrderRepo(db)
	tableRepo := repository.NewTableRepo(db)
	billRepo := repository.NewBillRepo(db)
	menuRepo := repository.NewMenuItemRepo(db)
	staffRepo := repository.NewStaffRepo(db)

	// services
	taxBP := int64(cfg.TaxRateBP)
	menu := service.NewMenuCatalog(menuRepo, rdb, time.Duration(cfg.MenuCacheTTL)*time.Second)
	staff := service.NewStaffDirectory(staffRepo)
	tables := service.NewTableService(tableRepo, orderRepo, events)
	kitchen := service.NewKitchenService(kitchenRepo, orderRepo, menuRepo, staff, events, taxBP)
	orders := service.NewOrderService(orderRepo, kitchen, tables, billRepo, menu, events, taxBP)
	billing := service.NewBillingService(billRepo, orderRepo, tables, events, taxBP)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Handlers{
		Orders:  handler.NewOrderHandler(orders),
		Kitchen: handler.NewKitchenHandler(kitchen),
		Tables:  handler.NewTableHandler(tables),
		Billing: handler.NewBillingHandler(billing),
		Menu:    handler.NewMenuHandler(menu),
		WS:      handler.NewWSHandler(hub),
		Health:  handler.NewHealthHandler(db, hub),
	}, cfg.JWTSecret, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
