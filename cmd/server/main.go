package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/beanly/coffee-shop/internal/cart"
	"github.com/beanly/coffee-shop/internal/catalog"
	"github.com/beanly/coffee-shop/internal/checkout"
	"github.com/beanly/coffee-shop/internal/config"
	"github.com/beanly/coffee-shop/internal/events"
	shophttp "github.com/beanly/coffee-shop/internal/http"
	"github.com/beanly/coffee-shop/internal/orders"
	"github.com/beanly/coffee-shop/internal/session"
	"github.com/beanly/coffee-shop/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	cfg := config.Load()

	cred := &storage.Credentials{
		Host:              cfg.Database.Host,
		Port:              cfg.Database.Port,
		User:              cfg.Database.User,
		Password:          cfg.Database.Password,
		DBName:            cfg.Database.Name,
		MigrationsDirPath: cfg.Database.MigrationsPath,
	}

	db, err := storage.Open(cred)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(db, cred); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	log.Info("database migrations applied")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	publisher := events.NewKafkaPublisher(cfg.Kafka.Topic, cfg.Kafka.Brokers...)
	defer publisher.Close()

	sessionStore := session.NewRedisStore(redisClient, cfg.Session.TTL)

	catalogRepo := catalog.NewPostgresRepository(db)
	catalogService := catalog.NewService(catalogRepo)

	cartService := cart.NewService(sessionStore, catalogService, log)

	orderRepo := orders.NewPostgresRepository(db)
	orderService := orders.NewService(orderRepo, log)

	checkoutService := checkout.NewService(cartService, orderRepo, publisher, log)

	router := shophttp.NewRouter(shophttp.RouterConfig{
		Products:       shophttp.NewProductsHandler(catalogService, log),
		Cart:           shophttp.NewCartHandler(cartService, catalogService, log),
		Checkout:       shophttp.NewCheckoutHandler(checkoutService, log),
		Orders:         shophttp.NewOrdersHandler(orderService, log),
		AdminToken:     cfg.AdminToken,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Infof("http server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("graceful shutdown failed: %v", err)
	}
	log.Info("server stopped")
}
