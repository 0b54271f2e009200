package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"order-backend/internal/audit"
	"order-backend/internal/auth"
	"order-backend/internal/config"
	"order-backend/internal/httpx"
	kafkax "order-backend/internal/kafka"
	"order-backend/internal/orders"
	"order-backend/internal/postgres"
	"order-backend/internal/redisx"
	"order-backend/internal/workflow"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prod := kafkax.NewProducer(log, cfg.KafkaBrokers, audit.Topic, 1024)
	prod.Start(ctx)

	sessions := auth.NewStore(rdb, cfg.SessionTTL)
	orderRepo := &orders.OrderRepo{DB: db}
	svc := workflow.New(log, orderRepo, &audit.KafkaNotifier{Producer: prod})

	router := httpx.NewRouter()
	(&httpx.OrdersHandler{Svc: svc, Redis: rdb, Sessions: sessions}).Register(router)
	(&httpx.ProductsHandler{
		Store:    &orders.ProductRepo{DB: db},
		Ledger:   &orders.InventoryRepo{DB: db},
		Sessions: sessions,
	}).Register(router)
	(&httpx.AddressesHandler{Store: &orders.AddressRepo{DB: db}, Sessions: sessions}).Register(router)
	(&httpx.UsersHandler{Store: &orders.UserRepo{DB: db}, Sessions: sessions}).Register(router)
	(&httpx.AuthHandler{Users: &orders.UserRepo{DB: db}, Sessions: sessions}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen failed", "err", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()
	prod.WaitClosed()
}
