package main

import (
	"log"
	"net/http"
	"time"

	"craftly-be/internal/catalog"
	"craftly-be/internal/config"
	"craftly-be/internal/db"
	"craftly-be/internal/logger"
	"craftly-be/internal/notify"
	"craftly-be/internal/order"
	"craftly-be/internal/rest"
)

const catalogCacheTTL = 5 * time.Minute

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	catalogRepo := catalog.NewRepository(database)
	catalogSvc := catalog.NewService(catalogRepo, catalogCacheTTL)

	notifier := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(
		orderRepo,
		catalogSvc,
		notifier,
		cfg.ReservationWindow,
		cfg.DefaultCurrency,
	)

	handler := rest.NewHandler(orderSvc, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	log.Printf("craftly server running at http://localhost:%s/", cfg.AppPort)
	log.Fatal(srv.ListenAndServe())
}
