package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/asamarket/asafish-gobackend/internal/config"
	"github.com/asamarket/asafish-gobackend/internal/db"
	"github.com/asamarket/asafish-gobackend/internal/handlers"
	"github.com/asamarket/asafish-gobackend/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	handlers.InitAuth(cfg.JWTSecret)

	client, err := db.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Disconnect(ctx, client); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	database := client.Database(cfg.DatabaseName)

	// Stores and services
	eventStore := services.NewMongoEventStore(database)
	payoutStore := services.NewMongoPayoutStore(database)

	userService := services.NewUserService(database)
	catchService := services.NewCatchService(database)
	chapaService := services.NewChapaService(cfg.ChapaSecretKey, "")
	settlementService := services.NewSettlementService(eventStore, payoutStore, cfg.DecayThreshold())
	payoutService := services.NewPayoutService(payoutStore, settlementService)
	orderService := services.NewOrderService(database, catchService, chapaService, settlementService, cfg.AppBaseURL)

	// Idempotent schema setup
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := eventStore.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure settlement indexes: %v", err)
	}
	if err := payoutStore.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure payout indexes: %v", err)
	}
	if err := orderService.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure order indexes: %v", err)
	}

	userHandler := handlers.NewUserHandler(userService)
	catchHandler := handlers.NewCatchHandler(catchService)
	orderHandler := handlers.NewOrderHandler(orderService, cfg.ChapaWebhookSecret)
	payoutHandler := handlers.NewPayoutHandler(payoutService)

	// Set up router
	router := mux.NewRouter()
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET", "HEAD")

	router.HandleFunc("/api/user", userHandler.CreateUser).Methods("POST")
	router.HandleFunc("/api/user", userHandler.GetUsers).Methods("GET")
	router.HandleFunc("/api/login", userHandler.LoginUserHandler).Methods("POST")

	router.HandleFunc("/api/catch", catchHandler.CreateCatch).Methods("POST")
	router.HandleFunc("/api/catches", catchHandler.GetCatches).Methods("GET")
	router.HandleFunc("/api/catch/{catchID}", catchHandler.GetCatch).Methods("GET")

	router.HandleFunc("/api/order", orderHandler.CreateOrder).Methods("POST")
	router.HandleFunc("/api/order/{orderID}", orderHandler.GetOrder).Methods("GET")
	router.HandleFunc("/api/orders/me", orderHandler.GetMyOrders).Methods("GET")
	router.HandleFunc("/api/payment/webhook", orderHandler.Webhook).Methods("POST")
	router.HandleFunc("/api/payment/verify/{txRef}", orderHandler.VerifyPayment).Methods("GET")

	router.HandleFunc("/api/payouts/me", payoutHandler.GetMyPayouts).Methods("GET")
	router.HandleFunc("/api/payouts/request", payoutHandler.RequestPayout).Methods("POST")
	router.HandleFunc("/api/payouts/admin", payoutHandler.ListPayouts).Methods("GET")
	router.HandleFunc("/api/payouts/{payoutID}/status", payoutHandler.TransitionPayout).Methods("PATCH")

	// Start server
	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	log.Printf("Server running on port %s", cfg.Port)
	log.Fatal(server.ListenAndServe())
}
