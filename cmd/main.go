package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelBookingHandler "github.com/m04kA/SMC-ReservationCore/internal/api/handlers/cancel_booking"
	confirmBookingHandler "github.com/m04kA/SMC-ReservationCore/internal/api/handlers/confirm_booking"
	createBookingHandler "github.com/m04kA/SMC-ReservationCore/internal/api/handlers/create_booking"
	createPaymentIntentHandler "github.com/m04kA/SMC-ReservationCore/internal/api/handlers/create_payment_intent"
	getAvailableSlotsHandler "github.com/m04kA/SMC-ReservationCore/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-ReservationCore/internal/api/handlers/get_booking"
	getCapacitySlotHandler "github.com/m04kA/SMC-ReservationCore/internal/api/handlers/get_capacity_slot"
	healthzHandler "github.com/m04kA/SMC-ReservationCore/internal/api/handlers/healthz"
	listTripBookingsHandler "github.com/m04kA/SMC-ReservationCore/internal/api/handlers/list_trip_bookings"
	paymentWebhookHandler "github.com/m04kA/SMC-ReservationCore/internal/api/handlers/payment_webhook"
	provisionCapacitySlotHandler "github.com/m04kA/SMC-ReservationCore/internal/api/handlers/provision_capacity_slot"
	unsignedWebhookHandler "github.com/m04kA/SMC-ReservationCore/internal/api/handlers/unsigned_webhook"
	"github.com/m04kA/SMC-ReservationCore/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationCore/internal/config"
	"github.com/m04kA/SMC-ReservationCore/internal/infra/catalog"
	bookingRepo "github.com/m04kA/SMC-ReservationCore/internal/infra/storage/booking"
	capacityRepo "github.com/m04kA/SMC-ReservationCore/internal/infra/storage/capacity"
	paymentRepo "github.com/m04kA/SMC-ReservationCore/internal/infra/storage/payment"
	webhookEventRepo "github.com/m04kA/SMC-ReservationCore/internal/infra/storage/webhookevent"
	"github.com/m04kA/SMC-ReservationCore/internal/integrations/dispatch"
	"github.com/m04kA/SMC-ReservationCore/internal/integrations/paymentprovider"
	bookingsService "github.com/m04kA/SMC-ReservationCore/internal/service/bookings"
	capacityService "github.com/m04kA/SMC-ReservationCore/internal/service/capacity"
	pricingService "github.com/m04kA/SMC-ReservationCore/internal/service/pricing"
	confirmBookingUC "github.com/m04kA/SMC-ReservationCore/internal/usecase/confirm_booking"
	createBookingUC "github.com/m04kA/SMC-ReservationCore/internal/usecase/create_booking"
	createPaymentIntentUC "github.com/m04kA/SMC-ReservationCore/internal/usecase/create_payment_intent"
	expireBookingsUC "github.com/m04kA/SMC-ReservationCore/internal/usecase/expire_bookings"
	getAvailableSlotsUC "github.com/m04kA/SMC-ReservationCore/internal/usecase/get_available_slots"
	processWebhookUC "github.com/m04kA/SMC-ReservationCore/internal/usecase/process_webhook"
	"github.com/m04kA/SMC-ReservationCore/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationCore/pkg/logger"
	"github.com/m04kA/SMC-ReservationCore/pkg/metrics"
	"github.com/m04kA/SMC-ReservationCore/pkg/txmanager"
)

func main() {
	configPath := "config.toml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-ReservationCore...")
	log.Info("Configuration loaded from %s", configPath)

	// Метрики (если включены). nil-коллектор превращает вызовы в no-op.
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Каталог поездок
	initialCatalog, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		log.Fatal("Failed to load catalog: %v", err)
	}
	catalogStore := catalog.NewStore(initialCatalog)
	log.Info("Catalog loaded from %s (trips=%d)", cfg.Catalog.Path, len(initialCatalog.Trips))

	// Интеграции
	var provider createPaymentIntentUC.Provider
	switch cfg.Payments.Provider {
	case "http":
		provider = paymentprovider.NewClient(
			cfg.Payments.APIURL,
			cfg.Payments.APIKey,
			time.Duration(cfg.Payments.Timeout)*time.Second,
			log,
		)
		log.Info("Payment provider client initialized (url=%s, timeout=%ds)", cfg.Payments.APIURL, cfg.Payments.Timeout)
	default:
		provider = paymentprovider.NewSimulator()
		log.Warn("Payment provider simulator is in use")
	}

	var publisher confirmBookingUC.Publisher
	if cfg.Dispatch.Enabled {
		amqpPublisher, err := dispatch.NewPublisher(cfg.Dispatch.URL, cfg.Dispatch.Exchange, cfg.Dispatch.RoutingKey, metricsCollector, log)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ: %v", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		log.Info("Dispatch publisher initialized (exchange=%s, routing_key=%s)", cfg.Dispatch.Exchange, cfg.Dispatch.RoutingKey)
	} else {
		publisher = dispatch.NewNoopPublisher(log)
	}

	// Репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	capacityRepository := capacityRepo.NewRepository(wrappedDB)
	paymentRepository := paymentRepo.NewRepository(wrappedDB)
	eventRepository := webhookEventRepo.NewRepository(wrappedDB)

	// Сервисы
	pricing := pricingService.NewService(catalogStore, cfg.Bookings.DefaultCapacity, log)
	bookingSvc := bookingsService.NewService(bookingRepository, paymentRepository, log)
	capacitySvc := capacityService.NewService(capacityRepository, pricing, log)

	// Use cases
	createBookingUseCase := createBookingUC.NewUseCase(bookingRepository, pricing, log)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(catalogStore, capacityRepository, pricing, log)

	confirmBookingUseCase := confirmBookingUC.NewUseCase(
		bookingRepository,
		capacityRepository,
		pricing,
		publisher,
		metricsCollector,
		txMgr,
		log,
	)

	createPaymentIntentUseCase := createPaymentIntentUC.NewUseCase(
		bookingRepository,
		paymentRepository,
		pricing,
		provider,
		metricsCollector,
		txMgr,
		time.Duration(cfg.Payments.IdempotencyLockSeconds)*time.Second,
		log,
	)

	applier := processWebhookUC.NewApplier(
		eventRepository,
		paymentRepository,
		bookingRepository,
		confirmBookingUseCase,
		metricsCollector,
		txMgr,
		log,
	)
	webhookProcessor := processWebhookUC.NewProcessor(
		applier,
		cfg.Payments.WebhookSecret,
		time.Duration(cfg.Payments.SignatureToleranceSeconds)*time.Second,
		log,
	)

	expireBookingsUseCase, err := expireBookingsUC.NewUseCase(
		bookingRepository,
		metricsCollector,
		cfg.Bookings.PendingTTL(),
		cfg.Bookings.SweepBatchSize,
		log,
	)
	if err != nil {
		log.Fatal("Failed to initialize expiry sweeper: %v", err)
	}

	// Handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	confirmBooking := confirmBookingHandler.NewHandler(confirmBookingUseCase, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	createPaymentIntent := createPaymentIntentHandler.NewHandler(createPaymentIntentUseCase, log)
	paymentWebhook := paymentWebhookHandler.NewHandler(webhookProcessor, log)
	getCapacitySlot := getCapacitySlotHandler.NewHandler(capacitySvc, log)
	provisionCapacitySlot := provisionCapacitySlotHandler.NewHandler(capacitySvc, log)
	listTripBookings := listTripBookingsHandler.NewHandler(bookingSvc, log)
	healthz := healthzHandler.NewHandler(wrappedDB, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/healthz", healthz.Handle).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES
	// ============================================================

	api.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	api.HandleFunc("/trips/{tripId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	public := api.PathPrefix("").Subrouter()
	if cfg.RateLimit.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RateLimit.RedisAddr,
			Password: cfg.RateLimit.RedisPassword,
			DB:       cfg.RateLimit.RedisDB,
		})
		defer rdb.Close()

		pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis is unreachable at %s, rate limit will fail open: %v", cfg.RateLimit.RedisAddr, err)
		}
		cancelPing()

		limiter := middleware.NewRedisTokenBucket(rdb, cfg.RateLimit.Capacity, cfg.RateLimit.RefillTokens, cfg.RateLimit.RefillInterval())
		public.Use(middleware.RateLimit(limiter, cfg.RateLimit.Prefix, cfg.RateLimit.Capacity, log))
		log.Info("Rate limit enabled (capacity=%d, refill=%d every %s)",
			cfg.RateLimit.Capacity, cfg.RateLimit.RefillTokens, cfg.RateLimit.RefillInterval())
	}

	// --- Бронирования ---
	public.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	public.HandleFunc("/bookings/{bookingId}/confirm", confirmBooking.Handle).Methods(http.MethodPost)
	public.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPost)

	// --- Платежи ---
	public.HandleFunc("/payment-intents", createPaymentIntent.Handle).Methods(http.MethodPost)

	// ============================================================
	// WEBHOOKS (подпись проверяется в процессоре)
	// ============================================================

	api.HandleFunc("/webhooks/payments", paymentWebhook.Handle).Methods(http.MethodPost)

	if cfg.Payments.UnsignedWebhooksEnabled() {
		unsignedProcessor, err := processWebhookUC.NewUnsignedProcessor(
			applier,
			cfg.Payments.AllowUnsignedWebhooks,
			cfg.Payments.WebhookSecret,
			log,
		)
		if err != nil {
			log.Fatal("Failed to initialize unsigned webhook processor: %v", err)
		}
		api.HandleFunc("/webhooks/payments/test",
			unsignedWebhookHandler.NewHandler(unsignedProcessor, log).Handle).Methods(http.MethodPost)
		log.Warn("Unsigned test webhook route is enabled, never use it in production")
	} else if cfg.Payments.AllowUnsignedWebhooks {
		log.Warn("allow_unsigned_webhooks ignored: webhook secret is configured")
	}

	// ============================================================
	// ADMIN ROUTES (требуют X-Admin-Token)
	// ============================================================

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminToken(cfg.Admin.Token, log))

	admin.HandleFunc("/slots/{tripId}/{date}/{mode}", getCapacitySlot.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/slots/{tripId}/{date}/{mode}", provisionCapacitySlot.Handle).Methods(http.MethodPut)
	admin.HandleFunc("/trips/{tripId}/bookings", listTripBookings.Handle).Methods(http.MethodGet)

	// Фоновые задачи
	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	if cfg.Bookings.SweepIntervalSeconds > 0 {
		interval := time.Duration(cfg.Bookings.SweepIntervalSeconds) * time.Second
		go expireBookingsUseCase.Run(bgCtx, interval)
		log.Info("Expiry sweeper started (interval=%s, ttl=%s)", interval, cfg.Bookings.PendingTTL())
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// SIGHUP перечитывает каталог, SIGINT/SIGTERM завершают работу
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for sig := range sigCh {
		if sig != syscall.SIGHUP {
			break
		}
		if err := catalogStore.Reload(cfg.Catalog.Path); err != nil {
			log.Error("Catalog reload failed, keeping previous snapshot: %v", err)
			continue
		}
		log.Info("Catalog reloaded from %s", cfg.Catalog.Path)
	}

	log.Info("Shutting down server...")

	stopBackground()
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
