package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"click-reward-system/handlers"
	"click-reward-system/middleware"
	"click-reward-system/models"
	"click-reward-system/services"
	"click-reward-system/utils"
	"click-reward-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatal("invalid configuration: ", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Reward table and catalogue are immutable for the life of the process
	catalog, err := services.LoadCatalog(cfg.RewardCatalogPath)
	if err != nil {
		log.Fatal("failed to load reward catalogue: ", err)
	}
	log.Printf("✅ Loaded %d reward levels and %d activities from %s",
		len(catalog.Table.Levels()), len(catalog.Activities), cfg.RewardCatalogPath)

	// reward_records is keyed by external user id; activity rewards may precede the account row
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.UserAccount{},
		&models.RewardRecord{},
		&models.ActivityDefinition{},
		&models.UserActivityProgress{},
		&models.GlobalCounter{},
		&models.Referral{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	accounts := services.NewAccountStore(db, cfg.DefaultDailyQuota)
	activityStore := services.NewActivityStore(db)
	if err := activityStore.SeedDefinitions(ctx, catalog.Activities); err != nil {
		log.Fatal("failed to seed activities:", err)
	}

	var counter services.CounterStore
	if cfg.RedisURL != "" {
		rdb, err := services.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal("failed to connect to redis:", err)
		}
		defer rdb.Close()
		counter = services.NewRedisCounterStore(rdb)
		log.Println("✅ Global counter backed by Redis")
	} else {
		gormCounter, err := services.NewGormCounterStore(ctx, db)
		if err != nil {
			log.Fatal("failed to init global counter:", err)
		}
		counter = gormCounter
		log.Println("✅ Global counter backed by Postgres")
	}

	var publisher services.RewardPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := services.NewKafkaRewardPublisher(cfg.KafkaBrokers, cfg.KafkaRewardTopic)
		if err != nil {
			log.Fatal("failed to init kafka publisher:", err)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Printf("✅ Reward events → kafka topic %s", cfg.KafkaRewardTopic)
	}

	clickService := services.NewClickService(accounts, counter, catalog.Table, publisher)
	activityService := services.NewActivityService(activityStore, accounts, publisher)

	// --- Daily reset (and ledger export when R2 is configured) ---
	reset := &services.DailyReset{
		Accounts:     accounts,
		DefaultQuota: cfg.DefaultDailyQuota,
		Location:     loc,
	}
	if cfg.R2.Enabled() {
		uploader, err := utils.NewR2Uploader(ctx, cfg.R2)
		if err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		reset.Exporter = services.NewRewardLedgerExporter(accounts, uploader)
	} else {
		log.Println("⚠️  R2 not configured, reward ledger export disabled")
	}
	sched, err := reset.Start()
	if err != nil {
		log.Fatal("failed to start daily reset scheduler:", err)
	}
	defer sched.Shutdown()

	// --- Workers ---
	reconciler := workers.NewCounterReconcileWorker(counter, accounts, cfg.ReconcileInterval)
	reconciler.Start(ctx)

	if cfg.SyncServiceURL != "" {
		workers.NewAccountSyncWorker(db, cfg.SyncServiceURL, cfg.ServiceToken, cfg.DefaultDailyQuota, utils.HTTPClient).Start(ctx)
	} else {
		log.Println("⚠️  SYNC_SERVICE_URL not set, account sync disabled")
	}

	deps := handlers.Deps{
		Clicks:     clickService,
		Activities: activityService,
		Accounts:   accounts,
		Counter:    counter,
		Referrals: services.ReferralPolicy{
			BonusClicks:     cfg.ReferralBonusClicks,
			MaxDailyBonuses: cfg.MaxDailyReferralBonuses,
		},
		Reconciler: reconciler,
	}
	if cfg.AuthServiceURL != "" {
		deps.Stream = services.NewRewardStreamService(accounts)
		deps.Validator = services.NewAuthServiceClient(cfg.AuthServiceURL, cfg.ServiceToken, utils.HTTPClient)
	}

	app := fiber.New()

	// 🔐❗ GLOBAL: Only Gateway requests allowed
	app.Use(middleware.GatewayAuthMiddleware(cfg.ServiceToken))

	allowedOrigins := strings.Join(cfg.AllowedOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, Cache-Control, X-Device-ID",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	handlers.SetupRoutes(app, deps)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
	log.Printf("✅ Daily reset scheduled at 00:00 %s", loc)
	log.Printf("✅ CORS configured for origins: %s", allowedOrigins)

	<-ctx.Done()
	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
