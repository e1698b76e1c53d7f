package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"club-gameplay-engine/config"
	"club-gameplay-engine/events"
	"club-gameplay-engine/handlers"
	"club-gameplay-engine/middleware"
	"club-gameplay-engine/models"
	"club-gameplay-engine/services"
	"club-gameplay-engine/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ Invalid configuration: ", err)
	}

	app := fiber.New(fiber.Config{})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-Player-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Player{},
		&models.Level{},
		&models.Club{},
		&models.ClubMember{},
		&models.Season{},
		&models.Competition{},
		&models.CupRound{},
		&models.Match{},
		&models.PlayerRoundStat{},
		&models.PlayerTotalStat{},
		&models.LeagueStanding{},
		&models.SeasonRecord{},
		&models.SeasonRecordHolder{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal("invalid REDIS_URL: ", err)
	}
	rdb := redis.NewClient(redisOpts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to redis: ", err)
	}

	bus := events.NewRedisBus(rdb)

	cooldowns := services.NewCooldownService(rdb)
	presence := services.NewPresenceService(db, rdb, cooldowns, cfg)
	records := services.NewSeasonRecordService(db)
	leaderboards := services.NewLeaderboardService(db, rdb, records, cfg)
	scoring := services.NewGoalScoringService(db, cooldowns, presence, leaderboards, bus, cfg)
	lifecycle := services.NewMatchLifecycleService(db, cfg)

	scheduler, err := workers.NewScheduler(ctx, cfg,
		workers.NewMatchLifecycleWorker(lifecycle, leaderboards),
		workers.NewAutoGoalWorker(rdb, scoring),
		workers.NewPresenceCleanupWorker(presence, bus),
		workers.NewLeaderboardSnapshotWorker(lifecycle, leaderboards, bus),
	)
	if err != nil {
		log.Fatal("failed to set up workers: ", err)
	}
	scheduler.Start()

	handlers.SetupGameplayRoutes(app, presence, scoring)
	handlers.SetupLeaderboardRoutes(app, leaderboards, presence)

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Gameplay engine running on %s", cfg.ListenAddr)
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := scheduler.Shutdown(); err != nil {
		log.Printf("failed to stop workers: %v", err)
	}
	if err := app.Shutdown(); err != nil {
		log.Printf("failed to stop server: %v", err)
	}
}
