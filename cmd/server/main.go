package main // Entry point package

import (
	"context" // Context for startup database calls
	"log"     // Logging library

	"github.com/joho/godotenv"    // Load .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/ajbgithub/ticketmatch2-sub000/internal/config"     // Internal config loader
	"github.com/ajbgithub/ticketmatch2-sub000/internal/database"   // MySQL connection helper
	"github.com/ajbgithub/ticketmatch2-sub000/internal/exchange"   // Posting lifecycle service
	"github.com/ajbgithub/ticketmatch2-sub000/internal/handler"    // HTTP handlers
	"github.com/ajbgithub/ticketmatch2-sub000/internal/middleware" // Rate limiting + response cache
	"github.com/ajbgithub/ticketmatch2-sub000/internal/queue"      // Trade log consumer
	"github.com/ajbgithub/ticketmatch2-sub000/internal/repository" // MySQL repositories
	"github.com/ajbgithub/ticketmatch2-sub000/internal/router"     // Internal router setup
)

func main() {
	// Load .env if present.  In production the variables come from the
	// environment directly, so a missing file is not an error.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName) // Connect to MySQL
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories wrap the database handle.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	postings := repository.NewPostingRepo(db)
	events := repository.NewEventRepo(db)
	profiles := repository.NewProfileRepo(db)
	trades := repository.NewTradeRepo(db)
	chat := repository.NewChatRepo(db)

	// The trade counter lives in a single ledger row; make sure it exists
	// before the first trade tries to increment it.
	if err := trades.EnsureLedgerRow(context.Background()); err != nil {
		log.Fatalf("trade ledger: %v", err)
	}

	svc := exchange.NewService(postings, profiles, events, trades) // Posting lifecycle + matching

	// Redis backs the distributed rate limiter and the response cache.  A
	// nil client disables both middlewares, so the server still runs when
	// Redis is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting and caching disabled")
	}
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, tokens)
	postingH := handler.NewPostingHandler(svc, postings, events)
	marketH := handler.NewMarketHandler(svc, trades)
	eventH := handler.NewEventHandler(events)
	profileH := handler.NewProfileHandler(svc, profiles)
	chatH := handler.NewChatHandler(chat, profiles)

	e := echo.New()          // Create Echo instance
	router.RegisterRoutes(e) // Health check
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, eventH, postingH, marketH, chatH, cache)
	router.RegisterMember(e, postingH, profileH, chatH, cfg.JWTSecret, limit)
	router.RegisterAdmin(e, eventH, cfg.JWTSecret)

	// Consume trade.recorded messages in the background and append them to
	// logs/trades.log.  The consumer reconnects on its own; a returned
	// error only means it gave up before the first connection.
	go func() {
		if err := queue.StartTradeConsumer(); err != nil {
			log.Printf("trade consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
