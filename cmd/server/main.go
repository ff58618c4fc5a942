// Command server runs the long-lived HTTP routing API: it loads a
// catalogue (from a JSON batch file or, when -db is set, from Postgres via
// internal/pgingest), builds the router once, and serves httpapi's routes
// behind fiber with the teacher's middleware stack (recover, request
// logging, CORS) plus this project's simplified API-key auth and rate
// limiting. Startup banner, graceful shutdown via SIGTERM and the
// getEnv/flag split all follow the teacher's cmd/api/main.go.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/routewise/transitcore/internal/catalogue"
	"github.com/routewise/transitcore/internal/catalogueio"
	"github.com/routewise/transitcore/internal/httpapi"
	"github.com/routewise/transitcore/internal/middleware"
	"github.com/routewise/transitcore/internal/pgingest"
	"github.com/routewise/transitcore/internal/router"
	"github.com/routewise/transitcore/internal/routecache"
	"github.com/routewise/transitcore/internal/svgmap"
)

func main() {
	dataPath := flag.String("data", "", "Path to a JSON batch file (base_requests/router_settings/stat_requests)")
	useDB := flag.Bool("db", false, "Load the catalogue from Postgres via PGINGEST_DB_* env vars instead of -data")
	busWaitTime := flag.Int("bus-wait-time", 6, "Minutes a rider waits at a stop before boarding, when loading from -db")
	busVelocity := flag.Float64("bus-velocity", 40, "Bus speed in km/h, when loading from -db")
	noCache := flag.Bool("no-cache", false, "Disable the redis route-result cache even if ROUTECACHE_REDIS_ADDR is reachable")
	flag.Parse()

	log.Println("Starting routing API server...")

	cat, settings, err := loadCatalogue(*dataPath, *useDB, *busWaitTime, *busVelocity)
	if err != nil {
		log.Fatalf("Failed to load catalogue: %v", err)
	}
	log.Printf("✓ Catalogue loaded: %d stops, %d buses", len(cat.AllStopNamesWithBuses()), len(cat.AllBusNames()))

	r, err := router.Build(cat, settings)
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}
	log.Println("✓ Router graph built")

	var cache *redis.Client
	if !*noCache {
		cache = routecache.GetClient()
		if err := cache.Ping(context.Background()).Err(); err != nil {
			log.Printf("Redis unavailable, continuing without route cache: %v", err)
			cache = nil
		} else {
			log.Println("✓ Redis connection established")
		}
	}

	srv := &httpapi.Server{
		Catalogue:   cat,
		Router:      r,
		RouteCache:  cache,
		Settings:    settings,
		MapSettings: svgmap.DefaultSettings(),
	}

	app := fiber.New(fiber.Config{
		AppName:      "transitcore",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	if keys := getEnv("API_KEYS", ""); keys != "" {
		keySet := middleware.NewKeySet(strings.Split(keys, ","))
		app.Use(middleware.RequireAPIKey(keySet))
		if cache != nil {
			app.Use(middleware.RateLimit(cache, time.Minute, 120))
		}
		log.Println("✓ API key auth enabled")
	}

	srv.RegisterRoutes(app)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "endpoint not found"})
	})

	port := getEnv("SERVER_PORT", "8080")
	addr := fmt.Sprintf(":%s", port)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("🚀 Server listening on http://localhost%s", addr)
	log.Printf("📍 Route search: http://localhost%s/v1/route?from=A&to=B", addr)
	log.Printf("❤️  Health check: http://localhost%s/health", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func loadCatalogue(dataPath string, useDB bool, busWaitTime int, busVelocity float64) (*catalogue.Catalogue, router.Settings, error) {
	if useDB {
		pool, err := pgingest.GetPool()
		if err != nil {
			return nil, router.Settings{}, fmt.Errorf("connect to postgres: %w", err)
		}
		cat, err := pgingest.Load(context.Background(), pool)
		if err != nil {
			return nil, router.Settings{}, fmt.Errorf("load catalogue from postgres: %w", err)
		}
		return cat, router.Settings{BusWaitTime: busWaitTime, BusVelocity: busVelocity}, nil
	}

	if dataPath == "" {
		return nil, router.Settings{}, fmt.Errorf("either -data or -db must be given")
	}
	data, err := os.ReadFile(dataPath)
	if err != nil {
		return nil, router.Settings{}, fmt.Errorf("read %s: %w", dataPath, err)
	}
	batch, err := catalogueio.ParseBatch(data)
	if err != nil {
		return nil, router.Settings{}, fmt.Errorf("parse batch: %w", err)
	}
	cat := catalogueio.BuildCatalogue(batch)
	settings := router.Settings{
		BusWaitTime: batch.RouterSettings.BusWaitTime,
		BusVelocity: batch.RouterSettings.BusVelocity,
	}
	return cat, settings, nil
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("error: %v", err)
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
