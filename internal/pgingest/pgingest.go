// Package pgingest loads a catalogue from an already-populated Postgres
// schema (stop/distance/bus tables), for deployments that keep network
// data in a relational store instead of a hand-written JSON batch (D1).
// Ingestion-time only: once Load returns, the catalogue is handed to
// router.Build and the pool is no longer consulted for routing.
//
// The connection-pool lifecycle (singleton via sync.Once, env-driven
// Config, health check) is adapted from the teacher's internal/db package;
// the batched-query loading style is adapted from internal/graph/builder.go's
// BuildNodes/BuildEdges, repurposed here to load stops/distances/buses
// instead of a node/edge routing graph.
package pgingest

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/routewise/transitcore/internal/catalogue"
)

// Config holds Postgres connection configuration.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MinConns int32
	MaxConns int32
}

// LoadConfigFromEnv loads Postgres configuration from environment
// variables, mirroring the teacher's db.LoadConfigFromEnv.
func LoadConfigFromEnv() *Config {
	port, _ := strconv.Atoi(getEnv("PGINGEST_DB_PORT", "5432"))
	minConns, _ := strconv.Atoi(getEnv("PGINGEST_DB_MIN_CONNS", "2"))
	maxConns, _ := strconv.Atoi(getEnv("PGINGEST_DB_MAX_CONNS", "10"))

	return &Config{
		Host:     getEnv("PGINGEST_DB_HOST", "localhost"),
		Port:     port,
		Database: getEnv("PGINGEST_DB_NAME", "transitcore"),
		User:     getEnv("PGINGEST_DB_USER", "postgres"),
		Password: getEnv("PGINGEST_DB_PASSWORD", ""),
		SSLMode:  getEnv("PGINGEST_DB_SSLMODE", "disable"),
		MinConns: int32(minConns),
		MaxConns: int32(maxConns),
	}
}

var (
	pool     *pgxpool.Pool
	poolOnce sync.Once
	poolErr  error
)

// GetPool returns the global connection pool, initialising it from
// LoadConfigFromEnv on first call.
func GetPool() (*pgxpool.Pool, error) {
	poolOnce.Do(func() {
		pool, poolErr = newPool(LoadConfigFromEnv())
	})
	return pool, poolErr
}

func newPool(cfg *Config) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("pgingest: parse connection string: %w", err)
	}
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	p, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("pgingest: create pool: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("pgingest: ping: %w", err)
	}
	return p, nil
}

// Close closes the global pool, if initialised.
func Close() {
	if pool != nil {
		pool.Close()
	}
}

// HealthCheck pings the pool.
func HealthCheck(ctx context.Context) error {
	p, err := GetPool()
	if err != nil {
		return fmt.Errorf("pgingest: pool not initialized: %w", err)
	}
	return p.Ping(ctx)
}

// Load builds a fresh catalogue from the schema's stop/distance/bus tables:
//
//	stop(name TEXT PRIMARY KEY, lat DOUBLE PRECISION, lng DOUBLE PRECISION)
//	stop_distance(from_name TEXT, to_name TEXT, metres INT)
//	bus(name TEXT PRIMARY KEY, is_roundtrip BOOL)
//	bus_stop(bus_name TEXT, position INT, stop_name TEXT)
//
// Stops are loaded first, then distances, then buses with their stop
// lists ordered by position — preserving the "stops before buses"
// ingestion ordering §4.2 requires regardless of table scan order.
func Load(ctx context.Context, pool *pgxpool.Pool) (*catalogue.Catalogue, error) {
	c := catalogue.New()

	if err := loadStops(ctx, pool, c); err != nil {
		return nil, fmt.Errorf("pgingest: load stops: %w", err)
	}
	if err := loadDistances(ctx, pool, c); err != nil {
		return nil, fmt.Errorf("pgingest: load distances: %w", err)
	}
	if err := loadBuses(ctx, pool, c); err != nil {
		return nil, fmt.Errorf("pgingest: load buses: %w", err)
	}

	return c, nil
}

func loadStops(ctx context.Context, pool *pgxpool.Pool, c *catalogue.Catalogue) error {
	rows, err := pool.Query(ctx, `SELECT name, lat, lng FROM stop`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var lat, lng float64
		if err := rows.Scan(&name, &lat, &lng); err != nil {
			return err
		}
		c.AddStop(name, lat, lng)
	}
	return rows.Err()
}

func loadDistances(ctx context.Context, pool *pgxpool.Pool, c *catalogue.Catalogue) error {
	rows, err := pool.Query(ctx, `SELECT from_name, to_name, metres FROM stop_distance`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var from, to string
		var metres int
		if err := rows.Scan(&from, &to, &metres); err != nil {
			return err
		}
		c.AddDistance(from, to, metres)
	}
	return rows.Err()
}

func loadBuses(ctx context.Context, pool *pgxpool.Pool, c *catalogue.Catalogue) error {
	busRows, err := pool.Query(ctx, `SELECT name, is_roundtrip FROM bus`)
	if err != nil {
		return err
	}

	type busRow struct {
		name        string
		isRoundtrip bool
	}
	var buses []busRow
	for busRows.Next() {
		var b busRow
		if err := busRows.Scan(&b.name, &b.isRoundtrip); err != nil {
			busRows.Close()
			return err
		}
		buses = append(buses, b)
	}
	busRows.Close()
	if err := busRows.Err(); err != nil {
		return err
	}

	for _, b := range buses {
		stops, err := loadBusStops(ctx, pool, b.name)
		if err != nil {
			return fmt.Errorf("bus %q: %w", b.name, err)
		}
		c.AddBus(b.name, stops, b.isRoundtrip)
	}
	return nil
}

func loadBusStops(ctx context.Context, pool *pgxpool.Pool, busName string) ([]string, error) {
	rows, err := pool.Query(ctx, `
		SELECT stop_name FROM bus_stop
		WHERE bus_name = $1
		ORDER BY position ASC
	`, busName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stops []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		stops = append(stops, name)
	}
	return stops, rows.Err()
}

// SeedStops batch-upserts stops into the schema, for an ingestion CLI that
// pushes catalogue data into Postgres rather than reading it back out.
// Batched with pgx.Batch the way the teacher's importer batches GTFS rows.
func SeedStops(ctx context.Context, pool *pgxpool.Pool, stops []catalogue.Stop) error {
	batch := &pgx.Batch{}
	for _, s := range stops {
		batch.Queue(`
			INSERT INTO stop (name, lat, lng) VALUES ($1, $2, $3)
			ON CONFLICT (name) DO UPDATE SET lat = EXCLUDED.lat, lng = EXCLUDED.lng
		`, s.Name, s.Coordinates.Lat, s.Coordinates.Lng)
	}
	results := pool.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert stop %d: %w", i, err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
