package config

import (
	"fmt"
	"github.com/joho/godotenv"
	"go-places/utils/logger"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything read from the environment at startup.
type Config struct {
	Addr           string
	JWTSecret      string
	AllowedOrigins []string

	// Sessions expire with their bearer token and are swept periodically.
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration

	// POI search provider.
	PlacesAPIURL string
	PlacesAPIKey string
	FetchTimeout time.Duration

	// Proximity gate.
	GateAccuracyMeters float64
	MapSpanDegrees     float64
	SearchRadiusMeters float64

	// AR overlay engine.
	MaxVisibleAnnotations  int
	HeadingSmoothingFactor float64
	MaxDistanceMeters      float64

	// Catalog backend. Disabled when MongoURI is empty.
	MongoURI        string
	MongoDatabase   string
	RedisAddr       string
	RedisDB         int
	CatalogSeedFile string
}

// Load reads .env if present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.L().Info("no .env file found, using process environment")
	}

	cfg := &Config{
		Addr:            getString("ADDR", ":8080"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		AllowedOrigins:  getList("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		PlacesAPIURL:    getString("PLACES_API_URL", "https://maps.googleapis.com/maps/api/place/nearbysearch/json"),
		PlacesAPIKey:    os.Getenv("PLACES_API_KEY"),
		MongoURI:        os.Getenv("MONGODB_URI"),
		MongoDatabase:   getString("MONGODB_DATABASE", "poi_db"),
		RedisAddr:       getString("REDIS_ADDR", "localhost:6379"),
		CatalogSeedFile: getString("CATALOG_SEED_FILE", "./data/places.json"),
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	var err error
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SessionSweepInterval, err = getDuration("SESSION_SWEEP_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = getDuration("POI_FETCH_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.GateAccuracyMeters, err = getFloat("GATE_ACCURACY_METERS", 100); err != nil {
		return nil, err
	}
	if cfg.MapSpanDegrees, err = getFloat("MAP_SPAN_DEGREES", 0.014); err != nil {
		return nil, err
	}
	if cfg.SearchRadiusMeters, err = getFloat("SEARCH_RADIUS_METERS", 1000); err != nil {
		return nil, err
	}
	if cfg.MaxVisibleAnnotations, err = getInt("AR_MAX_VISIBLE_ANNOTATIONS", 30); err != nil {
		return nil, err
	}
	if cfg.HeadingSmoothingFactor, err = getFloat("AR_HEADING_SMOOTHING_FACTOR", 0.05); err != nil {
		return nil, err
	}
	if cfg.MaxDistanceMeters, err = getFloat("AR_MAX_DISTANCE_METERS", 0); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return f, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return d, nil
}
