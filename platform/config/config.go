// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
}

// StoreAPIConfig provides settings for the remote store directory.
type StoreAPIConfig interface {
	GetStoreAPIURL() string
	GetStoreAPITimeout() time.Duration
	GetStoreTimezone() *time.Location
}

// GeoConfig provides the fallback reference coordinate and location request options.
type GeoConfig interface {
	GetFallbackLat() float64
	GetFallbackLon() float64
	GetFallbackLabel() string
	GetLocationTimeout() time.Duration
	GetLocationMaxAge() time.Duration
}

// CacheConfig provides settings for the optional store payload cache.
type CacheConfig interface {
	GetRedisURL() string
	GetStoreCacheTTL() time.Duration
}

// StaticConfig provides settings for the static file server.
type StaticConfig interface {
	GetStaticDir() string
	GetIndexFile() string
	GetNotFoundFile() string
}

// MapConfig provides the map library assets and tile source.
type MapConfig interface {
	GetMapLibraryJS() string
	GetMapLibraryCSS() string
	GetMapTileURL() string
	GetMapTileAttribution() string
	GetMapLibraryCheck() bool
}

// LinkConfig provides the deep-link and landing page settings.
type LinkConfig interface {
	GetAppBaseURL() string
	GetLandingPagePath() string
	GetDeepLinkParam() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                string
	HTTPAddr           string
	CORSAllowAll       bool
	CORSOrigins        []string
	RateLimitRPS       float64
	RateLimitBurst     int
	AppBaseURL         string
	LandingPagePath    string
	DeepLinkParam      string
	StoreAPIURL        string
	StoreAPITimeout    time.Duration
	StoreTimezone      *time.Location
	FallbackLat        float64
	FallbackLon        float64
	FallbackLabel      string
	LocationTimeout    time.Duration
	LocationMaxAge     time.Duration
	RedisURL           string
	StoreCacheTTL      time.Duration
	StaticDir          string
	IndexFile          string
	NotFoundFile       string
	MapLibraryJS       string
	MapLibraryCSS      string
	MapTileURL         string
	MapTileAttribution string
	MapLibraryCheck    bool
}

// =============================================================================
// Interface Implementations
// =============================================================================

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetRateLimitRPS() float64 { return c.RateLimitRPS }
func (c *Config) GetRateLimitBurst() int   { return c.RateLimitBurst }

// StoreAPIConfig implementation
func (c *Config) GetStoreAPIURL() string            { return c.StoreAPIURL }
func (c *Config) GetStoreAPITimeout() time.Duration { return c.StoreAPITimeout }
func (c *Config) GetStoreTimezone() *time.Location  { return c.StoreTimezone }

// GeoConfig implementation
func (c *Config) GetFallbackLat() float64           { return c.FallbackLat }
func (c *Config) GetFallbackLon() float64           { return c.FallbackLon }
func (c *Config) GetFallbackLabel() string          { return c.FallbackLabel }
func (c *Config) GetLocationTimeout() time.Duration { return c.LocationTimeout }
func (c *Config) GetLocationMaxAge() time.Duration  { return c.LocationMaxAge }

// CacheConfig implementation
func (c *Config) GetRedisURL() string             { return c.RedisURL }
func (c *Config) GetStoreCacheTTL() time.Duration { return c.StoreCacheTTL }

// StaticConfig implementation
func (c *Config) GetStaticDir() string    { return c.StaticDir }
func (c *Config) GetIndexFile() string    { return c.IndexFile }
func (c *Config) GetNotFoundFile() string { return c.NotFoundFile }

// MapConfig implementation
func (c *Config) GetMapLibraryJS() string       { return c.MapLibraryJS }
func (c *Config) GetMapLibraryCSS() string      { return c.MapLibraryCSS }
func (c *Config) GetMapTileURL() string         { return c.MapTileURL }
func (c *Config) GetMapTileAttribution() string { return c.MapTileAttribution }
func (c *Config) GetMapLibraryCheck() bool      { return c.MapLibraryCheck }

// LinkConfig implementation
func (c *Config) GetAppBaseURL() string      { return c.AppBaseURL }
func (c *Config) GetLandingPagePath() string { return c.LandingPagePath }
func (c *Config) GetDeepLinkParam() string   { return c.DeepLinkParam }

// IsDevelopment reports whether the app runs in the development environment.
func (c *Config) IsDevelopment() bool { return strings.EqualFold(c.Env, "development") }

const defaultStoreAPIURL = "https://api.storelocator.hmgroup.tech/v2/brand/hm/stores/locale/sv_se/country/SE?_type=json&campaigns=true&departments=true&openinghours=true&maxnumberofstores=100"

// Load reads configuration from the environment (and .env when present).
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	tzName := getEnv("STORE_TIMEZONE", "Europe/Stockholm")
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("STORE_TIMEZONE %q: %w", tzName, err)
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":3000"),
		CORSAllowAll:       corsAllowAll,
		CORSOrigins:        corsOrigins,
		RateLimitRPS:       mustFloat(getEnv("RATE_LIMIT_RPS", "5")),
		RateLimitBurst:     int(mustInt64(getEnv("RATE_LIMIT_BURST", "20"))),
		AppBaseURL:         strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:3000"), "/"),
		LandingPagePath:    getEnv("LANDING_PAGE_PATH", "landingpage.html"),
		DeepLinkParam:      getEnv("DEEP_LINK_PARAM", "storeCode"),
		StoreAPIURL:        getEnv("STORE_API_URL", defaultStoreAPIURL),
		StoreAPITimeout:    mustDuration(getEnv("STORE_API_TIMEOUT", "10s")),
		StoreTimezone:      tz,
		FallbackLat:        mustFloat(getEnv("FALLBACK_LAT", "55.60498")),
		FallbackLon:        mustFloat(getEnv("FALLBACK_LON", "13.00382")),
		FallbackLabel:      getEnv("FALLBACK_LABEL", "Distance from Malmö."),
		LocationTimeout:    mustDuration(getEnv("LOCATION_TIMEOUT", "10s")),
		LocationMaxAge:     mustDuration(getEnv("LOCATION_MAX_AGE", "1m")),
		RedisURL:           getEnv("REDIS_URL", ""),
		StoreCacheTTL:      mustDuration(getEnv("STORE_CACHE_TTL", "5m")),
		StaticDir:          getEnv("STATIC_DIR", "./web"),
		IndexFile:          getEnv("INDEX_FILE", "index.html"),
		NotFoundFile:       getEnv("NOT_FOUND_FILE", "404.html"),
		MapLibraryJS:       getEnv("MAP_LIBRARY_JS", "https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"),
		MapLibraryCSS:      getEnv("MAP_LIBRARY_CSS", "https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"),
		MapTileURL:         getEnv("MAP_TILE_URL", "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"),
		MapTileAttribution: getEnv("MAP_TILE_ATTRIBUTION", "© OSM"),
		MapLibraryCheck:    strings.EqualFold(getEnv("MAP_LIBRARY_CHECK", "false"), "true"),
	}

	if cfg.StoreAPIURL == "" {
		return nil, fmt.Errorf("STORE_API_URL is required")
	}
	if cfg.StoreAPITimeout <= 0 {
		return nil, fmt.Errorf("STORE_API_TIMEOUT must be a positive duration")
	}
	if cfg.LocationTimeout <= 0 {
		return nil, fmt.Errorf("LOCATION_TIMEOUT must be a positive duration")
	}
	if cfg.DeepLinkParam == "" {
		return nil, fmt.Errorf("DEEP_LINK_PARAM cannot be empty")
	}
	if cfg.FallbackLat < -90 || cfg.FallbackLat > 90 || cfg.FallbackLon < -180 || cfg.FallbackLon > 180 {
		return nil, fmt.Errorf("FALLBACK_LAT/FALLBACK_LON out of range")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
