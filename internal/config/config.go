package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelvins/geocoder"
)

var validate = validator.New()

// Built-in coordinates for the default city list. Cities outside this table
// need either explicit coordinates in AQ_CITIES or a geocoding API key.
var cityCoords = map[string][2]float64{
	"Delhi":     {28.7041, 77.1025},
	"Mumbai":    {19.0760, 72.8777},
	"Bengaluru": {12.9716, 77.5946},
	"Hyderabad": {17.3850, 78.4867},
	"Kolkata":   {22.5726, 88.3639},
}

var defaultHourlyFields = []string{
	"pm10", "pm2_5", "carbon_monoxide", "nitrogen_dioxide",
	"sulphur_dioxide", "ozone", "uv_index",
}

// City is one extraction target with resolved coordinates.
type City struct {
	Name string  `validate:"required"`
	Lat  float64 `validate:"gte=-90,lte=90"`
	Lon  float64 `validate:"gte=-180,lte=180"`
}

// AppConfig is built once per process invocation and immutable thereafter;
// every component receives it (or a slice of it) at construction.
type AppConfig struct {
	BaseURL      string   `validate:"required,url"`
	HourlyFields []string `validate:"required,min=1"`
	Cities       []City   `validate:"required,min=1,dive"`

	MaxRetries     int           `validate:"gte=1"`
	FetchTimeout   time.Duration `validate:"gt=0"`
	FetchBackoff   time.Duration `validate:"gte=0"`
	InterCallDelay time.Duration `validate:"gte=0"`

	BatchSize       int           `validate:"gte=1"`
	BatchRetries    int           `validate:"gte=1"`
	BatchRetryDelay time.Duration `validate:"gte=0"`

	RawDir       string `validate:"required"`
	StagedDir    string `validate:"required"`
	ProcessedDir string `validate:"required"`

	DatabaseURL string
	Table       string `validate:"required"`

	Port        string
	MetricsAddr string

	DryRun bool
}

// Load reads configuration from environment (optionally .env) with the
// defaults the pipeline ships with.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.BaseURL = getenvDefault("AQ_API_BASE", "https://air-quality-api.open-meteo.com/v1/air-quality")

	fields := getenvDefault("AQ_HOURLY_FIELDS", "")
	if fields == "" {
		cfg.HourlyFields = defaultHourlyFields
	} else {
		cfg.HourlyFields = splitTrim(fields)
	}

	cfg.MaxRetries = getenvInt("MAX_RETRIES", 3)

	timeout, err := getenvDuration("TIMEOUT_SECONDS", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.FetchTimeout = timeout

	backoff, err := getenvDuration("FETCH_BACKOFF", 1*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.FetchBackoff = backoff

	delay, err := getenvDuration("SLEEP_BETWEEN_CALLS", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	cfg.InterCallDelay = delay

	cfg.BatchSize = getenvInt("BATCH_SIZE", 200)
	cfg.BatchRetries = getenvInt("BATCH_RETRIES", 3)

	batchDelay, err := getenvDuration("BATCH_RETRY_DELAY", 2*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.BatchRetryDelay = batchDelay

	cfg.RawDir = getenvDefault("RAW_DIR", "data/raw")
	cfg.StagedDir = getenvDefault("STAGED_DIR", "data/staged")
	cfg.ProcessedDir = getenvDefault("PROCESSED_DIR", "data/processed")

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.Table = getenvDefault("AQ_TABLE", "air_quality_data")

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.MetricsAddr = getenvDefault("METRICS_ADDR", "")

	dryRun := strings.TrimSpace(os.Getenv("DRY_RUN"))
	cfg.DryRun = dryRun == "1" || strings.EqualFold(dryRun, "true")

	cities, err := loadCities(getenvDefault("AQ_CITIES", "Delhi,Mumbai,Bengaluru,Hyderabad,Kolkata"))
	if err != nil {
		return nil, err
	}
	cfg.Cities = cities

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadCities parses the AQ_CITIES list. Each entry is either a bare city
// name resolved against the built-in coordinate table (falling back to the
// geocoder when GEOCODER_API_KEY is set) or an explicit "Name:lat:lon".
func loadCities(list string) ([]City, error) {
	var cities []City

	for _, entry := range splitTrim(list) {
		parts := strings.Split(entry, ":")
		switch len(parts) {
		case 1:
			city, err := resolveCity(parts[0])
			if err != nil {
				return nil, err
			}
			cities = append(cities, city)
		case 3:
			lat, latErr := strconv.ParseFloat(parts[1], 64)
			lon, lonErr := strconv.ParseFloat(parts[2], 64)
			if latErr != nil || lonErr != nil {
				return nil, fmt.Errorf("invalid coordinates for city %q", parts[0])
			}
			cities = append(cities, City{Name: parts[0], Lat: lat, Lon: lon})
		default:
			return nil, fmt.Errorf("invalid city entry %q (use Name or Name:lat:lon)", entry)
		}
	}

	return cities, nil
}

func resolveCity(name string) (City, error) {
	if coords, ok := cityCoords[name]; ok {
		return City{Name: name, Lat: coords[0], Lon: coords[1]}, nil
	}

	apiKey := strings.TrimSpace(os.Getenv("GEOCODER_API_KEY"))
	if apiKey == "" {
		return City{}, fmt.Errorf("no coordinates for city %q; add Name:lat:lon to AQ_CITIES or set GEOCODER_API_KEY", name)
	}

	geocoder.ApiKey = apiKey
	loc, err := geocoder.Geocoding(geocoder.Address{City: name})
	if err != nil {
		return City{}, fmt.Errorf("geocoding %q: %w", name, err)
	}

	return City{Name: name, Lat: loc.Latitude, Lon: loc.Longitude}, nil
}

func splitTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

// getenvDuration accepts either a bare number of seconds (matching the
// original env surface, e.g. TIMEOUT_SECONDS=10) or a Go duration string.
func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
