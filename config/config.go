package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Postgres  PostgresConfig
	Supabase  SupabaseConfig
	Firecrawl FirecrawlConfig
	AI        AIConfig
	Google    GoogleConfig
	S3        S3Config
	Scheduler SchedulerConfig
	Scraper   ScraperConfig
	Commute   CommuteConfig
	Weights   WeightsConfig

	DBPath  string // local SQLite for preferences and commands
	LogPath string // daemon log, tailed by the TUI
	Listen  string
	UserID  string // whose rating overlay the CLI and API default to
}

type PostgresConfig struct {
	URL string
}

// SupabaseConfig drives the REST relay that keeps the web table in sync.
type SupabaseConfig struct {
	URL        string
	ServiceKey string
}

type FirecrawlConfig struct {
	APIKey   string
	Endpoint string
}

// AIConfig points at an OpenAI-compatible chat completions gateway used for
// photo-quality feature extraction.
type AIConfig struct {
	APIKey   string
	Endpoint string
	Model    string
}

type GoogleConfig struct {
	MapsAPIKey string
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // optional, for DO Spaces / R2
	AccessKeyID     string
	SecretAccessKey string
}

type SchedulerConfig struct {
	Interval time.Duration
	Cron     string
}

type ScraperConfig struct {
	Handler string // firecrawl or browser
	DelayMS int
}

// CommuteConfig comes from the YAML file: where commutes are measured to
// and which departure hours model the AM/PM runs.
type CommuteConfig struct {
	Destination string `yaml:"destination"`
	AMHour      int    `yaml:"am_hour"`
	PMHour      int    `yaml:"pm_hour"`
}

// WeightsConfig optionally overrides the shipped scoring defaults.
type WeightsConfig struct {
	Mode   string         `yaml:"mode"`
	Values map[string]int `yaml:"values"`
}

type appYAML struct {
	Commute CommuteConfig `yaml:"commute"`
	Weights WeightsConfig `yaml:"weights"`
}

const defaultConfigPath = "config/homescout.yaml"

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Postgres: PostgresConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Supabase: SupabaseConfig{
			URL:        os.Getenv("SUPABASE_URL"),
			ServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		},
		Firecrawl: FirecrawlConfig{
			APIKey:   os.Getenv("FIRECRAWL_API_KEY"),
			Endpoint: getEnv("FIRECRAWL_ENDPOINT", "https://api.firecrawl.dev/v1/scrape"),
		},
		AI: AIConfig{
			APIKey:   os.Getenv("AI_GATEWAY_KEY"),
			Endpoint: getEnv("AI_GATEWAY_ENDPOINT", "https://ai.gateway.lovable.dev/v1/chat/completions"),
			Model:    getEnv("AI_MODEL", "google/gemini-2.5-flash"),
		},
		Google: GoogleConfig{
			MapsAPIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		},
		S3: S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("REFRESH_CRON"),
		},
		Scraper: ScraperConfig{
			Handler: getEnv("SCRAPE_HANDLER", "firecrawl"),
			DelayMS: getEnvInt("SCRAPE_DELAY_MS", 500),
		},
		Commute: CommuteConfig{
			AMHour: 8,
			PMHour: 17,
		},
		DBPath:  getEnv("DB_PATH", "homescout.db"),
		LogPath: getEnv("LOG_PATH", "daemon.log"),
		Listen:  getEnv("LISTEN_ADDR", ":8080"),
		UserID:  getEnv("HOMESCOUT_USER", "local"),
	}

	if interval := os.Getenv("REFRESH_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
		}
		cfg.Scheduler.Interval = d
	}

	if err := cfg.loadYAML(getEnv("CONFIG_PATH", defaultConfigPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var app appYAML
	if err := yaml.Unmarshal(data, &app); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if app.Commute.Destination != "" {
		c.Commute.Destination = app.Commute.Destination
	}
	if app.Commute.AMHour > 0 {
		c.Commute.AMHour = app.Commute.AMHour
	}
	if app.Commute.PMHour > 0 {
		c.Commute.PMHour = app.Commute.PMHour
	}
	c.Weights = app.Weights

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
