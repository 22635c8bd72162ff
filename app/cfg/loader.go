package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	DBPath string `long:"db-path" env:"DB_PATH" default:"./vs-news.db" description:"SQLite database file"`

	Port        string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	CORSOrigins string `long:"cors-origins" env:"CORS_ORIGINS" default:"http://localhost:5173" description:"Comma-separated list of allowed origins"`
	JWTSecret   string `long:"jwt-secret" env:"JWT_SECRET" description:"HS256 secret used to verify bearer tokens (required)"`

	SourcesDir   string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing per-category news source files"`
	NewsAPIKey   string `long:"news-api-key" env:"NEWS_API_KEY" description:"NewsAPI key (optional, RSS sources only when unset)"`
	NewsAPIURL   string `long:"news-api-url" env:"NEWS_API_URL" default:"https://newsapi.org/v2" description:"NewsAPI base URL"`
	NewsTimeout  int    `long:"news-timeout" env:"NEWS_TIMEOUT" default:"15" description:"News fetch timeout in seconds"`
	RedisAddr    string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for the news cache (optional)"`
	NewsCacheTTL int    `long:"news-cache-ttl" env:"NEWS_CACHE_TTL" default:"600" description:"News cache TTL in seconds"`
	WarmInterval int    `long:"warm-interval" env:"WARM_INTERVAL" default:"0" description:"Seconds between news cache warm-ups (0 disables, requires redis)"`
	WorkerCount  int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers for cache warm-up"`

	AIAPIKey  string  `long:"ai-api-key" env:"AI_API_KEY" description:"API key for the OpenAI-compatible model endpoint"`
	AIBaseURL string  `long:"ai-base-url" env:"AI_BASE_URL" default:"https://api.openai.com/v1" description:"Base URL of the OpenAI-compatible endpoint"`
	AIModel   string  `long:"ai-model" env:"AI_MODEL" default:"gpt-4o-mini" description:"Model name"`
	AITimeout int     `long:"ai-timeout" env:"AI_TIMEOUT" default:"120" description:"Model request timeout in seconds"`
	AIRPS     float64 `long:"ai-rps" env:"AI_RPS" default:"2" description:"Maximum model requests per second"`

	ResendAPIKey string `long:"resend-api-key" env:"RESEND_API_KEY" description:"Resend API key (email disabled when unset)"`
	MailFrom     string `long:"mail-from" env:"MAIL_FROM" default:"VS News <newsletter@vsnews.dev>" description:"Sender address"`
	ChromePath   string `long:"chrome-path" env:"CHROME_PATH" description:"Path to a Chrome/Chromium binary (auto-detected when empty)"`
	PDFTimeout   int    `long:"pdf-timeout" env:"PDF_TIMEOUT" default:"60" description:"PDF render timeout in seconds"`

	SuperadminEmail    string `long:"superadmin-email" env:"SUPERADMIN_EMAIL" description:"Bootstrap superadmin email"`
	SuperadminPassword string `long:"superadmin-password" env:"SUPERADMIN_PASSWORD" description:"Bootstrap superadmin password"`

	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"VS News/1.0" description:"User agent string for outbound HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Asia/Kolkata)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load reads .env (when present), then flags and environment variables.
// It returns (nil, nil) when help was requested.
func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:             raw.DBPath,
		Port:               raw.Port,
		CORSOrigins:        splitList(raw.CORSOrigins),
		JWTSecret:          raw.JWTSecret,
		SourcesDir:         raw.SourcesDir,
		NewsAPIKey:         strings.TrimSpace(raw.NewsAPIKey),
		NewsAPIURL:         strings.TrimRight(raw.NewsAPIURL, "/"),
		NewsTimeout:        seconds(raw.NewsTimeout, 15),
		RedisAddr:          raw.RedisAddr,
		NewsCacheTTL:       seconds(raw.NewsCacheTTL, 600),
		WarmInterval:       time.Duration(max(raw.WarmInterval, 0)) * time.Second,
		WorkerCount:        max(raw.WorkerCount, 1),
		AIAPIKey:           strings.TrimSpace(raw.AIAPIKey),
		AIBaseURL:          strings.TrimRight(raw.AIBaseURL, "/"),
		AIModel:            raw.AIModel,
		AITimeout:          seconds(raw.AITimeout, 120),
		AIRPS:              raw.AIRPS,
		ResendAPIKey:       strings.TrimSpace(raw.ResendAPIKey),
		MailFrom:           raw.MailFrom,
		ChromePath:         raw.ChromePath,
		PDFTimeout:         seconds(raw.PDFTimeout, 60),
		SuperadminEmail:    strings.ToLower(strings.TrimSpace(raw.SuperadminEmail)),
		SuperadminPassword: raw.SuperadminPassword,
		UserAgent:          raw.UserAgent,
		Timezone:           raw.Timezone,
		Debug:              raw.Debug,
		Version:            GetVersion(),
	}

	if len(cfg.JWTSecret) < 16 {
		return nil, fmt.Errorf("jwt secret must be at least 16 characters")
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	return cfg, nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimRight(strings.TrimSpace(part), "/"); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func seconds(value, fallback int) time.Duration {
	if value <= 0 {
		value = fallback
	}
	return time.Duration(value) * time.Second
}
