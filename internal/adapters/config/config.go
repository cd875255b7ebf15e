package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"tribunal/pkg/errors"
)

type Config struct {
	App           AppConfig
	Server        ServerConfig
	Market        MarketConfig
	News          NewsConfig
	AI            AIConfig
	Agents        AgentsConfig
	Telegram      TelegramConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"tribunal"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type ServerConfig struct {
	Port            int           `envconfig:"SERVER_PORT" default:"8000"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

type MarketConfig struct {
	// Lookback window for daily price history, sized so the 200-day
	// moving average always has enough closes behind it
	HistoryDays int `envconfig:"MARKET_HISTORY_DAYS" default:"365"`
}

type NewsConfig struct {
	FeedBaseURL  string        `envconfig:"NEWS_FEED_BASE_URL" default:"https://feeds.finance.yahoo.com/rss/2.0/headline"`
	MaxArticles  int           `envconfig:"NEWS_MAX_ARTICLES" default:"10"`
	FetchTimeout time.Duration `envconfig:"NEWS_FETCH_TIMEOUT" default:"30s"`
}

type AIConfig struct {
	OpenAIKey         string        `envconfig:"OPENAI_API_KEY"`
	GeminiKey         string        `envconfig:"GEMINI_API_KEY"`
	Timeout           time.Duration `envconfig:"AI_TIMEOUT" default:"60s"`
	RequestsPerMinute int           `envconfig:"AI_REQUESTS_PER_MINUTE" default:"60"`
	Burst             int           `envconfig:"AI_BURST" default:"10"`
	Temperature       float64       `envconfig:"AI_TEMPERATURE" default:"0.2"`
}

type AgentsConfig struct {
	Model         string `envconfig:"AGENT_MODEL" default:"gpt-4o-mini"`
	ServerURL     string `envconfig:"MCP_SERVER_URL" default:"http://localhost:8000"`
	MaxTurns      int    `envconfig:"AGENT_MAX_TURNS" default:"6"`
	MaxToolRounds int    `envconfig:"AGENT_MAX_TOOL_ROUNDS" default:"8"`
}

type TelegramConfig struct {
	Enabled  bool   `envconfig:"TELEGRAM_ENABLED" default:"false"`
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatID   int64  `envconfig:"TELEGRAM_CHAT_ID"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	Provider    string `envconfig:"ERROR_TRACKING_PROVIDER" default:"sentry"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
