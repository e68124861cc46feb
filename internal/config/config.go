package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port              int
	DatabaseURL       string
	NatsURL           string
	NatsToken         string
	LogLevel          string
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	PrimaryModel      string
	FallbackModel     string
	RequestTimeout    time.Duration
	AppURL            string
	CheckoutURL       string
	WebhookSecret     string
	APIToken          string
	PriceAmount       int
	PriceCurrency     string
}

func Load() Config {
	return Config{
		Port:              envInt("VERDICT_PORT", 8460),
		DatabaseURL:       envStr("DATABASE_URL", ""),
		NatsURL:           envStr("NATS_URL", "nats://localhost:4222"),
		NatsToken:         envStr("NATS_TOKEN", ""),
		LogLevel:          envStr("LOG_LEVEL", "info"),
		OpenRouterAPIKey:  envStr("OPENROUTER_API_KEY", ""),
		OpenRouterBaseURL: envStr("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		PrimaryModel:      envStr("VERDICT_PRIMARY_MODEL", "anthropic/claude-3-haiku"),
		FallbackModel:     envStr("VERDICT_FALLBACK_MODEL", "openai/gpt-4o-mini"),
		RequestTimeout:    time.Duration(envInt("VERDICT_REQUEST_TIMEOUT_SECONDS", 60)) * time.Second,
		AppURL:            envStr("APP_URL", "http://localhost:3000"),
		CheckoutURL:       envStr("CHECKOUT_URL", "https://checkout.dodopayments.com/buy/pdt_0NXcI1vgswE8tiw65y91Z"),
		WebhookSecret:     envStr("PAYMENT_WEBHOOK_SECRET", ""),
		APIToken:          envStr("VERDICT_API_TOKEN", ""),
		PriceAmount:       envInt("VERDICT_PRICE_AMOUNT", 7),
		PriceCurrency:     envStr("VERDICT_PRICE_CURRENCY", "USD"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
