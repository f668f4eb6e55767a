package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port            string
	DatabaseURL     string // vazio = repositório em memória
	DBDriver        string
	RunMigrations   bool
	WebhookSecret   string
	AuthJWTSecret   string
	AMQPURL         string // vazio = sem fila
	KommoBaseURL    string
	KommoAPIToken   string
	KommoStatusID   int
	WhatsAppBaseURL string
	WhatsAppToken   string
	WhatsAppPhoneID string
	WhatsAppTmpl    string
	MailHost        string
	MailPort        int
	MailUser        string
	MailPassword    string
	MailFrom        string
	NotifyTo        []string
	CORSOrigins     []string
	RateLimitPerMin int
	// TrustProxyHeaders lets X-Forwarded-For / X-Real-IP replace the peer address.
	// Only enable it behind a proxy that overwrites those headers.
	TrustProxyHeaders bool
	ShutdownTimeout   time.Duration
}

func Parse() Config {
	return Config{
		Port:            getString("PORT", "8080"),
		DatabaseURL:     getString("DATABASE_URL", ""),
		DBDriver:        getString("DB_DRIVER", "pgx"),
		RunMigrations:   getBool("RUN_MIGRATIONS", true),
		WebhookSecret:   getString("WEBHOOK_SECRET", ""),
		AuthJWTSecret:   getString("AUTH_JWT_SECRET", ""),
		AMQPURL:         getString("AMQP_URL", ""),
		KommoBaseURL:    getString("KOMMO_BASE_URL", ""),
		KommoAPIToken:   getString("KOMMO_API_TOKEN", ""),
		KommoStatusID:   getInt("KOMMO_STATUS_ID", 0),
		WhatsAppBaseURL: getString("WHATSAPP_BASE_URL", ""),
		WhatsAppToken:   getString("WHATSAPP_ACCESS_TOKEN", ""),
		WhatsAppPhoneID: getString("WHATSAPP_PHONE_ID", ""),
		WhatsAppTmpl:    getString("WHATSAPP_LEAD_TEMPLATE", ""),
		MailHost:        getString("MAIL_HOST", ""),
		MailPort:        getInt("MAIL_PORT", 587),
		MailUser:        getString("MAIL_USER", ""),
		MailPassword:    getString("MAIL_PASS", ""),
		MailFrom:        getString("MAIL_FROM", "nao-responda@liguemedicina.com"),
		NotifyTo:        parseList(getString("LEAD_NOTIFY_TO", "")),
		CORSOrigins:     parseList(getString("CORS_ORIGINS", "http://localhost:5173")),
		RateLimitPerMin:   getInt("RATE_LIMIT_PER_MIN", 10),
		TrustProxyHeaders: getBool("TRUST_PROXY_HEADERS", false),
		ShutdownTimeout:   time.Duration(getInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
	}
}

func (c Config) MailEnabled() bool {
	return c.MailHost != "" && len(c.NotifyTo) > 0
}

func parseList(csv string) []string {
	var out []string
	for _, item := range strings.Split(csv, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
