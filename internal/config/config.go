package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config est construite une seule fois au démarrage puis passée aux constructeurs.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR,default=:3000"`
	HTTPSAddr       string        `env:"HTTPS_ADDR"`
	TLSCertFile     string        `env:"TLS_CERT_FILE"`
	TLSKeyFile      string        `env:"TLS_KEY_FILE"`
	MetricsAddr     string        `env:"METRICS_ADDR,default=:9090"`
	LogMode         string        `env:"LOG_MODE,default=dev"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`

	StoreBackend  string `env:"STORE_BACKEND,default=file"`
	DataDir       string `env:"DATA_DIR,default=./.data"`
	RedisHost     string `env:"REDIS_HOST,default=localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB,default=0"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeCurrency      string `env:"STRIPE_CURRENCY,default=usd"`
	StripePaymentMethod string `env:"STRIPE_PAYMENT_METHOD,default=pm_card_amex"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT,default=587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM,default=Pizza Delivery <noreply@pizza-delivery.local>"`

	TokenTTL       time.Duration `env:"TOKEN_TTL,default=1h"`
	RateLimitRPS   float64       `env:"RATE_LIMIT_RPS,default=5"`
	RateLimitBurst int           `env:"RATE_LIMIT_BURST,default=10"`
	CORSOrigins    string        `env:"CORS_ORIGINS"`
}

// Load lit le .env (s'il existe) puis décode l'environnement dans Config.
func Load() (*Config, error) {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé, on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("config decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendFile, BackendRedis:
	default:
		return fmt.Errorf("STORE_BACKEND invalide: %q", c.StoreBackend)
	}
	if c.StripeSecretKey == "" {
		return errors.New("STRIPE_SECRET_KEY manquant")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL doit être positif")
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return errors.New("TLS_CERT_FILE et TLS_KEY_FILE vont ensemble")
	}
	return nil
}

// TLSEnabled indique si le listener HTTPS doit être démarré.
func (c *Config) TLSEnabled() bool {
	return c.HTTPSAddr != "" && c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// MailEnabled indique si un serveur SMTP est configuré pour les reçus.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

func (c *Config) AllowedOrigins() []string {
	if strings.TrimSpace(c.CORSOrigins) == "" {
		return nil
	}
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
