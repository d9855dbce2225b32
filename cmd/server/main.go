package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"pizza_back_end/internal/config"
	"pizza_back_end/internal/database"
	"pizza_back_end/internal/handlers"
	"pizza_back_end/internal/logger"
	"pizza_back_end/internal/metrics"
	"pizza_back_end/internal/middleware"
	"pizza_back_end/internal/models"
	"pizza_back_end/internal/routes"
	"pizza_back_end/internal/services"
	"pizza_back_end/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ Configuration invalide : ", err)
	}

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatal("❌ Impossible d'initialiser le logger : ", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("❌ Impossible d'ouvrir le store", "backend", cfg.StoreBackend, "error", err)
	}
	defer store.Close()

	gateway := services.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeCurrency, cfg.StripePaymentMethod)
	lg.Info("✅ Stripe initialisé", "currency", cfg.StripeCurrency)

	notifier := services.NewReceiptDispatcher(receiptSender(cfg, lg), lg)

	locks := database.NewKeyLock()
	menu := models.DefaultMenu()
	sessions := services.NewSessionManager(store, locks, lg, services.WithTokenTTL(cfg.TokenTTL))
	accounts := services.NewAccountService(store, locks, sessions, lg)
	carts := services.NewCartService(store, locks, menu, gateway, notifier, cfg.StripeCurrency, lg)

	m := metrics.New()
	if cfg.LogMode == "prod" || cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	routes.RegisterRoutes(r, routes.Deps{
		Dispatcher:     handlers.NewDispatcher(accounts, sessions, carts, menu, lg),
		RateLimiter:    middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, lg, m),
		Metrics:        m,
		Log:            lg,
		AllowedOrigins: cfg.AllowedOrigins(),
	})

	servers := []*http.Server{newServer(cfg.HTTPAddr, r)}
	if cfg.TLSEnabled() {
		servers = append(servers, newServer(cfg.HTTPSAddr, r))
	}
	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		metricsSrv = newServer(cfg.MetricsAddr, mux)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("🚀 Serveur HTTP lancé", "addr", cfg.HTTPAddr)
		return serve(servers[0].ListenAndServe())
	})
	if cfg.TLSEnabled() {
		g.Go(func() error {
			lg.Info("🔒 Serveur HTTPS lancé", "addr", cfg.HTTPSAddr)
			return serve(servers[1].ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile))
		})
	}
	if metricsSrv != nil {
		servers = append(servers, metricsSrv)
		g.Go(func() error {
			lg.Info("📈 Métriques exposées", "addr", cfg.MetricsAddr)
			return serve(metricsSrv.ListenAndServe())
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		lg.Info("🛑 Arrêt en cours")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				lg.Warn("arrêt du serveur", "addr", srv.Addr, "error", err)
			}
		}
		if err := notifier.Wait(shutdownCtx); err != nil {
			lg.Warn("reçus encore en cours d'envoi", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		lg.Error("❌ Serveur arrêté sur erreur", "error", err)
		return
	}
	lg.Info("👋 Serveur arrêté")
}

func newServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

// serve ignore l'erreur normale renvoyée après Shutdown.
func serve(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func receiptSender(cfg *config.Config, lg *logger.Logger) services.ReceiptSender {
	if !cfg.MailEnabled() {
		lg.Warn("⚠️ SMTP non configuré : les reçus seront seulement journalisés")
		return services.NewLogReceiptSender(lg)
	}
	lg.Info("✅ SMTP configuré", "host", cfg.SMTPHost)
	return services.NewMailReceiptSender(utils.NewMailer(utils.MailerConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}))
}
