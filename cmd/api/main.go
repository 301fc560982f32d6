package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/auth"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/battery"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/catalog"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/client"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/config"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/db"
	internalhttp "github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/http"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/mail"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/measurement"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/report"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/token"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/user"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api terminó con error")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// El catálogo de estados se carga una sola vez al arranque; un seed
	// incompleto aborta acá y no en medio de una revisión.
	cat, err := catalog.Load(ctx, catalog.NewRepository(pool))
	if err != nil {
		return fmt.Errorf("catálogo de estados: %w", err)
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)

	var mailer mail.Mailer = mail.Noop{}
	if webhook := mail.NewWebhookMailer(cfg.MailWebhookURL); webhook != nil {
		mailer = webhook
	}

	tokenService := token.NewService(token.NewRepository(pool), cfg.TokenLength)
	userService := user.NewService(user.NewRepository(pool), tokenService, mailer, jwtManager, cfg.RecoveryTTL, cfg.FrontendURL)
	clientService := client.NewService(client.NewRepository(pool))
	pointsStore := measurement.NewPointsStore(redisClient)
	batteryService := battery.NewService(battery.NewRepository(pool), measurement.NewRepository(pool), pointsStore, cat)
	reportService := report.NewService(report.NewRepository(pool), cat)

	handler := internalhttp.NewRouter(cfg, internalhttp.Deps{
		Pool:      pool,
		Redis:     redisClient,
		JWT:       jwtManager,
		Users:     userService,
		Clients:   clientService,
		Batteries: batteryService,
		Reports:   reportService,
		Tokens:    tokenService,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API escuchando en :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("apagando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
