package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/Twaynet/ASC-Inventory-sub003/internal/config"
	"github.com/Twaynet/ASC-Inventory-sub003/internal/domain/cases"
	"github.com/Twaynet/ASC-Inventory-sub003/internal/domain/financial"
	"github.com/Twaynet/ASC-Inventory-sub003/internal/domain/intake"
	"github.com/Twaynet/ASC-Inventory-sub003/internal/domain/inventory"
	"github.com/Twaynet/ASC-Inventory-sub003/internal/domain/readiness"
	"github.com/Twaynet/ASC-Inventory-sub003/internal/platform/auth"
	"github.com/Twaynet/ASC-Inventory-sub003/internal/platform/db"
	"github.com/Twaynet/ASC-Inventory-sub003/internal/platform/middleware"
	"github.com/Twaynet/ASC-Inventory-sub003/internal/platform/telemetry"
)

func main() {
	root := &cobra.Command{
		Use:   "asc-server",
		Short: "Surgical facility scheduling and inventory API",
	}
	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := db.NewMigrator(pool, cfg.MigrationsDir).Up(ctx)
			if err != nil {
				return err
			}
			log.Info().Int("applied", applied).Msg("migrations complete")
			return nil
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "asc-server").Logger()
	if cfg.IsDev() {
		logger = logger.Level(zerolog.DebugLevel)
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	metrics := telemetry.NewProvider("asc-server")
	runTx := db.PoolRunner(pool)

	// Repositories
	caseRepo := cases.NewCaseRepoPG(pool)
	surgeonRepo := cases.NewSurgeonRepoPG(pool)
	catalogRepo := inventory.NewCatalogRepoPG(pool)
	itemRepo := inventory.NewItemRepoPG(pool)
	readinessCacheRepo := readiness.NewCacheRepoPG(pool)
	attestationRepo := readiness.NewAttestationRepoPG(pool)
	signalRepo := financial.NewSignalRepoPG(pool)
	riskCacheRepo := financial.NewCacheRepoPG(pool)
	requestRepo := intake.NewRequestRepoPG(pool)
	mappingRepo := intake.NewMappingRepoPG(pool)

	// Services. Cases and inventory push their writes through the readiness
	// service so cached readiness never trails a mutation.
	readinessSvc := readiness.NewService(caseRepo, surgeonRepo, catalogRepo, itemRepo,
		readinessCacheRepo, attestationRepo, metrics)
	caseSvc := cases.NewService(caseRepo, surgeonRepo, readinessSvc)
	inventorySvc := inventory.NewService(catalogRepo, itemRepo, readinessSvc)
	financialSvc := financial.NewService(signalRepo, riskCacheRepo, metrics, runTx)
	intakeSvc := intake.NewService(requestRepo, mappingRepo, caseSvc, metrics, runTx)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Recovery(logger))
	e.Use(metrics.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	e.Use(echomw.RateLimiter(echomw.NewRateLimiterMemoryStoreWithConfig(
		echomw.RateLimiterMemoryStoreConfig{
			Rate:  rate.Limit(cfg.RateLimitRPS),
			Burst: cfg.RateLimitBurst,
		})))

	e.GET("/healthz", func(c echo.Context) error {
		if err := pool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", metrics.Handler())

	api := e.Group("/api/v1")
	if cfg.IsDev() {
		api.Use(auth.DevMiddleware())
	} else {
		api.Use(auth.Middleware([]byte(cfg.AuthSecret), cfg.AuthIssuer))
	}

	cases.NewHandler(caseSvc).RegisterRoutes(api)
	inventory.NewHandler(inventorySvc).RegisterRoutes(api)
	readiness.NewHandler(readinessSvc).RegisterRoutes(api)
	financial.NewHandler(financialSvc).RegisterRoutes(api)
	intake.NewHandler(intakeSvc).RegisterRoutes(api)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
