package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/cart-coupon-service/internal/config"
	"github.com/fairyhunter13/cart-coupon-service/internal/handler"
	"github.com/fairyhunter13/cart-coupon-service/internal/metrics"
	"github.com/fairyhunter13/cart-coupon-service/internal/repository"
	"github.com/fairyhunter13/cart-coupon-service/internal/service"
	"github.com/fairyhunter13/cart-coupon-service/internal/validator"
	"github.com/fairyhunter13/cart-coupon-service/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	initLogger(cfg)

	ctx := context.Background()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), cfg.DB.MaxRetries)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if cfg.DB.Migrate {
		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to apply database schema")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      "Cart Coupon Service",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())

	validate := validator.New()
	rec := metrics.New(prometheus.DefaultRegisterer)

	couponRepo := repository.NewCouponRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	cartRepo := repository.NewCartRepository()

	couponService := service.NewCouponService(couponRepo, productRepo, rec)
	cartService := service.NewCartService(pool, cartRepo, couponRepo, rec)

	couponHandler := handler.NewCouponHandler(couponService, validate)
	cartHandler := handler.NewCartHandler(cartService, validate)
	healthHandler := handler.NewHealthHandler(pool)

	app.Get("/health", healthHandler.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// verify is registered before :id so it is not captured as an id
	coupons := app.Group("/api/coupons")
	coupons.Post("/", couponHandler.CreateCoupon)
	coupons.Get("/", couponHandler.ListCoupons)
	coupons.Get("/verify", couponHandler.VerifyCoupon)
	coupons.Get("/:id", couponHandler.GetCoupon)
	coupons.Patch("/:id", couponHandler.EditCoupon)
	coupons.Delete("/:id", couponHandler.DeleteCoupon)

	cart := app.Group("/api/cart", handler.RequireUser(cfg.Auth.UserHeader))
	cart.Post("/apply-coupon", cartHandler.ApplyCoupon)

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// The pool outlives in-flight requests, even if shutdown timed out
	pool.Close()
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
