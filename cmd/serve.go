package cmd

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/macoc/registration-service/app/controller"
	"github.com/macoc/registration-service/app/provider"
	"github.com/macoc/registration-service/app/repository"
	"github.com/macoc/registration-service/app/service"
	"github.com/macoc/registration-service/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the Echo HTTP server for form intake, payment endpoints, and the Stripe webhook.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, registrationService := mustCreateRegistrationService()

	registrationController := controller.NewRegistrationController(registrationService)
	e := setupHTTPServer(registrationController)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}

	logrus.Info("Server stopped")
}

func setupHTTPServer(registrationController *controller.RegistrationController) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
				"request_id": v.RequestID,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(ensureRequestID())

	e.GET("/health", registrationController.Health)

	api := e.Group("/api")
	api.POST("/registrations", registrationController.SubmitSoloRegistration)
	api.POST("/registrations/strings", registrationController.SubmitStringRegistration)
	api.POST("/registrations/teacher", registrationController.SubmitTeacherRegistration)
	api.POST("/paypal/orders", registrationController.CreateOrder)
	api.POST("/paypal/capture", registrationController.CaptureOrder)
	api.GET("/directory", registrationController.Directory)

	e.POST("/webhooks/stripe", registrationController.StripeWebhook)

	return e
}

// ensureRequestID assigns a request id when the caller did not send one.
// Browsers and webhook senders never do, so the id is generated rather
// than required.
func ensureRequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			requestID := strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID))
			if requestID == "" {
				requestID = uuid.NewString()
			}
			ctx.Response().Header().Set(echo.HeaderXRequestID, requestID)
			return next(ctx)
		}
	}
}

func mustCreateRegistrationService() (*config.Config, *service.RegistrationService) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	rowStore, err := repository.NewRowStore(context.Background(), cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize spreadsheet store")
	}

	paypalClient := provider.NewPayPalClient(provider.PayPalConfig{
		ClientID:    cfg.PayPal.ClientID,
		Secret:      cfg.PayPal.Secret,
		APIBase:     cfg.PayPal.APIBase,
		HTTPTimeout: cfg.PayPal.HTTPTimeout,
	})

	stripeWebhook := provider.NewStripeWebhook(provider.StripeWebhookConfig{
		WebhookSecret:             cfg.Stripe.WebhookSecret,
		SignatureToleranceSeconds: cfg.Stripe.SignatureToleranceSeconds,
	})

	registrationService := service.NewRegistrationService(rowStore, paypalClient, stripeWebhook)

	return cfg, registrationService
}

func configureLogging(cfg *config.Config) error {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	return nil
}
