package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/macoc/registration-service/app/service"
	"github.com/macoc/registration-service/config"
)

var (
	workerMode bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run reporting commands",
}

var reportPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List registrations still unpaid past the configured age",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"report_pending",
			func(cfg *config.Config) time.Duration { return cfg.Report.PendingAfter },
			func(s *service.RegistrationService, ctx context.Context, cfg *config.Config) error {
				stale, err := s.ReportPendingRegistrations(ctx, cfg.Report.Sheets, cfg.Report.PendingAfter)
				if err != nil {
					return err
				}
				logrus.WithField("stale_count", len(stale)).Info("Pending registration report complete")
				return nil
			},
		)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportPendingCmd)

	rootCmd.PersistentFlags().BoolVar(&workerMode, "worker", false, "Run continuously using configured interval")
}

func runCommand(
	name string,
	intervalResolver func(cfg *config.Config) time.Duration,
	fn func(s *service.RegistrationService, ctx context.Context, cfg *config.Config) error,
) {
	cfg, registrationService := mustCreateRegistrationService()

	if workerMode {
		runWorker(name, intervalResolver(cfg), func(ctx context.Context) error {
			return fn(registrationService, ctx, cfg)
		})
		return
	}

	ctx := context.Background()
	runJob(name, func() error { return fn(registrationService, ctx, cfg) })
}

func runWorker(name string, interval time.Duration, fn func(ctx context.Context) error) {
	if interval <= 0 {
		logrus.WithField("job", name).Fatal("invalid worker interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runJob(name, func() error { return fn(ctx) })

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	for {
		select {
		case <-quit:
			logrus.WithField("job", name).Info("Worker shutdown requested")
			return
		case <-ticker.C:
			runJob(name, func() error { return fn(ctx) })
		}
	}
}

func runJob(name string, fn func() error) {
	start := time.Now()
	err := fn()
	latency := time.Since(start)
	if err != nil {
		logrus.WithError(err).WithField("job", name).WithField("latency", latency.String()).Error("job_failed")
		return
	}
	logrus.WithField("job", name).WithField("latency", latency.String()).Info("job_completed")
}
