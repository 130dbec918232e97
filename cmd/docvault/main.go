package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/docvault/docvault/internal/config"
	"github.com/docvault/docvault/internal/db"
	"github.com/docvault/docvault/internal/filestore"
	"github.com/docvault/docvault/internal/handler"
	"github.com/docvault/docvault/internal/job"
	"github.com/docvault/docvault/internal/middleware"
	"github.com/docvault/docvault/internal/repo"
	"github.com/docvault/docvault/internal/schedule"
	"github.com/docvault/docvault/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "docvault",
		Short: "docvault backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run docvault server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("db_host", cfg.Database.Host),
	)

	userRepo := repo.NewUserRepo(conn)
	docRepo := repo.NewDocumentRepo(conn)
	otpRepo := repo.NewOTPRepo(conn)
	recipientRepo := repo.NewShareRecipientRepo(conn)

	mailSender := service.NewEmailSender(cfg.Mail)
	otpProvider := service.NewOTPProvider(cfg.OTP)
	authService := service.NewAuthService(userRepo, otpRepo, otpProvider, mailSender, []byte(cfg.JWTSecret), time.Hour*time.Duration(cfg.JWTTTLHours))
	documentService := service.NewDocumentService(docRepo, recipientRepo, cfg.Upload)
	shareService := service.NewShareService(docRepo, recipientRepo, userRepo, service.NewShareNotifier(mailSender), cfg.Share)

	deps := handler.RouterDeps{
		Auth:      handler.NewAuthHandler(authService),
		Users:     handler.NewUserHandler(authService),
		Documents: handler.NewDocumentHandler(documentService),
		Shares:    handler.NewShareHandler(shareService),
		UserRepo:  userRepo,
		JWTSecret: []byte(cfg.JWTSecret),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if cfg.Share.SweepCron != "" {
		sweep := job.NewShareSweepJob(docRepo, time.Hour*time.Duration(cfg.Share.SweepRetentionHours))
		if err := scheduler.AddJob(sweep, cfg.Share.SweepCron); err != nil {
			return err
		}
		cleanup := job.NewOTPCleanupJob(otpRepo, 24*time.Hour)
		if err := scheduler.AddJob(cleanup, cfg.Share.SweepCron); err != nil {
			return err
		}
	}
	if cfg.Backup.Cron != "" {
		store, err := filestore.New(cfg.Backup.FileStore)
		if err != nil {
			return fmt.Errorf("init backup store: %w", err)
		}
		backup := job.NewBackupJob(service.NewExportService(docRepo, store))
		if err := scheduler.AddJob(backup, cfg.Backup.Cron); err != nil {
			return err
		}
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
