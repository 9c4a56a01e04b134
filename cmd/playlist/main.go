package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/hazadus/go-playlist/internal/config"
	"github.com/hazadus/go-playlist/internal/logging"
	"github.com/hazadus/go-playlist/internal/s3"
	"github.com/hazadus/go-playlist/internal/track"
	"github.com/hazadus/go-playlist/internal/uploader"
)

const (
	defaultConfigPath = "~/.playlist"
)

// version задается при сборке через -ldflags "-X main.version=..."
var version = "dev"

// Application содержит зависимости сессии плейлиста
type Application struct {
	Config   *config.Config
	Logger   *log.Logger
	Manager  *track.Manager
	Uploader *uploader.Service
}

// NewApplication создает приложение с загруженной конфигурацией.
// Логгер и сервисы создаются в setup, когда известно, куда писать логи
func NewApplication(cfg *config.Config) *Application {
	return &Application{Config: cfg}
}

// setup создает логгер, хранилище, сервис загрузки и пустой плейлист
func (app *Application) setup(logOutput io.Writer) error {
	logger, err := logging.New(logOutput, app.Config.LogLevel)
	if err != nil {
		return err
	}
	app.Logger = logger

	var store uploader.ObjectStore
	if app.Config.Storage == config.StorageS3 {
		s3Storage, err := s3.NewStorage(&s3.Config{
			Region:     app.Config.AwsRegion,
			AccessKey:  app.Config.AwsAccessKey,
			SecretKey:  app.Config.AwsSecretKey,
			Endpoint:   app.Config.AwsEndpoint,
			BucketName: app.Config.AwsBucketName,
		})
		if err != nil {
			return fmt.Errorf("ошибка создания S3 хранилища: %w", err)
		}
		store = s3Storage
	}

	app.Uploader = uploader.NewService(store, app.Config.MaxUploadBytes(), logger)
	app.Manager = track.NewManager(logger)

	logger.Debug("приложение готово", "storage", app.Config.Storage, "max_upload_mb", app.Config.MaxUploadMB)
	return nil
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  %v\n", err)
	}

	cfg, err := config.LoadConfig(defaultConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApplication(cfg)
	if err := app.createRootCommand(ctx).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		stop()
		os.Exit(1)
	}
}
