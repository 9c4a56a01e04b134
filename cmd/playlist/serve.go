package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"

	"github.com/hazadus/go-playlist/internal/server"
)

// createServeCommand создает команду serve для запуска HTTP API
func (app *Application) createServeCommand(ctx context.Context) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  `Start an HTTP server exposing the playlist: list, upload, delete, navigate and stream the current track.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if addr != "" {
				app.Config.ListenAddr = addr
			}
			return app.serve(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides listen_addr)")
	return cmd
}

func (app *Application) serve(ctx context.Context) error {
	if err := app.setup(os.Stderr); err != nil {
		return err
	}

	sentryEnabled := app.Config.SentryDSN != ""
	if sentryEnabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              app.Config.SentryDSN,
			Release:          "playlist@" + version,
			TracesSampleRate: 1.0,
		}); err != nil {
			return fmt.Errorf("ошибка инициализации Sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
		app.Logger.Info("Sentry включен")
	}

	srv := server.New(app.Manager, app.Uploader, app.Logger, server.Options{
		Sentry:         sentryEnabled,
		MaxUploadBytes: app.Config.MaxUploadBytes(),
	})

	fmt.Printf("🌐 Сервер плейлиста слушает %s\n", app.Config.ListenAddr)
	return srv.ListenAndServe(ctx, app.Config.ListenAddr)
}
