package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/yukikurage/listing-api/internal/config"
	"github.com/yukikurage/listing-api/internal/database"
	"github.com/yukikurage/listing-api/internal/metrics"
	"github.com/yukikurage/listing-api/internal/repository"
	"github.com/yukikurage/listing-api/internal/worker"
)

func serveCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "migrate", Value: true, Usage: "run migrations before serving"},
			&cli.BoolFlag{Name: "forward-webhooks", Value: true, Usage: "drain the webhook outbox in-process (production only)"},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := database.Connect(cfg); err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			if c.Bool("migrate") {
				if err := database.Migrate(); err != nil {
					return fmt.Errorf("failed to run migrations: %w", err)
				}
			}

			metrics.Register()

			app, err := newApp(cfg, database.GetDB())
			if err != nil {
				return err
			}
			defer app.Close()

			if cfg.IsProduction() && c.Bool("forward-webhooks") {
				forwarder := worker.NewWebhookForwarder(app.repos.WebhookEvents, cfg.WebhookURL, cfg.WebhookPollInterval)
				go forwarder.Run(ctx)
			}

			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           app.handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Printf("Server starting on :%s (env=%s)", cfg.Port, cfg.AppEnv)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("failed to start server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			log.Println("Shutdown signal received")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func migrateCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create or update the database schema",
		Action: func(c *cli.Context) error {
			if err := database.Connect(cfg); err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			if err := database.Migrate(); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			log.Println("Migrations applied")
			return nil
		},
	}
}

func forwardWebhooksCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "forward-webhooks",
		Usage: "drain the listing webhook outbox",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "once", Usage: "forward one batch and exit"},
		},
		Action: func(c *cli.Context) error {
			if cfg.WebhookURL == "" {
				return errors.New("WEBHOOK_URL is not set")
			}
			if err := database.Connect(cfg); err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}

			forwarder := worker.NewWebhookForwarder(
				repository.NewWebhookEventRepository(database.GetDB()),
				cfg.WebhookURL,
				cfg.WebhookPollInterval,
			)

			if c.Bool("once") {
				n, err := forwarder.ForwardPending(c.Context)
				if err != nil {
					return err
				}
				log.Printf("Forwarded %d webhook events", n)
				return nil
			}

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			forwarder.Run(ctx)
			return nil
		},
	}
}
