package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/caseline/pkg/cli/config"
	httpctrl "github.com/secmon-lab/caseline/pkg/controller/http"
	"github.com/secmon-lab/caseline/pkg/service/presence"
	"github.com/secmon-lab/caseline/pkg/service/pubsub"
	"github.com/secmon-lab/caseline/pkg/service/worker"
	"github.com/secmon-lab/caseline/pkg/usecase"
	"github.com/secmon-lab/caseline/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var categoriesPath string
	var trustProxyHeaders bool
	var trashRetention time.Duration
	var purgeInterval time.Duration
	var repoCfg config.Repository
	var pubsubCfg config.PubSub

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("CASELINE_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "categories",
			Usage:       "Path to TOML file defining event categories",
			Sources:     cli.EnvVars("CASELINE_CATEGORIES"),
			Destination: &categoriesPath,
		},
		&cli.BoolFlag{
			Name:        "trust-proxy-headers",
			Usage:       "Resolve user identity from X-Caseline-User headers set by a trusted proxy",
			Sources:     cli.EnvVars("CASELINE_TRUST_PROXY_HEADERS"),
			Destination: &trustProxyHeaders,
		},
		&cli.DurationFlag{
			Name:        "trash-retention",
			Usage:       "How long trashed events are kept before automatic purge (0 disables the purge worker)",
			Sources:     cli.EnvVars("CASELINE_TRASH_RETENTION"),
			Destination: &trashRetention,
		},
		&cli.DurationFlag{
			Name:        "purge-interval",
			Usage:       "Interval between purge worker runs",
			Value:       time.Hour,
			Sources:     cli.EnvVars("CASELINE_PURGE_INTERVAL"),
			Destination: &purgeInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, pubsubCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			// Initialize notification transport and bus
			transport, err := pubsubCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize pubsub transport")
			}
			defer func() {
				if err := transport.Close(); err != nil {
					logging.Default().Error("failed to close pubsub transport", "error", err.Error())
				}
			}()

			bus := pubsub.New(transport)
			registry := presence.New()
			uc := usecase.New(repo, bus)

			// Seed categories from configuration
			if categoriesPath != "" {
				appCfg, err := config.LoadAppConfiguration(categoriesPath)
				if err != nil {
					return goerr.Wrap(err, "failed to load categories configuration")
				}
				categories := appCfg.ToDomainCategories()
				if err := uc.Category.SeedCategories(ctx, categories); err != nil {
					return goerr.Wrap(err, "failed to seed categories")
				}
				logging.Default().Info("Seeded categories", "count", len(categories))
			}

			// Start trash purge worker if retention is configured
			var purgeWorker *worker.TrashPurgeWorker
			if trashRetention > 0 {
				purgeWorker = worker.NewTrashPurgeWorker(repo, bus, trashRetention, purgeInterval)
				if err := purgeWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start trash purge worker")
				}
			}

			// Create HTTP server
			httpOpts := []httpctrl.Options{}
			if trustProxyHeaders {
				httpOpts = append(httpOpts, httpctrl.WithIdentityResolver(httpctrl.HeaderIdentityResolver{}))
				logging.Default().Info("Trusting proxy identity headers")
			}

			httpHandler := httpctrl.New(uc, bus, registry, httpOpts...)
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}
			// Shutdown must also end open SSE streams, or it waits out
			// its full deadline whenever a client is streaming
			httpctrl.WireShutdown(ctx, server)

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Stop the purge worker first
				if purgeWorker != nil {
					purgeWorker.Stop()
				}

				// Create shutdown context with timeout
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				// Attempt graceful shutdown
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
