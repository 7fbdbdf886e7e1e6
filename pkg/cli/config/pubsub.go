package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/caseline/pkg/domain/interfaces"
	"github.com/secmon-lab/caseline/pkg/service/pubsub"
	"github.com/secmon-lab/caseline/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// PubSub holds CLI flags for notification transport configuration
type PubSub struct {
	backend       string
	redisAddr     string
	redisPassword string
	redisDB       int
}

// Flags returns CLI flags for pub/sub configuration
func (p *PubSub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "pubsub-backend",
			Usage:       "Notification transport backend (memory or redis)",
			Value:       "memory",
			Sources:     cli.EnvVars("CASELINE_PUBSUB_BACKEND"),
			Destination: &p.backend,
		},
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis address (required when using redis backend)",
			Sources:     cli.EnvVars("CASELINE_REDIS_ADDR"),
			Destination: &p.redisAddr,
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Usage:       "Redis password",
			Sources:     cli.EnvVars("CASELINE_REDIS_PASSWORD"),
			Destination: &p.redisPassword,
		},
		&cli.IntFlag{
			Name:        "redis-db",
			Usage:       "Redis database number",
			Sources:     cli.EnvVars("CASELINE_REDIS_DB"),
			Destination: &p.redisDB,
		},
	}
}

// Configure initializes and returns the notification transport based on
// the configured backend. The caller is responsible for calling Close()
// on the returned transport.
func (p *PubSub) Configure(ctx context.Context) (interfaces.PubSubTransport, error) {
	switch p.backend {
	case "redis":
		if p.redisAddr == "" {
			return nil, goerr.New("redis-addr is required when using redis backend")
		}
		transport, err := pubsub.NewRedisTransport(ctx, p.redisAddr, p.redisPassword, p.redisDB)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize redis transport")
		}
		logging.Default().Info("Using Redis pub/sub transport",
			"addr", p.redisAddr,
			"db", p.redisDB,
		)
		return transport, nil

	case "memory":
		logging.Default().Info("Using in-memory pub/sub transport (single process)")
		return pubsub.NewMemoryTransport(), nil

	default:
		return nil, goerr.New("invalid pubsub backend", goerr.V("backend", p.backend))
	}
}
