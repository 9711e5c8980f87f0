// Package mongodb contains the MongoDB implementation of the credential store.
package mongodb

import (
	"context"
	"log/slog"
	"time"

	"credcheck/config"
	"credcheck/internal/domain/lifecycle"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/fx"
)

const defaultConnectTimeout = 10 * time.Second

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// Connect creates a client for the configured MongoDB deployment.
// The driver connects lazily; use Ping to confirm reachability.
func Connect(ctx context.Context, cfg *config.MongoConfig) (*mongo.Client, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to MongoDB")
	}

	return client, nil
}

// New opens the credential collection. The client is pinged on start and
// disconnected on stop.
func New(params Params) (*mongo.Collection, error) {
	cfg := params.Config.Mongo
	if cfg == nil {
		return nil, errors.New("mongodb store selected without a mongo section")
	}

	client, err := Connect(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	coll := client.Database(cfg.Database).Collection(cfg.Collection)

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := client.Ping(ctx, readpref.Primary()); err != nil {
				return errors.Wrap(err, "failed to ping MongoDB")
			}
			params.Logger.Debug("MongoDB credential store ready",
				slog.String("database", cfg.Database),
				slog.String("collection", cfg.Collection))

			if params.Config.Store.AutoMigrate {
				return EnsureIndexes(ctx, coll)
			}

			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			ctx, cancel := context.WithTimeout(stopCtx, lifecycle.DefaultTimeout)
			defer cancel()

			return client.Disconnect(ctx)
		},
	})

	return coll, nil
}
