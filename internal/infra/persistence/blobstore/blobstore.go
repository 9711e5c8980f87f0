// Package blobstore keeps credentials as a single JSON snapshot in a gocloud.dev bucket.
package blobstore

import (
	"context"
	"log/slog"

	"credcheck/config"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gocloud.dev/blob"

	// Bucket drivers selectable through blob.url.
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens the bucket named by blob.url and closes it on stop.
func New(params Params) (*blob.Bucket, error) {
	cfg := params.Config.Blob
	if cfg == nil {
		return nil, errors.New("blob store selected without a blob section")
	}

	bucket, err := blob.OpenBucket(context.Background(), cfg.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %q", cfg.URL)
	}

	params.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			exists, err := bucket.Exists(ctx, cfg.Key)
			if err != nil {
				return errors.Wrap(err, "failed to reach credential bucket")
			}
			params.Logger.Debug("Blob credential store ready", slog.String("key", cfg.Key), slog.Bool("snapshotExists", exists))

			return nil
		},
		OnStop: func(_ context.Context) error {
			return bucket.Close()
		},
	})

	return bucket, nil
}
