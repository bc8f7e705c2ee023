package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/debemdeboas/postbox/internal/config"
	"github.com/debemdeboas/postbox/internal/db"
	"github.com/debemdeboas/postbox/internal/util/compression"
)

// S3Credentials are read from the environment, never from the config file.
type S3Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

// Open builds the repository selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig, creds S3Credentials) (PostRepository, error) {
	if cfg.Driver == config.DriverSQLite {
		sqlite := db.NewSQLite(cfg.Path)
		if err := sqlite.InitDB(); err != nil {
			return nil, err
		}
		return NewDBPostRepository(sqlite), nil
	}

	compressor, err := compression.ForName(cfg.Compression)
	if err != nil {
		return nil, err
	}

	var blobs BlobStore
	switch cfg.Driver {
	case config.DriverFile, "":
		blobs = NewFSBlobStore(cfg.Path)
	case config.DriverBolt:
		blobs, err = NewBoltBlobStore(cfg.Path)
		if err != nil {
			return nil, err
		}
	case config.DriverS3:
		client, err := NewS3Client(ctx, creds.AccessKeyID, creds.SecretAccessKey, cfg.S3.Region, cfg.S3.Endpoint)
		if err != nil {
			return nil, err
		}
		blobs = NewS3BlobStore(client, cfg.S3.Bucket, cfg.S3.Key)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}

	warnOnCodecMismatch(ctx, blobs, cfg.Compression)

	repoLogger.Info().
		Str("driver", cfg.Driver).
		Str("compression", cfg.Compression).
		Msg("Post store opened")

	return NewDocumentPostRepository(blobs, compressor), nil
}

// warnOnCodecMismatch logs when an existing document was written with a
// different codec than the configured one. Every load would fail to decode it.
func warnOnCodecMismatch(ctx context.Context, blobs BlobStore, configured string) {
	if configured == "" {
		configured = compression.None
	}

	raw, err := blobs.Load(ctx)
	if errors.Is(err, ErrBlobNotFound) || len(raw) == 0 {
		return
	}
	if err != nil {
		repoLogger.Warn().Err(err).Msg("Could not inspect stored posts document")
		return
	}

	if stored := compression.Detect(raw); stored != configured {
		repoLogger.Warn().
			Str("stored", stored).
			Str("configured", configured).
			Msg("Stored posts document does not match the configured compression")
	}
}
