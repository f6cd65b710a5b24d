package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/quillforge/quill/pkg/domain/interfaces"
	"github.com/quillforge/quill/pkg/service/storage"
	"github.com/quillforge/quill/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Storage holds CLI flags for attachment storage configuration
type Storage struct {
	backend string
	bucket  string
	prefix  string
}

// Flags returns CLI flags for storage configuration
func (s *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-backend",
			Usage:       "Attachment storage backend (gcs or memory)",
			Value:       "memory",
			Category:    "Storage",
			Sources:     cli.EnvVars("QUILL_STORAGE_BACKEND"),
			Destination: &s.backend,
		},
		&cli.StringFlag{
			Name:        "storage-bucket",
			Usage:       "GCS bucket name (required when using gcs backend)",
			Category:    "Storage",
			Sources:     cli.EnvVars("QUILL_STORAGE_BUCKET"),
			Destination: &s.bucket,
		},
		&cli.StringFlag{
			Name:        "storage-prefix",
			Usage:       "Object name prefix for stored attachments",
			Value:       "attachments",
			Category:    "Storage",
			Sources:     cli.EnvVars("QUILL_STORAGE_PREFIX"),
			Destination: &s.prefix,
		},
	}
}

// Configure initializes the attachment storage backend. The returned closer
// releases the GCS client; it is a no-op for the memory backend.
func (s *Storage) Configure(ctx context.Context) (interfaces.AttachmentStorage, func(), error) {
	switch s.backend {
	case "gcs":
		gcs, err := storage.NewGCS(ctx, s.bucket, storage.WithPrefix(s.prefix))
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize GCS storage")
		}
		logging.Default().Info("Using GCS attachment storage",
			"bucket", s.bucket, "prefix", s.prefix)
		closer := func() {
			if err := gcs.Close(); err != nil {
				logging.Default().Error("failed to close storage client", "error", err.Error())
			}
		}
		return gcs, closer, nil

	case "memory":
		logging.Default().Info("Using in-memory attachment storage (development mode)")
		return storage.NewMemory(), func() {}, nil

	default:
		return nil, nil, goerr.New("invalid storage backend", goerr.V("backend", s.backend))
	}
}
