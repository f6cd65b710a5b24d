package storage

import (
	"context"
	"fmt"
	"path"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/quillforge/quill/pkg/domain/interfaces"
	"github.com/quillforge/quill/pkg/domain/types"
)

// GCS stores attachment bytes in a Google Cloud Storage bucket
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ interfaces.AttachmentStorage = &GCS{}

// GCSOption is a functional option for GCS configuration
type GCSOption func(*GCS)

// WithPrefix prepends a path prefix to every object name
func WithPrefix(prefix string) GCSOption {
	return func(g *GCS) {
		g.prefix = prefix
	}
}

// NewGCS creates a GCS-backed attachment store
func NewGCS(ctx context.Context, bucket string, opts ...GCSOption) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	g := &GCS{
		client: client,
		bucket: bucket,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Put uploads the bytes and returns a handle of the form "gs://<bucket>/<object>"
func (g *GCS) Put(ctx context.Context, name, mimeType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", goerr.New("attachment data is empty", goerr.V("name", name))
	}

	object := path.Join(g.prefix, fmt.Sprintf("%s_%s", types.NewAttachmentID(), path.Base(name)))

	w := g.client.Bucket(g.bucket).Object(object).NewWriter(ctx)
	w.ContentType = mimeType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", goerr.Wrap(err, "failed to write object",
			goerr.V("bucket", g.bucket), goerr.V("object", object))
	}
	// Close commits the upload
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize object",
			goerr.V("bucket", g.bucket), goerr.V("object", object))
	}

	return fmt.Sprintf("gs://%s/%s", g.bucket, object), nil
}

// Close releases the underlying client
func (g *GCS) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
