package interfaces

import "context"

// AttachmentStorage stores validated attachment bytes and returns an opaque
// handle. The core only ever passes the handle around; it never reads back
// the bytes.
type AttachmentStorage interface {
	Put(ctx context.Context, name, mimeType string, data []byte) (string, error)
}
