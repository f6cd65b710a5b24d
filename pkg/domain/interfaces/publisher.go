package interfaces

import (
	"context"

	"github.com/quillforge/quill/pkg/domain/model"
)

// Publisher pushes a document to an external destination and returns its URL
type Publisher interface {
	Publish(ctx context.Context, doc *model.Document) (string, error)
}
