package interfaces

import (
	"context"

	"github.com/quillforge/quill/pkg/domain/model"
)

// DocumentGenerator is the external generation service. It must be called
// exactly once per trigger with an immutable conversation snapshot; request
// correlation for stale-result detection happens by request ID on the caller
// side.
type DocumentGenerator interface {
	Generate(ctx context.Context, req *model.GenerationRequest) (*model.Document, error)
}
