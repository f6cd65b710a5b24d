package interfaces

import (
	"context"

	"github.com/quillforge/quill/pkg/domain/model"
	"github.com/quillforge/quill/pkg/domain/types"
)

// DocumentRepository is the single-slot store for a session's generated
// document. Put replaces the slot wholesale; there is no history.
type DocumentRepository interface {
	// Put installs the document, replacing any prior one
	Put(ctx context.Context, sessionID types.SessionID, doc *model.Document) error

	// Get retrieves the live document; returns (nil, nil) when the slot is empty
	Get(ctx context.Context, sessionID types.SessionID) (*model.Document, error)

	// Delete clears the slot
	Delete(ctx context.Context, sessionID types.SessionID) error
}
