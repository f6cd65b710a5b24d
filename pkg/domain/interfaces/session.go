package interfaces

import (
	"context"

	"github.com/quillforge/quill/pkg/domain/model"
	"github.com/quillforge/quill/pkg/domain/types"
)

// SessionRepository persists session records
type SessionRepository interface {
	// Create stores a new session record
	Create(ctx context.Context, session *model.Session) error

	// Get retrieves a session by ID; returns an error when the session does not exist
	Get(ctx context.Context, id types.SessionID) (*model.Session, error)

	// Update replaces the stored session record
	Update(ctx context.Context, session *model.Session) error

	// Delete removes the session record
	Delete(ctx context.Context, id types.SessionID) error
}
