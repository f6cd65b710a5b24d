package interfaces

import (
	"context"

	"github.com/quillforge/quill/pkg/domain/model"
	"github.com/quillforge/quill/pkg/domain/types"
)

// ConversationRepository is the append-only message log of a session.
// No mutation or deletion of individual messages exists; Clear discards the
// whole log when a session is reset.
type ConversationRepository interface {
	// Append stores a message at the end of the session's log and returns the
	// stored copy with its sequence number assigned
	Append(ctx context.Context, sessionID types.SessionID, msg *model.Message) (*model.Message, error)

	// List retrieves all messages of a session in insertion order. The
	// returned messages are copies; mutating repository state through them is
	// not possible.
	List(ctx context.Context, sessionID types.SessionID) ([]*model.Message, error)

	// Clear discards the session's log wholesale
	Clear(ctx context.Context, sessionID types.SessionID) error
}
