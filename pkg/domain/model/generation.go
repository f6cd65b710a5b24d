package model

import (
	"time"

	"github.com/quillforge/quill/pkg/domain/types"
)

// GenerationRequest captures one request to turn a conversation into a
// document. Snapshot is an immutable copy taken at trigger time; messages
// appended afterwards must not affect an in-flight request.
type GenerationRequest struct {
	ID        types.RequestID
	SessionID types.SessionID
	Snapshot  []*Message
	StartedAt time.Time
}

// NewGenerationRequest mints a request ID and deep-copies the conversation
func NewGenerationRequest(sessionID types.SessionID, snapshot []*Message) *GenerationRequest {
	return &GenerationRequest{
		ID:        types.NewRequestID(),
		SessionID: sessionID,
		Snapshot:  CopyMessages(snapshot),
		StartedAt: time.Now(),
	}
}
