package interfaces

import (
	"context"

	"github.com/quillforge/quill/pkg/domain/model"
)

// Responder produces the assistant reply to a user turn. The acknowledgment
// policy is pluggable: a scripted implementation is the default and an
// LLM-backed one takes over when a client is configured.
type Responder interface {
	Reply(ctx context.Context, history []*model.Message) (string, error)
}
