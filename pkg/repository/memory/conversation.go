package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/quillforge/quill/pkg/domain/interfaces"
	"github.com/quillforge/quill/pkg/domain/model"
	"github.com/quillforge/quill/pkg/domain/types"
)

type conversationRepository struct {
	mu       sync.RWMutex
	messages map[types.SessionID][]*model.Message
}

var _ interfaces.ConversationRepository = &conversationRepository{}

func newConversationRepository() *conversationRepository {
	return &conversationRepository{
		messages: make(map[types.SessionID][]*model.Message),
	}
}

func (r *conversationRepository) Append(_ context.Context, sessionID types.SessionID, msg *model.Message) (*model.Message, error) {
	if msg == nil {
		return nil, goerr.New("message is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	msgs := r.messages[sessionID]
	stored := msg.WithSeq(int64(len(msgs)) + 1)
	r.messages[sessionID] = append(msgs, stored)

	// Re-create so the caller cannot share state with the log
	return model.NewMessageFromData(
		stored.ID(), stored.Author(), stored.Text(),
		stored.Attachments(), stored.Seq(), stored.CreatedAt(),
	), nil
}

func (r *conversationRepository) List(_ context.Context, sessionID types.SessionID) ([]*model.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return model.CopyMessages(r.messages[sessionID]), nil
}

func (r *conversationRepository) Clear(_ context.Context, sessionID types.SessionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.messages, sessionID)
	return nil
}
