package memory

import (
	"github.com/quillforge/quill/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	session      *sessionRepository
	conversation *conversationRepository
	document     *documentRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		session:      newSessionRepository(),
		conversation: newConversationRepository(),
		document:     newDocumentRepository(),
	}
}

func (m *Memory) Session() interfaces.SessionRepository {
	return m.session
}

func (m *Memory) Conversation() interfaces.ConversationRepository {
	return m.conversation
}

func (m *Memory) Document() interfaces.DocumentRepository {
	return m.document
}

func (m *Memory) Close() error {
	return nil
}
