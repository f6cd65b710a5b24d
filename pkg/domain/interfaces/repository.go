package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Session() SessionRepository
	Conversation() ConversationRepository
	Document() DocumentRepository

	Close() error
}
