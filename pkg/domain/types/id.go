package types

import "github.com/google/uuid"

// SessionID identifies a single conversation session
type SessionID string

// MessageID identifies a conversation message
type MessageID string

// RequestID identifies one generation request, used to detect stale results
type RequestID string

// AttachmentID identifies a message attachment
type AttachmentID string

// UUIDv7 is time ordered, so freshly minted IDs sort in creation order.

func NewSessionID() SessionID {
	return SessionID(uuid.Must(uuid.NewV7()).String())
}

func NewMessageID() MessageID {
	return MessageID(uuid.Must(uuid.NewV7()).String())
}

func NewRequestID() RequestID {
	return RequestID(uuid.Must(uuid.NewV7()).String())
}

func NewAttachmentID() AttachmentID {
	return AttachmentID(uuid.Must(uuid.NewV7()).String())
}

func (id SessionID) String() string    { return string(id) }
func (id MessageID) String() string    { return string(id) }
func (id RequestID) String() string    { return string(id) }
func (id AttachmentID) String() string { return string(id) }
