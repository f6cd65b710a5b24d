package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrDocumentNotFound = errors.New("document not found")

	// Conversation errors
	ErrEmptyMessage = errors.New("message has no text and no attachments")

	// Document errors
	ErrEditNotActive          = errors.New("document is not being edited")
	ErrPublisherNotConfigured = errors.New("no publisher is configured")
)

// Context keys for error values
const (
	SessionIDKey = "session_id"
	RequestIDKey = "request_id"
)
