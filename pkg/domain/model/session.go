package model

import (
	"time"

	"github.com/quillforge/quill/pkg/domain/types"
)

// Session is the record of one conversation plus at most one live document.
// Generation state is tracked here; the GenerationRequest itself is transient
// and only its outcome is folded back into the session.
type Session struct {
	ID               types.SessionID
	ActiveView       types.View
	GenerationStatus types.GenerationStatus
	CurrentRequestID types.RequestID
	FailureReason    types.FailureReason
	Editing          bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewSession creates a session in its initial state
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:               types.NewSessionID(),
		ActiveView:       types.ViewChat,
		GenerationStatus: types.GenerationIdle,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Clone returns a copy of the session record
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	copied := *s
	return &copied
}
