package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/quillforge/quill/pkg/domain/model"
	"github.com/quillforge/quill/pkg/domain/types"
	"github.com/quillforge/quill/pkg/utils/logging"
)

// SessionState is the session record plus the derived facts a client needs
// to render it
type SessionState struct {
	Session      *model.Session
	MessageCount int
	HasDocument  bool
}

// StartSession creates a session and seeds the conversation with the
// assistant greeting
func (uc *UseCases) StartSession(ctx context.Context) (*model.Session, error) {
	session := model.NewSession()
	if err := uc.repo.Session().Create(ctx, session); err != nil {
		return nil, goerr.Wrap(err, "failed to create session")
	}

	greeting := model.NewAssistantMessage(uc.greeting)
	if _, err := uc.repo.Conversation().Append(ctx, session.ID, greeting); err != nil {
		return nil, goerr.Wrap(err, "failed to seed greeting",
			goerr.V(SessionIDKey, session.ID))
	}

	logging.From(ctx).Info("session started", "session_id", session.ID)
	return session, nil
}

// GetSession retrieves a session with its derived state
func (uc *UseCases) GetSession(ctx context.Context, id types.SessionID) (*SessionState, error) {
	session, err := uc.getSession(ctx, id)
	if err != nil {
		return nil, err
	}

	messages, err := uc.repo.Conversation().List(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list messages", goerr.V(SessionIDKey, id))
	}

	doc, err := uc.repo.Document().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get document", goerr.V(SessionIDKey, id))
	}

	return &SessionState{
		Session:      session,
		MessageCount: len(messages),
		HasDocument:  doc != nil,
	}, nil
}

// ListMessages returns the session transcript in insertion order
func (uc *UseCases) ListMessages(ctx context.Context, id types.SessionID) ([]*model.Message, error) {
	if _, err := uc.getSession(ctx, id); err != nil {
		return nil, err
	}

	messages, err := uc.repo.Conversation().List(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list messages", goerr.V(SessionIDKey, id))
	}
	return messages, nil
}

// DiscardSession removes the session, its conversation, and its document.
// An in-flight generation finds the session gone at completion and its
// result is dropped.
func (uc *UseCases) DiscardSession(ctx context.Context, id types.SessionID) error {
	unlock := uc.locks.acquire(id)
	defer unlock()

	if _, err := uc.getSession(ctx, id); err != nil {
		return err
	}

	if err := uc.repo.Document().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete document", goerr.V(SessionIDKey, id))
	}
	if err := uc.repo.Conversation().Clear(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to clear conversation", goerr.V(SessionIDKey, id))
	}
	if err := uc.repo.Session().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete session", goerr.V(SessionIDKey, id))
	}

	logging.From(ctx).Info("session discarded", "session_id", id)
	return nil
}

// SwitchView stores which surface the client is looking at
func (uc *UseCases) SwitchView(ctx context.Context, id types.SessionID, view types.View) (*model.Session, error) {
	if !view.IsValid() {
		return nil, goerr.New("invalid view", goerr.V("view", view))
	}

	unlock := uc.locks.acquire(id)
	defer unlock()

	session, err := uc.getSession(ctx, id)
	if err != nil {
		return nil, err
	}

	session.ActiveView = view
	session.UpdatedAt = time.Now()
	if err := uc.repo.Session().Update(ctx, session); err != nil {
		return nil, goerr.Wrap(err, "failed to update session", goerr.V(SessionIDKey, id))
	}

	return session, nil
}

func (uc *UseCases) getSession(ctx context.Context, id types.SessionID) (*model.Session, error) {
	session, err := uc.repo.Session().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrSessionNotFound, "session not found", goerr.V(SessionIDKey, id))
	}
	return session, nil
}
