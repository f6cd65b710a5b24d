package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/quillforge/quill/pkg/domain/interfaces"
	"github.com/quillforge/quill/pkg/domain/model"
	"github.com/quillforge/quill/pkg/domain/types"
)

type sessionRepository struct {
	mu       sync.RWMutex
	sessions map[types.SessionID]*model.Session
}

var _ interfaces.SessionRepository = &sessionRepository{}

func newSessionRepository() *sessionRepository {
	return &sessionRepository{
		sessions: make(map[types.SessionID]*model.Session),
	}
}

func (r *sessionRepository) Create(_ context.Context, session *model.Session) error {
	if session == nil {
		return goerr.New("session is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.ID]; ok {
		return goerr.New("session already exists", goerr.V("session_id", session.ID))
	}
	r.sessions[session.ID] = session.Clone()
	return nil
}

func (r *sessionRepository) Get(_ context.Context, id types.SessionID) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, goerr.New("session not found", goerr.V("session_id", id))
	}
	return session.Clone(), nil
}

func (r *sessionRepository) Update(_ context.Context, session *model.Session) error {
	if session == nil {
		return goerr.New("session is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.ID]; !ok {
		return goerr.New("session not found", goerr.V("session_id", session.ID))
	}
	r.sessions[session.ID] = session.Clone()
	return nil
}

func (r *sessionRepository) Delete(_ context.Context, id types.SessionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return goerr.New("session not found", goerr.V("session_id", id))
	}
	delete(r.sessions, id)
	return nil
}
