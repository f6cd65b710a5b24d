package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/quillforge/quill/pkg/domain/interfaces"
	"github.com/quillforge/quill/pkg/domain/model"
	"github.com/quillforge/quill/pkg/domain/types"
)

type documentRepository struct {
	mu        sync.RWMutex
	documents map[types.SessionID]*model.Document
}

var _ interfaces.DocumentRepository = &documentRepository{}

func newDocumentRepository() *documentRepository {
	return &documentRepository{
		documents: make(map[types.SessionID]*model.Document),
	}
}

func (r *documentRepository) Put(_ context.Context, sessionID types.SessionID, doc *model.Document) error {
	if doc == nil {
		return goerr.New("document is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.documents[sessionID] = doc.Clone()
	return nil
}

func (r *documentRepository) Get(_ context.Context, sessionID types.SessionID) (*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.documents[sessionID].Clone(), nil
}

func (r *documentRepository) Delete(_ context.Context, sessionID types.SessionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.documents, sessionID)
	return nil
}
