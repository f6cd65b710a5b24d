package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/quillforge/quill/pkg/domain/interfaces"
	"github.com/quillforge/quill/pkg/domain/model"
	"github.com/quillforge/quill/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	documentsCollection = "documents"
	documentSlotID      = "current"
)

type documentDoc struct {
	Title                string
	Body                 string
	Tags                 []string
	EstimatedReadMinutes int
	CreatedAt            time.Time
	EditedBody           string
	Edited               bool
}

type documentRepository struct {
	client *firestore.Client
}

var _ interfaces.DocumentRepository = &documentRepository{}

func newDocumentRepository(client *firestore.Client) *documentRepository {
	return &documentRepository{client: client}
}

// Single-slot layout: one "current" doc per session, replaced wholesale
func (r *documentRepository) slotRef(sessionID types.SessionID) *firestore.DocumentRef {
	return r.client.
		Collection(documentsCollection).Doc(sessionID.String()).
		Collection("slot").Doc(documentSlotID)
}

func (r *documentRepository) Put(ctx context.Context, sessionID types.SessionID, doc *model.Document) error {
	if doc == nil {
		return goerr.New("document is nil")
	}

	data := &documentDoc{
		Title:                doc.Title,
		Body:                 doc.Body,
		Tags:                 doc.Tags,
		EstimatedReadMinutes: doc.EstimatedReadMinutes,
		CreatedAt:            doc.CreatedAt,
		EditedBody:           doc.EditedBody,
		Edited:               doc.Edited,
	}
	if _, err := r.slotRef(sessionID).Set(ctx, data); err != nil {
		return goerr.Wrap(err, "failed to save document", goerr.V("session_id", sessionID))
	}
	return nil
}

func (r *documentRepository) Get(ctx context.Context, sessionID types.SessionID) (*model.Document, error) {
	snap, err := r.slotRef(sessionID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get document", goerr.V("session_id", sessionID))
	}

	var data documentDoc
	if err := snap.DataTo(&data); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal document", goerr.V("session_id", sessionID))
	}

	return &model.Document{
		Title:                data.Title,
		Body:                 data.Body,
		Tags:                 data.Tags,
		EstimatedReadMinutes: data.EstimatedReadMinutes,
		CreatedAt:            data.CreatedAt,
		EditedBody:           data.EditedBody,
		Edited:               data.Edited,
	}, nil
}

func (r *documentRepository) Delete(ctx context.Context, sessionID types.SessionID) error {
	if _, err := r.slotRef(sessionID).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete document", goerr.V("session_id", sessionID))
	}
	return nil
}
