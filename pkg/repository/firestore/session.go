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

type sessionDoc struct {
	ID               string
	ActiveView       string
	GenerationStatus string
	CurrentRequestID string
	FailureReason    string
	Editing          bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type sessionRepository struct {
	client *firestore.Client
}

var _ interfaces.SessionRepository = &sessionRepository{}

func newSessionRepository(client *firestore.Client) *sessionRepository {
	return &sessionRepository{client: client}
}

func (r *sessionRepository) docRef(id types.SessionID) *firestore.DocumentRef {
	return r.client.Collection(sessionsCollection).Doc(id.String())
}

func (r *sessionRepository) Create(ctx context.Context, session *model.Session) error {
	if session == nil {
		return goerr.New("session is nil")
	}

	if _, err := r.docRef(session.ID).Create(ctx, toSessionDoc(session)); err != nil {
		return goerr.Wrap(err, "failed to create session",
			goerr.V("session_id", session.ID))
	}
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id types.SessionID) (*model.Session, error) {
	snap, err := r.docRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(err, "session not found", goerr.V("session_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get session", goerr.V("session_id", id))
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal session", goerr.V("session_id", id))
	}
	return fromSessionDoc(&doc), nil
}

func (r *sessionRepository) Update(ctx context.Context, session *model.Session) error {
	if session == nil {
		return goerr.New("session is nil")
	}

	ref := r.docRef(session.ID)
	if _, err := ref.Get(ctx); err != nil {
		return goerr.Wrap(err, "session not found", goerr.V("session_id", session.ID))
	}
	if _, err := ref.Set(ctx, toSessionDoc(session)); err != nil {
		return goerr.Wrap(err, "failed to update session", goerr.V("session_id", session.ID))
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id types.SessionID) error {
	ref := r.docRef(id)
	if _, err := ref.Get(ctx); err != nil {
		return goerr.Wrap(err, "session not found", goerr.V("session_id", id))
	}
	if _, err := ref.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete session", goerr.V("session_id", id))
	}
	return nil
}

func toSessionDoc(session *model.Session) *sessionDoc {
	return &sessionDoc{
		ID:               session.ID.String(),
		ActiveView:       session.ActiveView.String(),
		GenerationStatus: session.GenerationStatus.String(),
		CurrentRequestID: session.CurrentRequestID.String(),
		FailureReason:    session.FailureReason.String(),
		Editing:          session.Editing,
		CreatedAt:        session.CreatedAt,
		UpdatedAt:        session.UpdatedAt,
	}
}

func fromSessionDoc(doc *sessionDoc) *model.Session {
	return &model.Session{
		ID:               types.SessionID(doc.ID),
		ActiveView:       types.View(doc.ActiveView).Normalize(),
		GenerationStatus: types.GenerationStatus(doc.GenerationStatus).Normalize(),
		CurrentRequestID: types.RequestID(doc.CurrentRequestID),
		FailureReason:    types.FailureReason(doc.FailureReason),
		Editing:          doc.Editing,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
}
