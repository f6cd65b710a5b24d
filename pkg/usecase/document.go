package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/quillforge/quill/pkg/domain/model"
	"github.com/quillforge/quill/pkg/domain/types"
	"github.com/quillforge/quill/pkg/service/render"
	"github.com/quillforge/quill/pkg/utils/logging"
)

// ExportFormat selects the export rendering
type ExportFormat string

const (
	ExportMarkdown ExportFormat = "markdown"
	ExportHTML     ExportFormat = "html"
)

// Export is a rendered document ready for download
type Export struct {
	FileName    string
	ContentType string
	Data        []byte
}

// GetDocument retrieves the session's live document
func (uc *UseCases) GetDocument(ctx context.Context, sessionID types.SessionID) (*model.Document, error) {
	if _, err := uc.getSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return uc.getDocument(ctx, sessionID)
}

// BeginEdit marks the document as being edited and returns the text the
// editor should start from
func (uc *UseCases) BeginEdit(ctx context.Context, sessionID types.SessionID) (string, error) {
	unlock := uc.locks.acquire(sessionID)
	defer unlock()

	session, err := uc.getSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	doc, err := uc.getDocument(ctx, sessionID)
	if err != nil {
		return "", err
	}

	session.Editing = true
	session.UpdatedAt = time.Now()
	if err := uc.repo.Session().Update(ctx, session); err != nil {
		return "", goerr.Wrap(err, "failed to update session", goerr.V(SessionIDKey, sessionID))
	}

	return doc.EffectiveBody(), nil
}

// CommitEdit stores the edit override and ends the editing state
func (uc *UseCases) CommitEdit(ctx context.Context, sessionID types.SessionID, text string) (*model.Document, error) {
	unlock := uc.locks.acquire(sessionID)
	defer unlock()

	session, err := uc.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Editing {
		return nil, goerr.Wrap(ErrEditNotActive, "no edit in progress", goerr.V(SessionIDKey, sessionID))
	}
	doc, err := uc.getDocument(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	doc.CommitEdit(text)
	if err := uc.repo.Document().Put(ctx, sessionID, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to save document", goerr.V(SessionIDKey, sessionID))
	}

	session.Editing = false
	session.UpdatedAt = time.Now()
	if err := uc.repo.Session().Update(ctx, session); err != nil {
		return nil, goerr.Wrap(err, "failed to update session", goerr.V(SessionIDKey, sessionID))
	}

	return doc, nil
}

// CancelEdit ends the editing state without touching the document
func (uc *UseCases) CancelEdit(ctx context.Context, sessionID types.SessionID) error {
	unlock := uc.locks.acquire(sessionID)
	defer unlock()

	session, err := uc.getSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !session.Editing {
		return goerr.Wrap(ErrEditNotActive, "no edit in progress", goerr.V(SessionIDKey, sessionID))
	}

	session.Editing = false
	session.UpdatedAt = time.Now()
	if err := uc.repo.Session().Update(ctx, session); err != nil {
		return goerr.Wrap(err, "failed to update session", goerr.V(SessionIDKey, sessionID))
	}
	return nil
}

// ExportDocument renders the document for download in the requested format
func (uc *UseCases) ExportDocument(ctx context.Context, sessionID types.SessionID, format ExportFormat) (*Export, error) {
	if _, err := uc.getSession(ctx, sessionID); err != nil {
		return nil, err
	}
	doc, err := uc.getDocument(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch format {
	case ExportMarkdown, "":
		data, err := render.Markdown(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to render markdown", goerr.V(SessionIDKey, sessionID))
		}
		return &Export{
			FileName:    doc.ExportFileName(".md"),
			ContentType: "text/markdown; charset=utf-8",
			Data:        data,
		}, nil

	case ExportHTML:
		data, err := render.HTML(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to render html", goerr.V(SessionIDKey, sessionID))
		}
		return &Export{
			FileName:    doc.ExportFileName(".html"),
			ContentType: "text/html; charset=utf-8",
			Data:        data,
		}, nil

	default:
		return nil, goerr.New("unsupported export format", goerr.V("format", format))
	}
}

// PublishDocument pushes the effective body to the configured publisher and
// returns the published URL
func (uc *UseCases) PublishDocument(ctx context.Context, sessionID types.SessionID) (string, error) {
	if uc.publisher == nil {
		return "", goerr.Wrap(ErrPublisherNotConfigured, "publish requested without publisher")
	}

	if _, err := uc.getSession(ctx, sessionID); err != nil {
		return "", err
	}
	doc, err := uc.getDocument(ctx, sessionID)
	if err != nil {
		return "", err
	}

	url, err := uc.publisher.Publish(ctx, doc)
	if err != nil {
		return "", goerr.Wrap(err, "failed to publish document",
			goerr.V(SessionIDKey, sessionID), goerr.V("title", doc.Title))
	}

	logging.From(ctx).Info("document published", "session_id", sessionID, "url", url)
	return url, nil
}

func (uc *UseCases) getDocument(ctx context.Context, sessionID types.SessionID) (*model.Document, error) {
	doc, err := uc.repo.Document().Get(ctx, sessionID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get document", goerr.V(SessionIDKey, sessionID))
	}
	if doc == nil {
		return nil, goerr.Wrap(ErrDocumentNotFound, "document not found", goerr.V(SessionIDKey, sessionID))
	}
	return doc, nil
}
