package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/quillforge/quill/pkg/domain/model"
	"github.com/quillforge/quill/pkg/domain/types"
	"github.com/quillforge/quill/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// FileUpload is one candidate attachment as received from the client
type FileUpload struct {
	Name     string
	MimeType string
	Data     []byte
}

// SubmitResult is the outcome of one user turn. Rejections are per-file and
// never abort the message itself.
type SubmitResult struct {
	Message    *model.Message
	Rejections []model.Rejection
}

// SubmitMessage validates the uploads, stores accepted blobs, appends the
// user message, and dispatches exactly one assistant reply.
func (uc *UseCases) SubmitMessage(ctx context.Context, sessionID types.SessionID, text string, files []FileUpload) (*SubmitResult, error) {
	if _, err := uc.getSession(ctx, sessionID); err != nil {
		return nil, err
	}

	metas := make([]model.FileMeta, len(files))
	byName := make(map[string]FileUpload, len(files))
	for i, f := range files {
		metas[i] = model.FileMeta{Name: f.Name, MimeType: f.MimeType, SizeBytes: int64(len(f.Data))}
		byName[f.Name] = f
	}
	accepted, rejections := uc.validator.ValidateBatch(metas)

	for _, r := range rejections {
		logging.From(ctx).Info("attachment rejected",
			"session_id", sessionID, "file", r.FileName, "reason", r.Reason)
	}

	if strings.TrimSpace(text) == "" && len(accepted) == 0 {
		return &SubmitResult{Rejections: rejections},
			goerr.Wrap(ErrEmptyMessage, "nothing to append", goerr.V(SessionIDKey, sessionID))
	}

	attachments, err := uc.storeUploads(ctx, accepted, byName)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store attachments", goerr.V(SessionIDKey, sessionID))
	}

	unlock := uc.locks.acquire(sessionID)
	stored, err := uc.repo.Conversation().Append(ctx, sessionID, model.NewUserMessage(text, attachments))
	unlock()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to append message", goerr.V(SessionIDKey, sessionID))
	}

	uc.dispatch(ctx, func(ctx context.Context) error {
		return uc.replyTo(ctx, sessionID)
	})

	return &SubmitResult{Message: stored, Rejections: rejections}, nil
}

// storeUploads pushes accepted files to attachment storage concurrently,
// preserving the order of the batch
func (uc *UseCases) storeUploads(ctx context.Context, accepted []model.FileMeta, byName map[string]FileUpload) ([]model.Attachment, error) {
	if len(accepted) == 0 {
		return nil, nil
	}

	attachments := make([]model.Attachment, len(accepted))
	eg, ctx := errgroup.WithContext(ctx)
	for i, meta := range accepted {
		eg.Go(func() error {
			file := byName[meta.Name]
			handle, err := uc.storage.Put(ctx, file.Name, file.MimeType, file.Data)
			if err != nil {
				return goerr.Wrap(err, "failed to store blob", goerr.V("file", file.Name))
			}
			attachments[i] = model.NewAttachment(file.Name, file.MimeType, int64(len(file.Data)), handle)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return attachments, nil
}

// replyTo appends the assistant's reply to the latest user turn. Runs on the
// dispatcher; a session discarded in the meantime drops the reply.
func (uc *UseCases) replyTo(ctx context.Context, sessionID types.SessionID) error {
	unlock := uc.locks.acquire(sessionID)
	defer unlock()

	if _, err := uc.repo.Session().Get(ctx, sessionID); err != nil {
		logging.From(ctx).Info("session gone before reply, dropping", "session_id", sessionID)
		return nil
	}

	history, err := uc.repo.Conversation().List(ctx, sessionID)
	if err != nil {
		return goerr.Wrap(err, "failed to list messages", goerr.V(SessionIDKey, sessionID))
	}

	reply, err := uc.responder.Reply(ctx, history)
	if err != nil {
		return goerr.Wrap(err, "failed to produce assistant reply", goerr.V(SessionIDKey, sessionID))
	}

	if _, err := uc.repo.Conversation().Append(ctx, sessionID, model.NewAssistantMessage(reply)); err != nil {
		return goerr.Wrap(err, "failed to append assistant reply", goerr.V(SessionIDKey, sessionID))
	}
	return nil
}
