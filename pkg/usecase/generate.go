package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/quillforge/quill/pkg/domain/model"
	"github.com/quillforge/quill/pkg/domain/types"
	"github.com/quillforge/quill/pkg/utils/logging"
)

// RequestGeneration snapshots the conversation and triggers document
// generation. A pending request makes the call a no-op returning the
// in-flight request ID; clients polling the session see the same state
// either way.
func (uc *UseCases) RequestGeneration(ctx context.Context, sessionID types.SessionID) (types.RequestID, error) {
	req, inFlight, err := uc.beginGeneration(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if req == nil {
		return inFlight, nil
	}

	// Dispatched outside the session lock; runGeneration takes it again
	uc.dispatch(ctx, func(ctx context.Context) error {
		return uc.runGeneration(ctx, req)
	})

	return req.ID, nil
}

// beginGeneration performs the locked part of the trigger: the single-flight
// check, the snapshot, and the transition to pending. A nil request with a
// non-empty ID means a request is already in flight.
func (uc *UseCases) beginGeneration(ctx context.Context, sessionID types.SessionID) (*model.GenerationRequest, types.RequestID, error) {
	unlock := uc.locks.acquire(sessionID)
	defer unlock()

	session, err := uc.getSession(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}

	if !session.GenerationStatus.CanTrigger() {
		logging.From(ctx).Info("generation already in progress, suppressing trigger",
			"session_id", sessionID, "request_id", session.CurrentRequestID)
		return nil, session.CurrentRequestID, nil
	}

	snapshot, err := uc.repo.Conversation().List(ctx, sessionID)
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to snapshot conversation", goerr.V(SessionIDKey, sessionID))
	}

	req := model.NewGenerationRequest(sessionID, snapshot)

	session.GenerationStatus = types.GenerationPending
	session.CurrentRequestID = req.ID
	session.FailureReason = types.FailureReasonNone
	session.UpdatedAt = time.Now()
	if err := uc.repo.Session().Update(ctx, session); err != nil {
		return nil, "", goerr.Wrap(err, "failed to mark session pending", goerr.V(SessionIDKey, sessionID))
	}

	logging.From(ctx).Info("generation triggered",
		"session_id", sessionID, "request_id", req.ID, "snapshot_size", len(req.Snapshot))

	return req, req.ID, nil
}

// runGeneration executes one generation request and folds its outcome back
// into the session. Only the request whose ID still matches the session's
// current one may touch the document.
func (uc *UseCases) runGeneration(ctx context.Context, req *model.GenerationRequest) error {
	genCtx, cancel := context.WithTimeout(ctx, uc.generationTimeout)
	defer cancel()

	doc, genErr := uc.generator.Generate(genCtx, req)

	unlock := uc.locks.acquire(req.SessionID)
	defer unlock()

	session, err := uc.repo.Session().Get(ctx, req.SessionID)
	if err != nil {
		logging.From(ctx).Info("session gone before generation completed, dropping result",
			"session_id", req.SessionID, "request_id", req.ID)
		return nil
	}

	if session.CurrentRequestID != req.ID {
		logging.From(ctx).Info("stale generation result discarded",
			"session_id", req.SessionID,
			"request_id", req.ID,
			"current_request_id", session.CurrentRequestID)
		return nil
	}

	if genErr != nil {
		session.GenerationStatus = types.GenerationFailed
		session.FailureReason = failureReasonOf(genErr)
		session.UpdatedAt = time.Now()
		if err := uc.repo.Session().Update(ctx, session); err != nil {
			return goerr.Wrap(err, "failed to mark session failed", goerr.V(SessionIDKey, req.SessionID))
		}
		return goerr.Wrap(genErr, "generation failed",
			goerr.V(SessionIDKey, req.SessionID),
			goerr.V(RequestIDKey, req.ID),
			goerr.V("reason", session.FailureReason))
	}

	// Install replaces the document wholesale, edit override included
	if err := uc.repo.Document().Put(ctx, req.SessionID, doc); err != nil {
		return goerr.Wrap(err, "failed to install document", goerr.V(SessionIDKey, req.SessionID))
	}

	session.GenerationStatus = types.GenerationSucceeded
	session.FailureReason = types.FailureReasonNone
	session.Editing = false
	session.UpdatedAt = time.Now()
	if err := uc.repo.Session().Update(ctx, session); err != nil {
		return goerr.Wrap(err, "failed to mark session succeeded", goerr.V(SessionIDKey, req.SessionID))
	}

	logging.From(ctx).Info("document installed",
		"session_id", req.SessionID, "request_id", req.ID, "title", doc.Title)
	return nil
}

func failureReasonOf(err error) types.FailureReason {
	if errors.Is(err, context.DeadlineExceeded) {
		return types.FailureReasonTimeout
	}
	return types.FailureReasonServiceFailure
}
