package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/quillforge/quill/pkg/domain/types"
	"github.com/quillforge/quill/pkg/repository/memory"
	"github.com/quillforge/quill/pkg/service/storage"
	"github.com/quillforge/quill/pkg/usecase"
)

func TestSubmitMessage(t *testing.T) {
	t.Run("empty message does not grow the transcript", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, usecase.WithDispatcher(syncDispatch))
		ctx := context.Background()

		session, err := uc.StartSession(ctx)
		gt.NoError(t, err).Required()

		_, err = uc.SubmitMessage(ctx, session.ID, "   ", nil)
		gt.Error(t, err).Is(usecase.ErrEmptyMessage)

		messages, err := uc.ListMessages(ctx, session.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, messages).Length(1)
	})

	t.Run("user turn gets exactly one assistant reply in order", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, usecase.WithDispatcher(syncDispatch))
		ctx := context.Background()

		session, err := uc.StartSession(ctx)
		gt.NoError(t, err).Required()

		result, err := uc.SubmitMessage(ctx, session.ID, "an article about gophers", nil)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Message.Author()).Equal(types.AuthorUser)
		gt.Number(t, result.Message.Seq()).Equal(int64(2))

		messages, err := uc.ListMessages(ctx, session.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, messages).Length(3).Required()
		gt.Value(t, messages[1].Author()).Equal(types.AuthorUser)
		gt.Value(t, messages[1].Text()).Equal("an article about gophers")
		gt.Value(t, messages[2].Author()).Equal(types.AuthorAssistant)
	})

	t.Run("reply is deferred until the dispatcher runs", func(t *testing.T) {
		repo := memory.New()
		dispatcher := &manualDispatcher{}
		uc := usecase.New(repo, usecase.WithDispatcher(dispatcher.dispatch))
		ctx := context.Background()

		session, err := uc.StartSession(ctx)
		gt.NoError(t, err).Required()

		_, err = uc.SubmitMessage(ctx, session.ID, "hello", nil)
		gt.NoError(t, err).Required()

		messages, err := uc.ListMessages(ctx, session.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, messages).Length(2)

		dispatcher.runAll(ctx)

		messages, err = uc.ListMessages(ctx, session.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, messages).Length(3)
		gt.Value(t, messages[2].Author()).Equal(types.AuthorAssistant)
	})

	t.Run("mixed batch stores accepted files and reports rejections", func(t *testing.T) {
		repo := memory.New()
		store := storage.NewMemory()
		uc := usecase.New(repo,
			usecase.WithDispatcher(syncDispatch),
			usecase.WithStorage(store))
		ctx := context.Background()

		session, err := uc.StartSession(ctx)
		gt.NoError(t, err).Required()

		files := []usecase.FileUpload{
			{Name: "ok.png", MimeType: "image/png", Data: make([]byte, 1<<20)},
			{Name: "huge.png", MimeType: "image/png", Data: make([]byte, 15<<20)},
			{Name: "notes.txt", MimeType: "text/plain", Data: make([]byte, 2<<20)},
		}

		result, err := uc.SubmitMessage(ctx, session.ID, "with files", files)
		gt.NoError(t, err).Required()

		gt.Array(t, result.Rejections).Length(2).Required()
		gt.Value(t, result.Rejections[0].Reason).Equal(types.RejectReasonTooLarge)
		gt.Value(t, result.Rejections[1].Reason).Equal(types.RejectReasonUnsupportedType)

		atts := result.Message.Attachments()
		gt.Array(t, atts).Length(1).Required()
		gt.Value(t, atts[0].Name()).Equal("ok.png")
		gt.Number(t, atts[0].SizeBytes()).Equal(int64(1 << 20))

		// Only the accepted blob hit storage, and its handle resolves
		gt.Number(t, store.Len()).Equal(1)
		data, ok := store.Get(atts[0].Handle())
		gt.Bool(t, ok).True()
		gt.Number(t, len(data)).Equal(1 << 20)
	})

	t.Run("attachment-only message is accepted", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, usecase.WithDispatcher(syncDispatch))
		ctx := context.Background()

		session, err := uc.StartSession(ctx)
		gt.NoError(t, err).Required()

		result, err := uc.SubmitMessage(ctx, session.ID, "", []usecase.FileUpload{
			{Name: "a.png", MimeType: "image/png", Data: []byte("png-bytes")},
		})
		gt.NoError(t, err).Required()
		gt.Array(t, result.Message.Attachments()).Length(1)
	})

	t.Run("all rejected and no text means empty message", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, usecase.WithDispatcher(syncDispatch))
		ctx := context.Background()

		session, err := uc.StartSession(ctx)
		gt.NoError(t, err).Required()

		result, err := uc.SubmitMessage(ctx, session.ID, "", []usecase.FileUpload{
			{Name: "doc.pdf", MimeType: "application/pdf", Data: []byte("pdf")},
		})
		gt.Error(t, err).Is(usecase.ErrEmptyMessage)
		gt.Array(t, result.Rejections).Length(1)
	})

	t.Run("unknown session", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, usecase.WithDispatcher(syncDispatch))

		_, err := uc.SubmitMessage(context.Background(), types.NewSessionID(), "hi", nil)
		gt.Error(t, err).Is(usecase.ErrSessionNotFound)
	})
}
