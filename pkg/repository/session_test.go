package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/quillforge/quill/pkg/domain/interfaces"
	"github.com/quillforge/quill/pkg/domain/model"
	"github.com/quillforge/quill/pkg/domain/types"
	"github.com/quillforge/quill/pkg/repository/memory"
)

func runSessionRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("create and get session", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		session := model.NewSession()
		gt.NoError(t, repo.Session().Create(ctx, session)).Required()

		got, err := repo.Session().Get(ctx, session.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(session.ID)
		gt.Value(t, got.ActiveView).Equal(types.ViewChat)
		gt.Value(t, got.GenerationStatus).Equal(types.GenerationIdle)
		gt.Bool(t, got.Editing).False()
	})

	t.Run("get missing session fails", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Session().Get(ctx, types.NewSessionID())
		gt.Value(t, err).NotNil()
	})

	t.Run("update replaces the record", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		session := model.NewSession()
		gt.NoError(t, repo.Session().Create(ctx, session)).Required()

		session.GenerationStatus = types.GenerationPending
		session.CurrentRequestID = types.NewRequestID()
		session.ActiveView = types.ViewDocument
		gt.NoError(t, repo.Session().Update(ctx, session)).Required()

		got, err := repo.Session().Get(ctx, session.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.GenerationStatus).Equal(types.GenerationPending)
		gt.Value(t, got.CurrentRequestID).Equal(session.CurrentRequestID)
		gt.Value(t, got.ActiveView).Equal(types.ViewDocument)
	})

	t.Run("update of missing session fails", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		err := repo.Session().Update(ctx, model.NewSession())
		gt.Value(t, err).NotNil()
	})

	t.Run("delete removes the record", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		session := model.NewSession()
		gt.NoError(t, repo.Session().Create(ctx, session)).Required()
		gt.NoError(t, repo.Session().Delete(ctx, session.ID)).Required()

		_, err := repo.Session().Get(ctx, session.ID)
		gt.Value(t, err).NotNil()
	})
}

func TestMemorySessionRepository(t *testing.T) {
	runSessionRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreSessionRepository(t *testing.T) {
	runSessionRepositoryTest(t, newFirestoreRepository)
}
