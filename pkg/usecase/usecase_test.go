package usecase_test

import (
	"context"

	"github.com/quillforge/quill/pkg/domain/interfaces"
	"github.com/quillforge/quill/pkg/domain/model"
)

// syncDispatch runs handlers inline so outcomes are observable right after
// the triggering call returns
func syncDispatch(ctx context.Context, handler func(ctx context.Context) error) {
	_ = handler(ctx)
}

// manualDispatcher collects handlers so tests control when async work runs
type manualDispatcher struct {
	handlers []func(ctx context.Context) error
}

func (d *manualDispatcher) dispatch(_ context.Context, handler func(ctx context.Context) error) {
	d.handlers = append(d.handlers, handler)
}

func (d *manualDispatcher) runAll(ctx context.Context) {
	handlers := d.handlers
	d.handlers = nil
	for _, h := range handlers {
		_ = h(ctx)
	}
}

// mockGenerator is a DocumentGenerator with an overridable function
type mockGenerator struct {
	generateFn func(ctx context.Context, req *model.GenerationRequest) (*model.Document, error)
	calls      int
}

var _ interfaces.DocumentGenerator = &mockGenerator{}

func (m *mockGenerator) Generate(ctx context.Context, req *model.GenerationRequest) (*model.Document, error) {
	m.calls++
	return m.generateFn(ctx, req)
}

// mockPublisher is a Publisher with an overridable function
type mockPublisher struct {
	publishFn func(ctx context.Context, doc *model.Document) (string, error)
}

var _ interfaces.Publisher = &mockPublisher{}

func (m *mockPublisher) Publish(ctx context.Context, doc *model.Document) (string, error) {
	return m.publishFn(ctx, doc)
}
