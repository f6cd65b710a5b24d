package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/quillforge/quill/pkg/domain/interfaces"
	"github.com/quillforge/quill/pkg/domain/model"
	"github.com/quillforge/quill/pkg/domain/types"
	"github.com/quillforge/quill/pkg/service/assistant"
	"github.com/quillforge/quill/pkg/service/generation"
	"github.com/quillforge/quill/pkg/service/storage"
	"github.com/quillforge/quill/pkg/utils/async"
)

// DefaultGenerationTimeout bounds one generation request
const DefaultGenerationTimeout = 60 * time.Second

const defaultGreeting = "Hi! I'm your writing assistant. Tell me what the article should say, attach images if you like, and switch to the document view when you want a draft."

// Dispatcher runs a handler, normally on a fresh goroutine. Injectable so
// the chat command and tests can run generation synchronously.
type Dispatcher func(ctx context.Context, handler func(ctx context.Context) error)

// UseCases orchestrates sessions, conversations, generation, and documents
type UseCases struct {
	repo      interfaces.Repository
	storage   interfaces.AttachmentStorage
	generator interfaces.DocumentGenerator
	responder interfaces.Responder
	publisher interfaces.Publisher
	validator *model.AttachmentValidator

	dispatch          Dispatcher
	generationTimeout time.Duration
	greeting          string

	locks sessionLocks
}

type Option func(*UseCases)

// WithStorage replaces the attachment storage backend
func WithStorage(s interfaces.AttachmentStorage) Option {
	return func(uc *UseCases) {
		uc.storage = s
	}
}

// WithGenerator replaces the document generator
func WithGenerator(g interfaces.DocumentGenerator) Option {
	return func(uc *UseCases) {
		uc.generator = g
	}
}

// WithResponder replaces the assistant reply policy
func WithResponder(r interfaces.Responder) Option {
	return func(uc *UseCases) {
		uc.responder = r
	}
}

// WithPublisher enables document publishing
func WithPublisher(p interfaces.Publisher) Option {
	return func(uc *UseCases) {
		uc.publisher = p
	}
}

// WithValidator replaces the attachment validator
func WithValidator(v *model.AttachmentValidator) Option {
	return func(uc *UseCases) {
		uc.validator = v
	}
}

// WithDispatcher replaces the async dispatcher
func WithDispatcher(d Dispatcher) Option {
	return func(uc *UseCases) {
		uc.dispatch = d
	}
}

// WithGenerationTimeout sets the deadline for one generation request
func WithGenerationTimeout(d time.Duration) Option {
	return func(uc *UseCases) {
		if d > 0 {
			uc.generationTimeout = d
		}
	}
}

// WithGreeting replaces the assistant greeting that seeds new sessions
func WithGreeting(text string) Option {
	return func(uc *UseCases) {
		if text != "" {
			uc.greeting = text
		}
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:              repo,
		storage:           storage.NewMemory(),
		generator:         generation.NewScripted(),
		responder:         assistant.NewScripted(),
		validator:         model.NewAttachmentValidator(0, nil),
		dispatch:          async.Dispatch,
		generationTimeout: DefaultGenerationTimeout,
		greeting:          defaultGreeting,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// sessionLocks serializes writers per session. HTTP requests for the same
// session may race otherwise.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[types.SessionID]*sync.Mutex
}

func (l *sessionLocks) acquire(id types.SessionID) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[types.SessionID]*sync.Mutex)
	}
	lock, ok := l.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[id] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
