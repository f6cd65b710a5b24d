package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/quillforge/quill/pkg/domain/interfaces"
	"github.com/quillforge/quill/pkg/domain/types"
)

// Memory keeps attachment bytes in process memory. It backs local
// development and tests.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var _ interfaces.AttachmentStorage = &Memory{}

// NewMemory creates an in-memory attachment store
func NewMemory() *Memory {
	return &Memory{
		blobs: make(map[string][]byte),
	}
}

// Put stores the bytes and returns a handle of the form "mem://<id>"
func (s *Memory) Put(_ context.Context, name, _ string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", goerr.New("attachment data is empty", goerr.V("name", name))
	}

	handle := fmt.Sprintf("mem://%s", types.NewAttachmentID())

	s.mu.Lock()
	defer s.mu.Unlock()
	blob := make([]byte, len(data))
	copy(blob, data)
	s.blobs[handle] = blob

	return handle, nil
}

// Get retrieves stored bytes by handle. Used by tests and the local viewer.
func (s *Memory) Get(handle string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[handle]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, true
}

// Len reports the number of stored blobs
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
