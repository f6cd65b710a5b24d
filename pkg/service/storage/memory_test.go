package storage_test

import (
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/quillforge/quill/pkg/service/storage"
)

func TestMemoryStorage(t *testing.T) {
	t.Run("put and get round trip", func(t *testing.T) {
		store := storage.NewMemory()

		handle, err := store.Put(context.Background(), "a.png", "image/png", []byte("png-bytes"))
		gt.NoError(t, err).Required()
		gt.Bool(t, strings.HasPrefix(handle, "mem://")).True()

		data, ok := store.Get(handle)
		gt.Bool(t, ok).True()
		gt.Value(t, string(data)).Equal("png-bytes")
		gt.Number(t, store.Len()).Equal(1)
	})

	t.Run("stored bytes are isolated from the caller's slice", func(t *testing.T) {
		store := storage.NewMemory()
		src := []byte("original")

		handle, err := store.Put(context.Background(), "a.bin", "application/octet-stream", src)
		gt.NoError(t, err).Required()

		src[0] = 'X'
		data, ok := store.Get(handle)
		gt.Bool(t, ok).True()
		gt.Value(t, string(data)).Equal("original")
	})

	t.Run("handles are unique per put", func(t *testing.T) {
		store := storage.NewMemory()

		h1, err := store.Put(context.Background(), "a.png", "image/png", []byte("one"))
		gt.NoError(t, err).Required()
		h2, err := store.Put(context.Background(), "a.png", "image/png", []byte("two"))
		gt.NoError(t, err).Required()
		gt.Value(t, h2).NotEqual(h1)
		gt.Number(t, store.Len()).Equal(2)
	})

	t.Run("empty data is rejected", func(t *testing.T) {
		store := storage.NewMemory()

		_, err := store.Put(context.Background(), "a.png", "image/png", nil)
		gt.Value(t, err).NotNil()
	})

	t.Run("unknown handle", func(t *testing.T) {
		store := storage.NewMemory()

		_, ok := store.Get("mem://missing")
		gt.Bool(t, ok).False()
	})
}
