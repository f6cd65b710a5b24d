package generation_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/quillforge/quill/pkg/domain/model"
	"github.com/quillforge/quill/pkg/service/generation"
)

func TestScriptedGenerate(t *testing.T) {
	fixedNow := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	gen := generation.NewScripted(generation.WithScriptedNow(func() time.Time { return fixedNow }))

	t.Run("title comes from the first user line", func(t *testing.T) {
		doc, err := gen.Generate(context.Background(), testRequest(
			model.NewAssistantMessage("Hi, what are we writing today?"),
			model.NewUserMessage("Taming goroutine leaks\nWe keep leaking tickers.", nil),
			model.NewUserMessage("Also mention pprof.", nil),
		))
		gt.NoError(t, err).Required()
		gt.Value(t, doc.Title).Equal("Taming goroutine leaks")
		gt.Value(t, doc.CreatedAt).Equal(fixedNow)
		gt.Array(t, doc.Tags).Equal([]string{"draft"})

		gt.Bool(t, strings.HasPrefix(doc.Body, "# Taming goroutine leaks\n")).True()
		gt.Bool(t, strings.Contains(doc.Body, "We keep leaking tickers.")).True()
		gt.Bool(t, strings.Contains(doc.Body, "Also mention pprof.")).True()
		// assistant turns never leak into the draft
		gt.Bool(t, strings.Contains(doc.Body, "what are we writing")).False()
	})

	t.Run("markdown heading prefix is stripped from the title", func(t *testing.T) {
		doc, err := gen.Generate(context.Background(), testRequest(
			model.NewUserMessage("# My Heading", nil),
		))
		gt.NoError(t, err).Required()
		gt.Value(t, doc.Title).Equal("My Heading")
	})

	t.Run("long first line is truncated", func(t *testing.T) {
		long := strings.Repeat("word ", 30)
		doc, err := gen.Generate(context.Background(), testRequest(
			model.NewUserMessage(long, nil),
		))
		gt.NoError(t, err).Required()
		gt.Bool(t, strings.HasSuffix(doc.Title, "...")).True()
		gt.Bool(t, len(doc.Title) <= 63).True()
	})

	t.Run("attachments are counted in the body", func(t *testing.T) {
		doc, err := gen.Generate(context.Background(), testRequest(
			model.NewUserMessage("with pictures", []model.Attachment{
				model.NewAttachment("a.png", "image/png", 10, "mem://a"),
				model.NewAttachment("b.png", "image/png", 10, "mem://b"),
			}),
		))
		gt.NoError(t, err).Required()
		gt.Bool(t, strings.Contains(doc.Body, "2 attached image(s)")).True()
	})

	t.Run("no user content is an error", func(t *testing.T) {
		_, err := gen.Generate(context.Background(), testRequest(
			model.NewAssistantMessage("hello"),
		))
		gt.Value(t, err).NotNil()
	})

	t.Run("read time falls back to the word count estimate", func(t *testing.T) {
		doc, err := gen.Generate(context.Background(), testRequest(
			model.NewUserMessage("short note", nil),
		))
		gt.NoError(t, err).Required()
		gt.Number(t, doc.EstimatedReadMinutes).Equal(1)
	})
}
