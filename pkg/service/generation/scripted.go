package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/quillforge/quill/pkg/domain/interfaces"
	"github.com/quillforge/quill/pkg/domain/model"
	"github.com/quillforge/quill/pkg/domain/types"
)

const scriptedTitleMaxLen = 60

// scripted is a deterministic DocumentGenerator that composes a draft from
// the user's own words. It backs local development and the chat command when
// no LLM client is configured.
type scripted struct {
	now func() time.Time
}

// NewScripted creates a generator that needs no external service
func NewScripted(opts ...ScriptedOption) interfaces.DocumentGenerator {
	s := &scripted{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScriptedOption is a functional option for the scripted generator
type ScriptedOption func(*scripted)

// WithScriptedNow overrides the clock used for document timestamps
func WithScriptedNow(now func() time.Time) ScriptedOption {
	return func(s *scripted) {
		s.now = now
	}
}

func (s *scripted) Generate(_ context.Context, req *model.GenerationRequest) (*model.Document, error) {
	if req == nil {
		return nil, goerr.New("generation request is nil")
	}

	var userTexts []string
	var imageCount int
	for _, msg := range req.Snapshot {
		if msg.Author() != types.AuthorUser {
			continue
		}
		if text := strings.TrimSpace(msg.Text()); text != "" {
			userTexts = append(userTexts, text)
		}
		imageCount += len(msg.Attachments())
	}
	if len(userTexts) == 0 {
		return nil, goerr.New("conversation has no user content to draft from",
			goerr.V("request_id", req.ID))
	}

	title := scriptedTitle(userTexts[0])

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	for _, text := range userTexts {
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	if imageCount > 0 {
		fmt.Fprintf(&sb, "_%d attached image(s) will be embedded here._\n", imageCount)
	}

	return model.NewDocument(title, sb.String(), []string{"draft"}, 0, s.now()), nil
}

// scriptedTitle derives a title from the first line of the first user message
func scriptedTitle(text string) string {
	line := text
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(strings.TrimLeft(line, "# "))
	if len(line) > scriptedTitleMaxLen {
		line = strings.TrimSpace(line[:scriptedTitleMaxLen]) + "..."
	}
	if line == "" {
		return "Untitled draft"
	}
	return line
}
