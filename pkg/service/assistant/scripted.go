package assistant

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/quillforge/quill/pkg/domain/interfaces"
	"github.com/quillforge/quill/pkg/domain/model"
	"github.com/quillforge/quill/pkg/domain/types"
)

var defaultAckLines = []string{
	"Got it. Anything else you want the article to cover?",
	"Noted. Keep going, or switch to the document view to generate a draft.",
	"Added to the notes. What else?",
}

const defaultImageAckFormat = "Got it, including the %d image(s). Anything else you want the article to cover?"

// scripted is a deterministic Responder. It cycles through a fixed set of
// acknowledgment lines, keyed by the number of user turns so replies are
// stable for a given conversation.
type scripted struct {
	ackLines       []string
	imageAckFormat string
}

// ScriptedOption is a functional option for the scripted responder
type ScriptedOption func(*scripted)

// WithAckLines replaces the acknowledgment lines
func WithAckLines(lines []string) ScriptedOption {
	return func(s *scripted) {
		if len(lines) > 0 {
			s.ackLines = lines
		}
	}
}

// WithImageAckFormat replaces the acknowledgment used when the latest user
// message carries attachments. The format receives the attachment count.
func WithImageAckFormat(format string) ScriptedOption {
	return func(s *scripted) {
		if format != "" {
			s.imageAckFormat = format
		}
	}
}

// NewScripted creates a responder that needs no external service
func NewScripted(opts ...ScriptedOption) interfaces.Responder {
	s := &scripted{
		ackLines:       defaultAckLines,
		imageAckFormat: defaultImageAckFormat,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *scripted) Reply(_ context.Context, history []*model.Message) (string, error) {
	var last *model.Message
	userTurns := 0
	for _, msg := range history {
		if msg.Author() == types.AuthorUser {
			last = msg
			userTurns++
		}
	}
	if last == nil {
		return "", goerr.New("conversation has no user message")
	}

	if n := len(last.Attachments()); n > 0 {
		return fmt.Sprintf(s.imageAckFormat, n), nil
	}
	return s.ackLines[(userTurns-1)%len(s.ackLines)], nil
}
