package assistant

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/quillforge/quill/pkg/domain/interfaces"
	"github.com/quillforge/quill/pkg/domain/model"
)

//go:embed prompt/reply_system.md
var replySystemPrompt string

// llm is a Responder backed by a gollem LLM client
type llm struct {
	llmClient gollem.LLMClient
}

// NewLLM creates a responder that replies through the provided LLM client
func NewLLM(llmClient gollem.LLMClient) (interfaces.Responder, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}
	return &llm{llmClient: llmClient}, nil
}

func (r *llm) Reply(ctx context.Context, history []*model.Message) (string, error) {
	session, err := r.llmClient.NewSession(ctx,
		gollem.WithSessionSystemPrompt(replySystemPrompt),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buildTranscript(history)))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate reply from LLM")
	}
	if len(resp.Texts) == 0 || strings.TrimSpace(resp.Texts[0]) == "" {
		return "", goerr.New("LLM returned empty reply")
	}

	return strings.TrimSpace(resp.Texts[0]), nil
}

func buildTranscript(history []*model.Message) string {
	var sb strings.Builder
	for _, msg := range history {
		fmt.Fprintf(&sb, "%s: %s\n", msg.Author(), msg.Text())
		for _, a := range msg.Attachments() {
			fmt.Fprintf(&sb, "[attached image: %s (%s)]\n", a.Name(), a.MimeType())
		}
	}
	sb.WriteString("\nReply to the user's latest message.")
	return sb.String()
}
