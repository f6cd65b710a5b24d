package generation

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/quillforge/quill/pkg/domain/interfaces"
	"github.com/quillforge/quill/pkg/domain/model"
)

//go:embed prompt/draft_system.md
var draftSystemPrompt string

// client implements interfaces.DocumentGenerator on top of a gollem LLM client
type client struct {
	llmClient gollem.LLMClient
	now       func() time.Time
}

// Option is a functional option for client configuration
type Option func(*client)

// WithNow overrides the clock used for document timestamps
func WithNow(now func() time.Time) Option {
	return func(c *client) {
		c.now = now
	}
}

// New creates a new draft generation service with the provided LLM client
func New(llmClient gollem.LLMClient, opts ...Option) (interfaces.DocumentGenerator, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &client{
		llmClient: llmClient,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

type llmDraft struct {
	Title                string   `json:"title"`
	Body                 string   `json:"body"`
	Tags                 []string `json:"tags"`
	EstimatedReadMinutes int      `json:"estimated_read_minutes"`
}

// Generate produces an article draft from the conversation snapshot
func (c *client) Generate(ctx context.Context, req *model.GenerationRequest) (*model.Document, error) {
	if req == nil {
		return nil, goerr.New("generation request is nil")
	}

	session, err := c.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(buildResponseSchema()),
		gollem.WithSessionSystemPrompt(draftSystemPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buildUserPrompt(req.Snapshot)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate content from LLM",
			goerr.V("request_id", req.ID))
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("LLM returned empty response", goerr.V("request_id", req.ID))
	}

	var draft llmDraft
	if err := json.Unmarshal([]byte(resp.Texts[0]), &draft); err != nil {
		return nil, goerr.Wrap(err, "failed to parse LLM response",
			goerr.V("response", resp.Texts[0]))
	}
	if strings.TrimSpace(draft.Body) == "" {
		return nil, goerr.New("LLM draft has no body", goerr.V("request_id", req.ID))
	}
	if strings.TrimSpace(draft.Title) == "" {
		draft.Title = "Untitled draft"
	}

	return model.NewDocument(draft.Title, draft.Body, draft.Tags, draft.EstimatedReadMinutes, c.now()), nil
}

// buildUserPrompt renders the conversation snapshot as a transcript
func buildUserPrompt(snapshot []*model.Message) string {
	var sb strings.Builder
	sb.WriteString("## Conversation\n\n")

	for _, msg := range snapshot {
		fmt.Fprintf(&sb, "### %s\n", msg.Author())
		if msg.Text() != "" {
			sb.WriteString(msg.Text())
			sb.WriteString("\n")
		}
		for _, a := range msg.Attachments() {
			fmt.Fprintf(&sb, "[attached image: %s (%s)]\n", a.Name(), a.MimeType())
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// buildResponseSchema creates the JSON schema for structured output
func buildResponseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "ArticleDraft",
		Description: "Article draft composed from the conversation",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"title": {
				Type:        gollem.TypeString,
				Description: "Concise article title",
			},
			"body": {
				Type:        gollem.TypeString,
				Description: "Full article body in Markdown",
			},
			"tags": {
				Type:        gollem.TypeArray,
				Description: "Up to 5 short topic tags",
				Items: &gollem.Parameter{
					Type: gollem.TypeString,
				},
			},
			"estimated_read_minutes": {
				Type:        gollem.TypeInteger,
				Description: "Estimated reading time in whole minutes",
			},
		},
		Required: []string{"title", "body", "tags"},
	}
}
