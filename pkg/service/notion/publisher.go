package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/m-mizutani/goerr/v2"
	"github.com/quillforge/quill/pkg/domain/interfaces"
	"github.com/quillforge/quill/pkg/domain/model"
)

// client implements interfaces.Publisher on the Notion API
type client struct {
	api      *notionapi.Client
	parentID string
}

var _ interfaces.Publisher = &client{}

// New creates a Notion publisher. parentID is the page under which published
// documents are created.
func New(token, parentID string) (interfaces.Publisher, error) {
	if token == "" {
		return nil, goerr.New("Notion API token is required")
	}
	if parentID == "" {
		return nil, goerr.New("Notion parent page ID is required")
	}

	return &client{
		api: notionapi.NewClient(
			notionapi.Token(token),
			notionapi.WithRetry(3), // Retry up to 3 times on rate limit (HTTP 429)
		),
		parentID: parentID,
	}, nil
}

// Publish creates a page for the document and returns its URL
func (c *client) Publish(ctx context.Context, doc *model.Document) (string, error) {
	if doc == nil {
		return "", goerr.New("document is nil")
	}

	page, err := c.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:   notionapi.ParentTypePageID,
			PageID: notionapi.PageID(c.parentID),
		},
		Properties: notionapi.Properties{
			"title": notionapi.TitleProperty{
				Title: []notionapi.RichText{richText(doc.Title)},
			},
		},
		Children: markdownToBlocks(doc.EffectiveBody()),
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to create Notion page",
			goerr.V("parentID", c.parentID),
			goerr.V("title", doc.Title))
	}

	return page.URL, nil
}
