package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/quillforge/quill/pkg/domain/model"
	"github.com/yuin/goldmark"
)

// HTML renders the document as a standalone HTML page for export. The body
// markdown goes through goldmark; title, tags and read time are wrapped in a
// minimal header.
func HTML(doc *model.Document) ([]byte, error) {
	if doc == nil {
		return nil, goerr.New("document is nil")
	}

	var body bytes.Buffer
	if err := goldmark.Convert([]byte(doc.EffectiveBody()), &body); err != nil {
		return nil, goerr.Wrap(err, "failed to render markdown", goerr.V("title", doc.Title))
	}

	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	out.WriteString(`<meta charset="utf-8">` + "\n")
	fmt.Fprintf(&out, "<title>%s</title>\n", html.EscapeString(doc.Title))
	out.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&out, "<h1>%s</h1>\n", html.EscapeString(doc.Title))
	fmt.Fprintf(&out, "<p>%d min read</p>\n", doc.EstimatedReadMinutes)
	if len(doc.Tags) > 0 {
		escaped := make([]string, 0, len(doc.Tags))
		for _, tag := range doc.Tags {
			escaped = append(escaped, html.EscapeString(tag))
		}
		fmt.Fprintf(&out, "<p>%s</p>\n", strings.Join(escaped, ", "))
	}
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")

	return out.Bytes(), nil
}

// Markdown renders the document for markdown export: the effective body with
// a title heading when the body does not already carry one.
func Markdown(doc *model.Document) ([]byte, error) {
	if doc == nil {
		return nil, goerr.New("document is nil")
	}

	body := doc.EffectiveBody()
	if strings.HasPrefix(strings.TrimSpace(body), "# ") {
		return []byte(body), nil
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "# %s\n\n", doc.Title)
	out.WriteString(body)
	return out.Bytes(), nil
}
