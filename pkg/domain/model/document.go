package model

import (
	"strings"
	"time"
	"unicode"
)

// defaultWordsPerMinute is the read speed used when the generation service
// omits an estimate.
const defaultWordsPerMinute = 200

// Document is the generated artifact of a session. Body is treated as an
// opaque markdown string; EditedBody is a user override that wins over Body
// until the next install.
type Document struct {
	Title                string
	Body                 string
	Tags                 []string
	EstimatedReadMinutes int
	CreatedAt            time.Time
	EditedBody           string
	Edited               bool
}

// NewDocument builds a Document, normalizing tags (duplicates suppressed,
// insertion order preserved) and filling the read time estimate when the
// service omitted it.
func NewDocument(title, body string, tags []string, estimatedReadMinutes int, createdAt time.Time) *Document {
	if estimatedReadMinutes <= 0 {
		estimatedReadMinutes = EstimateReadMinutes(body)
	}
	return &Document{
		Title:                title,
		Body:                 body,
		Tags:                 uniqueTags(tags),
		EstimatedReadMinutes: estimatedReadMinutes,
		CreatedAt:            createdAt,
	}
}

// EffectiveBody returns the text to display or export: the user's edit
// override if present, otherwise the generated body. Downstream consumers
// must use this accessor instead of Body.
func (d *Document) EffectiveBody() string {
	if d.Edited {
		return d.EditedBody
	}
	return d.Body
}

// CommitEdit sets the edit override. Committing text identical to Body still
// records the override; a later install resets the whole artifact anyway.
func (d *Document) CommitEdit(text string) {
	d.EditedBody = text
	d.Edited = true
}

// Clone returns a deep copy of the document
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	copied := *d
	if d.Tags != nil {
		copied.Tags = make([]string, len(d.Tags))
		copy(copied.Tags, d.Tags)
	}
	return &copied
}

// ExportFileName derives a download file name from the title, in the form
// "my_document_title" + ext. Non-alphanumeric runs collapse to underscores.
func (d *Document) ExportFileName(ext string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(d.Title) {
		if unicode.IsLower(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		name = "document"
	}
	return name + ext
}

// EstimateReadMinutes computes the deterministic fallback read time:
// ceil(words / 200), minimum 1.
func EstimateReadMinutes(body string) int {
	words := len(strings.Fields(body))
	minutes := (words + defaultWordsPerMinute - 1) / defaultWordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// uniqueTags removes duplicate tags while preserving order
func uniqueTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		if _, ok := seen[tag]; !ok {
			seen[tag] = struct{}{}
			result = append(result, tag)
		}
	}
	return result
}
