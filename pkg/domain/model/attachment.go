package model

import (
	"github.com/quillforge/quill/pkg/domain/types"
)

// Attachment references a validated binary blob attached to a message.
// The core never inspects the bytes; Handle is an opaque storage reference.
type Attachment struct {
	id        types.AttachmentID
	name      string
	mimeType  string
	sizeBytes int64
	handle    string
}

// NewAttachment creates an Attachment for a freshly stored blob
func NewAttachment(name, mimeType string, sizeBytes int64, handle string) Attachment {
	return Attachment{
		id:        types.NewAttachmentID(),
		name:      name,
		mimeType:  mimeType,
		sizeBytes: sizeBytes,
		handle:    handle,
	}
}

// NewAttachmentFromData creates an Attachment from raw data (for repository reconstruction)
func NewAttachmentFromData(id types.AttachmentID, name, mimeType string, sizeBytes int64, handle string) Attachment {
	return Attachment{
		id:        id,
		name:      name,
		mimeType:  mimeType,
		sizeBytes: sizeBytes,
		handle:    handle,
	}
}

// Getters
func (a Attachment) ID() types.AttachmentID { return a.id }
func (a Attachment) Name() string           { return a.name }
func (a Attachment) MimeType() string       { return a.mimeType }
func (a Attachment) SizeBytes() int64       { return a.sizeBytes }
func (a Attachment) Handle() string         { return a.handle }
