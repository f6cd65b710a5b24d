package model

import (
	"time"

	"github.com/quillforge/quill/pkg/domain/types"
)

// Message represents one entry of a conversation transcript.
// Messages are immutable once appended; ordering is insertion order.
type Message struct {
	id          types.MessageID
	author      types.MessageAuthor
	text        string
	attachments []Attachment
	seq         int64
	createdAt   time.Time
}

// NewUserMessage creates a user message with a freshly minted ID.
// Validation of text/attachment presence happens at the use case boundary.
func NewUserMessage(text string, attachments []Attachment) *Message {
	return &Message{
		id:          types.NewMessageID(),
		author:      types.AuthorUser,
		text:        text,
		attachments: copyAttachments(attachments),
		createdAt:   time.Now(),
	}
}

// NewAssistantMessage creates an assistant message with a freshly minted ID
func NewAssistantMessage(text string) *Message {
	return &Message{
		id:        types.NewMessageID(),
		author:    types.AuthorAssistant,
		text:      text,
		createdAt: time.Now(),
	}
}

// NewMessageFromData creates a Message from raw data (for repository reconstruction)
func NewMessageFromData(id types.MessageID, author types.MessageAuthor, text string, attachments []Attachment, seq int64, createdAt time.Time) *Message {
	return &Message{
		id:          id,
		author:      author,
		text:        text,
		attachments: copyAttachments(attachments),
		seq:         seq,
		createdAt:   createdAt,
	}
}

// WithSeq returns a copy of the message with the sequence number assigned.
// Repositories call this when appending; the original stays untouched.
func (m *Message) WithSeq(seq int64) *Message {
	return NewMessageFromData(m.id, m.author, m.text, m.attachments, seq, m.createdAt)
}

// Getters to maintain immutability
func (m *Message) ID() types.MessageID {
	return m.id
}

func (m *Message) Author() types.MessageAuthor {
	return m.author
}

func (m *Message) Text() string {
	return m.text
}

func (m *Message) Attachments() []Attachment {
	return copyAttachments(m.attachments)
}

func (m *Message) Seq() int64 {
	return m.seq
}

func (m *Message) CreatedAt() time.Time {
	return m.createdAt
}

// IsEmpty reports whether the message carries neither text nor attachments
func (m *Message) IsEmpty() bool {
	return m.text == "" && len(m.attachments) == 0
}

func copyAttachments(attachments []Attachment) []Attachment {
	if len(attachments) == 0 {
		return nil
	}
	copied := make([]Attachment, len(attachments))
	copy(copied, attachments)
	return copied
}

// CopyMessages returns a deep copy of a message sequence. Used to build
// conversation snapshots that later appends must not affect.
func CopyMessages(messages []*Message) []*Message {
	if len(messages) == 0 {
		return nil
	}
	copied := make([]*Message, len(messages))
	for i, m := range messages {
		copied[i] = NewMessageFromData(m.id, m.author, m.text, m.attachments, m.seq, m.createdAt)
	}
	return copied
}
