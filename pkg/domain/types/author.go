package types

import "fmt"

// MessageAuthor represents who wrote a conversation message
type MessageAuthor string

const (
	AuthorUser      MessageAuthor = "USER"
	AuthorAssistant MessageAuthor = "ASSISTANT"
)

// AllMessageAuthors returns all valid message authors
func AllMessageAuthors() []MessageAuthor {
	return []MessageAuthor{
		AuthorUser,
		AuthorAssistant,
	}
}

// IsValid checks if the message author is valid
func (a MessageAuthor) IsValid() bool {
	switch a {
	case AuthorUser,
		AuthorAssistant:
		return true
	default:
		return false
	}
}

// String returns the string representation of the message author
func (a MessageAuthor) String() string {
	return string(a)
}

// ParseMessageAuthor parses a string into a MessageAuthor
func ParseMessageAuthor(s string) (MessageAuthor, error) {
	author := MessageAuthor(s)
	if !author.IsValid() {
		return "", fmt.Errorf("invalid message author: %s", s)
	}
	return author, nil
}
