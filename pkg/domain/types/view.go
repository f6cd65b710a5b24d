package types

import "fmt"

// View represents which surface of a session is active
type View string

const (
	ViewChat     View = "CHAT"
	ViewDocument View = "DOCUMENT"
)

// IsValid checks if the view is valid
func (v View) IsValid() bool {
	switch v {
	case ViewChat,
		ViewDocument:
		return true
	default:
		return false
	}
}

// Normalize returns the view, treating empty as ViewChat.
func (v View) Normalize() View {
	if v == "" {
		return ViewChat
	}
	return v
}

// String returns the string representation of the view
func (v View) String() string {
	return string(v)
}

// ParseView parses a string into a View
func ParseView(s string) (View, error) {
	view := View(s)
	if !view.IsValid() {
		return "", fmt.Errorf("invalid view: %s", s)
	}
	return view, nil
}
