package types

import "fmt"

// GenerationStatus represents the state of a session's generation request
type GenerationStatus string

const (
	GenerationIdle      GenerationStatus = "IDLE"
	GenerationPending   GenerationStatus = "PENDING"
	GenerationSucceeded GenerationStatus = "SUCCEEDED"
	GenerationFailed    GenerationStatus = "FAILED"
)

// AllGenerationStatuses returns all valid generation statuses
func AllGenerationStatuses() []GenerationStatus {
	return []GenerationStatus{
		GenerationIdle,
		GenerationPending,
		GenerationSucceeded,
		GenerationFailed,
	}
}

// IsValid checks if the generation status is valid
func (s GenerationStatus) IsValid() bool {
	switch s {
	case GenerationIdle,
		GenerationPending,
		GenerationSucceeded,
		GenerationFailed:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as GenerationIdle.
func (s GenerationStatus) Normalize() GenerationStatus {
	if s == "" {
		return GenerationIdle
	}
	return s
}

// IsTerminal reports whether the status is a terminal state for a request.
func (s GenerationStatus) IsTerminal() bool {
	return s == GenerationSucceeded || s == GenerationFailed
}

// CanTrigger reports whether a new generation request may start from this state.
// Only a pending request blocks a new trigger; terminal states are re-triggerable.
func (s GenerationStatus) CanTrigger() bool {
	return s.Normalize() != GenerationPending
}

// String returns the string representation of the generation status
func (s GenerationStatus) String() string {
	return string(s)
}

// ParseGenerationStatus parses a string into a GenerationStatus
func ParseGenerationStatus(s string) (GenerationStatus, error) {
	status := GenerationStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid generation status: %s", s)
	}
	return status, nil
}
