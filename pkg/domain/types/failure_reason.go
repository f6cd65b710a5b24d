package types

// FailureReason classifies why a generation request failed
type FailureReason string

const (
	FailureReasonNone           FailureReason = ""
	FailureReasonTimeout        FailureReason = "TIMEOUT"
	FailureReasonServiceFailure FailureReason = "SERVICE_FAILURE"
)

// String returns the string representation of the failure reason
func (r FailureReason) String() string {
	return string(r)
}
