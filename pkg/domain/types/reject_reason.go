package types

// RejectReason classifies why an attachment was rejected by validation
type RejectReason string

const (
	RejectReasonTooLarge        RejectReason = "TOO_LARGE"
	RejectReasonUnsupportedType RejectReason = "UNSUPPORTED_TYPE"
)

// String returns the string representation of the reject reason
func (r RejectReason) String() string {
	return string(r)
}
