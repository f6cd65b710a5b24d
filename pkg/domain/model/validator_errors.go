package model

import "errors"

// Sentinel errors for attachment validation. Recoverable and user-correctable;
// callers surface them as non-fatal notices.
var (
	ErrAttachmentTooLarge        = errors.New("attachment too large")
	ErrAttachmentUnsupportedType = errors.New("attachment type not supported")
)
