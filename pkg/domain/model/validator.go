package model

import (
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/quillforge/quill/pkg/domain/types"
)

// DefaultMaxAttachmentSize is the reference size limit for attachments (10 MiB)
const DefaultMaxAttachmentSize = 10 * 1024 * 1024

// FileMeta describes a candidate attachment. Only metadata is inspected;
// the validator never reads the bytes.
type FileMeta struct {
	Name      string
	MimeType  string
	SizeBytes int64
}

// Rejection records why one file of a batch was refused
type Rejection struct {
	FileName string
	Reason   types.RejectReason
	Err      error
}

// AttachmentValidator is a pure accept/reject decision over file metadata
type AttachmentValidator struct {
	maxSizeBytes  int64
	allowedPrefix []string
}

// NewAttachmentValidator builds a validator. A non-positive limit falls back
// to DefaultMaxAttachmentSize; empty prefixes fall back to image-only.
func NewAttachmentValidator(maxSizeBytes int64, allowedPrefix []string) *AttachmentValidator {
	if maxSizeBytes <= 0 {
		maxSizeBytes = DefaultMaxAttachmentSize
	}
	if len(allowedPrefix) == 0 {
		allowedPrefix = []string{"image/"}
	}
	return &AttachmentValidator{
		maxSizeBytes:  maxSizeBytes,
		allowedPrefix: allowedPrefix,
	}
}

// Validate returns nil when the file is acceptable, otherwise an error
// wrapping ErrAttachmentTooLarge or ErrAttachmentUnsupportedType.
func (v *AttachmentValidator) Validate(file FileMeta) error {
	if file.SizeBytes > v.maxSizeBytes {
		return goerr.Wrap(ErrAttachmentTooLarge, "attachment exceeds size limit",
			goerr.V("file", file.Name),
			goerr.V("size", file.SizeBytes),
			goerr.V("limit", v.maxSizeBytes))
	}

	supported := false
	for _, prefix := range v.allowedPrefix {
		if strings.HasPrefix(file.MimeType, prefix) {
			supported = true
			break
		}
	}
	if !supported {
		return goerr.Wrap(ErrAttachmentUnsupportedType, "attachment type is not supported",
			goerr.V("file", file.Name),
			goerr.V("mime_type", file.MimeType))
	}

	return nil
}

// ValidateBatch validates files independently: accepted files proceed even
// when siblings are rejected, so a batch never fails atomically.
func (v *AttachmentValidator) ValidateBatch(files []FileMeta) ([]FileMeta, []Rejection) {
	var accepted []FileMeta
	var rejected []Rejection

	for _, file := range files {
		if err := v.Validate(file); err != nil {
			rejected = append(rejected, Rejection{
				FileName: file.Name,
				Reason:   rejectReasonOf(err),
				Err:      err,
			})
			continue
		}
		accepted = append(accepted, file)
	}

	return accepted, rejected
}

func rejectReasonOf(err error) types.RejectReason {
	if errors.Is(err, ErrAttachmentTooLarge) {
		return types.RejectReasonTooLarge
	}
	return types.RejectReasonUnsupportedType
}
