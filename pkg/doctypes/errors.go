package doctypes

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures in the attachment and generation pipeline.
type ErrorKind int

const (
	// KindGeneric is any remote failure without a more specific kind.
	KindGeneric ErrorKind = iota
	// KindClassification means the artifact type is not supported.
	KindClassification
	// KindDecode means an image or text artifact could not be decoded.
	KindDecode
	// KindAuthentication means the credential is missing or rejected.
	KindAuthentication
	// KindQuotaExceeded means the remote service is rate or quota limiting.
	KindQuotaExceeded
	// KindCompatibility means the installed client cannot perform the operation.
	KindCompatibility
	// KindUnsupportedFormat means the remote service rejected the content type.
	KindUnsupportedFormat
	// KindStreamExtraction means a fragment could not be interpreted.
	KindStreamExtraction
	// KindCleanup means a remote delete failed.
	KindCleanup
)

var errorKindNames = map[ErrorKind]string{
	KindGeneric:           "Generic",
	KindClassification:    "ClassificationError",
	KindDecode:            "DecodeError",
	KindAuthentication:    "AuthenticationError",
	KindQuotaExceeded:     "QuotaExceeded",
	KindCompatibility:     "CompatibilityError",
	KindUnsupportedFormat: "UnsupportedFormatError",
	KindStreamExtraction:  "StreamExtractionError",
	KindCleanup:           "CleanupError",
}

// String returns the taxonomy name of the kind.
func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a classified failure. Op names the operation that failed.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError creates a classified error for the given operation.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so errors.Is(err, &Error{Kind: KindDecode}) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first classified error in err's chain,
// or KindGeneric when there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindGeneric
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
