package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidationFailed
	KindInvalidFileType
	KindFileTooLarge
	KindMissingAttachment
	KindNotFound
	KindPersistenceFailed
	KindSyncFailed
	KindUnauthorized
	KindForbidden
)

var kindNames = map[Kind]string{
	KindUnknown:           "Unknown",
	KindValidationFailed:  "ValidationFailed",
	KindInvalidFileType:   "InvalidFileType",
	KindFileTooLarge:      "FileTooLarge",
	KindMissingAttachment: "MissingAttachment",
	KindNotFound:          "NotFound",
	KindPersistenceFailed: "PersistenceFailed",
	KindSyncFailed:        "SyncFailed",
	KindUnauthorized:      "Unauthorized",
	KindForbidden:         "Forbidden",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// HTTPStatus is the status code a handler replies with for an error of this kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidationFailed, KindMissingAttachment:
		return http.StatusBadRequest
	case KindInvalidFileType:
		return http.StatusUnsupportedMediaType
	case KindFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// ClientCaused reports whether the caller can fix the request and retry.
func (k Kind) ClientCaused() bool {
	return k.HTTPStatus() < http.StatusInternalServerError
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind so callers can write
// errors.Is(err, apperror.NotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil && len(t.Fields) == 0
}

// Sentinels usable with errors.Is.
var (
	ValidationFailed  = &Error{Kind: KindValidationFailed}
	InvalidFileType   = &Error{Kind: KindInvalidFileType}
	FileTooLarge      = &Error{Kind: KindFileTooLarge}
	MissingAttachment = &Error{Kind: KindMissingAttachment}
	NotFound          = &Error{Kind: KindNotFound}
	PersistenceFailed = &Error{Kind: KindPersistenceFailed}
	SyncFailed        = &Error{Kind: KindSyncFailed}
	Unauthorized      = &Error{Kind: KindUnauthorized}
	Forbidden         = &Error{Kind: KindForbidden}
)

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(err error, kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(msg string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidationFailed, Message: msg, Fields: fields}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// FieldsOf returns the field errors carried by err, if any.
func FieldsOf(err error) []FieldError {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// MessageOf returns the client facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal error"
}
