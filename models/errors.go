package models

import "errors"

// ErrorKind is the user-facing classification of a failed request
type ErrorKind string

const (
	ErrNone                 ErrorKind = "none"
	ErrAppDetails           ErrorKind = "app_details_error"
	ErrInvalidSHA1          ErrorKind = "invalid_sha1"
	ErrDownloadNotAvailable ErrorKind = "download_not_available"
)

// DomainError is a terminal, renderable failure of the scrape pipeline
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// NewDomainError builds a DomainError of the given kind
func NewDomainError(kind ErrorKind, msg string) *DomainError {
	return &DomainError{Kind: kind, Message: msg}
}

// AsDomainError unwraps err to a DomainError if it carries one
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
