package errs

import (
	"errors"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNoItemsSelected  = errors.New("no items selected")
	ErrCapacityExceeded = errors.New("selection capacity exceeded")
	ErrItemUnavailable  = errors.New("item not available")
	ErrInvalidCode      = errors.New("invalid pickup code")
	ErrSessionNotFound  = errors.New("session not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)

type ValidationErrorResponse struct {
	Message string `json:"message"`
	Errors  struct {
		AdditionalProperties string `json:"additionalProperties"`
	} `json:"errors"`
}
