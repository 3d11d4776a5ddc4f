package contract

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateContact   = errors.New("contact already registered")
	ErrStoreUnavailable   = errors.New("inquiry store unavailable")
	ErrGatewayUnavailable = errors.New("fallback responder unavailable")
)
