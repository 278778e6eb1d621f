package services

import "errors"

type ErrorCode string

const (
	ErrorInvalid           ErrorCode = "invalid"
	ErrorUnauthorized      ErrorCode = "unauthorized"
	ErrorNotFound          ErrorCode = "not_found"
	ErrorEntitlementDenied ErrorCode = "entitlement_denied"
	ErrorGenerationFailed  ErrorCode = "generation_failed"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error  { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewNotFoundError(msg string) error { return &ServiceError{Code: ErrorNotFound, Message: msg} }

func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

func NewEntitlementDeniedError(msg string) error {
	return &ServiceError{Code: ErrorEntitlementDenied, Message: msg}
}

func NewGenerationFailedError(msg string) error {
	return &ServiceError{Code: ErrorGenerationFailed, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
