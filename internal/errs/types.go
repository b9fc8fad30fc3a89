package errs

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

type ValidationError struct {
	ErrorMessage
}

// CacheError wraps failures of the local preference mirror.
type CacheError struct {
	ErrorMessage
	Operation string // "open", "read", "write", "delete"
	Err       error
}

// GatewayError wraps failures of the upstream preference API. Transient
// failures (5xx, timeouts) may be presented differently to the user but are
// never retried automatically.
type GatewayError struct {
	ErrorMessage
	Operation string // "load", "save", "updateLayout", "reset"
	Status    int    // HTTP status, 0 when the request never completed
	Transient bool
	Err       error
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewCacheError(operation, message string, err error) *CacheError {
	return &CacheError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
		Err:          err,
	}
}

func NewGatewayError(operation, message string, status int, err error) *GatewayError {
	return &GatewayError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
		Status:       status,
		Transient:    status == 0 || status >= 500,
		Err:          err,
	}
}

func (e *CacheError) Unwrap() error   { return e.Err }
func (e *GatewayError) Unwrap() error { return e.Err }
