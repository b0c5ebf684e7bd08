package teamstore

import "errors"

// Error kinds surfaced across the store. Duplicate submissions, cooldown
// suppression, retry exhaustion, and malformed records are contract
// behaviors, not failures, and are never returned to callers as errors.
var (
	ErrUnsafeIdentifier = errors.New("unsafe identifier")
	ErrSchema           = errors.New("schema validation failed")
	ErrUnknownType      = errors.New("unknown message type")
	ErrLockFailed       = errors.New("failed to acquire lock")
	ErrNotFound         = errors.New("not found")
	ErrBootstrap        = errors.New("team or data root not initialized")
	ErrWrongRecipient   = errors.New("message addressed to a different agent")
	ErrInvalidCursor    = errors.New("cursor not found in log")
)

// IdentifierError carries the offending field and value for callers that
// want to render a precise message; it always unwraps to ErrUnsafeIdentifier.
type IdentifierError struct {
	Field string
	Value string
}

func (e *IdentifierError) Error() string {
	return "unsafe identifier for " + e.Field + ": " + e.Value
}

func (e *IdentifierError) Is(target error) bool {
	return target == ErrUnsafeIdentifier
}

// SchemaError reports which envelope/event field failed validation.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return "schema: " + e.Reason
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}
