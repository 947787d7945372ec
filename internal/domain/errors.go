package domain

import "errors"

var (
	// ErrNotFound is returned when a stored record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoImageGenerated is returned when the provider returns no candidates.
	ErrNoImageGenerated = errors.New("No image generated")
	// ErrNoImageInResponse is returned when the candidate carries no image part.
	ErrNoImageInResponse = errors.New("No image in response")
)

// ValidationError is a caller mistake, reported immediately and never retried.
type ValidationError struct {
	Message string
}

// NewValidationError creates a validation error.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProviderCategory groups provider failures into user-facing classes.
type ProviderCategory string

const (
	ProviderOverloaded        ProviderCategory = "overloaded"
	ProviderInvalidCredential ProviderCategory = "invalid_credential"
	ProviderGeneric           ProviderCategory = "generic"
)

// ProviderError is a normalized failure reported by the model provider.
type ProviderError struct {
	Category ProviderCategory
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// DocumentOp is the file operation a DocumentError failed in.
type DocumentOp string

const (
	DocumentRead  DocumentOp = "read"
	DocumentWrite DocumentOp = "save"
)

// DocumentError is an I/O failure on a server document. Its message names
// the document, never the path.
type DocumentError struct {
	Op   DocumentOp
	Name string
	Err  error
}

func (e *DocumentError) Error() string {
	return "Failed to " + string(e.Op) + " " + e.Name
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}
