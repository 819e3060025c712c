package domain

import (
	"errors"
	"fmt"
)

// Base error types (sentinel errors).
var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnsupported          = errors.New("unsupported")
	ErrInternal             = errors.New("internal error")
	ErrUnavailable          = errors.New("service unavailable")
	ErrProjectionDomain     = errors.New("outside projection domain")
	ErrNoTransformationPath = errors.New("no transformation path")
	ErrBackingStore         = errors.New("backing store failure")
)

// Specific errors.
var (
	ErrCRSNotFound           = fmt.Errorf("crs: %w", ErrNotFound)
	ErrUnsupportedProjection = fmt.Errorf("projection method: %w", ErrUnsupported)
	ErrUnsupportedAutoID     = fmt.Errorf("auto crs id: %w", ErrUnsupported)
	ErrUnsupportedCRSKind    = fmt.Errorf("crs kind: %w", ErrUnsupported)
	ErrInvalidCode           = fmt.Errorf("crs code: %w", ErrInvalidInput)
	ErrInvalidCoordinate     = fmt.Errorf("coordinate: %w", ErrInvalidInput)
	ErrNotReady              = fmt.Errorf("service not ready: %w", ErrUnavailable)
	ErrRegistryClosed        = fmt.Errorf("registry closed: %w", ErrUnavailable)
)

// ValidationError represents a detailed validation error.
type ValidationError struct {
	Field      string      // Field that failed validation
	Value      interface{} // The invalid value
	Constraint string      // The constraint that was violated
	Message    string      // Human-readable message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v, constraint: %s)",
		e.Field, e.Message, e.Value, e.Constraint)
}

// Unwrap returns the underlying error type.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// DefinitionError reports a malformed raw CRS definition.
type DefinitionError struct {
	Code    string // CRS code of the definition
	Field   string // Offending field
	Message string // Human-readable message
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid definition %s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("invalid definition %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error type.
func (e *DefinitionError) Unwrap() error {
	return ErrInvalidInput
}

// ProjectionDomainError is returned when a coordinate lies outside the region in
// which a projection's closed-form formulas are valid.
type ProjectionDomainError struct {
	Method  string  // Projection method name
	A       float64 // Latitude (forward) or easting (inverse)
	B       float64 // Longitude (forward) or northing (inverse)
	Inverse bool    // Whether the inverse direction failed
	Reason  string  // Short description
}

// Error implements the error interface.
func (e *ProjectionDomainError) Error() string {
	if e.Inverse {
		return fmt.Sprintf("%s inverse: (%g, %g): %s", e.Method, e.A, e.B, e.Reason)
	}
	return fmt.Sprintf("%s forward: (%g, %g): %s", e.Method, e.A, e.B, e.Reason)
}

// Unwrap returns the underlying error type.
func (e *ProjectionDomainError) Unwrap() error {
	return ErrProjectionDomain
}

// TransformationError represents a failure to build or apply a transformation path.
type TransformationError struct {
	Source string // Source CRS code
	Target string // Target CRS code
	Err    error  // Underlying error
}

// Error implements the error interface.
func (e *TransformationError) Error() string {
	return fmt.Sprintf("transformation %s -> %s: %v", e.Source, e.Target, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransformationError) Unwrap() error {
	return e.Err
}

// BackingStoreError represents a failure of the external definition source.
type BackingStoreError struct {
	Operation string // Operation that failed (lookup, list, etc.)
	Code      string // CRS code
	Err       error  // Underlying error
}

// Error implements the error interface.
func (e *BackingStoreError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backing store error during %s for %s: %v",
			e.Operation, e.Code, e.Err)
	}
	return fmt.Sprintf("backing store error during %s: %v", e.Operation, e.Err)
}

// Unwrap returns both the backing-store sentinel and the underlying error.
func (e *BackingStoreError) Unwrap() []error {
	return []error{ErrBackingStore, e.Err}
}

// StorageError represents an error during object storage operations.
type StorageError struct {
	Operation string // Operation that failed (download, list, etc.)
	Key       string // Object key
	Err       error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage error during %s for %s: %v",
			e.Operation, e.Key, e.Err)
	}
	return fmt.Sprintf("storage error during %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string // Configuration field
	Message string // Error message
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error type.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidInput
}
