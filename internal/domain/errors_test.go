package domain

import (
	"context"
	"errors"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := &ValidationError{
		Field:      "x",
		Value:      "NaN",
		Constraint: "finite",
		Message:    "ordinate must be a finite number",
	}

	// Test Error() output
	got := err.Error()
	if got == "" {
		t.Error("Error() should not return empty string")
	}

	// Test Unwrap()
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError should unwrap to ErrInvalidInput")
	}
}

func TestDefinitionError(t *testing.T) {
	tests := []struct {
		name string
		err  *DefinitionError
		want string
	}{
		{
			name: "with field",
			err:  &DefinitionError{Code: "EPSG:31466", Field: "base", Message: "required"},
			want: "invalid definition EPSG:31466: base: required",
		},
		{
			name: "without field",
			err:  &DefinitionError{Code: "EPSG:31466", Message: "broken"},
			want: "invalid definition EPSG:31466: broken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if !errors.Is(tt.err, ErrInvalidInput) {
				t.Error("DefinitionError should unwrap to ErrInvalidInput")
			}
		})
	}
}

func TestProjectionDomainError(t *testing.T) {
	err := &ProjectionDomainError{Method: "Orthographic", A: 0, B: 3.1, Reason: "far hemisphere"}

	if got := err.Error(); got != "Orthographic forward: (0, 3.1): far hemisphere" {
		t.Errorf("unexpected message %q", got)
	}
	if !errors.Is(err, ErrProjectionDomain) {
		t.Error("ProjectionDomainError should unwrap to ErrProjectionDomain")
	}

	var target *ProjectionDomainError
	wrapped := &TransformationError{Source: "EPSG:4326", Target: "AUTO:42003", Err: err}
	if !errors.As(wrapped, &target) {
		t.Error("TransformationError should expose the domain error")
	}
}

func TestBackingStoreError(t *testing.T) {
	tests := []struct {
		name string
		err  *BackingStoreError
	}{
		{
			name: "with code",
			err: &BackingStoreError{
				Operation: "lookup",
				Code:      "EPSG:31466",
				Err:       context.DeadlineExceeded,
			},
		},
		{
			name: "without code",
			err: &BackingStoreError{
				Operation: "list",
				Err:       errors.New("disk on fire"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() == "" {
				t.Error("Error() should not return empty string")
			}
			if !errors.Is(tt.err, ErrBackingStore) {
				t.Error("BackingStoreError should unwrap to ErrBackingStore")
			}
			if !errors.Is(tt.err, tt.err.Err) {
				t.Error("BackingStoreError should unwrap to the underlying error")
			}
		})
	}
}

func TestStorageError(t *testing.T) {
	err := &StorageError{
		Operation: "download",
		Key:       "definitions/dhdn.yaml",
		Err:       errors.New("network error"),
	}

	if err.Error() == "" {
		t.Error("Error() should not return empty string")
	}
	if !errors.Is(err, err.Err) {
		t.Error("Unwrap should return the underlying error")
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{
		Field:   "registry.lookup_timeout",
		Message: "must be positive",
	}

	got := err.Error()
	if got == "" {
		t.Error("Error() should not return empty string")
	}

	// Test Unwrap
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ConfigError should unwrap to ErrInvalidInput")
	}
}

func TestSentinelErrors(t *testing.T) {
	// Test that specific errors wrap base errors correctly
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"ErrCRSNotFound", ErrCRSNotFound, ErrNotFound},
		{"ErrUnsupportedProjection", ErrUnsupportedProjection, ErrUnsupported},
		{"ErrUnsupportedAutoID", ErrUnsupportedAutoID, ErrUnsupported},
		{"ErrUnsupportedCRSKind", ErrUnsupportedCRSKind, ErrUnsupported},
		{"ErrInvalidCode", ErrInvalidCode, ErrInvalidInput},
		{"ErrInvalidCoordinate", ErrInvalidCoordinate, ErrInvalidInput},
		{"ErrNotReady", ErrNotReady, ErrUnavailable},
		{"ErrRegistryClosed", ErrRegistryClosed, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.wantErr) {
				t.Errorf("%s should wrap %v", tt.name, tt.wantErr)
			}
		})
	}

	if errors.Is(ErrCRSNotFound, ErrUnsupported) {
		t.Error("not found must not be conflated with unsupported")
	}
}
