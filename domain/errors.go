package domain

import (
	"errors"
	"fmt"
)

// Registration stages, in write order.
const (
	StageProduct      = "product"
	StageHistory      = "history"
	StageAISuggestion = "ai_suggestion"
	StageImage        = "image"
	StageCommit       = "commit"
)

var (
	ErrCatalogNotFound = errors.New("product not found in catalog")
	ErrTransport       = errors.New("external service unreachable")
	ErrSchema          = errors.New("unexpected response shape from external service")
	ErrModelRefusal    = errors.New("model reported input as not applicable")
	ErrPersistence     = errors.New("failed to persist record")
)

// ModelRefusalError carries the model's own explanation of why the input was
// not usable. It is an expected outcome, not an anomaly.
type ModelRefusalError struct {
	Reason string
}

func (e *ModelRefusalError) Error() string {
	return fmt.Sprintf("%s: %s", ErrModelRefusal.Error(), e.Reason)
}

func (e *ModelRefusalError) Is(target error) bool {
	return target == ErrModelRefusal
}

// PersistenceError names the write that failed so callers know the partial state.
type PersistenceError struct {
	Stage string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to insert %s: %v", e.Stage, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func TransportError(service string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTransport, service, err)
}

func SchemaError(service string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSchema, service, err)
}
