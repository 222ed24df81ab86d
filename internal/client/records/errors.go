package records

import "fmt"

// LocalStorageError is returned when the local mirror cannot be read or written.
// It is the only failure the service reports for create, update and delete;
// remote outages are absorbed.
type LocalStorageError struct {
	Err  error
	Kind string // entity kind, e.g. "product"
	Op   string // create | update | delete | reconcile
}

// Error implements error.
func (e *LocalStorageError) Error() string {
	return fmt.Sprintf("%s %s: local storage failure: %v", e.Kind, e.Op, e.Err)
}

// Unwrap returns the underlying storage error.
func (e *LocalStorageError) Unwrap() error {
	return e.Err
}
