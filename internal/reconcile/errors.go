package reconcile

import (
	"fmt"

	"github.com/wheecious/kener/pkg/types"
)

// ValidationError reports a desired monitor definition the Kener API would
// reject. It is raised before any request is made.
type ValidationError struct {
	Field       string
	MonitorType types.MonitorType
}

func (e *ValidationError) Error() string {
	if e.MonitorType == "" {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("%s is required for %s", e.Field, e.MonitorType)
}

// DecodeError reports a remote record whose stored type_data cannot be
// parsed. It aborts the reconciliation: a garbled record must never read as
// matching the desired state.
type DecodeError struct {
	Tag         string
	MonitorType types.MonitorType
	Err         error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("monitor %s: remote type_data unreadable: %v", e.Tag, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
