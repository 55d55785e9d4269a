// Package errors defines the transport-agnostic error taxonomy shared by
// every stage of the pipeline. Components return these types
// directly; the orchestrator and the API layer switch on them with
// errors.As rather than string matching.
package errors

import "fmt"

// Kind discriminates the error taxonomy for callers that need a stable
// textual label without reflecting on the concrete type.
type Kind string

const (
	KindInvalidIntent        Kind = "invalid_intent"
	KindUnsatisfiable        Kind = "unsatisfiable"
	KindAddressSpaceExhausted Kind = "address_space_exhausted"
	KindStageTimeout         Kind = "stage_timeout"
	KindPersistenceError     Kind = "persistence_error"
	KindCancelled            Kind = "cancelled"
)

// InvalidIntentError reports an intent field outside its domain.
type InvalidIntentError struct {
	Field string
	Value interface{}
	Hint  string
}

func (e *InvalidIntentError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid intent: field %q has value %v (%s)", e.Field, e.Value, e.Hint)
	}
	return fmt.Sprintf("invalid intent: field %q has value %v", e.Field, e.Value)
}

func (e *InvalidIntentError) Kind() Kind { return KindInvalidIntent }

// UnsatisfiableError reports that a pattern + redundancy combination cannot
// be met within the pattern's link budget.
type UnsatisfiableError struct {
	Pattern    string
	Redundancy string
	Reason     string
}

func (e *UnsatisfiableError) Error() string {
	return fmt.Sprintf("unsatisfiable: pattern %q cannot reach redundancy %q: %s", e.Pattern, e.Redundancy, e.Reason)
}

func (e *UnsatisfiableError) Kind() Kind { return KindUnsatisfiable }

// AddressSpaceExhaustedError reports that the allocator ran out of room.
type AddressSpaceExhaustedError struct {
	Range string
}

func (e *AddressSpaceExhaustedError) Error() string {
	return fmt.Sprintf("address space exhausted: no subnets remain in %s", e.Range)
}

func (e *AddressSpaceExhaustedError) Kind() Kind { return KindAddressSpaceExhausted }

// StageTimeoutError reports that a pipeline stage exceeded its deadline.
type StageTimeoutError struct {
	Stage   string
	Elapsed string
}

func (e *StageTimeoutError) Error() string {
	return fmt.Sprintf("stage %q timed out after %s", e.Stage, e.Elapsed)
}

func (e *StageTimeoutError) Kind() Kind { return KindStageTimeout }

// PersistenceError wraps a history-store I/O failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Kind() Kind { return KindPersistenceError }

// CancelledError reports cooperative cancellation at a stage boundary.
type CancelledError struct {
	Stage string
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("pipeline cancelled before stage %q", e.Stage)
}

func (e *CancelledError) Kind() Kind { return KindCancelled }

// Hint returns the minimal corrective hint associated with an error, used by
// the transport layer to build user-visible messages. Returns ""
// when no specific hint applies.
func Hint(err error) string {
	switch e := err.(type) {
	case *InvalidIntentError:
		switch e.Field {
		case "site_count":
			return "lower site_count into [2, 500]"
		case "pattern":
			return "choose one of: full-mesh, hub-spoke, ring, tree, leaf-spine, hybrid"
		case "protocol":
			return "only ospf is implemented; lower protocol accordingly"
		}
		return e.Hint
	case *UnsatisfiableError:
		return "loosen redundancy or choose a different pattern"
	case *StageTimeoutError:
		return "increase the stage deadline or reduce site_count"
	case *AddressSpaceExhaustedError:
		return "reduce site_count; the allocator range is exhausted"
	}
	return ""
}
