package analysis

import "fmt"

// FailureKind classifies why a single task unit failed. Unit failures
// are expected outcomes, not exceptions: the aggregator absorbs them
// and substitutes defaults.
type FailureKind string

const (
	// TransportFailure covers unreachable service, timeouts, and
	// exhausted retries.
	TransportFailure FailureKind = "transport_failure"
	// ContentBlocked means the generation service refused the request
	// on safety grounds.
	ContentBlocked FailureKind = "content_blocked"
	// MalformedOutput means the response was not parseable JSON after
	// fence stripping.
	MalformedOutput FailureKind = "malformed_output"
	// SchemaViolation means the parsed output did not conform to the
	// unit's output schema.
	SchemaViolation FailureKind = "schema_violation"
)

// TaskError is the failure of one task unit.
type TaskError struct {
	Unit string
	Kind FailureKind
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Unit, e.Kind, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// OrchestrationError is the only failure that aborts report
// production entirely: the dispatch machinery itself broke, as
// opposed to an individual unit failing.
type OrchestrationError struct {
	Err error
}

func (e *OrchestrationError) Error() string {
	return fmt.Sprintf("orchestration failure: %v", e.Err)
}

func (e *OrchestrationError) Unwrap() error { return e.Err }
