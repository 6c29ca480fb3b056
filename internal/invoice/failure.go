package invoice

import "fmt"

// FailureKind classifies why one segment could not become an order.
type FailureKind string

const (
	InvalidOrderText    FailureKind = "invalid-order-text"
	InvalidOrderJSON    FailureKind = "invalid-order-json"
	MissingOrderNumber  FailureKind = "missing-order-number"
	UnexpectedException FailureKind = "unexpected-exception"
)

func (k FailureKind) Message() string {
	switch k {
	case InvalidOrderText:
		return "Invalid Orders Text."
	case InvalidOrderJSON:
		return "Invalid Orders Json."
	case MissingOrderNumber:
		return "Missing Order Number."
	case UnexpectedException:
		return "Unexpected error."
	default:
		return ""
	}
}

// DecodeError is returned by DecodeOrder. Err holds the underlying cause, if any.
type DecodeError struct {
	Kind FailureKind
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// SegmentFailure records a skipped segment.
type SegmentFailure struct {
	Segment int
	Kind    FailureKind
	Err     error
}
