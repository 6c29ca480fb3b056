// Package workitem decodes and checks inbound ingestion requests before any
// I/O is attempted on their behalf.
package workitem

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tailscale/hujson"

	"github.com/TemirB/invoice-processor/internal/domain"
)

// SupportedLocation is the only location type documents are fetched from.
const SupportedLocation = domain.LocationAzureBlob

type Kind string

const (
	EmptyWorkItem           Kind = "empty-workitem"
	InvalidWorkItem         Kind = "invalid-workitem"
	UnexpectedError         Kind = "unexpected-error"
	UnsupportedLocationType Kind = "unsupported-location-type"
	EmptyLocation           Kind = "empty-location"
	EmptyUserEmail          Kind = "empty-user-email"
)

// Rejection explains why a payload is not actionable.
type Rejection struct {
	Kind         Kind
	LocationType domain.LocationType
	Err          error
}

// Message is the fixed log line for the rejection.
func (r *Rejection) Message() string {
	switch r.Kind {
	case EmptyWorkItem:
		return "Empty Invoice Workitem."
	case InvalidWorkItem:
		return "Invalid Invoice Workitem."
	case UnexpectedError:
		return "Unexpected Error."
	case UnsupportedLocationType:
		return fmt.Sprintf("Unsupported data location type %s.", r.LocationType)
	case EmptyLocation:
		return "Empty data location."
	case EmptyUserEmail:
		return "Empty user email."
	default:
		return string(r.Kind)
	}
}

func (r *Rejection) Error() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: %v", r.Message(), r.Err)
	}
	return r.Message()
}

func (r *Rejection) Unwrap() error { return r.Err }

// Validate decodes payload and runs the checks in order, stopping at the
// first failure.
func Validate(payload []byte) (domain.WorkItem, *Rejection) {
	if len(payload) == 0 {
		return domain.WorkItem{}, &Rejection{Kind: EmptyWorkItem}
	}

	item, rej := decode(payload)
	if rej != nil {
		return domain.WorkItem{}, rej
	}

	if item.LocationType != SupportedLocation {
		return domain.WorkItem{}, &Rejection{Kind: UnsupportedLocationType, LocationType: item.LocationType}
	}
	if item.Location == "" {
		return domain.WorkItem{}, &Rejection{Kind: EmptyLocation}
	}
	if item.UserEmail == "" {
		return domain.WorkItem{}, &Rejection{Kind: EmptyUserEmail}
	}
	return item, nil
}

func decode(payload []byte) (item domain.WorkItem, rej *Rejection) {
	defer func() {
		if r := recover(); r != nil {
			item = domain.WorkItem{}
			rej = &Rejection{Kind: UnexpectedError, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	// Standardize rewrites in place, keep the caller's buffer intact.
	std, err := hujson.Standardize(append([]byte(nil), payload...))
	if err != nil {
		return domain.WorkItem{}, &Rejection{Kind: InvalidWorkItem, Err: err}
	}
	if err := json.Unmarshal(std, &item); err != nil {
		var invalid *json.InvalidUnmarshalError
		if errors.As(err, &invalid) {
			return domain.WorkItem{}, &Rejection{Kind: UnexpectedError, Err: err}
		}
		return domain.WorkItem{}, &Rejection{Kind: InvalidWorkItem, Err: err}
	}
	return item, nil
}
