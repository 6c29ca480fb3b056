package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

type LocationType int

const (
	LocationUnknown LocationType = iota
	LocationAzureBlob
	LocationAwsS3
	LocationLocalFile
)

var locationNames = [...]string{"Unknown", "AzureBlob", "AwsS3", "LocalFile"}

func (t LocationType) String() string {
	if t >= 0 && int(t) < len(locationNames) {
		return locationNames[t]
	}
	return strconv.Itoa(int(t))
}

func ParseLocationType(s string) (LocationType, error) {
	for i, name := range locationNames {
		if strings.EqualFold(name, s) {
			return LocationType(i), nil
		}
	}
	return LocationUnknown, fmt.Errorf("unknown data location type %q", s)
}

func (t LocationType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts either the ordinal or the name of the type.
func (t *LocationType) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := ParseLocationType(s)
		if err != nil {
			return err
		}
		*t = v
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = LocationType(n)
	return nil
}

// WorkItem is one ingestion request received from the queue.
type WorkItem struct {
	CorrelationID string       `json:"correlationId"`
	TransactionID uuid.UUID    `json:"transactionId"`
	UserEmail     string       `json:"userEmail"`
	LocationType  LocationType `json:"dataLocationType"`
	Location      string       `json:"dataLocation"`
}
