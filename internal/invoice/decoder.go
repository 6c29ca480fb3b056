package invoice

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/TemirB/invoice-processor/internal/domain"
)

var (
	errNullOrder = errors.New("order payload is null")
	errNullTotal = errors.New("orderTotal is null")
)

// totalField catches a literal null orderTotal, which decoding into a
// float64 would otherwise turn into 0.
type totalField struct {
	OrderTotal json.RawMessage `json:"orderTotal"`
}

// DecodeOrder turns one segment into an order. Decoding is all-or-nothing:
// on failure the returned order is always the zero value.
func DecodeOrder(seg Segment) (order domain.Order, derr *DecodeError) {
	defer func() {
		if r := recover(); r != nil {
			order = domain.Order{}
			derr = &DecodeError{Kind: UnexpectedException, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	text := strings.Join(seg.Lines, "")
	if strings.TrimSpace(text) == "" {
		return domain.Order{}, &DecodeError{Kind: InvalidOrderText}
	}

	// hujson tolerates trailing commas (and comments) and rewrites them away.
	payload, err := hujson.Standardize([]byte(text))
	if err != nil {
		return domain.Order{}, &DecodeError{Kind: InvalidOrderJSON, Err: err}
	}
	if bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
		return domain.Order{}, &DecodeError{Kind: InvalidOrderJSON, Err: errNullOrder}
	}

	var o domain.Order
	if err := json.Unmarshal(payload, &o); err != nil {
		if isStructural(err) {
			return domain.Order{}, &DecodeError{Kind: InvalidOrderJSON, Err: err}
		}
		return domain.Order{}, &DecodeError{Kind: UnexpectedException, Err: err}
	}
	var total totalField
	if err := json.Unmarshal(payload, &total); err != nil {
		return domain.Order{}, &DecodeError{Kind: UnexpectedException, Err: err}
	}
	if bytes.Equal(total.OrderTotal, []byte("null")) {
		return domain.Order{}, &DecodeError{Kind: InvalidOrderJSON, Err: errNullTotal}
	}
	if o.OrderNumber == "" {
		return domain.Order{}, &DecodeError{Kind: MissingOrderNumber}
	}

	var raw bytes.Buffer
	if err := json.Compact(&raw, payload); err != nil {
		return domain.Order{}, &DecodeError{Kind: UnexpectedException, Err: err}
	}
	o.Raw = raw.Bytes()
	return o, nil
}

func isStructural(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
