package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrEmptyPartition = errors.New("empty partition key")
	ErrEmptyRowKey    = errors.New("empty row key")
)

// OrderRecord is the storage-bound projection of an Order.
// PartitionKey is the requester email, RowKey the order number.
type OrderRecord struct {
	PartitionKey string
	RowKey       string
	Payload      []byte
	Order        Order
}

func NewOrderRecord(userEmail string, order Order) (OrderRecord, error) {
	if userEmail == "" {
		return OrderRecord{}, ErrEmptyPartition
	}
	if order.OrderNumber == "" {
		return OrderRecord{}, ErrEmptyRowKey
	}
	payload := []byte(order.Raw)
	if len(payload) == 0 {
		var err error
		if payload, err = json.Marshal(order); err != nil {
			return OrderRecord{}, fmt.Errorf("encode order %s: %w", order.OrderNumber, err)
		}
	}
	order.Raw = payload
	return OrderRecord{
		PartitionKey: userEmail,
		RowKey:       order.OrderNumber,
		Payload:      payload,
		Order:        order,
	}, nil
}

// Key renders the record identity for logs and error messages. It is not
// unique: order numbers may contain "/", so never use it as a lookup key.
func (r OrderRecord) Key() string {
	return RecordKey(r.PartitionKey, r.RowKey)
}

func RecordKey(partition, row string) string {
	return partition + "/" + row
}

// DecodePayload restores the order from the stored payload.
func (r OrderRecord) DecodePayload() (Order, error) {
	var o Order
	if err := json.Unmarshal(r.Payload, &o); err != nil {
		return Order{}, err
	}
	o.Raw = r.Payload
	return o, nil
}
