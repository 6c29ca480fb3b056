package domain

import "encoding/json"

// Order is one customer purchase extracted from an invoice document.
type Order struct {
	OrderNumber     string  `json:"orderNumber"`
	OrderDate       string  `json:"orderDate"`
	CustomerName    string  `json:"customerName"`
	DeliveryAddress string  `json:"deliveryAddress"`
	OrderTotal      float64 `json:"orderTotal"`

	// Raw is the order object as it appeared in the document, compacted.
	// Fields that were present but null stay null here.
	Raw json.RawMessage `json:"-"`
}
