package types

// ErrorBody is the JSON body written for every failed request.
type ErrorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

type StoreEnvelope struct {
	Success bool `json:"success"`
	Store   any  `json:"store"`
}

type ProductEnvelope struct {
	Success bool `json:"success"`
	Product any  `json:"product"`
}

type MessageEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// OrderAck acknowledges a placed order.
type OrderAck struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	OrderID string `json:"orderId,omitempty"`
}

type OrderEnvelope struct {
	Success bool `json:"success"`
	Order   any  `json:"order"`
}
