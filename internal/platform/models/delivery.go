package models

const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusFailed    = "failed"
)

// Delivery records one signed sample sent to an endpoint. Payload and
// Signature are stored so retries resend the exact same bytes.
type Delivery struct {
	ID           string `json:"id"`
	EndpointID   string `json:"endpoint_id"`
	Kind         string `json:"kind"`
	SubjectID    string `json:"subject_id"`
	Payload      string `json:"bt_payload"`
	Signature    string `json:"bt_signature"`
	Status       string `json:"status"`
	Attempts     int    `json:"attempts"`
	ResponseCode int    `json:"response_code,omitempty"`
	LastError    string `json:"last_error,omitempty"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}
