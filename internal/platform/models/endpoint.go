package models

const (
	EndpointStatusActive = "active"
	EndpointStatusPaused = "paused"
)

// Endpoint is an integrator URL that receives sample notifications.
type Endpoint struct {
	ID              string   `json:"id"`
	URL             string   `json:"url"`
	Kinds           []string `json:"kinds"` // JSON array in DB, empty means every kind
	Description     string   `json:"description,omitempty"`
	Status          string   `json:"status"`
	RetryCount      int      `json:"retry_count"`
	LastTriggeredAt int64    `json:"last_triggered_at,omitempty"`
	LastError       string   `json:"last_error,omitempty"`
	CreatedAt       int64    `json:"created_at"`
	UpdatedAt       int64    `json:"updated_at"`
}

// Subscribed reports whether the endpoint wants notifications of kind.
func (e *Endpoint) Subscribed(kind string) bool {
	if len(e.Kinds) == 0 {
		return true
	}
	for _, k := range e.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}
