package model

// DeliveryState is the shared vocabulary every backend's native status
// vocabulary collapses onto. Providers report it; the queue maps it to a
// local JobState.
type DeliveryState string

const (
	// DeliveryPending indicates the backend has not yet started processing.
	DeliveryPending DeliveryState = "pending"
	// DeliveryInFlight indicates the message is still moving through the backend.
	DeliveryInFlight DeliveryState = "in_flight"
	// DeliveryDelivered indicates the recipient accepted the message.
	DeliveryDelivered DeliveryState = "delivered"
	// DeliveryFailed indicates the backend or recipient rejected the message.
	DeliveryFailed DeliveryState = "failed"
)

// Valid returns true if the DeliveryState is one of the known values.
func (s DeliveryState) Valid() bool {
	return s == DeliveryPending || s == DeliveryInFlight ||
		s == DeliveryDelivered || s == DeliveryFailed
}

// Terminal returns true when no further state change is expected.
func (s DeliveryState) Terminal() bool {
	return s == DeliveryDelivered || s == DeliveryFailed
}

// DeliveryStatus is a provider-reported snapshot for one transmission.
// It is consumed immediately to update a JobRecord and never stored verbatim.
type DeliveryStatus struct {
	TransmissionID string        `json:"transmission_id"`
	State          DeliveryState `json:"state"`
	Message        string        `json:"message,omitempty"`
}
