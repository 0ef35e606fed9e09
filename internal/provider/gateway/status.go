package gateway

import (
	"fmt"

	"github.com/sergejparity/e-invoice/internal/domain/model"
)

// NativeStatus is the gateway's seven-value message status vocabulary.
type NativeStatus string

const (
	StatusNew               NativeStatus = "New"
	StatusSent              NativeStatus = "Sent"
	StatusRejected          NativeStatus = "Rejected"
	StatusAccepted          NativeStatus = "Accepted"
	StatusDeliveryDelayed   NativeStatus = "DeliveryDelayed"
	StatusRecipientAccepted NativeStatus = "RecipientAccepted"
	StatusRecipientRejected NativeStatus = "RecipientRejected"
)

// MapNativeStatus collapses the gateway vocabulary onto the shared
// DeliveryState machine. An unrecognized value is a mapping error, reported
// as a status-query failure rather than a delivery rejection.
func MapNativeStatus(s NativeStatus) (model.DeliveryState, error) {
	switch s {
	case StatusNew, StatusSent, StatusDeliveryDelayed:
		return model.DeliveryInFlight, nil
	case StatusAccepted, StatusRecipientAccepted:
		return model.DeliveryDelivered, nil
	case StatusRejected, StatusRecipientRejected:
		return model.DeliveryFailed, nil
	default:
		return "", fmt.Errorf("unknown gateway message status %q", s)
	}
}
