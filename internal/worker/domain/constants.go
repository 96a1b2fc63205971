package domain

// Delivery status of a notification row. A claimed row is "sending" until the
// worker records the outcome; the sweeper returns abandoned claims to "pending".
const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusSending   = "sending"
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusFailed    = "failed"
)
