package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeApprovalRequested NotificationType = "approval_requested"
	NotificationTypeDocumentApproved  NotificationType = "document_approved"
	NotificationTypeDocumentDeclined  NotificationType = "document_declined"
	NotificationTypeQuotationAwarded  NotificationType = "quotation_awarded"
	NotificationTypeDeliveryReceived  NotificationType = "delivery_received"
	NotificationTypeInvoiceMismatch   NotificationType = "invoice_mismatch"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeApprovalRequested,
	NotificationTypeDocumentApproved,
	NotificationTypeDocumentDeclined,
	NotificationTypeQuotationAwarded,
	NotificationTypeDeliveryReceived,
	NotificationTypeInvoiceMismatch,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
