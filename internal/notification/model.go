package notification

import "time"

// NotificationType classifies what a notification is about
type NotificationType string

const (
	NotificationTypeGroupInvite   NotificationType = "GROUP_INVITE"
	NotificationTypeExpenseAdded  NotificationType = "EXPENSE_ADDED"
	NotificationTypeSplitAssigned NotificationType = "SPLIT_ASSIGNED"
	NotificationTypeSplitPaid     NotificationType = "SPLIT_PAID"
)

// Notification represents a stored notification row
type Notification struct {
	ID                int64            `json:"id"`
	RecipientID       int64            `json:"recipient_id"`
	Type              NotificationType `json:"type"`
	Message           string           `json:"message"`
	IsRead            bool             `json:"is_read"`
	RelatedEntityType *string          `json:"related_entity_type,omitempty"` // "GROUP", "EXPENSE", "SPLIT"
	RelatedEntityID   *int64           `json:"related_entity_id,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}
