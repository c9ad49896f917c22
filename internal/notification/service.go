package notification

import (
	"context"
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
)

// Service handles notification business logic
type Service struct {
	repo *Repository
}

// NewService creates a new notification service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// GetByID retrieves a notification by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Notification, error) {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notification == nil {
		return nil, ErrNotificationNotFound
	}
	return notification, nil
}

// ListByRecipientID retrieves all notifications for a user
func (s *Service) ListByRecipientID(ctx context.Context, recipientID int64, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByRecipientID(ctx, recipientID, perPage, offset, unreadOnly)
}

// MarkAsRead marks a notification as read
func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) error {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if notification == nil {
		return ErrNotificationNotFound
	}
	if notification.RecipientID != userID {
		return ErrNotRecipient
	}

	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read for a user
func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// Helper methods for creating specific notification types. These back the
// Notifier interfaces of the group and expense services.

// NotifyGroupInvite creates a notification for a group invitation
func (s *Service) NotifyGroupInvite(ctx context.Context, recipientID int64, groupName string, groupID int64) error {
	message := "You have been invited to join " + groupName
	entityType := "GROUP"
	_, err := s.repo.Create(ctx, recipientID, NotificationTypeGroupInvite, message, &entityType, &groupID)
	return err
}

// NotifyExpenseAdded creates a notification for a new expense. Amount is a
// formatted decimal string in the expense currency.
func (s *Service) NotifyExpenseAdded(ctx context.Context, recipientID int64, payerName, amount string, expenseID int64) error {
	message := fmt.Sprintf("%s added an expense of %s that includes you", payerName, amount)
	entityType := "EXPENSE"
	_, err := s.repo.Create(ctx, recipientID, NotificationTypeExpenseAdded, message, &entityType, &expenseID)
	return err
}

// NotifySplitAssigned creates a notification for a share assigned to a user
func (s *Service) NotifySplitAssigned(ctx context.Context, recipientID int64, amount string, splitID int64) error {
	message := fmt.Sprintf("Your share is %s", amount)
	entityType := "SPLIT"
	_, err := s.repo.Create(ctx, recipientID, NotificationTypeSplitAssigned, message, &entityType, &splitID)
	return err
}

// NotifySplitPaid creates a notification when someone marks their split as paid
func (s *Service) NotifySplitPaid(ctx context.Context, recipientID int64, username string, splitID int64) error {
	message := username + " marked their share as paid"
	entityType := "SPLIT"
	_, err := s.repo.Create(ctx, recipientID, NotificationTypeSplitPaid, message, &entityType, &splitID)
	return err
}
