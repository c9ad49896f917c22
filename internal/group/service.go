package group

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Common errors
var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberAlreadyExists = errors.New("user is already a member of this group")
	ErrInvalidGroup        = errors.New("invalid group")
)

// Notifier delivers group invite notifications
type Notifier interface {
	NotifyGroupInvite(ctx context.Context, recipientID int64, groupName string, groupID int64) error
}

// Service handles group business logic
type Service struct {
	repo     *Repository
	notifier Notifier
}

// NewService creates a new group service
func NewService(repo *Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// Create creates a new group and adds the creator as a joined admin
func (s *Service) Create(ctx context.Context, creatorID int64, req *CreateGroupRequest) (*Group, error) {
	group, err := buildGroup(req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, group); err != nil {
		return nil, err
	}

	// TODO: Should wrap group creation and admin membership in a transaction
	_, err = s.repo.AddMember(ctx, group.ID, &AddMemberRequest{
		UserID: creatorID,
		Role:   MemberRoleAdmin,
	})
	if err != nil {
		return nil, err
	}

	_, err = s.repo.UpdateMember(ctx, group.ID, creatorID, &UpdateMemberRequest{
		Status: statusPtr(MemberStatusJoined),
	})
	if err != nil {
		return nil, err
	}

	return group, nil
}

// buildGroup validates the request and assembles the model
func buildGroup(req *CreateGroupRequest) (*Group, error) {
	if req.Name == "" || len(req.Name) > 100 {
		return nil, errors.Join(ErrInvalidGroup, errors.New("name must be 1-100 characters"))
	}

	group := &Group{
		Name:        req.Name,
		Description: req.Description,
		Destination: req.Destination,
	}

	var err error
	group.StartDate, err = parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	group.EndDate, err = parseDate(req.EndDate)
	if err != nil {
		return nil, err
	}

	if group.StartDate != nil && group.EndDate != nil && group.EndDate.Before(*group.StartDate) {
		return nil, errors.Join(ErrInvalidGroup, errors.New("end date must not precede start date"))
	}

	return group, nil
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, errors.Join(ErrInvalidGroup, errors.New("dates must be YYYY-MM-DD"))
	}
	return &t, nil
}

// GetByID retrieves a group by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Group, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// GetByIDWithMembers retrieves a group with all its members
func (s *Service) GetByIDWithMembers(ctx context.Context, id int64) (*Group, []*GroupMember, error) {
	group, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.repo.GetMembers(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return group, members, nil
}

// ListByUserID retrieves all groups for a user
func (s *Service) ListByUserID(ctx context.Context, userID int64, page, perPage int) ([]*Group, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByUserID(ctx, userID, perPage, offset)
}

// Update modifies an existing group
func (s *Service) Update(ctx context.Context, id int64, req *UpdateGroupRequest) (*Group, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrGroupNotFound
	}

	if req.Name != nil {
		if *req.Name == "" || len(*req.Name) > 100 {
			return nil, errors.Join(ErrInvalidGroup, errors.New("name must be 1-100 characters"))
		}
		existing.Name = *req.Name
	}
	if req.Description != nil {
		existing.Description = req.Description
	}
	if req.Destination != nil {
		existing.Destination = req.Destination
	}
	if req.StartDate != nil {
		if existing.StartDate, err = parseDate(req.StartDate); err != nil {
			return nil, err
		}
	}
	if req.EndDate != nil {
		if existing.EndDate, err = parseDate(req.EndDate); err != nil {
			return nil, err
		}
	}
	if existing.StartDate != nil && existing.EndDate != nil && existing.EndDate.Before(*existing.StartDate) {
		return nil, errors.Join(ErrInvalidGroup, errors.New("end date must not precede start date"))
	}

	updated, err := s.repo.Update(ctx, id, existing)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrGroupNotFound
	}
	return updated, nil
}

// Delete removes a group
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// AddMember invites a user to a group
func (s *Service) AddMember(ctx context.Context, groupID int64, req *AddMemberRequest) (*GroupMember, error) {
	group, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	existing, err := s.repo.GetMember(ctx, groupID, req.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrMemberAlreadyExists
	}

	member, err := s.repo.AddMember(ctx, groupID, req)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyGroupInvite(ctx, req.UserID, group.Name, groupID); err != nil {
			slog.Error("failed to notify invited user", "user_id", req.UserID, "group_id", groupID, "error", err)
		}
	}

	return member, nil
}

// GetMembers retrieves all members of a group
func (s *Service) GetMembers(ctx context.Context, groupID int64) ([]*GroupMember, error) {
	group, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	return s.repo.GetMembers(ctx, groupID)
}

// UpdateMember updates a member's status or role
func (s *Service) UpdateMember(ctx context.Context, groupID, userID int64, req *UpdateMemberRequest) (*GroupMember, error) {
	member, err := s.repo.UpdateMember(ctx, groupID, userID, req)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	return member, nil
}

// RemoveMember removes a user from a group
func (s *Service) RemoveMember(ctx context.Context, groupID, userID int64) error {
	return s.repo.RemoveMember(ctx, groupID, userID)
}

// AcceptInvitation allows a user to accept their group invitation
func (s *Service) AcceptInvitation(ctx context.Context, groupID, userID int64) (*GroupMember, error) {
	member, err := s.repo.GetMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	if member.Status != MemberStatusInvited {
		return member, nil // Already joined
	}

	return s.repo.UpdateMember(ctx, groupID, userID, &UpdateMemberRequest{
		Status: statusPtr(MemberStatusJoined),
	})
}

func statusPtr(s MemberStatus) *MemberStatus {
	return &s
}
