package group

import "time"

// CreateGroupRequest represents the request to create a new group.
// Dates are YYYY-MM-DD strings.
type CreateGroupRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description,omitempty"`
	Destination *string `json:"destination,omitempty"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
}

// UpdateGroupRequest represents the request to update a group
type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty"`
	Destination *string `json:"destination,omitempty"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
}

// AddMemberRequest represents the request to add a member to a group
type AddMemberRequest struct {
	UserID int64      `json:"user_id" validate:"required"`
	Role   MemberRole `json:"role"`
}

// UpdateMemberRequest represents the request to update a member's status or role
type UpdateMemberRequest struct {
	Status *MemberStatus `json:"status,omitempty"`
	Role   *MemberRole   `json:"role,omitempty"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	Destination *string           `json:"destination,omitempty"`
	StartDate   *string           `json:"start_date,omitempty"`
	EndDate     *string           `json:"end_date,omitempty"`
	CreatedAt   string            `json:"created_at"`
	Members     []*MemberResponse `json:"members,omitempty"`
}

// MemberResponse represents a member in a group response
type MemberResponse struct {
	ID       int64        `json:"id"`
	UserID   int64        `json:"user_id"`
	Username string       `json:"username"`
	Email    string       `json:"email"`
	Status   MemberStatus `json:"status"`
	Role     MemberRole   `json:"role"`
	JoinedAt string       `json:"joined_at"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Destination: g.Destination,
		StartDate:   formatDate(g.StartDate),
		EndDate:     formatDate(g.EndDate),
		CreatedAt:   g.CreatedAt.Format(time.RFC3339),
	}
}

// ToResponse converts a GroupMember model to a MemberResponse DTO
func (m *GroupMember) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:       m.ID,
		UserID:   m.UserID,
		Username: m.Username,
		Email:    m.Email,
		Status:   m.Status,
		Role:     m.Role,
		JoinedAt: m.JoinedAt.Format(time.RFC3339),
	}
}
