package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
)

// GroupService manages group rosters and the caller's contact book.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// MemberInput carries the roster fields for adding or updating a member.
type MemberInput struct {
	// UserID links the member to a registered account. Empty means guest.
	UserID string

	Name         string
	Email        string
	Phone        string
	Relationship string
	Role         string
}

// CreateGroup creates a group owned by the caller and enrolls the caller as
// its admin member in the same atomic step.
func (s *GroupService) CreateGroup(ctx context.Context, callerID, name, description string) (*models.Group, error) {
	if callerID == "" {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(name) == "" {
		return nil, validationErr("group name is required")
	}

	owner, err := s.store.GetUserByID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group owner: %w", err)
	}
	if owner == nil {
		return nil, ErrUnauthenticated
	}

	now := time.Now().Unix()
	group := &models.Group{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		OwnerID:     callerID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	creator := &models.GroupMember{
		ID:               uuid.New().String(),
		GroupID:          group.ID,
		UserID:           callerID,
		Role:             models.RoleAdmin,
		Name:             owner.DisplayName,
		Email:            owner.Email,
		IsRegisteredUser: true,
		CreatedAt:        now,
	}

	if err := s.store.CreateGroup(ctx, group, creator); err != nil {
		return nil, &StoreError{Op: "create group", Err: err}
	}
	slog.Info("group created", "group_id", group.ID, "owner_id", callerID)
	return group, nil
}

// ListGroups returns the groups owned by the caller.
func (s *GroupService) ListGroups(ctx context.Context, callerID string) ([]*models.Group, error) {
	if callerID == "" {
		return nil, ErrUnauthenticated
	}
	return s.store.ListGroupsByOwner(ctx, callerID)
}

// GetGroup retrieves a single group.
func (s *GroupService) GetGroup(ctx context.Context, callerID, groupID string) (*models.Group, error) {
	if callerID == "" {
		return nil, ErrUnauthenticated
	}
	return s.store.GetGroup(ctx, groupID)
}

// UpdateGroup changes a group's name, description or active flag. Only the
// owner's groups are updatable. A nil active pointer leaves the flag as is;
// clearing it deactivates the group without deleting any history.
func (s *GroupService) UpdateGroup(ctx context.Context, callerID, groupID, name, description string, active *bool) (*models.Group, error) {
	if callerID == "" {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(name) == "" {
		return nil, validationErr("group name is required")
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	group.Name = name
	group.Description = description
	if active != nil {
		group.IsActive = *active
	}
	group.OwnerID = callerID
	group.UpdatedAt = time.Now().Unix()

	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// DeleteGroup removes a group owned by the caller; memberships and splits
// referencing it are removed by the schema's cascade rules.
func (s *GroupService) DeleteGroup(ctx context.Context, callerID, groupID string) error {
	if callerID == "" {
		return ErrUnauthenticated
	}
	if err := s.store.DeleteGroup(ctx, callerID, groupID); err != nil {
		return err
	}
	slog.Info("group deleted", "group_id", groupID, "owner_id", callerID)
	return nil
}

// ListMembers returns a group's roster.
func (s *GroupService) ListMembers(ctx context.Context, callerID, groupID string) ([]*models.GroupMember, error) {
	if callerID == "" {
		return nil, ErrUnauthenticated
	}
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListGroupMembers(ctx, groupID)
}

// AddMember adds a member to a group. Registered members must name an
// existing account and may join a group only once; guests get a fresh
// synthetic user id so downstream rows always have a member identity to
// reference. An email already present in the group is a conflict either way.
func (s *GroupService) AddMember(ctx context.Context, callerID, groupID string, in MemberInput) (*models.GroupMember, error) {
	if callerID == "" {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationErr("member name is required")
	}
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}

	if in.UserID != "" {
		user, err := s.store.GetUserByID(ctx, in.UserID)
		if err != nil {
			return nil, &StoreError{Op: "check member account", Err: err}
		}
		if user == nil {
			return nil, validationErr(fmt.Sprintf("no registered user with id %s", in.UserID))
		}
		existing, err := s.store.FindGroupMemberByUserID(ctx, groupID, in.UserID)
		if err != nil {
			return nil, &StoreError{Op: "check member account", Err: err}
		}
		if existing != nil {
			return nil, &ConflictError{Message: "this user is already a member of the group"}
		}
	}

	if in.Email != "" {
		existing, err := s.store.FindGroupMemberByEmail(ctx, groupID, in.Email)
		if err != nil {
			return nil, &StoreError{Op: "check member email", Err: err}
		}
		if existing != nil {
			return nil, &ConflictError{Message: fmt.Sprintf("a member with email %s already exists in this group", in.Email)}
		}
	}

	role := in.Role
	if role == "" {
		role = models.RoleMember
	}

	member := &models.GroupMember{
		ID:           uuid.New().String(),
		GroupID:      groupID,
		UserID:       in.UserID,
		Role:         role,
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Relationship: in.Relationship,
		CreatedAt:    time.Now().Unix(),
	}
	if in.UserID != "" {
		member.IsRegisteredUser = true
	} else {
		member.UserID = uuid.New().String()
	}

	if err := s.store.AddGroupMember(ctx, member); err != nil {
		return nil, &StoreError{Op: "add group member", Err: err}
	}
	slog.Info("group member added",
		"group_id", groupID, "member_id", member.ID, "registered", member.IsRegisteredUser)
	return member, nil
}

// UpdateMember changes a member's roster fields. Changing the email
// re-checks group-level uniqueness against the other members.
func (s *GroupService) UpdateMember(ctx context.Context, callerID, memberID string, in MemberInput) (*models.GroupMember, error) {
	if callerID == "" {
		return nil, ErrUnauthenticated
	}

	member, err := s.store.GetGroupMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if in.Email != "" && !strings.EqualFold(in.Email, member.Email) {
		existing, err := s.store.FindGroupMemberByEmail(ctx, member.GroupID, in.Email)
		if err != nil {
			return nil, &StoreError{Op: "check member email", Err: err}
		}
		if existing != nil && existing.ID != member.ID {
			return nil, &ConflictError{Message: fmt.Sprintf("a member with email %s already exists in this group", in.Email)}
		}
	}

	if in.Name != "" {
		member.Name = in.Name
	}
	member.Email = in.Email
	member.Phone = in.Phone
	member.Relationship = in.Relationship
	if in.Role != "" {
		member.Role = in.Role
	}

	if err := s.store.UpdateGroupMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// RemoveMember deletes a member from the roster. The group admin cannot be
// removed; demote or delete the group instead.
func (s *GroupService) RemoveMember(ctx context.Context, callerID, memberID string) error {
	if callerID == "" {
		return ErrUnauthenticated
	}

	member, err := s.store.GetGroupMember(ctx, memberID)
	if err != nil {
		return err
	}
	if member.Role == models.RoleAdmin {
		return &ConflictError{Message: "group admin cannot be removed"}
	}

	if err := s.store.RemoveGroupMember(ctx, memberID); err != nil {
		return err
	}
	slog.Info("group member removed", "group_id", member.GroupID, "member_id", memberID)
	return nil
}

// AddContact adds an entry to the caller's contact book. Adding an email
// that already exists returns the existing contact rather than an error, so
// repeated imports are idempotent.
func (s *GroupService) AddContact(ctx context.Context, callerID, name, email, phone, relationship string) (*models.Contact, error) {
	if callerID == "" {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(name) == "" {
		return nil, validationErr("contact name is required")
	}

	if email != "" {
		existing, err := s.store.GetContactByEmail(ctx, callerID, email)
		if err != nil {
			return nil, &StoreError{Op: "check contact email", Err: err}
		}
		if existing != nil {
			return existing, nil
		}
	}

	now := time.Now().Unix()
	contact := &models.Contact{
		ID:           uuid.New().String(),
		OwnerID:      callerID,
		Name:         name,
		Email:        email,
		Phone:        phone,
		Relationship: relationship,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateContact(ctx, contact); err != nil {
		return nil, &StoreError{Op: "create contact", Err: err}
	}
	return contact, nil
}

// ListContacts returns the caller's active contacts.
func (s *GroupService) ListContacts(ctx context.Context, callerID string) ([]*models.Contact, error) {
	if callerID == "" {
		return nil, ErrUnauthenticated
	}
	return s.store.ListContacts(ctx, callerID)
}

// UpdateContact changes a contact's fields.
func (s *GroupService) UpdateContact(ctx context.Context, callerID, contactID, name, email, phone, relationship string) (*models.Contact, error) {
	if callerID == "" {
		return nil, ErrUnauthenticated
	}

	contact, err := s.store.GetContact(ctx, callerID, contactID)
	if err != nil {
		return nil, err
	}
	if name != "" {
		contact.Name = name
	}
	contact.Email = email
	contact.Phone = phone
	contact.Relationship = relationship
	contact.UpdatedAt = time.Now().Unix()

	if err := s.store.UpdateContact(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// RemoveContact soft-deletes a contact so historical splits keep their
// denormalized contact fields.
func (s *GroupService) RemoveContact(ctx context.Context, callerID, contactID string) error {
	if callerID == "" {
		return ErrUnauthenticated
	}
	return s.store.DeactivateContact(ctx, callerID, contactID)
}
