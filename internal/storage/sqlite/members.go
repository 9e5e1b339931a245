package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
)

const memberColumns = `id, group_id, user_id, role, name, email, phone, relationship, is_registered_user, created_at`

func scanMember(row interface{ Scan(...any) error }) (*models.GroupMember, error) {
	m := &models.GroupMember{}
	var registered int
	err := row.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Role, &m.Name, &m.Email, &m.Phone,
		&m.Relationship, &registered, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.IsRegisteredUser = registered != 0
	return m, nil
}

func insertGroupMember(ctx context.Context, tx *sql.Tx, m *models.GroupMember) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO group_members (`+memberColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.GroupID, m.UserID, m.Role, m.Name, m.Email, m.Phone, m.Relationship,
		boolToInt(m.IsRegisteredUser), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group member: %w", err)
	}
	return nil
}

// ListGroupMembers retrieves a group's roster in join order.
func (s *SQLiteStore) ListGroupMembers(ctx context.Context, groupID string) ([]*models.GroupMember, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+memberColumns+` FROM group_members WHERE group_id = ? ORDER BY created_at, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}
	defer rows.Close()

	var members []*models.GroupMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}
	return members, nil
}

// GetGroupMember retrieves one member by its row id.
func (s *SQLiteStore) GetGroupMember(ctx context.Context, memberID string) (*models.GroupMember, error) {
	m, err := scanMember(s.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM group_members WHERE id = ?`, memberID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("group member %s: %w", memberID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group member: %w", err)
	}
	return m, nil
}

// FindGroupMemberByEmail looks up a member by email within a group,
// case-insensitively. Returns nil without error when no member matches.
func (s *SQLiteStore) FindGroupMemberByEmail(ctx context.Context, groupID, email string) (*models.GroupMember, error) {
	m, err := scanMember(s.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM group_members WHERE group_id = ? AND lower(email) = lower(?)`,
		groupID, strings.TrimSpace(email)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find group member by email: %w", err)
	}
	return m, nil
}

// FindGroupMemberByUserID looks up a member by user id within a group.
// Returns nil without error when no member matches.
func (s *SQLiteStore) FindGroupMemberByUserID(ctx context.Context, groupID, userID string) (*models.GroupMember, error) {
	m, err := scanMember(s.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM group_members WHERE group_id = ? AND user_id = ?`,
		groupID, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find group member by user id: %w", err)
	}
	return m, nil
}

// AddGroupMember inserts a new roster entry.
func (s *SQLiteStore) AddGroupMember(ctx context.Context, m *models.GroupMember) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt == 0 {
		m.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO group_members (`+memberColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.GroupID, m.UserID, m.Role, m.Name, m.Email, m.Phone, m.Relationship,
		boolToInt(m.IsRegisteredUser), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add group member: %w", err)
	}
	return nil
}

// UpdateGroupMember updates a member's denormalized display fields and role.
func (s *SQLiteStore) UpdateGroupMember(ctx context.Context, m *models.GroupMember) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE group_members SET role = ?, name = ?, email = ?, phone = ?, relationship = ?
		 WHERE id = ?`,
		m.Role, m.Name, m.Email, m.Phone, m.Relationship, m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("group member %s: %w", m.ID, storage.ErrNotFound)
	}
	return nil
}

// RemoveGroupMember deletes a roster entry.
func (s *SQLiteStore) RemoveGroupMember(ctx context.Context, memberID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM group_members WHERE id = ?", memberID)
	if err != nil {
		return fmt.Errorf("failed to remove group member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("group member %s: %w", memberID, storage.ErrNotFound)
	}
	return nil
}
