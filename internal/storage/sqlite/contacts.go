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

const contactColumns = `id, owner_id, name, email, phone, relationship, is_active, created_at, updated_at`

func scanContact(row interface{ Scan(...any) error }) (*models.Contact, error) {
	c := &models.Contact{}
	var active int
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Email, &c.Phone, &c.Relationship,
		&active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.IsActive = active != 0
	return c, nil
}

// CreateContact inserts a new address-book entry.
func (s *SQLiteStore) CreateContact(ctx context.Context, c *models.Contact) error {
	now := time.Now().Unix()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt == 0 {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO individual_contacts (`+contactColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.OwnerID, c.Name, c.Email, c.Phone, c.Relationship,
		boolToInt(c.IsActive), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// GetContact retrieves one contact scoped to its owner.
func (s *SQLiteStore) GetContact(ctx context.Context, ownerID, contactID string) (*models.Contact, error) {
	c, err := scanContact(s.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM individual_contacts WHERE id = ? AND owner_id = ?`,
		contactID, ownerID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("contact %s: %w", contactID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return c, nil
}

// GetContactByEmail looks up a contact by (owner, email), case-insensitively.
// Returns nil without error when absent.
func (s *SQLiteStore) GetContactByEmail(ctx context.Context, ownerID, email string) (*models.Contact, error) {
	c, err := scanContact(s.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM individual_contacts
		 WHERE owner_id = ? AND lower(email) = lower(?)`,
		ownerID, strings.TrimSpace(email)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact by email: %w", err)
	}
	return c, nil
}

// ListContacts retrieves a user's active contacts, alphabetically.
func (s *SQLiteStore) ListContacts(ctx context.Context, ownerID string) ([]*models.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM individual_contacts
		 WHERE owner_id = ? AND is_active = 1 ORDER BY name, email`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contacts: %w", err)
	}
	return contacts, nil
}

// UpdateContact updates a contact's fields, scoped to its owner.
func (s *SQLiteStore) UpdateContact(ctx context.Context, c *models.Contact) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE individual_contacts SET name = ?, email = ?, phone = ?, relationship = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		c.Name, c.Email, c.Phone, c.Relationship, time.Now().Unix(), c.ID, c.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("contact %s: %w", c.ID, storage.ErrNotFound)
	}
	return nil
}

// DeactivateContact soft-deletes a contact by clearing its active flag.
func (s *SQLiteStore) DeactivateContact(ctx context.Context, ownerID, contactID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE individual_contacts SET is_active = 0, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		time.Now().Unix(), contactID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate contact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("contact %s: %w", contactID, storage.ErrNotFound)
	}
	return nil
}
