package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/splitledger/splitledger/internal/calculator"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
)

// canonicalPair orders two user ids so that (a, b) and (b, a) map to the
// same relationship row.
func canonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// FindOrCreateRelationship returns the bilateral ledger row for a pair of
// registered users, creating it when absent.
func (s *SQLiteStore) FindOrCreateRelationship(ctx context.Context, userA, userB string) (*models.Relationship, error) {
	if userA == "" || userB == "" {
		return nil, fmt.Errorf("relationship requires two registered users")
	}
	if userA == userB {
		return nil, fmt.Errorf("relationship requires two distinct users")
	}
	a, b := canonicalPair(userA, userB)

	rel, err := s.getRelationshipByPair(ctx, a, b)
	if err != nil {
		return nil, err
	}
	if rel != nil {
		return rel, nil
	}

	now := time.Now().Unix()
	rel = &models.Relationship{
		ID:        uuid.New().String(),
		UserA:     a,
		UserB:     b,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO relationships (id, user_a, user_b, balance, created_at, updated_at)
		 VALUES (?, ?, ?, 0, ?, ?)`,
		rel.ID, rel.UserA, rel.UserB, rel.CreatedAt, rel.UpdatedAt,
	)
	if err != nil {
		// A concurrent submission may have inserted the pair first; the
		// unique constraint makes the re-read authoritative.
		if existing, lookupErr := s.getRelationshipByPair(ctx, a, b); lookupErr == nil && existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create relationship: %w", err)
	}
	return rel, nil
}

func (s *SQLiteStore) getRelationshipByPair(ctx context.Context, a, b string) (*models.Relationship, error) {
	rel := &models.Relationship{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_a, user_b, balance, created_at, updated_at
		 FROM relationships WHERE user_a = ? AND user_b = ?`,
		a, b,
	).Scan(&rel.ID, &rel.UserA, &rel.UserB, &rel.Balance, &rel.CreatedAt, &rel.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get relationship: %w", err)
	}
	return rel, nil
}

// GetRelationship retrieves a relationship by id.
func (s *SQLiteStore) GetRelationship(ctx context.Context, relationshipID string) (*models.Relationship, error) {
	rel := &models.Relationship{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_a, user_b, balance, created_at, updated_at
		 FROM relationships WHERE id = ?`,
		relationshipID,
	).Scan(&rel.ID, &rel.UserA, &rel.UserB, &rel.Balance, &rel.CreatedAt, &rel.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("relationship %s: %w", relationshipID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get relationship: %w", err)
	}
	return rel, nil
}

// RecomputeRelationshipBalance rebuilds the cached balance from the
// unsettled split rows linked to the relationship. The balance is the net
// amount UserB owes UserA. Because the value is recomputed from source rows
// rather than incremented, repeated or concurrent refreshes converge.
func (s *SQLiteStore) RecomputeRelationshipBalance(ctx context.Context, relationshipID string) (float64, error) {
	rel, err := s.GetRelationship(ctx, relationshipID)
	if err != nil {
		return 0, err
	}

	var balance float64
	err = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE
		     WHEN paid_by = ?1 AND user_id = ?2 THEN share_amount
		     WHEN paid_by = ?2 AND user_id = ?1 THEN -share_amount
		     ELSE 0 END), 0)
		 FROM transaction_splits
		 WHERE relationship_id = ?3 AND settled = 0`,
		rel.UserA, rel.UserB, relationshipID,
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("failed to recompute balance: %w", err)
	}
	balance = math.Round(balance*100) / 100

	_, err = s.db.ExecContext(ctx,
		"UPDATE relationships SET balance = ?, updated_at = ? WHERE id = ?",
		balance, time.Now().Unix(), relationshipID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to store balance: %w", err)
	}
	return balance, nil
}

// GetGroupBalances nets per-member balances over a group's unsettled splits.
// Registered parties are keyed by user id, guests by email (or name when no
// email was captured).
func (s *SQLiteStore) GetGroupBalances(ctx context.Context, groupID string) ([]models.GroupBalance, []models.DebtEdge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts.user_id, ts.guest_name, ts.guest_email,
		        ts.paid_by, ts.paid_by_guest_name, ts.paid_by_guest_email,
		        ts.share_amount,
		        COALESCE(uo.display_name, ''), COALESCE(up.display_name, '')
		 FROM transaction_splits ts
		 LEFT JOIN users uo ON uo.id = ts.user_id
		 LEFT JOIN users up ON up.id = ts.paid_by
		 WHERE ts.group_id = ? AND ts.settled = 0`,
		groupID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load group splits: %w", err)
	}
	defer rows.Close()

	var splits []calculator.SplitForBalance
	for rows.Next() {
		var userID, paidBy sql.NullString
		var guestName, guestEmail, payerGuestName, payerGuestEmail string
		var amount float64
		var owerDisplay, payerDisplay string

		if err := rows.Scan(&userID, &guestName, &guestEmail,
			&paidBy, &payerGuestName, &payerGuestEmail,
			&amount, &owerDisplay, &payerDisplay); err != nil {
			return nil, nil, fmt.Errorf("failed to scan group split: %w", err)
		}

		owerKey, owerName := partyIdentity(userID.String, owerDisplay, guestEmail, guestName)
		payerKey, payerName := partyIdentity(paidBy.String, payerDisplay, payerGuestEmail, payerGuestName)

		splits = append(splits, calculator.SplitForBalance{
			PayerKey:  payerKey,
			PayerName: payerName,
			OwerKey:   owerKey,
			OwerName:  owerName,
			Amount:    amount,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate group splits: %w", err)
	}

	members, edges := calculator.NetBalances(splits)
	return members, edges, nil
}

// partyIdentity picks the balance key and display name for one side of a
// split: user id for registered parties, guest email (or name) otherwise.
func partyIdentity(userID, displayName, guestEmail, guestName string) (key, name string) {
	if userID != "" {
		if displayName == "" {
			displayName = userID
		}
		return userID, displayName
	}
	if guestEmail != "" {
		if guestName == "" {
			guestName = guestEmail
		}
		return guestEmail, guestName
	}
	return guestName, guestName
}
