package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
)

// nullable turns an empty string into a SQL NULL.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// nullableFloat turns a zero value into a SQL NULL. Used for
// share_percentage, which is only meaningful for percentage splits.
func nullableFloat(f float64) interface{} {
	if f == 0 {
		return nil
	}
	return f
}

// CreateTransactionWithSplits inserts the transaction and all of its split
// rows in one database transaction. Either everything is created or nothing
// is.
func (s *SQLiteStore) CreateTransactionWithSplits(ctx context.Context, txn *models.Transaction, splits []*models.TransactionSplit) (string, error) {
	now := time.Now().Unix()
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt == 0 {
		txn.CreatedAt = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (id, owner_id, description, amount, category, notes, group_id,
		                           split_count, split_type, has_splits, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.OwnerID, txn.Description, txn.Amount, txn.Category, txn.Notes,
		nullable(txn.GroupID), txn.SplitCount, txn.SplitType, boolToInt(txn.HasSplits), txn.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert transaction: %w", err)
	}

	for _, sp := range splits {
		if sp.ID == "" {
			sp.ID = uuid.New().String()
		}
		sp.TransactionID = txn.ID
		if sp.CreatedAt == 0 {
			sp.CreatedAt = now
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO transaction_splits (id, transaction_id, is_guest, user_id,
			     guest_name, guest_email, guest_mobile, group_id,
			     share_amount, share_percentage, split_type,
			     paid_by, paid_by_guest_name, paid_by_guest_email, paid_by_guest_mobile,
			     relationship_id, notes, settled, settlement_method, settlement_notes, settled_at, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, '', '', 0, ?)`,
			sp.ID, sp.TransactionID, boolToInt(sp.IsGuest), nullable(sp.UserID),
			sp.GuestName, sp.GuestEmail, sp.GuestMobile, nullable(sp.GroupID),
			sp.ShareAmount, nullableFloat(sp.SharePercentage), sp.SplitType,
			nullable(sp.PaidBy), sp.PaidByGuestName, sp.PaidByGuestEmail, sp.PaidByGuestMobile,
			nullable(sp.RelationshipID), sp.Notes, sp.CreatedAt,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert transaction split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return txn.ID, nil
}

// SettleTransactionSplit marks a split as settled with the given method and
// notes. Returns false without error when the split was already settled.
func (s *SQLiteStore) SettleTransactionSplit(ctx context.Context, splitID, settlementMethod, notes string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transaction_splits
		 SET settled = 1, settlement_method = ?, settlement_notes = ?, settled_at = ?
		 WHERE id = ? AND settled = 0`,
		settlementMethod, notes, time.Now().Unix(), splitID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to settle split: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check settle result: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	// Distinguish "already settled" from "no such split".
	var exists int
	err = s.db.QueryRowContext(ctx, "SELECT 1 FROM transaction_splits WHERE id = ?", splitID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, fmt.Errorf("split %s: %w", splitID, storage.ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("failed to check split existence: %w", err)
	}
	return false, nil
}

const splitColumns = `id, transaction_id, is_guest, user_id, guest_name, guest_email, guest_mobile,
	group_id, share_amount, share_percentage, split_type,
	paid_by, paid_by_guest_name, paid_by_guest_email, paid_by_guest_mobile,
	relationship_id, notes, settled, settlement_method, settlement_notes, settled_at, created_at`

func scanSplit(row interface{ Scan(...any) error }) (*models.TransactionSplit, error) {
	sp := &models.TransactionSplit{}
	var isGuest, settled int
	var userID, groupID, paidBy, relationshipID sql.NullString
	var sharePct sql.NullFloat64

	err := row.Scan(&sp.ID, &sp.TransactionID, &isGuest, &userID,
		&sp.GuestName, &sp.GuestEmail, &sp.GuestMobile,
		&groupID, &sp.ShareAmount, &sharePct, &sp.SplitType,
		&paidBy, &sp.PaidByGuestName, &sp.PaidByGuestEmail, &sp.PaidByGuestMobile,
		&relationshipID, &sp.Notes, &settled, &sp.SettlementMethod, &sp.SettlementNotes,
		&sp.SettledAt, &sp.CreatedAt)
	if err != nil {
		return nil, err
	}

	sp.IsGuest = isGuest != 0
	sp.Settled = settled != 0
	sp.UserID = userID.String
	sp.GroupID = groupID.String
	sp.PaidBy = paidBy.String
	sp.RelationshipID = relationshipID.String
	sp.SharePercentage = sharePct.Float64
	return sp, nil
}

// GetTransaction retrieves a transaction and its splits in insertion order.
func (s *SQLiteStore) GetTransaction(ctx context.Context, txnID string) (*models.Transaction, []*models.TransactionSplit, error) {
	txn := &models.Transaction{}
	var groupID sql.NullString
	var hasSplits int
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, description, amount, category, notes, group_id,
		        split_count, split_type, has_splits, created_at
		 FROM transactions WHERE id = ?`,
		txnID,
	).Scan(&txn.ID, &txn.OwnerID, &txn.Description, &txn.Amount, &txn.Category, &txn.Notes,
		&groupID, &txn.SplitCount, &txn.SplitType, &hasSplits, &txn.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("transaction %s: %w", txnID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	txn.GroupID = groupID.String
	txn.HasSplits = hasSplits != 0

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+splitColumns+` FROM transaction_splits WHERE transaction_id = ? ORDER BY rowid`,
		txnID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	var splits []*models.TransactionSplit
	for rows.Next() {
		sp, err := scanSplit(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate splits: %w", err)
	}

	return txn, splits, nil
}

// ListTransactionsByGroup retrieves a group's transactions, newest first.
func (s *SQLiteStore) ListTransactionsByGroup(ctx context.Context, groupID string) ([]*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, description, amount, category, notes, group_id,
		        split_count, split_type, has_splits, created_at
		 FROM transactions WHERE group_id = ? ORDER BY created_at DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		txn := &models.Transaction{}
		var gid sql.NullString
		var hasSplits int
		if err := rows.Scan(&txn.ID, &txn.OwnerID, &txn.Description, &txn.Amount, &txn.Category,
			&txn.Notes, &gid, &txn.SplitCount, &txn.SplitType, &hasSplits, &txn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.GroupID = gid.String
		txn.HasSplits = hasSplits != 0
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}

// GetTransactionSplit retrieves one split by id.
func (s *SQLiteStore) GetTransactionSplit(ctx context.Context, splitID string) (*models.TransactionSplit, error) {
	sp, err := scanSplit(s.db.QueryRowContext(ctx,
		`SELECT `+splitColumns+` FROM transaction_splits WHERE id = ?`, splitID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("split %s: %w", splitID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split: %w", err)
	}
	return sp, nil
}
