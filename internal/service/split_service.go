package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/splitledger/splitledger/internal/calculator"
	"github.com/splitledger/splitledger/internal/metrics"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
)

// refreshConcurrency caps the parallel relationship refresh fan-out.
const refreshConcurrency = 4

// SplitService orchestrates expense submission: validating splits,
// resolving the payer, linking relationships, invoking the atomic
// creation, and driving the best-effort balance refresh pass.
//
// The service is stateless; the caller identity is an explicit parameter
// on every operation.
type SplitService struct {
	store storage.Store
}

// NewSplitService creates a new SplitService with the given storage backend.
func NewSplitService(store storage.Store) *SplitService {
	return &SplitService{store: store}
}

// ExpenseInput is one expense submission with its splits.
type ExpenseInput struct {
	Description string
	Amount      float64
	Category    string
	Notes       string
	GroupID     string

	// SplitType selects the strategy: equal, percentage or custom.
	SplitType string

	// PaidBy names the payer: a registered user id, or a guest entry's
	// local id. Empty means the caller paid.
	PaidBy string

	Entries []SplitEntry
}

// RefreshResult is the outcome of one relationship balance refresh.
// A failed refresh never fails the submission.
type RefreshResult struct {
	RelationshipID string
	Balance        float64
	Err            error
}

// SubmitExpense validates the splits, resolves participants and payer,
// links relationships, creates the transaction with all splits atomically,
// then refreshes the linked relationship balances.
//
// Only the store's creation step is atomic: the transaction and its splits
// either all exist afterwards or none do. Relationship balances may lag
// behind when a refresh fails; the returned results report each refresh
// individually.
func (s *SplitService) SubmitExpense(ctx context.Context, callerID string, in ExpenseInput) (string, []RefreshResult, error) {
	if callerID == "" {
		return "", nil, ErrUnauthenticated
	}
	if len(in.Entries) == 0 {
		return "", nil, validationErr("at least one split entry is required")
	}

	// Classify every entry exactly once.
	participants := make([]models.Participant, len(in.Entries))
	for i, e := range in.Entries {
		p, err := classifyParticipant(e)
		if err != nil {
			return "", nil, validationErr(fmt.Sprintf("split %d: %v", i+1, err))
		}
		participants[i] = p
	}

	shares, err := s.computeShares(in, participants)
	if err != nil {
		return "", nil, validationErr(err.Error())
	}

	amounts := make([]float64, len(shares))
	for i, sh := range shares {
		amounts[i] = sh.Amount
	}
	validation := calculator.Validate(in.Amount, amounts)
	for _, w := range validation.Warnings {
		slog.Warn("split validation warning", "warning", w)
	}
	if !validation.IsValid {
		slog.Info("split validation failed",
			"expected_total", validation.ExpectedTotal,
			"total_shares", validation.TotalShares,
			"errors", validation.Errors,
		)
		return "", nil, &ValidationError{Errors: validation.Errors, Warnings: validation.Warnings}
	}

	payer := resolvePayer(in.Entries, in.PaidBy, callerID)

	splits := s.buildSplitRows(ctx, callerID, in, shares, payer)

	txn := &models.Transaction{
		OwnerID:     callerID,
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
		Notes:       in.Notes,
		GroupID:     in.GroupID,
		SplitCount:  len(splits),
		SplitType:   in.SplitType,
		HasSplits:   true,
	}

	txnID, err := s.store.CreateTransactionWithSplits(ctx, txn, splits)
	if err != nil {
		slog.Error("failed to create transaction with splits", "error", err)
		return "", nil, &StoreError{Op: "create transaction", Err: err}
	}
	metrics.ExpensesSubmitted.Inc()
	metrics.SplitsCreated.Add(float64(len(splits)))

	results := s.refreshRelationships(ctx, relationshipIDs(splits))

	slog.Info("expense submitted",
		"transaction_id", txnID,
		"splits", len(splits),
		"split_type", txn.SplitType,
		"guest_payer", payer.IsGuest(),
		"refreshes", len(results),
	)
	return txnID, results, nil
}

// computeShares applies the selected split strategy.
func (s *SplitService) computeShares(in ExpenseInput, participants []models.Participant) ([]calculator.Share, error) {
	switch in.SplitType {
	case models.SplitTypeEqual:
		return calculator.EqualShares(in.Amount, participants)
	case models.SplitTypePercentage:
		shares := make([]calculator.PercentShare, len(in.Entries))
		for i, e := range in.Entries {
			shares[i] = calculator.PercentShare{Participant: participants[i], Percent: e.Percentage}
		}
		return calculator.PercentageShares(in.Amount, shares)
	case models.SplitTypeCustom:
		amounts := make([]float64, len(in.Entries))
		for i, e := range in.Entries {
			amounts[i] = e.Amount
		}
		return calculator.CustomShares(in.Amount, participants, amounts)
	default:
		return nil, fmt.Errorf("unknown split type %q", in.SplitType)
	}
}

// buildSplitRows turns computed shares into persistable rows. The payer
// metadata is stamped onto every row. For each registered, non-self
// participant a relationship is resolved or created; a failure there only
// logs and leaves the link empty, so relationship problems never block
// transaction creation.
func (s *SplitService) buildSplitRows(ctx context.Context, callerID string, in ExpenseInput, shares []calculator.Share, payer models.Payer) []*models.TransactionSplit {
	splits := make([]*models.TransactionSplit, len(shares))
	for i, sh := range shares {
		row := &models.TransactionSplit{
			GroupID:           in.GroupID,
			ShareAmount:       sh.Amount,
			SharePercentage:   sh.Percentage,
			SplitType:         in.SplitType,
			PaidBy:            payer.UserID,
			PaidByGuestName:   payer.GuestName,
			PaidByGuestEmail:  payer.GuestEmail,
			PaidByGuestMobile: payer.GuestMobile,
			Notes:             in.Entries[i].Notes,
		}

		switch p := sh.Participant.(type) {
		case models.Guest:
			row.IsGuest = true
			row.GuestName = p.Name
			row.GuestEmail = p.Email
			row.GuestMobile = p.Phone
		case models.Registered:
			row.UserID = p.UserID
			if p.UserID != callerID {
				rel, err := s.store.FindOrCreateRelationship(ctx, callerID, p.UserID)
				if err != nil {
					slog.Warn("failed to resolve relationship, split proceeds unlinked",
						"user_id", p.UserID, "error", err)
				} else {
					row.RelationshipID = rel.ID
				}
			}
		}

		splits[i] = row
	}
	return splits
}

// relationshipIDs collects the distinct relationship links of a batch.
func relationshipIDs(splits []*models.TransactionSplit) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, sp := range splits {
		if sp.RelationshipID != "" && !seen[sp.RelationshipID] {
			seen[sp.RelationshipID] = true
			ids = append(ids, sp.RelationshipID)
		}
	}
	return ids
}

// refreshRelationships recomputes the cached balance of each relationship.
// Refreshes run as independent tasks with per-task error capture: one
// failure is recorded and skipped, never aborting the others.
func (s *SplitService) refreshRelationships(ctx context.Context, ids []string) []RefreshResult {
	if len(ids) == 0 {
		return nil
	}

	results := make([]RefreshResult, len(ids))
	var g errgroup.Group
	g.SetLimit(refreshConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			balance, err := s.store.RecomputeRelationshipBalance(ctx, id)
			results[i] = RefreshResult{RelationshipID: id, Balance: balance, Err: err}
			if err != nil {
				metrics.RefreshFailures.Inc()
				slog.Warn("relationship balance refresh failed", "relationship_id", id, "error", err)
			}
			return nil
		})
	}
	// Tasks always return nil; Wait only synchronizes.
	_ = g.Wait()
	return results
}

// Settle marks a split as settled via the atomic settle operation, then
// best-effort refreshes that one relationship's balance. Returns false when
// the split was already settled.
func (s *SplitService) Settle(ctx context.Context, callerID, splitID, method, notes string) (bool, error) {
	if callerID == "" {
		return false, ErrUnauthenticated
	}

	sp, err := s.store.GetTransactionSplit(ctx, splitID)
	if err != nil {
		return false, err
	}

	settled, err := s.store.SettleTransactionSplit(ctx, splitID, method, notes)
	if err != nil {
		slog.Error("failed to settle split", "split_id", splitID, "error", err)
		return false, &StoreError{Op: "settle split", Err: err}
	}

	if settled && sp.RelationshipID != "" {
		if _, err := s.store.RecomputeRelationshipBalance(ctx, sp.RelationshipID); err != nil {
			metrics.RefreshFailures.Inc()
			slog.Warn("relationship balance refresh failed after settlement",
				"relationship_id", sp.RelationshipID, "error", err)
		}
	}

	slog.Info("split settlement processed", "split_id", splitID, "settled", settled, "method", method)
	return settled, nil
}

// GetExpense retrieves a transaction and its splits.
func (s *SplitService) GetExpense(ctx context.Context, callerID, txnID string) (*models.Transaction, []*models.TransactionSplit, error) {
	if callerID == "" {
		return nil, nil, ErrUnauthenticated
	}
	return s.store.GetTransaction(ctx, txnID)
}

// ListGroupExpenses retrieves a group's transactions.
func (s *SplitService) ListGroupExpenses(ctx context.Context, callerID, groupID string) ([]*models.Transaction, error) {
	if callerID == "" {
		return nil, ErrUnauthenticated
	}
	if err := s.requireGroupAccess(ctx, callerID, groupID); err != nil {
		return nil, err
	}
	return s.store.ListTransactionsByGroup(ctx, groupID)
}

// GroupBalances returns the net balance per member of a group, consuming
// the store's netting procedure read-only.
func (s *SplitService) GroupBalances(ctx context.Context, callerID, groupID string) ([]models.GroupBalance, []models.DebtEdge, error) {
	if callerID == "" {
		return nil, nil, ErrUnauthenticated
	}
	if err := s.requireGroupAccess(ctx, callerID, groupID); err != nil {
		return nil, nil, err
	}
	return s.store.GetGroupBalances(ctx, groupID)
}

// requireGroupAccess verifies the caller owns the group or sits on its
// roster. Outsiders get the same not-found as a missing group, so group ids
// leak nothing.
func (s *SplitService) requireGroupAccess(ctx context.Context, callerID, groupID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.OwnerID == callerID {
		return nil
	}
	members, err := s.store.ListGroupMembers(ctx, groupID)
	if err != nil {
		return err
	}
	for _, m := range members {
		if m.UserID == callerID {
			return nil
		}
	}
	return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
}
