package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
	"github.com/splitledger/splitledger/internal/storage/sqlite"
)

func newTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestUser(t *testing.T, store storage.Store, email, name string) *models.User {
	t.Helper()
	user := models.NewUser(email, name, "hashed")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return user
}

func TestSubmitExpenseEqualSplit(t *testing.T) {
	store := newTestStore(t)
	svc := NewSplitService(store)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com", "Alice")
	bob := createTestUser(t, store, "bob@example.com", "Bob")

	txnID, refreshes, err := svc.SubmitExpense(ctx, alice.ID, ExpenseInput{
		Description: "dinner",
		Amount:      100,
		SplitType:   models.SplitTypeEqual,
		Entries: []SplitEntry{
			{UserID: alice.ID},
			{UserID: bob.ID},
			{IsGuest: true, GuestName: "Carol", GuestEmail: "carol@example.com"},
		},
	})
	if err != nil {
		t.Fatalf("SubmitExpense failed: %v", err)
	}

	txn, splits, err := store.GetTransaction(ctx, txnID)
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}
	if txn.SplitCount != 3 || txn.SplitType != models.SplitTypeEqual || !txn.HasSplits {
		t.Errorf("unexpected transaction bookkeeping: %+v", txn)
	}
	if len(splits) != 3 {
		t.Fatalf("expected 3 splits, got %d", len(splits))
	}

	// First participant absorbs the rounding residual; shares sum exactly.
	var sum float64
	for _, sp := range splits {
		sum += sp.ShareAmount
		if sp.PaidBy != alice.ID {
			t.Errorf("split %s: payer %q, want %q", sp.ID, sp.PaidBy, alice.ID)
		}
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("shares sum to %v, want exactly 100", sum)
	}

	// Only the caller-bob pair gets a relationship; guest and self do not.
	var linked int
	for _, sp := range splits {
		if sp.RelationshipID != "" {
			linked++
			if sp.UserID != bob.ID {
				t.Errorf("unexpected relationship on split for %q", sp.UserID)
			}
		}
	}
	if linked != 1 {
		t.Errorf("expected 1 linked split, got %d", linked)
	}

	if len(refreshes) != 1 {
		t.Fatalf("expected 1 refresh result, got %d", len(refreshes))
	}
	if refreshes[0].Err != nil {
		t.Errorf("unexpected refresh error: %v", refreshes[0].Err)
	}

	rel, err := store.GetRelationship(ctx, refreshes[0].RelationshipID)
	if err != nil {
		t.Fatalf("GetRelationship failed: %v", err)
	}
	if math.Abs(math.Abs(rel.Balance)-33.33) > 0.001 {
		t.Errorf("expected |balance| 33.33, got %v", rel.Balance)
	}
}

func TestSubmitExpenseUnevenResidual(t *testing.T) {
	store := newTestStore(t)
	svc := NewSplitService(store)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com", "Alice")

	txnID, _, err := svc.SubmitExpense(ctx, alice.ID, ExpenseInput{
		Description: "snacks",
		Amount:      100,
		SplitType:   models.SplitTypeEqual,
		Entries: []SplitEntry{
			{UserID: alice.ID},
			{IsGuest: true, GuestName: "G1"},
			{IsGuest: true, GuestName: "G2"},
		},
	})
	if err != nil {
		t.Fatalf("SubmitExpense failed: %v", err)
	}

	_, splits, err := store.GetTransaction(ctx, txnID)
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}

	var got []float64
	for _, sp := range splits {
		got = append(got, sp.ShareAmount)
	}
	// Splits come back in insertion order.
	want := []float64{33.34, 33.33, 33.33}
	for i, w := range want {
		if math.Abs(got[i]-w) > 1e-9 {
			t.Errorf("share %d = %v, want %v", i, got[i], w)
		}
	}
}

func TestSubmitExpensePercentage(t *testing.T) {
	store := newTestStore(t)
	svc := NewSplitService(store)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com", "Alice")
	bob := createTestUser(t, store, "bob@example.com", "Bob")

	txnID, _, err := svc.SubmitExpense(ctx, alice.ID, ExpenseInput{
		Description: "rent",
		Amount:      1000,
		SplitType:   models.SplitTypePercentage,
		Entries: []SplitEntry{
			{UserID: alice.ID, Percentage: 60},
			{UserID: bob.ID, Percentage: 40},
		},
	})
	if err != nil {
		t.Fatalf("SubmitExpense failed: %v", err)
	}

	_, splits, err := store.GetTransaction(ctx, txnID)
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}
	for _, sp := range splits {
		switch sp.UserID {
		case alice.ID:
			if sp.ShareAmount != 600 || sp.SharePercentage != 60 {
				t.Errorf("alice split: %+v", sp)
			}
		case bob.ID:
			if sp.ShareAmount != 400 || sp.SharePercentage != 40 {
				t.Errorf("bob split: %+v", sp)
			}
		}
	}
}

func TestSubmitExpenseCustomMismatch(t *testing.T) {
	store := newTestStore(t)
	svc := NewSplitService(store)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com", "Alice")

	_, _, err := svc.SubmitExpense(ctx, alice.ID, ExpenseInput{
		Description: "taxi",
		Amount:      50,
		SplitType:   models.SplitTypeCustom,
		Entries: []SplitEntry{
			{UserID: alice.ID, Amount: 20},
			{IsGuest: true, GuestName: "Carol", Amount: 20},
		},
	})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(validationErr.Errors) == 0 {
		t.Error("expected validation error details")
	}
}

func TestSubmitExpenseGuestPayer(t *testing.T) {
	store := newTestStore(t)
	svc := NewSplitService(store)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com", "Alice")

	txnID, _, err := svc.SubmitExpense(ctx, alice.ID, ExpenseInput{
		Description: "groceries",
		Amount:      60,
		SplitType:   models.SplitTypeEqual,
		PaidBy:      "guest-1",
		Entries: []SplitEntry{
			{UserID: alice.ID},
			{LocalID: "guest-1", IsGuest: true, GuestName: "Carol", GuestEmail: "carol@example.com"},
		},
	})
	if err != nil {
		t.Fatalf("SubmitExpense failed: %v", err)
	}

	_, splits, err := store.GetTransaction(ctx, txnID)
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}
	// Guest payer metadata must be stamped on every row, with no registered
	// payer set.
	for _, sp := range splits {
		if sp.PaidBy != "" {
			t.Errorf("split %s: expected no registered payer, got %q", sp.ID, sp.PaidBy)
		}
		if sp.PaidByGuestName != "Carol" || sp.PaidByGuestEmail != "carol@example.com" {
			t.Errorf("split %s: guest payer not stamped: %+v", sp.ID, sp)
		}
	}
}

func TestSubmitExpenseUnauthenticated(t *testing.T) {
	svc := NewSplitService(newTestStore(t))

	_, _, err := svc.SubmitExpense(context.Background(), "", ExpenseInput{
		Amount:    10,
		SplitType: models.SplitTypeEqual,
		Entries:   []SplitEntry{{IsGuest: true, GuestName: "Carol"}},
	})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

// failingRelStore simulates relationship-table failures while the rest of
// the store keeps working. failUserID scopes the failure to pairs involving
// that one user; failFind fails every pair.
type failingRelStore struct {
	storage.Store
	failFind    bool
	failUserID  string
	failRefresh bool
}

func (f *failingRelStore) FindOrCreateRelationship(ctx context.Context, userA, userB string) (*models.Relationship, error) {
	if f.failFind || (f.failUserID != "" && (userA == f.failUserID || userB == f.failUserID)) {
		return nil, fmt.Errorf("relationship table unavailable")
	}
	return f.Store.FindOrCreateRelationship(ctx, userA, userB)
}

func (f *failingRelStore) RecomputeRelationshipBalance(ctx context.Context, relationshipID string) (float64, error) {
	if f.failRefresh {
		return 0, fmt.Errorf("refresh unavailable")
	}
	return f.Store.RecomputeRelationshipBalance(ctx, relationshipID)
}

func TestSubmitExpenseRelationshipFailureDoesNotBlock(t *testing.T) {
	store := newTestStore(t)
	svc := NewSplitService(&failingRelStore{Store: store, failFind: true})
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com", "Alice")
	bob := createTestUser(t, store, "bob@example.com", "Bob")

	txnID, refreshes, err := svc.SubmitExpense(ctx, alice.ID, ExpenseInput{
		Description: "dinner",
		Amount:      50,
		SplitType:   models.SplitTypeEqual,
		Entries: []SplitEntry{
			{UserID: alice.ID},
			{UserID: bob.ID},
		},
	})
	if err != nil {
		t.Fatalf("expected submission to succeed despite relationship failure, got %v", err)
	}

	_, splits, err := store.GetTransaction(ctx, txnID)
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}
	for _, sp := range splits {
		if sp.RelationshipID != "" {
			t.Errorf("expected unlinked split, got relationship %q", sp.RelationshipID)
		}
	}
	if len(refreshes) != 0 {
		t.Errorf("expected no refreshes without links, got %d", len(refreshes))
	}
}

func TestSubmitExpenseRelationshipFailureIsIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com", "Alice")
	bob := createTestUser(t, store, "bob@example.com", "Bob")
	carol := createTestUser(t, store, "carol@example.com", "Carol")

	// Only the caller-bob pair fails; carol's link must survive.
	svc := NewSplitService(&failingRelStore{Store: store, failUserID: bob.ID})

	txnID, refreshes, err := svc.SubmitExpense(ctx, alice.ID, ExpenseInput{
		Description: "dinner",
		Amount:      90,
		SplitType:   models.SplitTypeEqual,
		Entries: []SplitEntry{
			{UserID: alice.ID},
			{UserID: bob.ID},
			{UserID: carol.ID},
		},
	})
	if err != nil {
		t.Fatalf("SubmitExpense failed: %v", err)
	}

	_, splits, err := store.GetTransaction(ctx, txnID)
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}
	for _, sp := range splits {
		switch sp.UserID {
		case bob.ID:
			if sp.RelationshipID != "" {
				t.Errorf("expected bob's split unlinked, got %q", sp.RelationshipID)
			}
		case carol.ID:
			if sp.RelationshipID == "" {
				t.Error("expected carol's split to stay linked")
			}
		}
	}

	// Only carol's relationship gets refreshed, and successfully.
	if len(refreshes) != 1 {
		t.Fatalf("expected 1 refresh result, got %d", len(refreshes))
	}
	if refreshes[0].Err != nil {
		t.Errorf("unexpected refresh error: %v", refreshes[0].Err)
	}
}

func TestSubmitExpenseRefreshFailureIsReported(t *testing.T) {
	store := newTestStore(t)
	svc := NewSplitService(&failingRelStore{Store: store, failRefresh: true})
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com", "Alice")
	bob := createTestUser(t, store, "bob@example.com", "Bob")

	txnID, refreshes, err := svc.SubmitExpense(ctx, alice.ID, ExpenseInput{
		Description: "dinner",
		Amount:      50,
		SplitType:   models.SplitTypeEqual,
		Entries: []SplitEntry{
			{UserID: alice.ID},
			{UserID: bob.ID},
		},
	})
	if err != nil {
		t.Fatalf("expected submission to succeed despite refresh failure, got %v", err)
	}
	if txnID == "" {
		t.Fatal("expected a transaction id")
	}
	if len(refreshes) != 1 {
		t.Fatalf("expected 1 refresh result, got %d", len(refreshes))
	}
	if refreshes[0].Err == nil {
		t.Error("expected the refresh failure to be captured")
	}
}

func TestSettle(t *testing.T) {
	store := newTestStore(t)
	svc := NewSplitService(store)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com", "Alice")
	bob := createTestUser(t, store, "bob@example.com", "Bob")

	txnID, _, err := svc.SubmitExpense(ctx, alice.ID, ExpenseInput{
		Description: "dinner",
		Amount:      50,
		SplitType:   models.SplitTypeEqual,
		Entries: []SplitEntry{
			{UserID: alice.ID},
			{UserID: bob.ID},
		},
	})
	if err != nil {
		t.Fatalf("SubmitExpense failed: %v", err)
	}

	_, splits, err := store.GetTransaction(ctx, txnID)
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}
	var bobSplit *models.TransactionSplit
	for _, sp := range splits {
		if sp.UserID == bob.ID {
			bobSplit = sp
		}
	}
	if bobSplit == nil {
		t.Fatal("missing bob's split")
	}

	settled, err := svc.Settle(ctx, alice.ID, bobSplit.ID, "cash", "")
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if !settled {
		t.Error("expected first settle to report true")
	}

	settled, err = svc.Settle(ctx, alice.ID, bobSplit.ID, "cash", "")
	if err != nil {
		t.Fatalf("second Settle failed: %v", err)
	}
	if settled {
		t.Error("expected second settle to report false")
	}

	rel, err := store.GetRelationship(ctx, bobSplit.RelationshipID)
	if err != nil {
		t.Fatalf("GetRelationship failed: %v", err)
	}
	if rel.Balance != 0 {
		t.Errorf("expected zero balance after settlement, got %v", rel.Balance)
	}

	if _, err := svc.Settle(ctx, alice.ID, "missing", "cash", ""); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing split, got %v", err)
	}
}
