package sqlite

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestUser(t *testing.T, store *SQLiteStore, email, name string) *models.User {
	t.Helper()
	user := models.NewUser(email, name, "hashed")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return user
}

func createTestGroup(t *testing.T, store *SQLiteStore, owner *models.User) *models.Group {
	t.Helper()
	group := &models.Group{
		ID:       uuid.New().String(),
		Name:     "trip",
		OwnerID:  owner.ID,
		IsActive: true,
	}
	creator := &models.GroupMember{
		ID:               uuid.New().String(),
		GroupID:          group.ID,
		UserID:           owner.ID,
		Role:             models.RoleAdmin,
		Name:             owner.DisplayName,
		Email:            owner.Email,
		IsRegisteredUser: true,
	}
	if err := store.CreateGroup(context.Background(), group, creator); err != nil {
		t.Fatalf("failed to create group: %v", err)
	}
	return group
}

func TestConnectionPragmas(t *testing.T) {
	store := newTestStore(t)

	// Both pragmas ride the DSN so they hold on every pooled connection:
	// foreign keys for the cascade rules, the busy timeout so concurrent
	// balance refreshes wait for the write lock instead of failing.
	var fk int
	if err := store.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("failed to read foreign_keys pragma: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}

	var timeout int
	if err := store.db.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatalf("failed to read busy_timeout pragma: %v", err)
	}
	if timeout <= 0 {
		t.Errorf("busy_timeout = %d, want a positive timeout", timeout)
	}
}

func TestCreateTransactionWithSplits(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com", "Alice")
	bob := createTestUser(t, store, "bob@example.com", "Bob")

	txn := &models.Transaction{
		OwnerID:     alice.ID,
		Description: "dinner",
		Amount:      90,
		SplitCount:  3,
		SplitType:   models.SplitTypeEqual,
		HasSplits:   true,
	}
	splits := []*models.TransactionSplit{
		{UserID: alice.ID, ShareAmount: 30, SplitType: models.SplitTypeEqual, PaidBy: alice.ID},
		{UserID: bob.ID, ShareAmount: 30, SplitType: models.SplitTypeEqual, PaidBy: alice.ID},
		{IsGuest: true, GuestName: "Carol", GuestEmail: "carol@example.com", ShareAmount: 30,
			SplitType: models.SplitTypeEqual, PaidBy: alice.ID},
	}

	txnID, err := store.CreateTransactionWithSplits(ctx, txn, splits)
	if err != nil {
		t.Fatalf("CreateTransactionWithSplits failed: %v", err)
	}
	if txnID == "" {
		t.Fatal("expected a transaction id")
	}

	got, gotSplits, err := store.GetTransaction(ctx, txnID)
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}
	if got.Description != "dinner" || got.Amount != 90 || !got.HasSplits {
		t.Errorf("unexpected transaction: %+v", got)
	}
	if len(gotSplits) != 3 {
		t.Fatalf("expected 3 splits, got %d", len(gotSplits))
	}

	var guests int
	for _, sp := range gotSplits {
		if sp.PaidBy != alice.ID {
			t.Errorf("split %s missing payer, got %q", sp.ID, sp.PaidBy)
		}
		if sp.IsGuest {
			guests++
			if sp.GuestName != "Carol" {
				t.Errorf("unexpected guest name %q", sp.GuestName)
			}
		}
	}
	if guests != 1 {
		t.Errorf("expected 1 guest split, got %d", guests)
	}
}

func TestGetTransactionNotFound(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.GetTransaction(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSettleTransactionSplit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com", "Alice")
	bob := createTestUser(t, store, "bob@example.com", "Bob")

	txn := &models.Transaction{OwnerID: alice.ID, Amount: 50, SplitType: models.SplitTypeEqual, HasSplits: true}
	splits := []*models.TransactionSplit{
		{UserID: bob.ID, ShareAmount: 50, SplitType: models.SplitTypeEqual, PaidBy: alice.ID},
	}
	if _, err := store.CreateTransactionWithSplits(ctx, txn, splits); err != nil {
		t.Fatalf("failed to create transaction: %v", err)
	}

	settled, err := store.SettleTransactionSplit(ctx, splits[0].ID, "cash", "paid at lunch")
	if err != nil {
		t.Fatalf("SettleTransactionSplit failed: %v", err)
	}
	if !settled {
		t.Error("expected first settle to report true")
	}

	// Second attempt is a no-op, not an error.
	settled, err = store.SettleTransactionSplit(ctx, splits[0].ID, "cash", "")
	if err != nil {
		t.Fatalf("second settle failed: %v", err)
	}
	if settled {
		t.Error("expected second settle to report false")
	}

	sp, err := store.GetTransactionSplit(ctx, splits[0].ID)
	if err != nil {
		t.Fatalf("GetTransactionSplit failed: %v", err)
	}
	if !sp.Settled || sp.SettlementMethod != "cash" || sp.SettlementNotes != "paid at lunch" {
		t.Errorf("unexpected settlement state: %+v", sp)
	}
	if sp.SettledAt == 0 {
		t.Error("expected settled_at to be stamped")
	}

	if _, err := store.SettleTransactionSplit(ctx, "missing", "cash", ""); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing split, got %v", err)
	}
}

func TestFindOrCreateRelationshipCanonicalOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com", "Alice")
	bob := createTestUser(t, store, "bob@example.com", "Bob")

	first, err := store.FindOrCreateRelationship(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("FindOrCreateRelationship failed: %v", err)
	}
	second, err := store.FindOrCreateRelationship(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("reversed FindOrCreateRelationship failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected the same relationship for both orders, got %s and %s", first.ID, second.ID)
	}
	if first.UserA > first.UserB {
		t.Errorf("pair not in canonical order: %s > %s", first.UserA, first.UserB)
	}

	if _, err := store.FindOrCreateRelationship(ctx, alice.ID, alice.ID); err == nil {
		t.Error("expected error for a self relationship")
	}
}

func TestRecomputeRelationshipBalance(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com", "Alice")
	bob := createTestUser(t, store, "bob@example.com", "Bob")

	rel, err := store.FindOrCreateRelationship(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("FindOrCreateRelationship failed: %v", err)
	}

	txn := &models.Transaction{OwnerID: alice.ID, Amount: 40, SplitType: models.SplitTypeEqual, HasSplits: true}
	splits := []*models.TransactionSplit{
		{UserID: bob.ID, ShareAmount: 40, SplitType: models.SplitTypeEqual,
			PaidBy: alice.ID, RelationshipID: rel.ID},
	}
	if _, err := store.CreateTransactionWithSplits(ctx, txn, splits); err != nil {
		t.Fatalf("failed to create transaction: %v", err)
	}

	// Whether Alice is user_a or user_b decides the sign.
	want := 40.0
	if rel.UserA != alice.ID {
		want = -40.0
	}

	balance, err := store.RecomputeRelationshipBalance(ctx, rel.ID)
	if err != nil {
		t.Fatalf("RecomputeRelationshipBalance failed: %v", err)
	}
	if math.Abs(balance-want) > 0.001 {
		t.Errorf("expected balance %v, got %v", want, balance)
	}

	// Recomputing again must not change the result.
	again, err := store.RecomputeRelationshipBalance(ctx, rel.ID)
	if err != nil {
		t.Fatalf("second recompute failed: %v", err)
	}
	if again != balance {
		t.Errorf("recompute not idempotent: %v then %v", balance, again)
	}

	// Settling the split zeroes the balance.
	if _, err := store.SettleTransactionSplit(ctx, splits[0].ID, "transfer", ""); err != nil {
		t.Fatalf("failed to settle split: %v", err)
	}
	balance, err = store.RecomputeRelationshipBalance(ctx, rel.ID)
	if err != nil {
		t.Fatalf("recompute after settle failed: %v", err)
	}
	if balance != 0 {
		t.Errorf("expected zero balance after settlement, got %v", balance)
	}
}

func TestGroupLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com", "Alice")
	group := createTestGroup(t, store, alice)

	groups, err := store.ListGroupsByOwner(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListGroupsByOwner failed: %v", err)
	}
	if len(groups) != 1 || groups[0].ID != group.ID {
		t.Fatalf("expected the created group, got %+v", groups)
	}

	members, err := store.ListGroupMembers(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListGroupMembers failed: %v", err)
	}
	if len(members) != 1 || members[0].Role != models.RoleAdmin {
		t.Fatalf("expected one admin member, got %+v", members)
	}

	group.Name = "renamed"
	if err := store.UpdateGroup(ctx, group); err != nil {
		t.Fatalf("UpdateGroup failed: %v", err)
	}
	got, err := store.GetGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if got.Name != "renamed" {
		t.Errorf("expected renamed group, got %q", got.Name)
	}

	// Deletion is owner scoped.
	if err := store.DeleteGroup(ctx, "someone-else", group.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign owner, got %v", err)
	}
	if err := store.DeleteGroup(ctx, alice.ID, group.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	members, err = store.ListGroupMembers(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListGroupMembers after delete failed: %v", err)
	}
	if len(members) != 0 {
		t.Errorf("expected members to cascade away, got %d", len(members))
	}
}

func TestFindGroupMemberByEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com", "Alice")
	group := createTestGroup(t, store, alice)

	member := &models.GroupMember{
		ID:      uuid.New().String(),
		GroupID: group.ID,
		UserID:  uuid.New().String(),
		Role:    models.RoleMember,
		Name:    "Dave",
		Email:   "Dave@Example.com",
	}
	if err := store.AddGroupMember(ctx, member); err != nil {
		t.Fatalf("AddGroupMember failed: %v", err)
	}

	// Lookup is case insensitive.
	got, err := store.FindGroupMemberByEmail(ctx, group.ID, "dave@example.com")
	if err != nil {
		t.Fatalf("FindGroupMemberByEmail failed: %v", err)
	}
	if got == nil || got.ID != member.ID {
		t.Fatalf("expected member %s, got %+v", member.ID, got)
	}

	got, err = store.FindGroupMemberByEmail(ctx, group.ID, "nobody@example.com")
	if err != nil {
		t.Fatalf("FindGroupMemberByEmail failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for an unknown email, got %+v", got)
	}
}

func TestContacts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com", "Alice")

	contact := &models.Contact{
		ID:       uuid.New().String(),
		OwnerID:  alice.ID,
		Name:     "Eve",
		Email:    "eve@example.com",
		IsActive: true,
	}
	if err := store.CreateContact(ctx, contact); err != nil {
		t.Fatalf("CreateContact failed: %v", err)
	}

	got, err := store.GetContactByEmail(ctx, alice.ID, "eve@example.com")
	if err != nil {
		t.Fatalf("GetContactByEmail failed: %v", err)
	}
	if got == nil || got.ID != contact.ID {
		t.Fatalf("expected contact %s, got %+v", contact.ID, got)
	}

	got, err = store.GetContactByEmail(ctx, alice.ID, "nobody@example.com")
	if err != nil {
		t.Fatalf("GetContactByEmail failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for an unknown email, got %+v", got)
	}

	if err := store.DeactivateContact(ctx, alice.ID, contact.ID); err != nil {
		t.Fatalf("DeactivateContact failed: %v", err)
	}
	contacts, err := store.ListContacts(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListContacts failed: %v", err)
	}
	if len(contacts) != 0 {
		t.Errorf("expected deactivated contact to be hidden, got %d", len(contacts))
	}
}
