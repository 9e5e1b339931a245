// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/splitledger/splitledger/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence operations the services need. Row CRUD for
// groups, members, contacts and users, plus the two atomic procedures
// (transaction-with-splits creation and split settlement) and the
// relationship-balance operations. The abstraction allows swapping storage
// backends without changing the service layer.
type Store interface {
	// Users.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Groups. CreateGroup inserts the group and its creator's admin
	// membership together.
	CreateGroup(ctx context.Context, group *models.Group, creator *models.GroupMember) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListGroupsByOwner(ctx context.Context, ownerID string) ([]*models.Group, error)
	UpdateGroup(ctx context.Context, group *models.Group) error
	DeleteGroup(ctx context.Context, ownerID, groupID string) error

	// Group members.
	ListGroupMembers(ctx context.Context, groupID string) ([]*models.GroupMember, error)
	GetGroupMember(ctx context.Context, memberID string) (*models.GroupMember, error)
	// FindGroupMemberByEmail returns nil (no error) when no member matches.
	FindGroupMemberByEmail(ctx context.Context, groupID, email string) (*models.GroupMember, error)
	// FindGroupMemberByUserID returns nil (no error) when no member matches.
	FindGroupMemberByUserID(ctx context.Context, groupID, userID string) (*models.GroupMember, error)
	AddGroupMember(ctx context.Context, member *models.GroupMember) error
	UpdateGroupMember(ctx context.Context, member *models.GroupMember) error
	RemoveGroupMember(ctx context.Context, memberID string) error

	// Contacts. GetContactByEmail returns nil (no error) when absent.
	CreateContact(ctx context.Context, contact *models.Contact) error
	GetContact(ctx context.Context, ownerID, contactID string) (*models.Contact, error)
	GetContactByEmail(ctx context.Context, ownerID, email string) (*models.Contact, error)
	ListContacts(ctx context.Context, ownerID string) ([]*models.Contact, error)
	UpdateContact(ctx context.Context, contact *models.Contact) error
	DeactivateContact(ctx context.Context, ownerID, contactID string) error

	// Transactions and splits. CreateTransactionWithSplits inserts the
	// transaction and every split row in one all-or-nothing unit and
	// returns the transaction id.
	CreateTransactionWithSplits(ctx context.Context, txn *models.Transaction, splits []*models.TransactionSplit) (string, error)
	SettleTransactionSplit(ctx context.Context, splitID, settlementMethod, notes string) (bool, error)
	GetTransaction(ctx context.Context, txnID string) (*models.Transaction, []*models.TransactionSplit, error)
	ListTransactionsByGroup(ctx context.Context, groupID string) ([]*models.Transaction, error)
	GetTransactionSplit(ctx context.Context, splitID string) (*models.TransactionSplit, error)

	// Relationships. FindOrCreateRelationship canonicalizes the pair order,
	// so (a, b) and (b, a) resolve to the same row.
	FindOrCreateRelationship(ctx context.Context, userA, userB string) (*models.Relationship, error)
	GetRelationship(ctx context.Context, relationshipID string) (*models.Relationship, error)
	// RecomputeRelationshipBalance rebuilds the cached balance from the
	// unsettled split rows linked to the relationship and returns the new
	// value. Recomputation from source rows makes concurrent refreshes
	// converge.
	RecomputeRelationshipBalance(ctx context.Context, relationshipID string) (float64, error)

	// GetGroupBalances nets per-member balances over a group's unsettled
	// splits.
	GetGroupBalances(ctx context.Context, groupID string) ([]models.GroupBalance, []models.DebtEdge, error)

	// Close releases any resources held by the store.
	Close() error
}
