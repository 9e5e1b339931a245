package models

// Split strategies.
const (
	SplitTypeEqual      = "equal"
	SplitTypePercentage = "percentage"
	SplitTypeCustom     = "custom"
)

// Transaction is one expense record. It owns one or more TransactionSplits,
// created together with it in a single atomic store operation.
type Transaction struct {
	ID          string
	OwnerID     string
	Description string
	Amount      float64
	Category    string
	Notes       string
	GroupID     string

	// Split bookkeeping, stamped by the submission orchestrator.
	SplitCount int
	SplitType  string
	HasSplits  bool

	CreatedAt int64
}

// TransactionSplit is one participant's obligation against a transaction.
//
// The row identifies its owner either by UserID (registered) or by the
// guest_* fields (guest), never both. The paid_by_* fields are payer
// metadata duplicated onto every row of a batch: PaidBy holds the
// registered payer id, or is empty with the PaidByGuest* fields populated
// when a guest paid.
type TransactionSplit struct {
	ID            string
	TransactionID string

	IsGuest     bool
	UserID      string
	GuestName   string
	GuestEmail  string
	GuestMobile string

	GroupID         string
	ShareAmount     float64
	SharePercentage float64
	SplitType       string

	PaidBy            string
	PaidByGuestName   string
	PaidByGuestEmail  string
	PaidByGuestMobile string

	// RelationshipID links the split to the bilateral ledger between payer
	// and participant. Empty when no relationship could be resolved.
	RelationshipID string

	Notes            string
	Settled          bool
	SettlementMethod string
	SettlementNotes  string
	SettledAt        int64
	CreatedAt        int64
}

// Relationship is a bilateral ledger between two registered users. The pair
// is stored in canonical order (UserA < UserB). Balance is a cache recomputed
// from unsettled split rows; positive means UserB owes UserA.
type Relationship struct {
	ID        string
	UserA     string
	UserB     string
	Balance   float64
	CreatedAt int64
	UpdatedAt int64
}
