package models

// Member roles within a group.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Group is a named roster of members who split expenses together.
// Owned by its creator; soft-deactivated via IsActive or hard-deleted,
// depending on the flow.
type Group struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
	IsActive    bool
	CreatedAt   int64
	UpdatedAt   int64
}

// GroupMember is one entry in a group roster. A member may not correspond
// to any account: guests are provisioned with a synthetic user id and
// IsRegisteredUser=false, and are identified by the denormalized contact
// fields alone.
type GroupMember struct {
	ID      string
	GroupID string

	// UserID is a real account id for registered members and a freshly
	// generated synthetic id for guests.
	UserID string

	Role             string
	Name             string
	Email            string
	Phone            string
	Relationship     string
	IsRegisteredUser bool
	CreatedAt        int64
}

// GroupBalance is one member's net position across a group's unsettled
// splits. Positive NetBalance means the member is owed money.
type GroupBalance struct {
	UserID     string
	Name       string
	NetBalance float64
	TotalPaid  float64
	TotalOwed  float64
}

// DebtEdge is one simplified debt between two members.
type DebtEdge struct {
	FromUserID string
	FromName   string
	ToUserID   string
	ToName     string
	Amount     float64
}
