package api

import "github.com/splitledger/splitledger/internal/models"

// Wire representations of the domain models.

type userView struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

func toUserView(u *models.User) userView {
	return userView{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName, CreatedAt: u.CreatedAt}
}

type groupView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"owner_id"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

func toGroupView(g *models.Group) groupView {
	return groupView{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		OwnerID:     g.OwnerID,
		IsActive:    g.IsActive,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

type memberView struct {
	ID               string `json:"id"`
	GroupID          string `json:"group_id"`
	UserID           string `json:"user_id"`
	Role             string `json:"role"`
	Name             string `json:"name"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Relationship     string `json:"relationship,omitempty"`
	IsRegisteredUser bool   `json:"is_registered_user"`
	CreatedAt        int64  `json:"created_at"`
}

func toMemberView(m *models.GroupMember) memberView {
	return memberView{
		ID:               m.ID,
		GroupID:          m.GroupID,
		UserID:           m.UserID,
		Role:             m.Role,
		Name:             m.Name,
		Email:            m.Email,
		Phone:            m.Phone,
		Relationship:     m.Relationship,
		IsRegisteredUser: m.IsRegisteredUser,
		CreatedAt:        m.CreatedAt,
	}
}

type contactView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

func toContactView(c *models.Contact) contactView {
	return contactView{
		ID:           c.ID,
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		Relationship: c.Relationship,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

type transactionView struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category,omitempty"`
	Notes       string  `json:"notes,omitempty"`
	GroupID     string  `json:"group_id,omitempty"`
	SplitCount  int     `json:"split_count"`
	SplitType   string  `json:"split_type"`
	CreatedAt   int64   `json:"created_at"`
}

func toTransactionView(t *models.Transaction) transactionView {
	return transactionView{
		ID:          t.ID,
		Description: t.Description,
		Amount:      t.Amount,
		Category:    t.Category,
		Notes:       t.Notes,
		GroupID:     t.GroupID,
		SplitCount:  t.SplitCount,
		SplitType:   t.SplitType,
		CreatedAt:   t.CreatedAt,
	}
}

type splitView struct {
	ID                string  `json:"id"`
	TransactionID     string  `json:"transaction_id"`
	IsGuest           bool    `json:"is_guest"`
	UserID            string  `json:"user_id,omitempty"`
	GuestName         string  `json:"guest_name,omitempty"`
	GuestEmail        string  `json:"guest_email,omitempty"`
	GuestMobile       string  `json:"guest_mobile,omitempty"`
	GroupID           string  `json:"group_id,omitempty"`
	ShareAmount       float64 `json:"share_amount"`
	SharePercentage   float64 `json:"share_percentage,omitempty"`
	SplitType         string  `json:"split_type"`
	PaidBy            string  `json:"paid_by,omitempty"`
	PaidByGuestName   string  `json:"paid_by_guest_name,omitempty"`
	PaidByGuestEmail  string  `json:"paid_by_guest_email,omitempty"`
	PaidByGuestMobile string  `json:"paid_by_guest_mobile,omitempty"`
	RelationshipID    string  `json:"relationship_id,omitempty"`
	Notes             string  `json:"notes,omitempty"`
	Settled           bool    `json:"settled"`
	SettlementMethod  string  `json:"settlement_method,omitempty"`
	SettlementNotes   string  `json:"settlement_notes,omitempty"`
	SettledAt         int64   `json:"settled_at,omitempty"`
	CreatedAt         int64   `json:"created_at"`
}

func toSplitView(sp *models.TransactionSplit) splitView {
	return splitView{
		ID:                sp.ID,
		TransactionID:     sp.TransactionID,
		IsGuest:           sp.IsGuest,
		UserID:            sp.UserID,
		GuestName:         sp.GuestName,
		GuestEmail:        sp.GuestEmail,
		GuestMobile:       sp.GuestMobile,
		GroupID:           sp.GroupID,
		ShareAmount:       sp.ShareAmount,
		SharePercentage:   sp.SharePercentage,
		SplitType:         sp.SplitType,
		PaidBy:            sp.PaidBy,
		PaidByGuestName:   sp.PaidByGuestName,
		PaidByGuestEmail:  sp.PaidByGuestEmail,
		PaidByGuestMobile: sp.PaidByGuestMobile,
		RelationshipID:    sp.RelationshipID,
		Notes:             sp.Notes,
		Settled:           sp.Settled,
		SettlementMethod:  sp.SettlementMethod,
		SettlementNotes:   sp.SettlementNotes,
		SettledAt:         sp.SettledAt,
		CreatedAt:         sp.CreatedAt,
	}
}

type balanceView struct {
	UserID     string  `json:"user_id"`
	Name       string  `json:"name"`
	NetBalance float64 `json:"net_balance"`
	TotalPaid  float64 `json:"total_paid"`
	TotalOwed  float64 `json:"total_owed"`
}

type debtView struct {
	FromUserID string  `json:"from_user_id"`
	FromName   string  `json:"from_name"`
	ToUserID   string  `json:"to_user_id"`
	ToName     string  `json:"to_name"`
	Amount     float64 `json:"amount"`
}

type refreshView struct {
	RelationshipID string  `json:"relationship_id"`
	Balance        float64 `json:"balance"`
	Error          string  `json:"error,omitempty"`
}
