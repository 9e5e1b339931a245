package models

// Participant identifies one party to a split: either a registered user
// or a guest known only by contact fields.
type Participant interface {
	isParticipant()
}

// Registered is a participant with a real account.
type Registered struct {
	UserID string
}

// Guest is a participant with no resolvable account identity.
type Guest struct {
	Name  string
	Email string
	Phone string
}

func (Registered) isParticipant() {}
func (Guest) isParticipant()      {}

// Payer records who actually paid a transaction. Exactly one of the two
// cases is populated: a registered user id, or a guest bundle copied from
// the paying guest's own split entry.
type Payer struct {
	// UserID is the registered payer. Empty means a guest paid.
	UserID string

	GuestName   string
	GuestEmail  string
	GuestMobile string
}

// IsGuest reports whether the payer is a guest.
func (p Payer) IsGuest() bool {
	return p.UserID == ""
}
