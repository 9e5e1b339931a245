package models

// Contact is a lightweight address-book entry owned by a user, unique per
// (owner, email). Soft-deleted via IsActive.
type Contact struct {
	ID           string
	OwnerID      string
	Name         string
	Email        string
	Phone        string
	Relationship string
	IsActive     bool
	CreatedAt    int64
	UpdatedAt    int64
}
