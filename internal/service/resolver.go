package service

import (
	"fmt"

	"github.com/splitledger/splitledger/internal/models"
)

// SplitEntry is one submitted split as it arrives over the wire: nullable
// identity fields plus an optional explicit guest flag. classifyParticipant
// collapses this into the Participant sum type exactly once; everything
// downstream works with the typed form.
type SplitEntry struct {
	// LocalID is a client-side handle for the entry, only meaningful
	// within the same request. Guests carry no stable identity, so this
	// is how a guest entry can be named as the payer.
	LocalID string

	UserID string

	IsGuest     bool
	GuestName   string
	GuestEmail  string
	GuestMobile string

	// Amount is the share for custom splits; Percentage for percentage
	// splits. The unused field is ignored.
	Amount     float64
	Percentage float64

	Notes string
}

// classifyParticipant decides whether an entry is a guest or a registered
// user. An entry is a guest if it carries the explicit flag, or if it has
// contact fields but no resolvable participant identity.
func classifyParticipant(e SplitEntry) (models.Participant, error) {
	if e.IsGuest || (e.UserID == "" && (e.GuestName != "" || e.GuestEmail != "")) {
		return models.Guest{Name: e.GuestName, Email: e.GuestEmail, Phone: e.GuestMobile}, nil
	}
	if e.UserID == "" {
		return nil, fmt.Errorf("split entry has neither a user id nor guest contact fields")
	}
	return models.Registered{UserID: e.UserID}, nil
}

// resolvePayer determines who is treated as having paid. When paidBy names
// a guest entry (matched by the entry's own local id), the payer is that
// guest's contact bundle and no registered payer is set. Otherwise the
// registered payer is paidBy, defaulting to the caller.
//
// The result is transaction-level metadata: the orchestrator stamps it onto
// every split row in the batch, not only the payer's own row.
func resolvePayer(entries []SplitEntry, paidBy, callerID string) models.Payer {
	if paidBy == "" {
		return models.Payer{UserID: callerID}
	}

	for _, e := range entries {
		if e.LocalID == "" || e.LocalID != paidBy {
			continue
		}
		p, err := classifyParticipant(e)
		if err != nil {
			break
		}
		switch pp := p.(type) {
		case models.Guest:
			return models.Payer{
				GuestName:   pp.Name,
				GuestEmail:  pp.Email,
				GuestMobile: pp.Phone,
			}
		case models.Registered:
			return models.Payer{UserID: pp.UserID}
		}
		break
	}

	return models.Payer{UserID: paidBy}
}
