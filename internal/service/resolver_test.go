package service

import (
	"testing"

	"github.com/splitledger/splitledger/internal/models"
)

func TestClassifyParticipant(t *testing.T) {
	tests := []struct {
		name      string
		entry     SplitEntry
		wantGuest bool
		wantErr   bool
	}{
		{
			name:  "registered user",
			entry: SplitEntry{UserID: "user-1"},
		},
		{
			name:      "explicit guest flag",
			entry:     SplitEntry{IsGuest: true, GuestName: "Carol"},
			wantGuest: true,
		},
		{
			name:      "guest inferred from contact fields",
			entry:     SplitEntry{GuestName: "Carol", GuestEmail: "carol@example.com"},
			wantGuest: true,
		},
		{
			name:      "guest flag wins over user id",
			entry:     SplitEntry{IsGuest: true, UserID: "user-1", GuestName: "Carol"},
			wantGuest: true,
		},
		{
			name:    "no identity at all",
			entry:   SplitEntry{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := classifyParticipant(tt.entry)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			_, isGuest := p.(models.Guest)
			if isGuest != tt.wantGuest {
				t.Errorf("guest = %v, want %v", isGuest, tt.wantGuest)
			}
		})
	}
}

func TestResolvePayer(t *testing.T) {
	entries := []SplitEntry{
		{LocalID: "local-1", UserID: "user-1"},
		{LocalID: "local-2", IsGuest: true, GuestName: "Carol", GuestEmail: "carol@example.com", GuestMobile: "555"},
	}

	tests := []struct {
		name   string
		paidBy string
		want   models.Payer
	}{
		{
			name: "empty defaults to caller",
			want: models.Payer{UserID: "caller"},
		},
		{
			name:   "guest matched by local id",
			paidBy: "local-2",
			want:   models.Payer{GuestName: "Carol", GuestEmail: "carol@example.com", GuestMobile: "555"},
		},
		{
			name:   "registered entry matched by local id",
			paidBy: "local-1",
			want:   models.Payer{UserID: "user-1"},
		},
		{
			name:   "unmatched id taken as a user id",
			paidBy: "user-9",
			want:   models.Payer{UserID: "user-9"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolvePayer(entries, tt.paidBy, "caller")
			if got != tt.want {
				t.Errorf("resolvePayer() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolvePayerGuestIsGuest(t *testing.T) {
	entries := []SplitEntry{
		{LocalID: "g", IsGuest: true, GuestName: "Carol"},
	}
	payer := resolvePayer(entries, "g", "caller")
	if !payer.IsGuest() {
		t.Error("expected a guest payer")
	}
}
