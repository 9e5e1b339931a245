package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitledger/splitledger/internal/middleware"
	"github.com/splitledger/splitledger/internal/service"
)

type expenseHandlers struct {
	splits *service.SplitService
}

type splitEntryRequest struct {
	LocalID     string  `json:"local_id"`
	UserID      string  `json:"user_id"`
	IsGuest     bool    `json:"is_guest"`
	GuestName   string  `json:"guest_name"`
	GuestEmail  string  `json:"guest_email"`
	GuestMobile string  `json:"guest_mobile"`
	Amount      float64 `json:"amount"`
	Percentage  float64 `json:"percentage"`
	Notes       string  `json:"notes"`
}

type expenseRequest struct {
	Description string              `json:"description"`
	Amount      float64             `json:"amount"`
	Category    string              `json:"category"`
	Notes       string              `json:"notes"`
	GroupID     string              `json:"group_id"`
	SplitType   string              `json:"split_type"`
	PaidBy      string              `json:"paid_by"`
	Splits      []splitEntryRequest `json:"splits"`
}

func (req expenseRequest) toInput() service.ExpenseInput {
	entries := make([]service.SplitEntry, len(req.Splits))
	for i, s := range req.Splits {
		entries[i] = service.SplitEntry{
			LocalID:     s.LocalID,
			UserID:      s.UserID,
			IsGuest:     s.IsGuest,
			GuestName:   s.GuestName,
			GuestEmail:  s.GuestEmail,
			GuestMobile: s.GuestMobile,
			Amount:      s.Amount,
			Percentage:  s.Percentage,
			Notes:       s.Notes,
		}
	}
	return service.ExpenseInput{
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		Notes:       req.Notes,
		GroupID:     req.GroupID,
		SplitType:   req.SplitType,
		PaidBy:      req.PaidBy,
		Entries:     entries,
	}
}

func (h *expenseHandlers) submit(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	txnID, refreshes, err := h.splits.SubmitExpense(r.Context(), middleware.UserID(r.Context()), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]refreshView, 0, len(refreshes))
	for _, res := range refreshes {
		v := refreshView{RelationshipID: res.RelationshipID, Balance: res.Balance}
		if res.Err != nil {
			v.Error = "balance refresh failed"
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"transaction_id": txnID,
		"refreshes":      views,
	})
}

func (h *expenseHandlers) get(w http.ResponseWriter, r *http.Request) {
	txn, splits, err := h.splits.GetExpense(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "txnID"))
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]splitView, 0, len(splits))
	for _, sp := range splits {
		views = append(views, toSplitView(sp))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"expense": toTransactionView(txn),
		"splits":  views,
	})
}

type settleRequest struct {
	Method string `json:"method"`
	Notes  string `json:"notes"`
}

func (h *expenseHandlers) settle(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	settled, err := h.splits.Settle(r.Context(), middleware.UserID(r.Context()),
		chi.URLParam(r, "splitID"), req.Method, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"settled": settled})
}
