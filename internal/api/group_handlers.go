package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitledger/splitledger/internal/middleware"
	"github.com/splitledger/splitledger/internal/service"
)

type groupHandlers struct {
	groups *service.GroupService
	splits *service.SplitService
}

type groupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

func (h *groupHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	group, err := h.groups.CreateGroup(r.Context(), middleware.UserID(r.Context()), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupView(group))
}

func (h *groupHandlers) list(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.ListGroups(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]groupView, 0, len(groups))
	for _, g := range groups {
		views = append(views, toGroupView(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": views})
}

func (h *groupHandlers) get(w http.ResponseWriter, r *http.Request) {
	group, err := h.groups.GetGroup(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupView(group))
}

func (h *groupHandlers) update(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	group, err := h.groups.UpdateGroup(r.Context(), middleware.UserID(r.Context()),
		chi.URLParam(r, "groupID"), req.Name, req.Description, req.IsActive)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupView(group))
}

func (h *groupHandlers) delete(w http.ResponseWriter, r *http.Request) {
	err := h.groups.DeleteGroup(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type memberRequest struct {
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
	Role         string `json:"role"`
}

func (r memberRequest) toInput() service.MemberInput {
	return service.MemberInput{
		UserID:       r.UserID,
		Name:         r.Name,
		Email:        r.Email,
		Phone:        r.Phone,
		Relationship: r.Relationship,
		Role:         r.Role,
	}
}

func (h *groupHandlers) listMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.groups.ListMembers(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]memberView, 0, len(members))
	for _, m := range members {
		views = append(views, toMemberView(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": views})
}

func (h *groupHandlers) addMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	member, err := h.groups.AddMember(r.Context(), middleware.UserID(r.Context()),
		chi.URLParam(r, "groupID"), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMemberView(member))
}

func (h *groupHandlers) updateMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	member, err := h.groups.UpdateMember(r.Context(), middleware.UserID(r.Context()),
		chi.URLParam(r, "memberID"), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberView(member))
}

func (h *groupHandlers) removeMember(w http.ResponseWriter, r *http.Request) {
	err := h.groups.RemoveMember(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "memberID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *groupHandlers) balances(w http.ResponseWriter, r *http.Request) {
	members, edges, err := h.splits.GroupBalances(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, err)
		return
	}

	balances := make([]balanceView, 0, len(members))
	for _, m := range members {
		balances = append(balances, balanceView(m))
	}
	debts := make([]debtView, 0, len(edges))
	for _, e := range edges {
		debts = append(debts, debtView(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"balances": balances, "suggested_settlements": debts})
}

func (h *groupHandlers) listExpenses(w http.ResponseWriter, r *http.Request) {
	txns, err := h.splits.ListGroupExpenses(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]transactionView, 0, len(txns))
	for _, t := range txns {
		views = append(views, toTransactionView(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": views})
}
