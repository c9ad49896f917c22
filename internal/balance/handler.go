package balance

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wanderweb/tripkit/pkg/middleware"
	"github.com/wanderweb/tripkit/pkg/response"
)

// Handler handles HTTP requests for balance queries
type Handler struct {
	service *Service
}

// NewHandler creates a new balance handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for balance endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/groups/{groupId}", h.GroupBalances)
	r.Get("/groups/{groupId}/summary", h.GroupSummary)
	r.Get("/me", h.MyBalances)

	return r
}

// warnings converts integrity errors to wire-level warning strings
func warnings(integrity []*IntegrityError) []string {
	if len(integrity) == 0 {
		return nil
	}
	out := make([]string, len(integrity))
	for i, ie := range integrity {
		out[i] = ie.Error()
	}
	return out
}

// GroupBalances handles GET /balances/groups/{groupId}
// @Summary      Get group balances
// @Description  Get the net balance of every group member, computed per currency
// @Tags         balances
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]BalanceResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /balances/groups/{groupId} [get]
func (h *Handler) GroupBalances(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	balances, integrity, err := h.service.GroupBalances(r.Context(), groupID)
	if err != nil {
		response.InternalError(w, "Failed to compute balances")
		return
	}

	balanceResponses := make([]*BalanceResponse, len(balances))
	for i, b := range balances {
		balanceResponses[i] = b.ToResponse()
	}

	response.JSONWithWarnings(w, http.StatusOK, balanceResponses, warnings(integrity))
}

// GroupSummary handles GET /balances/groups/{groupId}/summary
// @Summary      Get group spending summary
// @Description  Get per-currency totals broken down by category and member
// @Tags         balances
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]SummaryResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /balances/groups/{groupId}/summary [get]
func (h *Handler) GroupSummary(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	summaries, integrity, err := h.service.GroupSummary(r.Context(), groupID)
	if err != nil {
		response.InternalError(w, "Failed to compute summary")
		return
	}

	summaryResponses := make([]*SummaryResponse, len(summaries))
	for i, s := range summaries {
		summaryResponses[i] = s.ToResponse()
	}

	response.JSONWithWarnings(w, http.StatusOK, summaryResponses, warnings(integrity))
}

// MyBalances handles GET /balances/me
// @Summary      Get my balances
// @Description  Get the acting user's net position per currency across all their expenses
// @Tags         balances
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]BalanceResponse}
// @Router       /balances/me [get]
func (h *Handler) MyBalances(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		userID = 1
	}

	balances, integrity, err := h.service.UserBalances(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to compute balances")
		return
	}

	balanceResponses := make([]*BalanceResponse, len(balances))
	for i, b := range balances {
		balanceResponses[i] = b.ToResponse()
	}

	response.JSONWithWarnings(w, http.StatusOK, balanceResponses, warnings(integrity))
}
