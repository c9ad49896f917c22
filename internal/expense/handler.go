package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wanderweb/tripkit/internal/expense/split"
	"github.com/wanderweb/tripkit/internal/money"
	"github.com/wanderweb/tripkit/pkg/middleware"
	"github.com/wanderweb/tripkit/pkg/response"
)

// Handler handles HTTP requests for expense operations
type Handler struct {
	service *Service
}

// NewHandler creates a new expense handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for expense endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	// Group-based listing
	r.Get("/group/{groupId}", h.ListByGroup)

	// Split operations
	r.Post("/splits/{splitId}/pay", h.MarkSplitPaid)

	return r
}

// badRequestErr reports whether err is a validation failure the client caused
func badRequestErr(err error) bool {
	return errors.Is(err, split.ErrInvalidSplitData) ||
		errors.Is(err, split.ErrPayerNotInSplit) ||
		errors.Is(err, money.ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidExpense)
}

// Create handles POST /expenses
// @Summary      Create a new expense
// @Description  Create an expense with per-participant EQUAL, PERCENTAGE, or FIXED splits
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body CreateExpenseRequest true "Expense creation request"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	payerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		payerID = 1 // Default for development
	}

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	expense, err := h.service.CreateExpense(r.Context(), payerID, &req)
	if err != nil {
		if badRequestErr(err) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create expense")
		return
	}

	response.JSON(w, http.StatusCreated, expense.ToResponse())
}

// GetByID handles GET /expenses/{id}
// @Summary      Get expense by ID
// @Description  Get an expense with all its splits
// @Tags         expenses
// @Produce      json
// @Param        id path int true "Expense ID"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	expense, err := h.service.GetExpenseByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get expense")
		return
	}

	response.JSON(w, http.StatusOK, expense.ToResponse())
}

// ListByGroup handles GET /expenses/group/{groupId}
// @Summary      List expenses by group
// @Description  Get a paginated list of expenses for a group
// @Tags         expenses
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Router       /expenses/group/{groupId} [get]
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	expenses, total, err := h.service.ListExpensesByGroupID(r.Context(), groupID, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list expenses")
		return
	}

	expenseResponses := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		expenseResponses[i] = e.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, expenseResponses, meta)
}

// Update handles PUT /expenses/{id}
// @Summary      Update an expense
// @Description  Update expense fields; changing the amount, currency or participants recomputes all splits
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path int true "Expense ID"
// @Param        request body UpdateExpenseRequest true "Expense update request"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		userID = 1
	}

	var req UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	expense, err := h.service.UpdateExpense(r.Context(), id, userID, &req)
	if err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotPayer) {
			response.Forbidden(w, err.Error())
			return
		}
		if badRequestErr(err) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update expense")
		return
	}

	response.JSON(w, http.StatusOK, expense.ToResponse())
}

// Delete handles DELETE /expenses/{id}
// @Summary      Delete an expense
// @Description  Delete an expense (only if no splits are paid)
// @Tags         expenses
// @Produce      json
// @Param        id path int true "Expense ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /expenses/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		userID = 1
	}

	if err := h.service.DeleteExpense(r.Context(), id, userID); err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotPayer) {
			response.Forbidden(w, err.Error())
			return
		}
		if errors.Is(err, ErrCannotDelete) {
			response.Conflict(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete expense")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Expense deleted successfully"})
}

// MarkSplitPaid handles POST /expenses/splits/{splitId}/pay
// @Summary      Mark split as paid
// @Description  Split owner records that they settled their share
// @Tags         splits
// @Produce      json
// @Param        splitId path int true "Split ID"
// @Success      200 {object} response.APIResponse{data=SplitResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/splits/{splitId}/pay [post]
func (h *Handler) MarkSplitPaid(w http.ResponseWriter, r *http.Request) {
	splitID, err := strconv.ParseInt(chi.URLParam(r, "splitId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid split ID")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		userID = 1
	}

	sp, err := h.service.MarkSplitPaid(r.Context(), splitID, userID)
	if err != nil {
		if errors.Is(err, ErrSplitNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotSplitOwner) || errors.Is(err, ErrSplitAlreadyPaid) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to mark split as paid")
		return
	}

	expense, err := h.service.GetExpenseByID(r.Context(), sp.ExpenseID)
	if err != nil {
		response.InternalError(w, "Failed to load expense for split")
		return
	}

	response.JSON(w, http.StatusOK, sp.ToResponse(expense.Currency))
}
