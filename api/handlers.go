/*
handlers.go - HTTP handlers for the route-sheet capture workflow

PURPOSE:
  Exposes the draft state machine to UI shells. Handles HTTP
  request/response and JSON; every decision is delegated to the draft,
  the validators and the stores.

ENDPOINTS:
  Drafts:
    POST   /api/drafts                     Open a new draft
    GET    /api/drafts/{id}                Draft state snapshot
    POST   /api/drafts/{id}/advance        Advance with the step's input
    POST   /api/drafts/{id}/retreat        Step back
    POST   /api/drafts/{id}/reset          Cancel and start over
    GET    /api/drafts/{id}/summary        Live reconciliation
    POST   /api/drafts/{id}/submit         Submit to the store

  Ledgers:
    POST   /api/drafts/{id}/trips           Append a trip
    PUT    /api/drafts/{id}/trips/{tid}     Update a trip
    DELETE /api/drafts/{id}/trips/{tid}     Remove (renumbers the rest)
    POST   /api/drafts/{id}/expenses        Append an expense
    PUT    /api/drafts/{id}/expenses/{eid}  Update an expense
    DELETE /api/drafts/{id}/expenses/{eid}  Remove an expense

  Sheets:
    GET    /api/sheets                     Submitted sheet listing
    GET    /api/sheets/{id}                One submitted sheet

ERROR HANDLING:
  - 400: validation failures (field-keyed), malformed bodies
  - 404: unknown draft/sheet/record ids
  - 409: navigation conflicts (gates, in-flight submission, terminal)
  - 422: submission blocked by unresolved trips (sequence list attached)
  - 502: the persistence collaborator failed; draft intact, retryable

SECURITY NOTE:
  No authentication; the session layer in front of this API owns it.
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/warp/routesheet-engine/draft"
	"github.com/warp/routesheet-engine/pay"
	"github.com/warp/routesheet-engine/sheet"
	"github.com/warp/routesheet-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers. Each draft is owned
// by a single user session; the mutex only guards the registry map.
type Handler struct {
	Store *sqlite.Store
	Plan  pay.Plan

	mu     sync.RWMutex
	drafts map[string]*draft.Draft
}

// NewHandler creates a handler over the given store and plan.
func NewHandler(store *sqlite.Store, plan pay.Plan) *Handler {
	return &Handler{
		Store:  store,
		Plan:   plan,
		drafts: make(map[string]*draft.Draft),
	}
}

func (h *Handler) draftByID(id string) (*draft.Draft, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	d, ok := h.drafts[id]
	return d, ok
}

// =============================================================================
// DRAFT LIFECYCLE
// =============================================================================

// CreateDraft opens a new empty draft.
func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	d := draft.New(h.Plan, h.Store)

	h.mu.Lock()
	h.drafts[d.ID()] = d
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, draftDTO(d))
}

// GetDraft returns a draft snapshot.
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draftByID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Draft not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, draftDTO(d))
}

// Advance validates the body against the draft's current step and moves
// forward. The trips and expenses steps take an empty body.
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draftByID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Draft not found", nil)
		return
	}

	var input any
	switch d.State().Step {
	case draft.StepIdentity:
		var req IdentityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
		input = req.toInput()
	case draft.StepVehicle:
		var req VehicleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
		input = req.toInput()
	default:
		input = nil
	}

	if err := d.Advance(input); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftDTO(d))
}

// Retreat steps back without discarding data.
func (h *Handler) Retreat(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draftByID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Draft not found", nil)
		return
	}
	if err := d.Retreat(); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftDTO(d))
}

// Reset cancels the draft back to an empty record.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draftByID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Draft not found", nil)
		return
	}
	if err := d.Reset(); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftDTO(d))
}

// GetSummary recomputes the live reconciliation.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draftByID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Draft not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, summaryDTO(d.Summary()))
}

// Submit hands the completed draft to the store.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draftByID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Draft not found", nil)
		return
	}

	sheetID, err := d.Submit(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"sheetId": sheetID})
}

// =============================================================================
// LEDGER HANDLERS
// =============================================================================

func (h *Handler) AddTrip(w http.ResponseWriter, r *http.Request) {
	h.dispatchTrip(w, r, func(req TripRequest, _ string) draft.Action {
		return draft.AddTrip{In: req.toInput()}
	})
}

func (h *Handler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	h.dispatchTrip(w, r, func(req TripRequest, tripID string) draft.Action {
		return draft.UpdateTrip{ID: tripID, In: req.toInput()}
	})
}

func (h *Handler) RemoveTrip(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draftByID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Draft not found", nil)
		return
	}
	if err := d.Dispatch(draft.RemoveTrip{ID: chi.URLParam(r, "tripID")}); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftDTO(d))
}

func (h *Handler) dispatchTrip(w http.ResponseWriter, r *http.Request, build func(TripRequest, string) draft.Action) {
	d, ok := h.draftByID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Draft not found", nil)
		return
	}
	var req TripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := d.Dispatch(build(req, chi.URLParam(r, "tripID"))); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftDTO(d))
}

func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	h.dispatchExpense(w, r, func(req ExpenseRequest, _ string) draft.Action {
		return draft.AddExpense{In: req.toInput()}
	})
}

func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	h.dispatchExpense(w, r, func(req ExpenseRequest, expenseID string) draft.Action {
		return draft.UpdateExpense{ID: expenseID, In: req.toInput()}
	})
}

func (h *Handler) RemoveExpense(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draftByID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Draft not found", nil)
		return
	}
	if err := d.Dispatch(draft.RemoveExpense{ID: chi.URLParam(r, "expenseID")}); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftDTO(d))
}

func (h *Handler) dispatchExpense(w http.ResponseWriter, r *http.Request, build func(ExpenseRequest, string) draft.Action) {
	d, ok := h.draftByID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Draft not found", nil)
		return
	}
	var req ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := d.Dispatch(build(req, chi.URLParam(r, "expenseID"))); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftDTO(d))
}

// =============================================================================
// SUBMITTED SHEETS
// =============================================================================

// ListSheets returns submitted sheet summaries, optionally filtered by
// ?driver=.
func (h *Handler) ListSheets(w http.ResponseWriter, r *http.Request) {
	sheets, err := h.Store.List(r.Context(), r.URL.Query().Get("driver"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sheets", err)
		return
	}
	writeJSON(w, http.StatusOK, sheets)
}

// GetSheet returns one submitted sheet as its full payload.
func (h *Handler) GetSheet(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sqlite.ErrSheetNotFound) {
			writeError(w, http.StatusNotFound, "Sheet not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load sheet", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	dto := ErrorDTO{Error: msg}
	if err != nil {
		dto.Error = msg + ": " + err.Error()
	}
	writeJSON(w, status, dto)
}

// writeDomainError maps domain errors onto the status codes the error
// taxonomy calls for.
func writeDomainError(w http.ResponseWriter, err error) {
	var fieldErrs sheet.FieldErrors
	if errors.As(err, &fieldErrs) {
		writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: "validation failed", Fields: fieldErrs})
		return
	}

	var incomplete *sheet.IncompleteTripsError
	if errors.As(err, &incomplete) {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorDTO{
			Error:     err.Error(),
			Sequences: incomplete.Sequences,
		})
		return
	}

	switch {
	case errors.Is(err, sheet.ErrTripNotFound), errors.Is(err, sheet.ErrExpenseNotFound):
		writeError(w, http.StatusNotFound, "Record not found", err)
	case errors.Is(err, sheet.ErrNoTrips),
		errors.Is(err, draft.ErrAtFirstStep),
		errors.Is(err, draft.ErrAtLastStep),
		errors.Is(err, draft.ErrWrongInput),
		errors.Is(err, draft.ErrStepsIncomplete),
		errors.Is(err, draft.ErrSubmitting),
		errors.Is(err, draft.ErrSubmitted):
		writeError(w, http.StatusConflict, "Cannot perform this transition", err)
	default:
		// Submission failures from the persistence collaborator come
		// through verbatim; the draft is intact and retryable.
		writeError(w, http.StatusBadGateway, "Submission failed", err)
	}
}
