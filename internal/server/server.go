// Package server exposes the registration operations over a loopback JSON
// API
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ayoisaiah/autotrack/internal/models"
	"github.com/ayoisaiah/autotrack/internal/timeutil"
	"github.com/ayoisaiah/autotrack/interval"
	"github.com/ayoisaiah/autotrack/plan"
	"github.com/ayoisaiah/autotrack/registrar"
)

// Registrar is the set of day-level operations served by the API.
type Registrar interface {
	GenerateProvisionalActuals(
		ctx context.Context,
		date time.Time,
	) ([]*models.ScheduleEntry, error)
	ConfirmActuals(ctx context.Context, date time.Time) (int, error)
	DiscardProvisionalActuals(ctx context.Context, date time.Time) (int, error)
	AllocateProvisionalPlan(
		ctx context.Context,
		date time.Time,
		extraHours map[string]float64,
		projectID string,
	) (*registrar.PlanResult, error)
	ConfirmPlan(ctx context.Context, date time.Time) (int, error)
	DiscardProvisionalPlan(ctx context.Context, date time.Time) (int, error)
	FreeSlots(ctx context.Context, date time.Time) ([]models.Slot, error)
}

// Config for the HTTP API handler.
type Config struct {
	Registrar Registrar
	Logger    *slog.Logger
	// Location interprets the {date} path parameter. Defaults to time.Local.
	Location *time.Location
}

type apiErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiError struct {
	Body apiErrorBody `json:"error"`
}

type planRequest struct {
	ExtraHours map[string]float64 `json:"extra_hours"`
	ProjectID  string             `json:"project_id"`
}

type countResponse struct {
	Count int `json:"count"`
}

type entriesResponse struct {
	Entries []*models.ScheduleEntry `json:"entries"`
}

type slotsResponse struct {
	Slots []models.Slot `json:"slots"`
}

type handler struct {
	reg    Registrar
	logger *slog.Logger
	loc    *time.Location
}

// New returns an HTTP handler exposing the registration API.
func New(cfg Config) http.Handler {
	h := &handler{
		reg:    cfg.Registrar,
		logger: cfg.Logger,
		loc:    cfg.Location,
	}

	if h.logger == nil {
		h.logger = slog.Default()
	}

	if h.loc == nil {
		h.loc = time.Local
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Route("/v1/days/{date}", func(r chi.Router) {
		r.Post("/actuals", h.generateActuals)
		r.Post("/actuals/confirm", h.count(h.reg.ConfirmActuals))
		r.Delete("/actuals", h.count(h.reg.DiscardProvisionalActuals))
		r.Post("/plan", h.allocatePlan)
		r.Post("/plan/confirm", h.count(h.reg.ConfirmPlan))
		r.Delete("/plan", h.count(h.reg.DiscardProvisionalPlan))
		r.Get("/slots", h.freeSlots)
	})

	return router
}

func (h *handler) date(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := chi.URLParam(r, "date")

	date, err := time.ParseInLocation(timeutil.DateLayout, raw, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid date "+raw+": expected YYYY-MM-DD")
		return time.Time{}, false
	}

	return date, true
}

func (h *handler) count(
	op func(ctx context.Context, date time.Time) (int, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, ok := h.date(w, r)
		if !ok {
			return
		}

		n, err := op(r.Context(), date)
		if err != nil {
			h.handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, countResponse{Count: n})
	}
}

func (h *handler) generateActuals(w http.ResponseWriter, r *http.Request) {
	date, ok := h.date(w, r)
	if !ok {
		return
	}

	entries, err := h.reg.GenerateProvisionalActuals(r.Context(), date)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if entries == nil {
		entries = []*models.ScheduleEntry{}
	}

	writeJSON(w, http.StatusOK, entriesResponse{Entries: entries})
}

func (h *handler) allocatePlan(w http.ResponseWriter, r *http.Request) {
	date, ok := h.date(w, r)
	if !ok {
		return
	}

	var req planRequest

	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
			return
		}
	}

	res, err := h.reg.AllocateProvisionalPlan(r.Context(), date, req.ExtraHours, req.ProjectID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *handler) freeSlots(w http.ResponseWriter, r *http.Request) {
	date, ok := h.date(w, r)
	if !ok {
		return
	}

	slots, err := h.reg.FreeSlots(r.Context(), date)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if slots == nil {
		slots = []models.Slot{}
	}

	writeJSON(w, http.StatusOK, slotsResponse{Slots: slots})
}

// preconditionErrors are the failures a caller can fix by changing input or
// setup rather than by retrying.
var preconditionErrors = []error{
	plan.ErrNoPreference,
	plan.ErrNegativeOverride,
	plan.ErrMissingScheduledTime,
	interval.ErrMissingBoundary,
}

func (h *handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	for _, target := range preconditionErrors {
		if errors.Is(err, target) {
			writeError(w, http.StatusUnprocessableEntity, "precondition_failed", err.Error())
			return
		}
	}

	h.logger.ErrorContext(
		r.Context(),
		"request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)

	writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Body: apiErrorBody{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
