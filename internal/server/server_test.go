package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ayoisaiah/autotrack/internal/models"
	"github.com/ayoisaiah/autotrack/plan"
	"github.com/ayoisaiah/autotrack/registrar"
)

var testDay = time.Date(2024, time.July, 3, 0, 0, 0, 0, time.UTC)

type fakeRegistrar struct {
	err       error
	plan      *registrar.PlanResult
	extra     map[string]float64
	projectID string
	dates     []time.Time
	slots     []models.Slot
}

func (f *fakeRegistrar) record(date time.Time) {
	f.dates = append(f.dates, date)
}

func (f *fakeRegistrar) GenerateProvisionalActuals(
	_ context.Context,
	date time.Time,
) ([]*models.ScheduleEntry, error) {
	f.record(date)

	return nil, f.err
}

func (f *fakeRegistrar) ConfirmActuals(_ context.Context, date time.Time) (int, error) {
	f.record(date)

	return 2, f.err
}

func (f *fakeRegistrar) DiscardProvisionalActuals(_ context.Context, date time.Time) (int, error) {
	f.record(date)

	return 1, f.err
}

func (f *fakeRegistrar) AllocateProvisionalPlan(
	_ context.Context,
	date time.Time,
	extraHours map[string]float64,
	projectID string,
) (*registrar.PlanResult, error) {
	f.record(date)
	f.extra = extraHours
	f.projectID = projectID

	return f.plan, f.err
}

func (f *fakeRegistrar) ConfirmPlan(_ context.Context, date time.Time) (int, error) {
	f.record(date)

	return 3, f.err
}

func (f *fakeRegistrar) DiscardProvisionalPlan(_ context.Context, date time.Time) (int, error) {
	f.record(date)

	return 0, f.err
}

func (f *fakeRegistrar) FreeSlots(_ context.Context, date time.Time) ([]models.Slot, error) {
	f.record(date)

	return f.slots, f.err
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer

	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}

	return rec, out
}

func newHandler(f *fakeRegistrar) http.Handler {
	return New(Config{Registrar: f, Location: time.UTC})
}

func TestHealth(t *testing.T) {
	rec, out := do(t, newHandler(&fakeRegistrar{}), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK || out["status"] != "ok" {
		t.Fatalf("unexpected health response: %d %v", rec.Code, out)
	}
}

func TestCountRoutes(t *testing.T) {
	testCases := []struct {
		Method string
		Path   string
		Count  float64
	}{
		{http.MethodPost, "/v1/days/2024-07-03/actuals/confirm", 2},
		{http.MethodDelete, "/v1/days/2024-07-03/actuals", 1},
		{http.MethodPost, "/v1/days/2024-07-03/plan/confirm", 3},
		{http.MethodDelete, "/v1/days/2024-07-03/plan", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.Method+" "+tc.Path, func(t *testing.T) {
			f := &fakeRegistrar{}

			rec, out := do(t, newHandler(f), tc.Method, tc.Path, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %v", rec.Code, out)
			}

			if out["count"] != tc.Count {
				t.Errorf("expected count %v, got %v", tc.Count, out["count"])
			}

			if len(f.dates) != 1 || !f.dates[0].Equal(testDay) {
				t.Errorf("expected the path date to be passed, got %v", f.dates)
			}
		})
	}
}

func TestGenerateActualsEmpty(t *testing.T) {
	rec, out := do(t, newHandler(&fakeRegistrar{}), http.MethodPost, "/v1/days/2024-07-03/actuals", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if entries, ok := out["entries"].([]any); !ok || len(entries) != 0 {
		t.Errorf("expected an empty entries list, got %v", out["entries"])
	}
}

func TestAllocatePlanOverruns(t *testing.T) {
	f := &fakeRegistrar{
		plan: &registrar.PlanResult{
			Overruns: []models.OverrunTask{{TaskID: "T", ScheduledTime: time.Hour}},
		},
	}

	body := planRequest{ExtraHours: map[string]float64{"U": 1.5}, ProjectID: "p1"}

	rec, out := do(t, newHandler(f), http.MethodPost, "/v1/days/2024-07-03/plan", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("overruns must not be an HTTP error, got %d", rec.Code)
	}

	if out["success"] != false {
		t.Errorf("expected success false, got %v", out["success"])
	}

	if diff := cmp.Diff(body.ExtraHours, f.extra); diff != "" || f.projectID != "p1" {
		t.Errorf("request not forwarded (-want +got):\n%s project %q", diff, f.projectID)
	}
}

func TestErrors(t *testing.T) {
	testCases := []struct {
		Name   string
		Err    error
		Path   string
		Status int
		Code   string
	}{
		{
			Name:   "missing preference",
			Err:    plan.ErrNoPreference.Fmt("u1"),
			Path:   "/v1/days/2024-07-03/slots",
			Status: http.StatusUnprocessableEntity,
			Code:   "precondition_failed",
		},
		{
			Name:   "negative override",
			Err:    plan.ErrNegativeOverride.Fmt("T", -1.0),
			Path:   "/v1/days/2024-07-03/slots",
			Status: http.StatusUnprocessableEntity,
			Code:   "precondition_failed",
		},
		{
			Name:   "store failure",
			Err:    errors.New("disk on fire"),
			Path:   "/v1/days/2024-07-03/slots",
			Status: http.StatusInternalServerError,
			Code:   "internal_error",
		},
		{
			Name:   "bad date",
			Path:   "/v1/days/yesterday/slots",
			Status: http.StatusBadRequest,
			Code:   "bad_request",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			rec, out := do(t, newHandler(&fakeRegistrar{err: tc.Err}), http.MethodGet, tc.Path, nil)
			if rec.Code != tc.Status {
				t.Fatalf("expected %d, got %d", tc.Status, rec.Code)
			}

			body, ok := out["error"].(map[string]any)
			if !ok || body["code"] != tc.Code {
				t.Errorf("expected error code %q, got %v", tc.Code, out)
			}
		})
	}
}

func TestFreeSlots(t *testing.T) {
	f := &fakeRegistrar{
		slots: []models.Slot{{Start: testDay.Add(9 * time.Hour), End: testDay.Add(12 * time.Hour)}},
	}

	rec, out := do(t, newHandler(f), http.MethodGet, "/v1/days/2024-07-03/slots", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	slots, ok := out["slots"].([]any)
	if !ok || len(slots) != 1 {
		t.Fatalf("expected one slot, got %v", out["slots"])
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() {
		done <- ListenAndServe(ctx, "127.0.0.1:0", newHandler(&fakeRegistrar{}), nil)
	}()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
