package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/janlemon/chytrejim/internal/onboarding"
	"github.com/janlemon/chytrejim/internal/services"
)

type stubFlow struct {
	draft      onboarding.Draft
	resetCalls int

	reviewVM      onboarding.ReviewViewModel
	reviewWarning string

	finishVM  onboarding.ReviewViewModel
	finishErr error

	saveError string

	genders []string
	levels  []string
	goals   []string
}

func (s *stubFlow) Draft(_ int64) onboarding.Draft { return s.draft }

func (s *stubFlow) UpdateDraft(_ int64, fn func(onboarding.Draft) onboarding.Draft) onboarding.Draft {
	s.draft = fn(s.draft)
	return s.draft
}

func (s *stubFlow) ResetDraft(_ int64) { s.resetCalls++ }

func (s *stubFlow) Review(_ context.Context, _ int64) (onboarding.ReviewViewModel, string) {
	return s.reviewVM, s.reviewWarning
}

func (s *stubFlow) Finish(_ context.Context, _ int64) (onboarding.ReviewViewModel, error) {
	return s.finishVM, s.finishErr
}

func (s *stubFlow) SaveGender(_ context.Context, _ int64, gender string) {
	s.genders = append(s.genders, gender)
}

func (s *stubFlow) SaveActivity(_ context.Context, _ int64, level string) {
	s.levels = append(s.levels, level)
}

func (s *stubFlow) SaveGoal(_ context.Context, _ int64, goal string) {
	s.goals = append(s.goals, goal)
}

func (s *stubFlow) LastSaveError(_ int64) string {
	msg := s.saveError
	s.saveError = ""
	return msg
}

func newOnboardingApp(flow *stubFlow) *fiber.App {
	handler := NewOnboardingHandler(flow)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "42")
		return c.Next()
	})
	app.Get("/api/v1/onboarding/draft", handler.GetDraft)
	app.Put("/api/v1/onboarding/draft", handler.UpdateDraft)
	app.Delete("/api/v1/onboarding/draft", handler.ResetDraft)
	app.Get("/api/v1/onboarding/review", handler.Review)
	app.Post("/api/v1/onboarding/finish", handler.Finish)
	app.Post("/api/v1/onboarding/activity", handler.SaveActivity)
	app.Post("/api/v1/onboarding/activity/suggest", handler.SuggestActivity)
	return app
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestUpdateDraftStoresFreeTextWithHints(t *testing.T) {
	flow := &stubFlow{}
	app := newOnboardingApp(flow)

	resp, err := app.Test(jsonRequest(http.MethodPut, "/api/v1/onboarding/draft",
		`{"first_name":"Jana","birth_date":"1700-01-01","height":"999"}`))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	if flow.draft.FirstName != "Jana" || flow.draft.BirthDate != "1700-01-01" || flow.draft.Height != "999" {
		t.Fatalf("draft = %+v", flow.draft)
	}

	body := decodeBody(t, resp)
	hints, _ := body["field_errors"].(map[string]any)
	if hints["birth_date"] == nil {
		t.Error("expected a birth_date hint for an out-of-range date")
	}
	if hints["height"] == nil {
		t.Error("expected a height hint for 999")
	}
	if _, ok := hints["weight"]; ok {
		t.Error("empty weight must not produce a hint")
	}
}

func TestUpdateDraftRejectsUnknownGender(t *testing.T) {
	flow := &stubFlow{}
	app := newOnboardingApp(flow)

	resp, err := app.Test(jsonRequest(http.MethodPut, "/api/v1/onboarding/draft", `{"gender":"robot"}`))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if flow.draft.Gender != "" {
		t.Fatal("rejected value must not land in the draft")
	}
}

func TestResetDraft(t *testing.T) {
	flow := &stubFlow{}
	app := newOnboardingApp(flow)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/onboarding/draft", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if flow.resetCalls != 1 {
		t.Fatalf("reset calls = %d", flow.resetCalls)
	}
}

func TestReviewCarriesWarningAndSaveError(t *testing.T) {
	flow := &stubFlow{
		reviewWarning: "could not load saved profile",
		saveError:     "could not save gender",
	}
	app := newOnboardingApp(flow)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/onboarding/review", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["warning"] != "could not load saved profile" {
		t.Errorf("warning = %v", body["warning"])
	}
	if body["save_error"] != "could not save gender" {
		t.Errorf("save_error = %v", body["save_error"])
	}
	if flow.saveError != "" {
		t.Error("save error should be consumed by the review")
	}
}

func TestFinishStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"required missing", services.ErrRequiredMissing, http.StatusBadRequest},
		{"commit in flight", services.ErrCommitInFlight, http.StatusConflict},
		{"no user", services.ErrNoUser, http.StatusUnauthorized},
		{"backend failure", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		flow := &stubFlow{
			finishErr: tc.err,
			finishVM:  onboarding.ReviewViewModel{RequiredMissing: map[string]bool{"goal": true}},
		}
		app := newOnboardingApp(flow)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/onboarding/finish", `{}`))
		if err != nil {
			t.Fatalf("%s: app.Test: %v", tc.name, err)
		}
		if resp.StatusCode != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.name, resp.StatusCode, tc.want)
		}
		if tc.err == services.ErrRequiredMissing {
			body := decodeBody(t, resp)
			missing, _ := body["required_missing"].(map[string]any)
			if missing["goal"] != true {
				t.Errorf("required_missing = %v", body["required_missing"])
			}
		} else {
			resp.Body.Close()
		}
	}
}

func TestFinishSuccess(t *testing.T) {
	flow := &stubFlow{finishVM: onboarding.ReviewViewModel{CanFinish: true}}
	app := newOnboardingApp(flow)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/onboarding/finish", `{}`))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["onboarded"] != true {
		t.Errorf("onboarded = %v", body["onboarded"])
	}
}

func TestSaveActivityValidatesAndReportsSaveError(t *testing.T) {
	flow := &stubFlow{}
	app := newOnboardingApp(flow)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/onboarding/activity", `{"activity_level":"heroic"}`))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown level, got %d", resp.StatusCode)
	}
	if len(flow.levels) != 0 {
		t.Fatal("rejected level must not be forwarded")
	}

	flow.saveError = "could not save activity level"
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/v1/onboarding/activity", `{"activity_level":"moderate"}`))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(flow.levels) != 1 || flow.levels[0] != "moderate" {
		t.Fatalf("levels = %v", flow.levels)
	}
	body := decodeBody(t, resp)
	if body["ok"] != true || body["save_error"] != "could not save activity level" {
		t.Fatalf("body = %v", body)
	}
}

func TestSuggestActivity(t *testing.T) {
	app := newOnboardingApp(&stubFlow{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/onboarding/activity/suggest", `{"days":"d3_5","work":"manual"}`))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["activity_level"] != "active" {
		t.Fatalf("activity_level = %v", body["activity_level"])
	}
}

func TestOnboardingRequiresIdentity(t *testing.T) {
	handler := NewOnboardingHandler(&stubFlow{})
	app := fiber.New()
	app.Get("/api/v1/onboarding/review", handler.Review)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/onboarding/review", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user_id, got %d", resp.StatusCode)
	}
}
