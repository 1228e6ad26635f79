package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/janlemon/chytrejim/internal/models"
	"github.com/janlemon/chytrejim/internal/onboarding"
)

var commitDay = time.Date(2024, 6, 16, 12, 0, 0, 0, time.UTC)

type stubUsers struct {
	calls *[]string

	user   *models.User
	getErr error
	setErr error

	onboarded []bool
}

func (s *stubUsers) GetByID(_ context.Context, _ int64) (*models.User, error) {
	*s.calls = append(*s.calls, "users.GetByID")
	return s.user, s.getErr
}

func (s *stubUsers) SetOnboarded(_ context.Context, _ int64, onboarded bool) error {
	*s.calls = append(*s.calls, "users.SetOnboarded")
	s.onboarded = append(s.onboarded, onboarded)
	return s.setErr
}

type stubProfiles struct {
	calls *[]string

	profile   *models.Profile
	getErr    error
	upsertErr error

	genderErr   error
	activityErr error
	goalErr     error

	upserted []*models.Profile
	genders  []string
	levels   []string
	goals    []*string
}

func (s *stubProfiles) GetByUserID(_ context.Context, _ int64) (*models.Profile, error) {
	return s.profile, s.getErr
}

func (s *stubProfiles) Upsert(_ context.Context, profile *models.Profile) error {
	*s.calls = append(*s.calls, "profiles.Upsert")
	s.upserted = append(s.upserted, profile)
	return s.upsertErr
}

func (s *stubProfiles) UpsertGender(_ context.Context, _ int64, gender string) error {
	s.genders = append(s.genders, gender)
	return s.genderErr
}

func (s *stubProfiles) UpsertActivityLevel(_ context.Context, _ int64, level string) error {
	s.levels = append(s.levels, level)
	return s.activityErr
}

func (s *stubProfiles) UpsertGoal(_ context.Context, _ int64, goal *string) error {
	s.goals = append(s.goals, goal)
	return s.goalErr
}

type stubPrefs struct {
	calls *[]string

	prefs     *models.Preferences
	getErr    error
	upsertErr error

	upserted []*models.Preferences
}

func (s *stubPrefs) GetByUserID(_ context.Context, _ int64) (*models.Preferences, error) {
	return s.prefs, s.getErr
}

func (s *stubPrefs) Upsert(_ context.Context, prefs *models.Preferences) error {
	*s.calls = append(*s.calls, "preferences.Upsert")
	s.upserted = append(s.upserted, prefs)
	return s.upsertErr
}

type stubTargets struct {
	calls *[]string
	err   error
}

func (s *stubTargets) ComputeAndSave(_ context.Context, _ int64, _ int) (*models.Targets, error) {
	*s.calls = append(*s.calls, "targets.ComputeAndSave")
	if s.err != nil {
		return nil, s.err
	}
	return &models.Targets{UserID: 1, KcalTarget: 2200, ProteinGTarget: 130, StepsTarget: 8000}, nil
}

type fixture struct {
	svc      *OnboardingService
	users    *stubUsers
	profiles *stubProfiles
	prefs    *stubPrefs
	targets  *stubTargets
	calls    []string
}

func newFixture() *fixture {
	f := &fixture{}
	f.users = &stubUsers{calls: &f.calls, user: &models.User{ID: 1, Email: "jana@example.com"}}
	f.profiles = &stubProfiles{calls: &f.calls}
	f.prefs = &stubPrefs{calls: &f.calls}
	f.targets = &stubTargets{calls: &f.calls}
	f.svc = NewOnboardingService(onboarding.NewStore(), f.users, f.profiles, f.prefs, f.targets, 8000)
	f.svc.now = func() time.Time { return commitDay }
	return f
}

func (f *fixture) putCompleteDraft(userID int64) {
	f.svc.UpdateDraft(userID, func(d onboarding.Draft) onboarding.Draft {
		return d.
			WithFirstName("Jana").
			WithBirthDate("2000-03-05").
			WithGender("female").
			WithHeight("165").
			WithWeight("60").
			WithActivity("light").
			WithGoal("lose").
			WithAllergens([]string{"gluten"}).
			WithCuisines([]string{"italian", "thai"}).
			WithConsentTerms(true).
			WithConsentPrivacy(true)
	})
}

func TestFinishRunsSequenceInOrder(t *testing.T) {
	f := newFixture()
	f.putCompleteDraft(1)

	vm, err := f.svc.Finish(context.Background(), 1)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if !vm.CanFinish {
		t.Fatal("expected finishable review")
	}

	want := []string{"users.GetByID", "profiles.Upsert", "preferences.Upsert", "targets.ComputeAndSave", "users.SetOnboarded"}
	if len(f.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", f.calls, want)
	}
	for i := range want {
		if f.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", f.calls, want)
		}
	}
	if len(f.users.onboarded) != 1 || !f.users.onboarded[0] {
		t.Fatalf("onboarded flag writes = %v", f.users.onboarded)
	}

	// Full success clears the session draft.
	if got := f.svc.Draft(1); got.FirstName != "" || got.BirthDate != "" {
		t.Fatalf("expected draft reset, got %+v", got)
	}
}

func TestFinishProfilePayload(t *testing.T) {
	f := newFixture()
	f.putCompleteDraft(1)

	if _, err := f.svc.Finish(context.Background(), 1); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if len(f.profiles.upserted) != 1 {
		t.Fatalf("expected one profile upsert, got %d", len(f.profiles.upserted))
	}
	p := f.profiles.upserted[0]
	if p.FirstName == nil || *p.FirstName != "Jana" {
		t.Errorf("first name = %v", p.FirstName)
	}
	if p.HeightCM == nil || *p.HeightCM != 165 {
		t.Errorf("height = %v", p.HeightCM)
	}
	if p.InitialWeightKG == nil || *p.InitialWeightKG != 60 {
		t.Errorf("weight = %v", p.InitialWeightKG)
	}
	if p.Goal == nil || *p.Goal != "lose" {
		t.Errorf("goal = %v", p.Goal)
	}
	if p.ConsentTermsAt == nil || !p.ConsentTermsAt.Equal(commitDay) {
		t.Errorf("consent terms at = %v", p.ConsentTermsAt)
	}
	if p.ConsentPrivacyAt == nil || !p.ConsentPrivacyAt.Equal(commitDay) {
		t.Errorf("consent privacy at = %v", p.ConsentPrivacyAt)
	}
	if p.OnboardingCompletedAt == nil || !p.OnboardingCompletedAt.Equal(commitDay) {
		t.Errorf("completed at = %v", p.OnboardingCompletedAt)
	}

	if len(f.prefs.upserted) != 1 {
		t.Fatalf("expected one preferences upsert, got %d", len(f.prefs.upserted))
	}
	prefs := f.prefs.upserted[0]
	if len(prefs.Allergens) != 1 || prefs.Allergens[0] != "gluten" {
		t.Errorf("allergens = %v", prefs.Allergens)
	}
	if prefs.Cuisines == nil || len(*prefs.Cuisines) != 2 {
		t.Errorf("cuisines = %v", prefs.Cuisines)
	}
}

func TestFinishExploreGoalPersistsAsNull(t *testing.T) {
	f := newFixture()
	f.putCompleteDraft(1)
	f.svc.UpdateDraft(1, func(d onboarding.Draft) onboarding.Draft {
		return d.WithGoal("explore").WithAllergens(nil).WithCuisines(nil)
	})

	if _, err := f.svc.Finish(context.Background(), 1); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	p := f.profiles.upserted[0]
	if p.Goal != nil {
		t.Errorf("explore goal should persist as NULL, got %q", *p.Goal)
	}

	prefs := f.prefs.upserted[0]
	if prefs.Allergens == nil || len(prefs.Allergens) != 0 {
		t.Errorf("allergens should persist as an empty array, got %v", prefs.Allergens)
	}
	if prefs.Cuisines != nil {
		t.Errorf("empty cuisines should persist as NULL, got %v", prefs.Cuisines)
	}
}

func TestFinishPreferencesFailureStopsSequence(t *testing.T) {
	f := newFixture()
	f.putCompleteDraft(1)
	f.prefs.upsertErr = errors.New("prefs write failed")

	_, err := f.svc.Finish(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error")
	}

	if len(f.profiles.upserted) != 1 {
		t.Error("profile upsert should have been attempted first")
	}
	for _, call := range f.calls {
		if call == "targets.ComputeAndSave" || call == "users.SetOnboarded" {
			t.Fatalf("sequence continued past the failed step: %v", f.calls)
		}
	}

	// The draft survives a failed commit so a retry keeps the answers.
	if got := f.svc.Draft(1); got.FirstName != "Jana" {
		t.Fatalf("expected draft retained, got %+v", got)
	}
}

func TestFinishTargetsFailureIsNonFatal(t *testing.T) {
	f := newFixture()
	f.putCompleteDraft(1)
	f.targets.err = errors.New("targets unavailable")

	if _, err := f.svc.Finish(context.Background(), 1); err != nil {
		t.Fatalf("Finish should succeed despite targets failure: %v", err)
	}
	if len(f.users.onboarded) != 1 {
		t.Fatal("onboarded flag should still be set")
	}
	if got := f.svc.Draft(1); got.FirstName != "" {
		t.Fatal("expected draft reset on overall success")
	}
}

func TestFinishOnboardedFlagFailure(t *testing.T) {
	f := newFixture()
	f.putCompleteDraft(1)
	f.users.setErr = errors.New("flag write failed")

	if _, err := f.svc.Finish(context.Background(), 1); err == nil {
		t.Fatal("expected error")
	}
	if got := f.svc.Draft(1); got.FirstName != "Jana" {
		t.Fatal("expected draft retained when flag write fails")
	}
}

func TestFinishBlockedWhenRequiredMissing(t *testing.T) {
	f := newFixture()
	f.putCompleteDraft(1)
	f.svc.UpdateDraft(1, func(d onboarding.Draft) onboarding.Draft { return d.WithGoal("") })

	vm, err := f.svc.Finish(context.Background(), 1)
	if !errors.Is(err, ErrRequiredMissing) {
		t.Fatalf("err = %v, want ErrRequiredMissing", err)
	}
	if !vm.RequiredMissing["goal"] {
		t.Error("expected goal flagged missing")
	}
	if len(f.calls) != 0 {
		t.Fatalf("gate must block all writes, got %v", f.calls)
	}
}

func TestFinishRejectsUnknownUser(t *testing.T) {
	f := newFixture()
	f.putCompleteDraft(1)
	f.users.user = nil

	if _, err := f.svc.Finish(context.Background(), 1); !errors.Is(err, ErrNoUser) {
		t.Fatalf("err = %v, want ErrNoUser", err)
	}
	if len(f.profiles.upserted) != 0 {
		t.Error("no writes without an identified user")
	}
}

func TestFinishSingleInFlight(t *testing.T) {
	f := newFixture()
	f.putCompleteDraft(1)

	if !f.svc.begin(1) {
		t.Fatal("begin should claim the slot")
	}
	if _, err := f.svc.Finish(context.Background(), 1); !errors.Is(err, ErrCommitInFlight) {
		t.Fatalf("err = %v, want ErrCommitInFlight", err)
	}
	f.svc.end(1)

	// Slot released, commit proceeds.
	if _, err := f.svc.Finish(context.Background(), 1); err != nil {
		t.Fatalf("Finish after release: %v", err)
	}
}

func TestReviewDegradesOnReadFailure(t *testing.T) {
	f := newFixture()
	f.putCompleteDraft(1)
	f.profiles.getErr = errors.New("backend down")

	vm, warning := f.svc.Review(context.Background(), 1)
	if warning == "" {
		t.Fatal("expected a warning for the failed profile read")
	}
	if vm.FirstName != "Jana" {
		t.Fatalf("draft values should still resolve, got %+v", vm)
	}
	if !vm.CanFinish {
		t.Error("complete draft should finish even with remote state unavailable")
	}
}

func TestOptimisticSaveRecordsError(t *testing.T) {
	f := newFixture()
	f.profiles.activityErr = errors.New("write failed")

	f.svc.SaveActivity(context.Background(), 1, "moderate")

	if got := f.svc.Draft(1).ActivityLevel; got != "moderate" {
		t.Fatalf("draft activity = %q", got)
	}
	if msg := f.svc.LastSaveError(1); msg == "" {
		t.Fatal("expected a recorded save error")
	}
	if msg := f.svc.LastSaveError(1); msg != "" {
		t.Fatalf("save error should clear once read, got %q", msg)
	}
}

func TestSaveGoalPersistsExploreAsNull(t *testing.T) {
	f := newFixture()

	f.svc.SaveGoal(context.Background(), 1, "explore")
	if len(f.profiles.goals) != 1 || f.profiles.goals[0] != nil {
		t.Fatalf("goals = %v, want one nil write", f.profiles.goals)
	}

	f.svc.SaveGoal(context.Background(), 1, "gain")
	if len(f.profiles.goals) != 2 || f.profiles.goals[1] == nil || *f.profiles.goals[1] != "gain" {
		t.Fatalf("goals = %v, want gain persisted", f.profiles.goals)
	}
}
