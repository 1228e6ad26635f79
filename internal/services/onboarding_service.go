package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/janlemon/chytrejim/internal/models"
	"github.com/janlemon/chytrejim/internal/onboarding"
)

var (
	ErrNoUser          = errors.New("no user")
	ErrCommitInFlight  = errors.New("commit already in flight")
	ErrRequiredMissing = errors.New("required fields missing")
)

type userStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	SetOnboarded(ctx context.Context, id int64, onboarded bool) error
}

type profileStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) error
	UpsertGender(ctx context.Context, userID int64, gender string) error
	UpsertActivityLevel(ctx context.Context, userID int64, level string) error
	UpsertGoal(ctx context.Context, userID int64, goal *string) error
}

type preferencesStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Preferences, error)
	Upsert(ctx context.Context, prefs *models.Preferences) error
}

type targetsComputer interface {
	ComputeAndSave(ctx context.Context, userID int64, stepsTarget int) (*models.Targets, error)
}

// OnboardingService owns the draft lifecycle, the review computation and the
// final commit sequence.
type OnboardingService struct {
	drafts      *onboarding.Store
	users       userStore
	profiles    profileStore
	preferences preferencesStore
	targets     targetsComputer
	stepsTarget int
	now         func() time.Time

	mu        sync.Mutex
	inFlight  map[int64]bool
	saveError map[int64]string
}

func NewOnboardingService(
	drafts *onboarding.Store,
	users userStore,
	profiles profileStore,
	preferences preferencesStore,
	targets targetsComputer,
	stepsTarget int,
) *OnboardingService {
	return &OnboardingService{
		drafts:      drafts,
		users:       users,
		profiles:    profiles,
		preferences: preferences,
		targets:     targets,
		stepsTarget: stepsTarget,
		now:         time.Now,
		inFlight:    make(map[int64]bool),
		saveError:   make(map[int64]string),
	}
}

func (s *OnboardingService) Draft(userID int64) onboarding.Draft {
	return s.drafts.Get(userID)
}

func (s *OnboardingService) UpdateDraft(userID int64, fn func(onboarding.Draft) onboarding.Draft) onboarding.Draft {
	return s.drafts.Update(userID, fn)
}

func (s *OnboardingService) ResetDraft(userID int64) {
	s.drafts.Reset(userID)
}

// Review merges the draft with whatever the backend has. A failed read
// degrades to draft-only resolution and comes back as a warning, never as
// an error: the review screen must always render.
func (s *OnboardingService) Review(ctx context.Context, userID int64) (onboarding.ReviewViewModel, string) {
	warning := ""
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		profile = nil
		warning = "could not load saved profile"
	}
	prefs, err := s.preferences.GetByUserID(ctx, userID)
	if err != nil {
		prefs = nil
		if warning == "" {
			warning = "could not load saved preferences"
		}
	}
	return onboarding.Review(s.drafts.Get(userID), profile, prefs, s.now()), warning
}

// Finish runs the commit sequence: identify, profile upsert, preferences
// upsert, target recomputation, onboarded flag. The first three and the
// flag are fatal and abort the rest; target recomputation is logged only.
// The draft is cleared only on full success so a retry keeps the answers.
func (s *OnboardingService) Finish(ctx context.Context, userID int64) (onboarding.ReviewViewModel, error) {
	if !s.begin(userID) {
		return onboarding.ReviewViewModel{}, ErrCommitInFlight
	}
	defer s.end(userID)

	vm, _ := s.Review(ctx, userID)
	if !vm.CanFinish {
		return vm, ErrRequiredMissing
	}

	// 1. Identify.
	user, err := s.users.GetByID(ctx, userID)
	if err != nil || user == nil {
		return vm, ErrNoUser
	}

	// 2. Profile row.
	if err := s.profiles.Upsert(ctx, s.profilePayload(userID, vm)); err != nil {
		return vm, err
	}

	// 3. Preferences row. Allergens persist as an array even when empty,
	// cuisines as NULL when empty.
	prefs := &models.Preferences{
		UserID:    userID,
		Allergens: vm.Allergens,
	}
	if prefs.Allergens == nil {
		prefs.Allergens = []string{}
	}
	if len(vm.Cuisines) > 0 {
		cuisines := vm.Cuisines
		prefs.Cuisines = &cuisines
	}
	if err := s.preferences.Upsert(ctx, prefs); err != nil {
		return vm, err
	}

	// 4. Targets, non-fatal: other flows recompute them later.
	if _, err := s.targets.ComputeAndSave(ctx, userID, s.stepsTarget); err != nil {
		log.Printf("onboarding: target recomputation failed for user %d: %v", userID, err)
	}

	// 5. Onboarded flag; gates all future navigation, so a failure here
	// means onboarding is not finished.
	if err := s.users.SetOnboarded(ctx, userID, true); err != nil {
		return vm, err
	}

	s.drafts.Reset(userID)
	return vm, nil
}

func (s *OnboardingService) profilePayload(userID int64, vm onboarding.ReviewViewModel) *models.Profile {
	now := s.now()
	profile := &models.Profile{
		UserID:    userID,
		FirstName: optional(vm.FirstName),
		LastName:  optional(vm.LastName),
		Gender:    optional(vm.Gender),
		BirthDate: optional(vm.BirthDate),
	}
	if vm.HeightCM != 0 {
		h := vm.HeightCM
		profile.HeightCM = &h
	}
	if vm.WeightKG != 0 {
		w := vm.WeightKG
		profile.InitialWeightKG = &w
	}
	profile.ActivityLevel = optional(vm.ActivityLevel)
	// The profiles schema accepts only lose|maintain|gain; explore means no
	// committed goal yet.
	if vm.Goal != "" && vm.Goal != "explore" {
		g := vm.Goal
		profile.Goal = &g
	}
	if len(vm.DietaryFlags) > 0 {
		flags := vm.DietaryFlags
		profile.DietaryFlags = &flags
	}
	if vm.ConsentTerms {
		t := now
		profile.ConsentTermsAt = &t
	}
	if vm.ConsentPrivacy {
		t := now
		profile.ConsentPrivacyAt = &t
	}
	completed := now
	profile.OnboardingCompletedAt = &completed
	return profile
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// Optimistic per-step saves: the wizard moves forward immediately, a failed
// background write lands in a visible, non-blocking error slot.

func (s *OnboardingService) SaveGender(ctx context.Context, userID int64, gender string) {
	s.drafts.Update(userID, func(d onboarding.Draft) onboarding.Draft { return d.WithGender(gender) })
	if err := s.profiles.UpsertGender(ctx, userID, gender); err != nil {
		s.recordSaveError(userID, "could not save gender")
	}
}

func (s *OnboardingService) SaveActivity(ctx context.Context, userID int64, level string) {
	s.drafts.Update(userID, func(d onboarding.Draft) onboarding.Draft { return d.WithActivity(level) })
	if err := s.profiles.UpsertActivityLevel(ctx, userID, level); err != nil {
		s.recordSaveError(userID, "could not save activity level")
	}
}

func (s *OnboardingService) SaveGoal(ctx context.Context, userID int64, goal string) {
	s.drafts.Update(userID, func(d onboarding.Draft) onboarding.Draft { return d.WithGoal(goal) })
	var persisted *string
	if goal != "" && goal != "explore" {
		persisted = &goal
	}
	if err := s.profiles.UpsertGoal(ctx, userID, persisted); err != nil {
		s.recordSaveError(userID, "could not save goal")
	}
}

// LastSaveError returns and clears the pending optimistic-save error.
func (s *OnboardingService) LastSaveError(userID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.saveError[userID]
	delete(s.saveError, userID)
	return msg
}

func (s *OnboardingService) recordSaveError(userID int64, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveError[userID] = msg
}

func (s *OnboardingService) begin(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[userID] {
		return false
	}
	s.inFlight[userID] = true
	return true
}

func (s *OnboardingService) end(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, userID)
}
