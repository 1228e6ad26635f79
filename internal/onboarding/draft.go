package onboarding

import "sync"

// Draft holds the answers collected across wizard steps for one session.
// Values stay as strings the way the inputs produce them; nothing is
// validated at set time. Setters return a modified copy so a handler can
// never observe a half-applied update.
type Draft struct {
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	BirthDate      string   `json:"birth_date"`
	Gender         string   `json:"gender"`
	Height         string   `json:"height"`
	Weight         string   `json:"weight"`
	ActivityLevel  string   `json:"activity_level"`
	Goal           string   `json:"goal"`
	DietaryFlags   []string `json:"dietary_flags"`
	Allergens      []string `json:"allergens"`
	Cuisines       []string `json:"cuisines"`
	ConsentTerms   bool     `json:"consent_terms"`
	ConsentPrivacy bool     `json:"consent_privacy"`
}

func (d Draft) WithFirstName(v string) Draft  { d.FirstName = v; return d }
func (d Draft) WithLastName(v string) Draft   { d.LastName = v; return d }
func (d Draft) WithBirthDate(v string) Draft  { d.BirthDate = v; return d }
func (d Draft) WithGender(v string) Draft     { d.Gender = v; return d }
func (d Draft) WithHeight(v string) Draft     { d.Height = v; return d }
func (d Draft) WithWeight(v string) Draft     { d.Weight = v; return d }
func (d Draft) WithActivity(v string) Draft   { d.ActivityLevel = v; return d }
func (d Draft) WithGoal(v string) Draft       { d.Goal = v; return d }
func (d Draft) WithConsentTerms(v bool) Draft { d.ConsentTerms = v; return d }
func (d Draft) WithConsentPrivacy(v bool) Draft {
	d.ConsentPrivacy = v
	return d
}

func (d Draft) WithDietaryFlags(codes []string) Draft {
	d.DietaryFlags = dedupe(codes)
	return d
}

func (d Draft) WithAllergens(codes []string) Draft {
	d.Allergens = dedupe(codes)
	return d
}

func (d Draft) WithCuisines(codes []string) Draft {
	d.Cuisines = dedupe(codes)
	return d
}

// dedupe keeps the first occurrence of each code. Order is not meaningful
// but stable output keeps review payloads deterministic.
func dedupe(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

// Store keeps per-user drafts for active onboarding sessions. Session scoped
// and in-memory only: a restart discards drafts, matching the wizard being
// torn down with the app.
type Store struct {
	mu     sync.Mutex
	drafts map[int64]Draft
}

func NewStore() *Store {
	return &Store{drafts: make(map[int64]Draft)}
}

func (s *Store) Get(userID int64) Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts[userID]
}

func (s *Store) Put(userID int64, draft Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[userID] = draft
}

// Update applies fn to the current draft under the lock.
func (s *Store) Update(userID int64, fn func(Draft) Draft) Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft := fn(s.drafts[userID])
	s.drafts[userID] = draft
	return draft
}

func (s *Store) Reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, userID)
}
