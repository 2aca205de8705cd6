// Package userpref owns the user-level monetization and behavioral state:
// premium flag, temporary ad-free grant, plant-count limit, and the
// rating/share/upsell cooldown timestamps. It is the single source of
// truth consulted both by the interactive API surface and by the
// scheduled rule evaluator.
package userpref

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hrygo/guarden/store"
)

const (
	millisPerHour = int64(60 * 60 * 1000)
	millisPerDay  = 24 * millisPerHour

	// Reactivation: a user away for this many days gets a temporary
	// ad-free grant on their next app open.
	reactivationInactivityDays = 14
	reactivationRewardDays     = 7

	// Rating prompt gates.
	ratingMinInstallAgeHours  = 48
	ratingPromptCooldownHours = 72
)

// PreferenceStore is the slice of the store the service needs.
type PreferenceStore interface {
	GetUserPreferences(ctx context.Context) (*store.UserPreferences, error)
	UpsertUserPreferences(ctx context.Context, upsert *store.UpsertUserPreferences) (*store.UserPreferences, error)
}

// Service provides serialized access to the singleton preference record.
// Every mutation is an atomic read-modify-write; writes are last-writer-
// wins, which is acceptable for a single-installation access pattern.
type Service struct {
	store PreferenceStore

	mu  sync.Mutex // serializes read-modify-write cycles
	now func() time.Time
}

// NewService creates a new preference service.
func NewService(preferenceStore PreferenceStore) *Service {
	return &Service{
		store: preferenceStore,
		now:   time.Now,
	}
}

func (s *Service) nowMillis() int64 {
	return s.now().UnixMilli()
}

// Get returns the current preference record. A missing record is created
// lazily with documented defaults, stamping FirstInstallTime exactly once.
// A storage read failure is recovered locally by substituting defaults;
// it is never surfaced to the caller.
func (s *Service) Get(ctx context.Context) *store.UserPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(ctx)
}

func (s *Service) getLocked(ctx context.Context) *store.UserPreferences {
	prefs, err := s.store.GetUserPreferences(ctx)
	if err != nil {
		slog.Error("failed to read user preferences, substituting defaults", "error", err)
		return store.DefaultUserPreferences(s.nowMillis())
	}
	if prefs == nil {
		prefs = store.DefaultUserPreferences(s.nowMillis())
		if _, err := s.store.UpsertUserPreferences(ctx, &store.UpsertUserPreferences{Preferences: prefs}); err != nil {
			slog.Error("failed to persist default user preferences", "error", err)
		}
	}
	// Return a copy so callers cannot mutate shared state.
	copied := *prefs
	return &copied
}

// update applies mutate to the current record and persists the result,
// all under the service lock.
func (s *Service) update(ctx context.Context, mutate func(prefs *store.UserPreferences)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := s.getLocked(ctx)
	mutate(prefs)
	_, err := s.store.UpsertUserPreferences(ctx, &store.UpsertUserPreferences{Preferences: prefs})
	return err
}

func (s *Service) SetPremium(ctx context.Context, isPremium bool) error {
	return s.update(ctx, func(prefs *store.UserPreferences) {
		prefs.IsPremium = isPremium
	})
}

func (s *Service) SetNotificationsEnabled(ctx context.Context, enabled bool) error {
	return s.update(ctx, func(prefs *store.UserPreferences) {
		prefs.NotificationsEnabled = enabled
	})
}

// GrantAdFreeReward sets the ad-free expiry to now + days. A new grant
// overwrites any existing one; it does not take the max.
func (s *Service) GrantAdFreeReward(ctx context.Context, days int) error {
	return s.update(ctx, func(prefs *store.UserPreferences) {
		prefs.AdFreeRewardExpiry = s.nowMillis() + int64(days)*millisPerDay
	})
}

// IncreasePlantLimit raises the free-tier capacity. The limit only ever
// grows; there is no cap and no decrease operation.
func (s *Service) IncreasePlantLimit(ctx context.Context, amount int) error {
	return s.update(ctx, func(prefs *store.UserPreferences) {
		prefs.PlantLimit += amount
	})
}

func (s *Service) UpdateLastAppOpen(ctx context.Context) error {
	return s.update(ctx, func(prefs *store.UserPreferences) {
		prefs.LastAppOpen = s.nowMillis()
	})
}

func (s *Service) UpdateLastUpsellTime(ctx context.Context) error {
	return s.update(ctx, func(prefs *store.UserPreferences) {
		prefs.LastUpsellTime = s.nowMillis()
	})
}

func (s *Service) UpdateLastSharePromptTime(ctx context.Context) error {
	return s.update(ctx, func(prefs *store.UserPreferences) {
		prefs.LastSharePromptTime = s.nowMillis()
	})
}

func (s *Service) UpdateLastRatingPromptTime(ctx context.Context) error {
	return s.update(ctx, func(prefs *store.UserPreferences) {
		prefs.LastRatingPromptTime = s.nowMillis()
	})
}

// UpdateLocation overwrites both coordinates together, never partially.
func (s *Service) UpdateLocation(ctx context.Context, lat, lon float64) error {
	return s.update(ctx, func(prefs *store.UserPreferences) {
		prefs.LastLat = lat
		prefs.LastLon = lon
	})
}

// SetRated marks the user as having submitted a rating. Terminal: there
// is no unset operation.
func (s *Service) SetRated(ctx context.Context) error {
	return s.update(ctx, func(prefs *store.UserPreferences) {
		prefs.UserAlreadyRated = true
	})
}

// SetNeverAskAgain records the user's opt-out of rating prompts.
// Terminal: there is no unset operation.
func (s *Service) SetNeverAskAgain(ctx context.Context) error {
	return s.update(ctx, func(prefs *store.UserPreferences) {
		prefs.NeverAskAgain = true
	})
}

// IsAdFree reports whether ads are suppressed: an active subscription or
// an unexpired ad-free grant. An expiry equal to now counts as expired.
func (s *Service) IsAdFree(ctx context.Context) bool {
	prefs := s.Get(ctx)
	return prefs.IsPremium || prefs.AdFreeRewardExpiry > s.nowMillis()
}

// ShouldShowRating reports whether the rating dialog may be shown.
// The terminal flags win over everything else; then the install must be
// at least 48 hours old and the last prompt at least 72 hours ago.
func (s *Service) ShouldShowRating(ctx context.Context) bool {
	prefs := s.Get(ctx)

	if prefs.UserAlreadyRated || prefs.NeverAskAgain {
		return false
	}

	now := s.nowMillis()
	if (now-prefs.FirstInstallTime)/millisPerHour < ratingMinInstallAgeHours {
		return false
	}
	if (now-prefs.LastRatingPromptTime)/millisPerHour < ratingPromptCooldownHours {
		return false
	}
	return true
}

// OnAppOpen runs the once-per-foreground-session reactivation check.
// The inactivity test uses the lastAppOpen value from before the stamp:
// a user away for 14 or more days receives a 7-day ad-free grant and the
// caller is told to present a one-time acknowledgment. lastAppOpen is
// then stamped unconditionally.
func (s *Service) OnAppOpen(ctx context.Context) (reactivated bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := s.getLocked(ctx)
	now := s.nowMillis()

	if (now-prefs.LastAppOpen)/millisPerDay >= reactivationInactivityDays {
		prefs.AdFreeRewardExpiry = now + reactivationRewardDays*millisPerDay
		reactivated = true
	}
	prefs.LastAppOpen = now

	if _, err := s.store.UpsertUserPreferences(ctx, &store.UpsertUserPreferences{Preferences: prefs}); err != nil {
		return reactivated, err
	}
	return reactivated, nil
}
