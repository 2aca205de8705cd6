package userpref

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/guarden/store"
)

// memPrefStore is an in-memory PreferenceStore for testing.
type memPrefStore struct {
	prefs   *store.UserPreferences
	getErr  error
	upserts int
}

func (m *memPrefStore) GetUserPreferences(_ context.Context) (*store.UserPreferences, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.prefs == nil {
		return nil, nil
	}
	copied := *m.prefs
	return &copied, nil
}

func (m *memPrefStore) UpsertUserPreferences(_ context.Context, upsert *store.UpsertUserPreferences) (*store.UserPreferences, error) {
	m.upserts++
	copied := *upsert.Preferences
	m.prefs = &copied
	return upsert.Preferences, nil
}

func newTestService(t *testing.T, prefStore *memPrefStore, now time.Time) *Service {
	t.Helper()
	svc := NewService(prefStore)
	svc.now = func() time.Time { return now }
	return svc
}

func TestGetCreatesDefaultsOnFirstRead(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)
	prefStore := &memPrefStore{}
	svc := newTestService(t, prefStore, now)

	prefs := svc.Get(ctx)
	require.NotNil(t, prefs)

	assert.False(t, prefs.IsPremium)
	assert.True(t, prefs.NotificationsEnabled)
	assert.Equal(t, store.DefaultPlantLimit, prefs.PlantLimit)
	assert.Equal(t, now.UnixMilli(), prefs.FirstInstallTime)
	assert.Equal(t, now.UnixMilli(), prefs.LastAppOpen)
	assert.Equal(t, int64(0), prefs.AdFreeRewardExpiry)

	// Defaults are persisted so FirstInstallTime is stamped exactly once.
	require.NotNil(t, prefStore.prefs)
	assert.Equal(t, now.UnixMilli(), prefStore.prefs.FirstInstallTime)
}

func TestGetSubstitutesDefaultsOnReadError(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)
	prefStore := &memPrefStore{getErr: errors.New("disk on fire")}
	svc := newTestService(t, prefStore, now)

	prefs := svc.Get(ctx)
	require.NotNil(t, prefs)
	assert.Equal(t, store.DefaultPlantLimit, prefs.PlantLimit)
	assert.True(t, prefs.NotificationsEnabled)
}

func TestGrantAdFreeRewardOverwrites(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)
	prefStore := &memPrefStore{}
	svc := newTestService(t, prefStore, now)

	require.NoError(t, svc.GrantAdFreeReward(ctx, 30))
	longExpiry := prefStore.prefs.AdFreeRewardExpiry
	assert.Equal(t, now.UnixMilli()+30*millisPerDay, longExpiry)

	// A shorter follow-up grant overwrites the longer one; it does not
	// take the max.
	require.NoError(t, svc.GrantAdFreeReward(ctx, 7))
	assert.Equal(t, now.UnixMilli()+7*millisPerDay, prefStore.prefs.AdFreeRewardExpiry)
}

func TestIncreasePlantLimitIsAdditive(t *testing.T) {
	ctx := context.Background()
	prefStore := &memPrefStore{}
	svc := newTestService(t, prefStore, time.UnixMilli(1_700_000_000_000))

	require.NoError(t, svc.IncreasePlantLimit(ctx, 5))
	require.NoError(t, svc.IncreasePlantLimit(ctx, 5))

	assert.Equal(t, store.DefaultPlantLimit+10, prefStore.prefs.PlantLimit)
}

func TestIsAdFree(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)

	tests := []struct {
		name     string
		premium  bool
		expiry   int64
		expected bool
	}{
		{"free user, no grant", false, 0, false},
		{"premium user", true, 0, true},
		{"active grant", false, now.UnixMilli() + 1, true},
		{"grant expiring exactly now", false, now.UnixMilli(), false},
		{"expired grant", false, now.UnixMilli() - 1, false},
		{"premium with expired grant", true, now.UnixMilli() - 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := store.DefaultUserPreferences(now.UnixMilli())
			prefs.IsPremium = tt.premium
			prefs.AdFreeRewardExpiry = tt.expiry
			svc := newTestService(t, &memPrefStore{prefs: prefs}, now)

			assert.Equal(t, tt.expected, svc.IsAdFree(ctx))
		})
	}
}

func TestShouldShowRatingTerminalFlags(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)

	// All other gates pass: install 100h ago, last prompt 100h ago.
	base := func() *store.UserPreferences {
		prefs := store.DefaultUserPreferences(now.UnixMilli() - 100*millisPerHour)
		prefs.LastRatingPromptTime = 0
		return prefs
	}

	rated := base()
	rated.UserAlreadyRated = true
	svc := newTestService(t, &memPrefStore{prefs: rated}, now)
	assert.False(t, svc.ShouldShowRating(ctx))

	never := base()
	never.NeverAskAgain = true
	svc = newTestService(t, &memPrefStore{prefs: never}, now)
	assert.False(t, svc.ShouldShowRating(ctx))

	clean := base()
	svc = newTestService(t, &memPrefStore{prefs: clean}, now)
	assert.True(t, svc.ShouldShowRating(ctx))
}

func TestShouldShowRatingInstallAgeBoundary(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)

	// 47.9 hours since install: too young.
	prefs := store.DefaultUserPreferences(now.UnixMilli() - 47*millisPerHour - 54*60*1000)
	svc := newTestService(t, &memPrefStore{prefs: prefs}, now)
	assert.False(t, svc.ShouldShowRating(ctx))

	// 48.1 hours since install: old enough.
	prefs = store.DefaultUserPreferences(now.UnixMilli() - 48*millisPerHour - 6*60*1000)
	svc = newTestService(t, &memPrefStore{prefs: prefs}, now)
	assert.True(t, svc.ShouldShowRating(ctx))
}

func TestShouldShowRatingPromptCooldown(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)

	prefs := store.DefaultUserPreferences(now.UnixMilli() - 200*millisPerHour)
	prefs.LastRatingPromptTime = now.UnixMilli() - 71*millisPerHour
	svc := newTestService(t, &memPrefStore{prefs: prefs}, now)
	assert.False(t, svc.ShouldShowRating(ctx))

	prefs.LastRatingPromptTime = now.UnixMilli() - 73*millisPerHour
	svc = newTestService(t, &memPrefStore{prefs: prefs}, now)
	assert.True(t, svc.ShouldShowRating(ctx))
}

func TestFreshInstallRatingScenario(t *testing.T) {
	ctx := context.Background()
	install := time.UnixMilli(1_700_000_000_000)
	prefStore := &memPrefStore{}

	svc := newTestService(t, prefStore, install)
	svc.Get(ctx) // first read stamps firstInstallTime
	assert.False(t, svc.ShouldShowRating(ctx))

	svc.now = func() time.Time { return install.Add(49 * time.Hour) }
	assert.True(t, svc.ShouldShowRating(ctx))
}

func TestOnAppOpenReactivation(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)

	prefs := store.DefaultUserPreferences(now.UnixMilli())
	prefs.LastAppOpen = now.UnixMilli() - 14*millisPerDay
	svc := newTestService(t, &memPrefStore{prefs: prefs}, now)

	reactivated, err := svc.OnAppOpen(ctx)
	require.NoError(t, err)
	assert.True(t, reactivated)

	stored := svc.Get(ctx)
	assert.Equal(t, now.UnixMilli()+7*millisPerDay, stored.AdFreeRewardExpiry)
	assert.Equal(t, now.UnixMilli(), stored.LastAppOpen)

	// The stamp means an immediate second open grants nothing.
	reactivated, err = svc.OnAppOpen(ctx)
	require.NoError(t, err)
	assert.False(t, reactivated)
}

func TestOnAppOpenBelowThreshold(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)

	prefs := store.DefaultUserPreferences(now.UnixMilli())
	prefs.LastAppOpen = now.UnixMilli() - 13*millisPerDay
	svc := newTestService(t, &memPrefStore{prefs: prefs}, now)

	reactivated, err := svc.OnAppOpen(ctx)
	require.NoError(t, err)
	assert.False(t, reactivated)

	stored := svc.Get(ctx)
	assert.Equal(t, int64(0), stored.AdFreeRewardExpiry)
	assert.Equal(t, now.UnixMilli(), stored.LastAppOpen)
}

func TestTerminalFlagsHaveNoUnset(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)
	prefStore := &memPrefStore{}
	svc := newTestService(t, prefStore, now)

	require.NoError(t, svc.SetRated(ctx))
	require.NoError(t, svc.SetNeverAskAgain(ctx))

	// Unrelated mutations must not clear the terminal flags.
	require.NoError(t, svc.SetPremium(ctx, true))
	require.NoError(t, svc.UpdateLocation(ctx, 32.08, 34.78))

	stored := svc.Get(ctx)
	assert.True(t, stored.UserAlreadyRated)
	assert.True(t, stored.NeverAskAgain)
	assert.Equal(t, 32.08, stored.LastLat)
	assert.Equal(t, 34.78, stored.LastLon)
}

func TestUpdateLocationWritesBothFields(t *testing.T) {
	ctx := context.Background()
	prefStore := &memPrefStore{}
	svc := newTestService(t, prefStore, time.UnixMilli(1_700_000_000_000))

	require.NoError(t, svc.UpdateLocation(ctx, 51.5, -0.12))
	require.NoError(t, svc.UpdateLocation(ctx, 48.85, 2.35))

	assert.Equal(t, 48.85, prefStore.prefs.LastLat)
	assert.Equal(t, 2.35, prefStore.prefs.LastLon)
}
