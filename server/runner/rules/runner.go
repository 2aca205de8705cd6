// Package rules implements the scheduled rule evaluator: two daily runs
// (morning and noon) that evaluate an ordered set of independent rules
// against preference and plant state and emit notifications.
//
// Both runs report success unconditionally. Sub-step failures are logged
// and swallowed so the host scheduler never marks the periodic job as
// broken and backs off.
package rules

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hrygo/guarden/plugin/notify"
	"github.com/hrygo/guarden/plugin/weather"
	"github.com/hrygo/guarden/server/service/plant"
	"github.com/hrygo/guarden/store"
)

// Wall-clock anchor hours for the two daily runs.
const (
	MorningHour = 9
	NoonHour    = 13

	MorningRunName = "morning"
	NoonRunName    = "noon"
)

const (
	millisPerDay = int64(24 * 60 * 60 * 1000)

	// Capacity upsells fire at most once per this many days.
	upsellCooldownDays = 3

	coldThresholdCelsius = 10.0
	heatThresholdCelsius = 35.0

	weatherFetchTimeout = 15 * time.Second
)

// Preferences is the slice of the preference service the evaluator needs.
type Preferences interface {
	Get(ctx context.Context) *store.UserPreferences
	UpdateLastUpsellTime(ctx context.Context) error
}

// PlantStore lists the tracked plants.
type PlantStore interface {
	ListPlants(ctx context.Context, find *store.FindPlant) ([]*store.Plant, error)
}

// Config holds evaluator tunables.
type Config struct {
	// WateringOverdueDays, when positive, marks a plant as needing water
	// once that many whole days have elapsed since its last watering,
	// regardless of its per-plant cadence. Zero (the default) uses the
	// per-plant wateringFrequency comparison.
	WateringOverdueDays int
}

// Runner evaluates the morning and noon rulesets.
type Runner struct {
	prefs    Preferences
	plants   PlantStore
	provider weather.Provider // may be nil when weather is not configured
	notifier notify.Notifier
	config   Config
	now      func() time.Time
}

// NewRunner creates a rule evaluator.
func NewRunner(prefs Preferences, plants PlantStore, provider weather.Provider, notifier notify.Notifier, config Config) *Runner {
	return &Runner{
		prefs:    prefs,
		plants:   plants,
		provider: provider,
		notifier: notifier,
		config:   config,
		now:      time.Now,
	}
}

// MorningRun evaluates, in order: the inactivity nudge, the weather
// alert, and the capacity upsell. Always returns nil.
func (r *Runner) MorningRun(ctx context.Context) error {
	prefs := r.prefs.Get(ctx)
	if !prefs.NotificationsEnabled {
		return nil
	}

	r.runInactivityNudge(ctx, prefs)
	r.runWeatherAlert(ctx, prefs)
	r.runCapacityUpsell(ctx, prefs)

	return nil
}

// NoonRun emits one aggregate watering reminder naming the count of
// plants that need water. Always returns nil.
func (r *Runner) NoonRun(ctx context.Context) error {
	prefs := r.prefs.Get(ctx)
	if !prefs.NotificationsEnabled {
		return nil
	}

	plants, err := r.plants.ListPlants(ctx, &store.FindPlant{})
	if err != nil {
		slog.Error("watering rule: failed to list plants", "error", err)
		return nil
	}

	nowMillis := r.now().UnixMilli()
	dueCount := 0
	for _, p := range plants {
		if r.needsWatering(p, nowMillis) {
			dueCount++
		}
	}

	if dueCount > 0 {
		r.send(ctx, notify.IDWateringReminder,
			"Watering Reminder 💧",
			fmt.Sprintf("You have %d plants that need watering. Keep them hydrated!", dueCount))
	}

	return nil
}

func (r *Runner) needsWatering(p *store.Plant, nowMillis int64) bool {
	if d := r.config.WateringOverdueDays; d > 0 {
		return (nowMillis-p.LastWateringDate)/millisPerDay >= int64(d)
	}
	return plant.IsDue(p, nowMillis)
}

// runInactivityNudge fires when the user has been away a positive even
// number of whole days.
func (r *Runner) runInactivityNudge(ctx context.Context, prefs *store.UserPreferences) {
	daysSinceOpen := (r.now().UnixMilli() - prefs.LastAppOpen) / millisPerDay
	if daysSinceOpen > 0 && daysSinceOpen%2 == 0 {
		r.send(ctx, notify.IDInactivityNudge,
			"Plants Miss You! 🌱",
			"Your plants are waiting for a visit. Don't forget to say hello today!")
	}
}

// runWeatherAlert emits at most one weather message per run. Temperature
// thresholds are checked before precipitation; the first match wins. A
// fetch failure skips the rule silently.
func (r *Runner) runWeatherAlert(ctx context.Context, prefs *store.UserPreferences) {
	if r.provider == nil || prefs.LastLat == 0.0 {
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, weatherFetchTimeout)
	defer cancel()

	report, err := r.provider.Fetch(fetchCtx, prefs.LastLat, prefs.LastLon)
	if err != nil {
		slog.Warn("weather rule: fetch failed, skipping", "error", err)
		return
	}

	body := weatherAlertBody(report)
	if body != "" {
		r.send(ctx, notify.IDWeatherAlert, "Weather Alert", body)
	}
}

func weatherAlertBody(report *weather.Report) string {
	switch {
	case report.TemperatureCelsius < coldThresholdCelsius:
		return "It's very cold! Protect your sensitive plants. ❄️"
	case report.TemperatureCelsius > heatThresholdCelsius:
		return "Extremely hot today! Ensure your plants have enough shade. ☀️"
	case isStormy(report.Condition):
		return "Stormy weather ahead! 🌧️"
	}
	return ""
}

func isStormy(condition string) bool {
	switch condition {
	case "Rain", "Drizzle", "Thunderstorm", "Storm", "Squall":
		return true
	}
	return false
}

// runCapacityUpsell fires when the garden is at or over capacity and the
// last upsell was at least three days ago, then stamps lastUpsellTime.
func (r *Runner) runCapacityUpsell(ctx context.Context, prefs *store.UserPreferences) {
	plants, err := r.plants.ListPlants(ctx, &store.FindPlant{})
	if err != nil {
		slog.Error("upsell rule: failed to list plants", "error", err)
		return
	}
	if len(plants) < prefs.PlantLimit {
		return
	}

	daysSinceUpsell := (r.now().UnixMilli() - prefs.LastUpsellTime) / millisPerDay
	if daysSinceUpsell < upsellCooldownDays {
		return
	}

	r.send(ctx, notify.IDCapacityUpsell,
		"Your Garden Is Full! 🌿",
		"You've reached your plant limit. Get the Plant Pack to make room for 5 more.")

	if err := r.prefs.UpdateLastUpsellTime(ctx); err != nil {
		slog.Error("upsell rule: failed to stamp last upsell time", "error", err)
	}
}

func (r *Runner) send(ctx context.Context, id int, title, body string) {
	if err := r.notifier.Send(ctx, id, title, body); err != nil {
		slog.Error("failed to send notification", "id", id, "error", err)
	}
}
