// Package plant implements plant tracking: add (behind the capacity
// gate), watering, deletion, and the days-until-due derivation shared
// with the rule evaluator.
package plant

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/hrygo/guarden/store"
)

const (
	millisPerDay = int64(24 * 60 * 60 * 1000)

	// Valid watering cadence bounds, in days.
	MinWateringFrequency = 1
	MaxWateringFrequency = 30
)

// ErrPlantLimitReached signals that the free-tier capacity is exhausted.
// The caller presents the paywall; nothing was inserted.
var ErrPlantLimitReached = errors.New("plant limit reached")

// PlantStore is the slice of the store the service needs.
type PlantStore interface {
	CreatePlant(ctx context.Context, create *store.Plant) (*store.Plant, error)
	ListPlants(ctx context.Context, find *store.FindPlant) ([]*store.Plant, error)
	UpdatePlantWatering(ctx context.Context, update *store.UpdatePlantWatering) error
	DeletePlant(ctx context.Context, delete *store.DeletePlant) error
}

// Entitlements reports the state the capacity gate needs.
type Entitlements interface {
	Get(ctx context.Context) *store.UserPreferences
}

// Service provides plant operations.
type Service struct {
	store        PlantStore
	entitlements Entitlements
	now          func() time.Time
}

// NewService creates a new plant service.
func NewService(plantStore PlantStore, entitlements Entitlements) *Service {
	return &Service{
		store:        plantStore,
		entitlements: entitlements,
		now:          time.Now,
	}
}

// AddPlant inserts a new plant unless the free-tier capacity is reached.
// Premium users always insert regardless of count.
func (s *Service) AddPlant(ctx context.Context, name, plantType string, wateringFrequency int, imageURI *string) (*store.Plant, error) {
	if name == "" {
		return nil, errors.New("plant name is required")
	}
	if wateringFrequency < MinWateringFrequency || wateringFrequency > MaxWateringFrequency {
		return nil, errors.Errorf("watering frequency must be between %d and %d days", MinWateringFrequency, MaxWateringFrequency)
	}

	prefs := s.entitlements.Get(ctx)
	if !prefs.IsPremium {
		plants, err := s.store.ListPlants(ctx, &store.FindPlant{})
		if err != nil {
			return nil, errors.Wrap(err, "failed to count plants")
		}
		if len(plants) >= prefs.PlantLimit {
			return nil, ErrPlantLimitReached
		}
	}

	nowMillis := s.now().UnixMilli()
	created, err := s.store.CreatePlant(ctx, &store.Plant{
		ID:                uuid.NewString(),
		Name:              name,
		Type:              plantType,
		ImageURI:          imageURI,
		WateringFrequency: wateringFrequency,
		LastWateringDate:  nowMillis,
		CreatedTs:         nowMillis,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create plant")
	}
	return created, nil
}

// WaterPlant stamps the plant's last watering date to now. Nothing else
// about the plant ever changes after creation.
func (s *Service) WaterPlant(ctx context.Context, id string) error {
	if err := s.store.UpdatePlantWatering(ctx, &store.UpdatePlantWatering{
		ID:               id,
		LastWateringDate: s.now().UnixMilli(),
	}); err != nil {
		return errors.Wrap(err, "failed to water plant")
	}
	return nil
}

// DeletePlant removes the plant.
func (s *Service) DeletePlant(ctx context.Context, id string) error {
	if err := s.store.DeletePlant(ctx, &store.DeletePlant{ID: id}); err != nil {
		return errors.Wrap(err, "failed to delete plant")
	}
	return nil
}

// ListPlants returns all plants, soonest-due first. Storage order is
// unspecified; sorting is the consumer's concern.
func (s *Service) ListPlants(ctx context.Context) ([]*store.Plant, error) {
	plants, err := s.store.ListPlants(ctx, &store.FindPlant{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list plants")
	}

	nowMillis := s.now().UnixMilli()
	sort.SliceStable(plants, func(i, j int) bool {
		return DaysUntilDue(plants[i], nowMillis) < DaysUntilDue(plants[j], nowMillis)
	})
	return plants, nil
}

// DaysUntilDue returns wateringFrequency minus whole days elapsed since
// the last watering. Zero or negative means due now; all negative values
// are equally "due", there are no severity tiers.
func DaysUntilDue(p *store.Plant, nowMillis int64) int {
	elapsedDays := (nowMillis - p.LastWateringDate) / millisPerDay
	return p.WateringFrequency - int(elapsedDays)
}

// IsDue reports whether the plant needs watering.
func IsDue(p *store.Plant, nowMillis int64) bool {
	return DaysUntilDue(p, nowMillis) <= 0
}
