package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendReplacesSameID(t *testing.T) {
	ctx := context.Background()
	c := NewCenter()

	require.NoError(t, c.Send(ctx, IDWeatherAlert, "Weather Alert", "Stormy weather ahead! 🌧️"))
	require.NoError(t, c.Send(ctx, IDWeatherAlert, "Weather Alert", "It's very cold! Protect your sensitive plants. ❄️"))

	list := c.List()
	require.Len(t, list, 1)
	assert.Equal(t, "It's very cold! Protect your sensitive plants. ❄️", list[0].Body)
}

func TestListOrderedByID(t *testing.T) {
	ctx := context.Background()
	c := NewCenter()

	require.NoError(t, c.Send(ctx, IDWateringReminder, "Watering Reminder 💧", "You have 3 plants that need watering. Keep them hydrated!"))
	require.NoError(t, c.Send(ctx, IDInactivityNudge, "Plants Miss You! 🌱", "Your plants are waiting for a visit. Don't forget to say hello today!"))
	require.NoError(t, c.Send(ctx, IDCapacityUpsell, "Your Garden Is Full! 🌿", "You've reached your plant limit. Get the Plant Pack to make room for 5 more."))

	list := c.List()
	require.Len(t, list, 3)
	assert.Equal(t, IDInactivityNudge, list[0].ID)
	assert.Equal(t, IDCapacityUpsell, list[1].ID)
	assert.Equal(t, IDWateringReminder, list[2].ID)
}

func TestDismiss(t *testing.T) {
	ctx := context.Background()
	c := NewCenter()

	require.NoError(t, c.Send(ctx, IDInactivityNudge, "Plants Miss You! 🌱", "body"))
	c.Dismiss(IDInactivityNudge)
	assert.Empty(t, c.List())

	// Unknown id is a no-op.
	c.Dismiss(999)
	assert.Empty(t, c.List())
}

func TestSendStampsCreatedAt(t *testing.T) {
	ctx := context.Background()
	c := NewCenter()
	fixed := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	require.NoError(t, c.Send(ctx, IDWeatherAlert, "Weather Alert", "body"))

	list := c.List()
	require.Len(t, list, 1)
	assert.Equal(t, fixed, list[0].CreatedAt)
}
