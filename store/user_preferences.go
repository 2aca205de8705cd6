package store

// DefaultPlantLimit is the number of plants a free-tier user may keep
// before the paywall triggers. Purchased plant packs raise it in steps
// of five; it never decreases.
const DefaultPlantLimit = 7

// UserPreferences is the singleton preference record for this installation.
// All timestamps are Unix milliseconds.
type UserPreferences struct {
	IsPremium            bool    `json:"isPremium"`
	NotificationsEnabled bool    `json:"notificationsEnabled"`
	PlantLimit           int     `json:"plantLimit"`
	LastAppOpen          int64   `json:"lastAppOpen"`
	LastLat              float64 `json:"lastLat"`
	LastLon              float64 `json:"lastLon"`
	LastUpsellTime       int64   `json:"lastUpsellTime"`
	LastSharePromptTime  int64   `json:"lastSharePromptTime"`
	FirstInstallTime     int64   `json:"firstInstallTime"`
	LastRatingPromptTime int64   `json:"lastRatingPromptTime"`
	UserAlreadyRated     bool    `json:"userAlreadyRated"`
	NeverAskAgain        bool    `json:"neverAskAgain"`
	AdFreeRewardExpiry   int64   `json:"adFreeRewardExpiry"`
}

// DefaultUserPreferences returns the documented defaults for a fresh
// installation. FirstInstallTime and LastAppOpen are stamped with the
// given time; both are set exactly once, at first read.
func DefaultUserPreferences(nowMillis int64) *UserPreferences {
	return &UserPreferences{
		IsPremium:            false,
		NotificationsEnabled: true,
		PlantLimit:           DefaultPlantLimit,
		LastAppOpen:          nowMillis,
		FirstInstallTime:     nowMillis,
	}
}

// UpsertUserPreferences specifies the data for upserting the singleton
// preference record.
type UpsertUserPreferences struct {
	Preferences *UserPreferences
}
