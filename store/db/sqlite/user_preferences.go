package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hrygo/guarden/store"
)

// The preference record is a singleton: one JSON payload row with id 1,
// matching the single-installation semantics of the app.
const userPreferencesRowID = 1

func (d *DB) UpsertUserPreferences(ctx context.Context, upsert *store.UpsertUserPreferences) (*store.UserPreferences, error) {
	payload, err := json.Marshal(upsert.Preferences)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user preferences: %w", err)
	}

	now := time.Now().Unix()
	stmt := `INSERT INTO user_preferences (id, payload, created_ts, updated_ts)
		VALUES (` + placeholders(4) + `)
		ON CONFLICT (id) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_ts = EXCLUDED.updated_ts`

	if _, err := d.db.ExecContext(ctx, stmt, userPreferencesRowID, string(payload), now, now); err != nil {
		return nil, fmt.Errorf("failed to upsert user_preferences: %w", err)
	}

	return upsert.Preferences, nil
}

func (d *DB) GetUserPreferences(ctx context.Context) (*store.UserPreferences, error) {
	query := `SELECT payload FROM user_preferences WHERE id = ` + placeholder(1)

	var payload string
	err := d.db.QueryRowContext(ctx, query, userPreferencesRowID).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found, return nil without error
		}
		return nil, fmt.Errorf("failed to get user_preferences: %w", err)
	}

	prefs := &store.UserPreferences{}
	if err := json.Unmarshal([]byte(payload), prefs); err != nil {
		// A corrupted payload is treated the same as an absent record;
		// the caller substitutes defaults.
		return nil, nil
	}

	return prefs, nil
}
