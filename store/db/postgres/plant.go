package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hrygo/guarden/store"
)

func (d *DB) CreatePlant(ctx context.Context, create *store.Plant) (*store.Plant, error) {
	fields := []string{"id", "name", "type", "image_uri", "watering_frequency", "last_watering_date", "created_ts"}
	placeholderValues := []any{
		create.ID, create.Name, create.Type, create.ImageURI,
		create.WateringFrequency, create.LastWateringDate, create.CreatedTs,
	}

	stmt := `INSERT INTO plant (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)`

	if _, err := d.db.ExecContext(ctx, stmt, placeholderValues...); err != nil {
		return nil, fmt.Errorf("failed to create plant: %w", err)
	}

	return create, nil
}

func (d *DB) ListPlants(ctx context.Context, find *store.FindPlant) ([]*store.Plant, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "plant.id = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, name, type, image_uri, watering_frequency, last_watering_date, created_ts
		FROM plant
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY plant.created_ts ASC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query plants: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Plant, 0)
	for rows.Next() {
		var plant store.Plant
		var imageURI sql.NullString

		if err := rows.Scan(
			&plant.ID,
			&plant.Name,
			&plant.Type,
			&imageURI,
			&plant.WateringFrequency,
			&plant.LastWateringDate,
			&plant.CreatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan plant: %w", err)
		}
		if imageURI.Valid {
			plant.ImageURI = &imageURI.String
		}
		list = append(list, &plant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plants: %w", err)
	}

	return list, nil
}

func (d *DB) UpdatePlantWatering(ctx context.Context, update *store.UpdatePlantWatering) error {
	stmt := `UPDATE plant SET last_watering_date = ` + placeholder(1) + ` WHERE id = ` + placeholder(2)
	if _, err := d.db.ExecContext(ctx, stmt, update.LastWateringDate, update.ID); err != nil {
		return fmt.Errorf("failed to update plant watering date: %w", err)
	}
	return nil
}

func (d *DB) DeletePlant(ctx context.Context, delete *store.DeletePlant) error {
	stmt := `DELETE FROM plant WHERE id = ` + placeholder(1)
	if _, err := d.db.ExecContext(ctx, stmt, delete.ID); err != nil {
		return fmt.Errorf("failed to delete plant: %w", err)
	}
	return nil
}
