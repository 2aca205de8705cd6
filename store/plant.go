package store

// Plant represents a tracked houseplant.
// Timestamps are Unix milliseconds.
type Plant struct {
	ID                string
	Name              string
	Type              string
	ImageURI          *string
	WateringFrequency int // days between waterings, 1-30
	LastWateringDate  int64
	CreatedTs         int64
}

// FindPlant specifies the conditions for listing plants.
type FindPlant struct {
	ID    *string
	Limit *int
}

// UpdatePlantWatering specifies a watering action: only the last
// watering date of the plant changes, nothing else.
type UpdatePlantWatering struct {
	ID               string
	LastWateringDate int64
}

// DeletePlant specifies the plant to delete.
type DeletePlant struct {
	ID string
}
