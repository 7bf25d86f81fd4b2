package health

import (
	"time"

	"github.com/pageza/foodtracking/backend/internal/model"
)

// MealDuration is the span a logged meal occupies in the health store.
const MealDuration = 15 * time.Minute

// Record is a nutrition record as the health store holds it.
type Record struct {
	ID         string    `json:"id,omitempty"`
	Name       string    `json:"name"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	EnergyKcal float64   `json:"energy_kcal"`
	ProteinG   float64   `json:"protein_g"`
	CarbsG     float64   `json:"carbs_g"`
	FatG       float64   `json:"fat_g"`
	// ClientRecordID lets the store deduplicate records from the same entry.
	ClientRecordID string `json:"client_record_id,omitempty"`
}

// RecordFromEntry maps an entry to its health store representation.
func RecordFromEntry(entry model.FoodEntry) Record {
	start := entry.Timestamp.UTC()
	r := Record{
		Name:       entry.Name,
		Start:      start,
		End:        start.Add(MealDuration),
		EnergyKcal: float64(entry.Calories),
		ProteinG:   entry.Proteins,
		CarbsG:     entry.Carbs,
		FatG:       entry.Fats,
	}
	if entry.ID != 0 {
		r.ClientRecordID = clientRecordID(entry.ID)
	}
	if id, ok := entry.Sync.ExternalID(); ok {
		r.ID = id
	}
	return r
}
