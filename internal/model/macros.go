package model

// Nutrition is the scalable nutrition block shared by entries, favorites and
// analysis results. Every macro is expressed for WeightGrams of food.
type Nutrition struct {
	Calories    int     `gorm:"not null;default:0" json:"calories"`
	Fats        float64 `gorm:"type:float;not null;default:0" json:"fats"`
	Proteins    float64 `gorm:"type:float;not null;default:0" json:"proteins"`
	Carbs       float64 `gorm:"type:float;not null;default:0" json:"carbs"`
	WeightGrams int     `gorm:"not null;default:100" json:"weight_grams"`
}

// DefaultWeightGrams is the portion basis used when none is known.
const DefaultWeightGrams = 100

// ScaledTo returns the nutrition block for a portion of newWeightGrams,
// keeping the per-gram density constant. Calories are truncated, not
// rounded, so a round trip may lose up to one kcal.
//
// A zero current weight or an unchanged weight returns n as is. Callers
// must clamp newWeightGrams to at least 1 beforehand.
func (n Nutrition) ScaledTo(newWeightGrams int) Nutrition {
	if n.WeightGrams == 0 || newWeightGrams == n.WeightGrams {
		return n
	}
	ratio := float64(newWeightGrams) / float64(n.WeightGrams)
	return Nutrition{
		Calories:    int(float64(n.Calories) * ratio),
		Fats:        n.Fats * ratio,
		Proteins:    n.Proteins * ratio,
		Carbs:       n.Carbs * ratio,
		WeightGrams: newWeightGrams,
	}
}

// ClampWeight coerces a user supplied portion weight to the minimum of 1 gram.
func ClampWeight(grams int) int {
	if grams < 1 {
		return 1
	}
	return grams
}

// DailyLimits holds the user's daily nutrition targets.
type DailyLimits struct {
	Calories int     `json:"calories"`
	Fats     float64 `json:"fats"`
	Proteins float64 `json:"proteins"`
	Carbs    float64 `json:"carbs"`
}

// DefaultDailyLimits returns the limits used before onboarding.
func DefaultDailyLimits() DailyLimits {
	return DailyLimits{
		Calories: 2000,
		Fats:     65,
		Proteins: 50,
		Carbs:    300,
	}
}

// DailySummary represents the summed nutrition of one diary day.
type DailySummary struct {
	TotalCalories int     `json:"total_calories"`
	TotalFats     float64 `json:"total_fats"`
	TotalProteins float64 `json:"total_proteins"`
	TotalCarbs    float64 `json:"total_carbs"`
}

// Add folds one nutrition block into the summary.
func (s *DailySummary) Add(n Nutrition) {
	s.TotalCalories += n.Calories
	s.TotalFats += n.Fats
	s.TotalProteins += n.Proteins
	s.TotalCarbs += n.Carbs
}
