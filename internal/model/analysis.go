package model

import (
	"time"
	"unicode"
	"unicode/utf8"
)

// DefaultEmoji is shown when no usable glyph is known for a food.
const DefaultEmoji = "🍽️"

// AnalysisResult is a nutrition estimate produced by photo or text analysis.
type AnalysisResult struct {
	Name       string  `json:"name"`
	Emoji      string  `json:"emoji"`
	Confidence float64 `json:"confidence"`
	Nutrition
}

// ScaledTo scales the estimate to a user adjusted portion weight.
func (r AnalysisResult) ScaledTo(newWeightGrams int) AnalysisResult {
	r.Nutrition = r.Nutrition.ScaledTo(newWeightGrams)
	return r
}

// ToEntry turns the estimate into a new, unsaved entry.
func (r AnalysisResult) ToEntry(date Date, timestamp time.Time, source Source, imageURI *string) FoodEntry {
	n := r.Nutrition
	if n.WeightGrams == 0 {
		n.WeightGrams = DefaultWeightGrams
	}
	return FoodEntry{
		Name:      r.Name,
		Emoji:     NormalizeEmoji(r.Emoji),
		Nutrition: n,
		Date:      date,
		Timestamp: timestamp,
		ImageURI:  imageURI,
		Source:    source,
	}
}

// NormalizeEmoji extracts the first emoji sequence from s, or returns
// DefaultEmoji when there is none.
func NormalizeEmoji(s string) string {
	start := -1
	for i, r := range s {
		if isEmojiRune(r) {
			start = i
			break
		}
	}
	if start < 0 {
		return DefaultEmoji
	}

	end := start
	joined := true
	for end < len(s) {
		r, size := utf8.DecodeRuneInString(s[end:])
		switch {
		case joined && isEmojiRune(r):
			joined = false
		case r == 0x200D:
			joined = true
		case r == 0xFE0F || (r >= 0x1F3FB && r <= 0x1F3FF):
		default:
			return s[start:end]
		}
		end += size
	}
	return s[start:end]
}

func isEmojiRune(r rune) bool {
	if r >= 0x1F000 {
		return true
	}
	return unicode.In(r, unicode.So, unicode.Sc, unicode.Sk, unicode.Sm)
}
