package models

import (
	"fmt"
	"time"

	"github.com/Johnwickx812/MediNutri/internal/common"
)

// MealType is the day slot a meal entry belongs to.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// ParseMealType validates a raw meal-type string.
func ParseMealType(s string) (MealType, error) {
	switch MealType(s) {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return MealType(s), nil
	}
	return "", fmt.Errorf("%w: %q", common.ErrInvalidMealType, s)
}

// DateLayout is the local calendar date format used for day bucketing.
const DateLayout = "2006-01-02"

// MealEntry is one logged meal. Food is an embedded value snapshot, not a
// reference into the catalog. Date is the local calendar day derived from
// Timestamp at creation and is never reconciled afterwards, so an entry's
// day bucket is fixed for life.
type MealEntry struct {
	ID       string   `json:"id"`
	Food     Food     `json:"food"`
	MealType MealType `json:"mealType"`
	// Date is the local calendar date in "YYYY-MM-DD" form.
	Date string `json:"date"`
	// Timestamp is the creation time in epoch milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// NewMealEntry builds a meal entry for the given creation instant, stamping
// both the millisecond timestamp and the matching local calendar date.
func NewMealEntry(id string, food Food, mealType MealType, createdAt time.Time) MealEntry {
	return MealEntry{
		ID:        id,
		Food:      food,
		MealType:  mealType,
		Date:      createdAt.Format(DateLayout),
		Timestamp: createdAt.UnixMilli(),
	}
}
