// Package models contains the client-side domain types: medications, foods,
// meal log entries, reminder settings and the snapshot that groups them for
// persistence and sync.
package models

// Food is a nutrition record. Meal entries embed it by value, so later edits
// to the food catalog never rewrite logged history.
type Food struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}
