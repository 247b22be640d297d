package models

// Medication is a user-tracked medication. ID is an opaque string assigned
// by the state store at creation. Records are replace-only: they are never
// mutated in place, only removed and re-added.
type Medication struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	// Time is the daily intake time in local "HH:MM" form. An empty value
	// means the medication has no schedulable reminder.
	Time     string `json:"time"`
	Category string `json:"category"`
	Notes    string `json:"notes,omitempty"`
}
