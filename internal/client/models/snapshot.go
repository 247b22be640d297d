package models

// Snapshot is the full {medications, meals, reminders} triple persisted
// locally and pushed to the backend as one unit.
type Snapshot struct {
	Medications []Medication     `json:"medications"`
	Meals       []MealEntry      `json:"meals"`
	Reminders   ReminderSettings `json:"reminders"`
}

// EmptySnapshot returns a snapshot with non-nil collections.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Medications: []Medication{},
		Meals:       []MealEntry{},
		Reminders:   NewReminderSettings(),
	}
}

// RemoteSnapshot is the partial pull result from the backend. Any field may
// be absent (nil) and an absent field must not overwrite local state.
type RemoteSnapshot struct {
	Medications *[]Medication     `json:"medications,omitempty"`
	Meals       *[]MealEntry      `json:"meals,omitempty"`
	Reminders   *ReminderSettings `json:"reminders,omitempty"`
}

// Merge reconciles a local snapshot with a partial remote one. For every
// field present in remote the server value wins wholesale; absent fields
// leave the local value untouched. No per-item conflict resolution is
// attempted.
func Merge(local Snapshot, remote RemoteSnapshot) Snapshot {
	merged := local
	if remote.Medications != nil {
		merged.Medications = *remote.Medications
	}
	if remote.Meals != nil {
		merged.Meals = *remote.Meals
	}
	if remote.Reminders != nil {
		merged.Reminders = *remote.Reminders
		if merged.Reminders.Medications == nil {
			merged.Reminders.Medications = map[string]bool{}
		}
	}
	return merged
}
