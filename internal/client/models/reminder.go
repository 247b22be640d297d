package models

// ReminderSettings controls medication reminders. Enabled is a master
// override: when false no reminder fires regardless of the per-medication
// flags. Keys of Medications must correspond to currently-tracked medication
// ids; the state store prunes an id's entry when the medication is removed.
type ReminderSettings struct {
	Enabled     bool            `json:"enabled"`
	Medications map[string]bool `json:"medications"`
}

// NewReminderSettings returns the default (all off) settings.
func NewReminderSettings() ReminderSettings {
	return ReminderSettings{Enabled: false, Medications: map[string]bool{}}
}

// Clone returns a deep copy, safe for handing out past the store boundary.
func (r ReminderSettings) Clone() ReminderSettings {
	meds := make(map[string]bool, len(r.Medications))
	for k, v := range r.Medications {
		meds[k] = v
	}
	return ReminderSettings{Enabled: r.Enabled, Medications: meds}
}

// EffectiveFlag reports whether reminders should actually fire for the given
// medication id: the master switch AND the individual flag.
func (r ReminderSettings) EffectiveFlag(medID string) bool {
	return r.Enabled && r.Medications[medID]
}
