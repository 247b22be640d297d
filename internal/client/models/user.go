package models

// User is the authenticated account profile. ID drives the namespacing of
// every locally persisted key, so a session switch never leaks another
// user's data.
type User struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Role       string   `json:"role,omitempty"`
	Age        int      `json:"age,omitempty"`
	Gender     string   `json:"gender,omitempty"`
	Height     float64  `json:"height,omitempty"`
	Weight     float64  `json:"weight,omitempty"`
	Conditions []string `json:"medicalConditions,omitempty"`
	Allergies  []string `json:"allergies,omitempty"`
}
