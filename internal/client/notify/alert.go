// Package notify converts medication schedules into recurring wall-clock
// alerts. Timers live in-process only: reminders fire while the client is
// running and are rebuilt from state on the next start.
package notify

import (
	"fmt"
	"io"
)

// Permission mirrors the platform notification grant state.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Alert is one user-visible reminder. Tag identifies the medication so a
// re-fired alert replaces a still-visible prior one instead of stacking.
type Alert struct {
	Title              string
	Body               string
	Tag                string
	RequireInteraction bool
}

// Alerter is the platform surface the scheduler delivers alerts through.
type Alerter interface {
	Alert(a Alert) error
	// RequestPermission asks the platform for the right to alert. It must
	// reflect the persistent grant/deny decision and be safe to call
	// repeatedly.
	RequestPermission() (bool, error)
}

// ConsoleAlerter prints alerts to a terminal. It needs no permission grant.
type ConsoleAlerter struct {
	w io.Writer
}

func NewConsoleAlerter(w io.Writer) *ConsoleAlerter {
	return &ConsoleAlerter{w: w}
}

func (c *ConsoleAlerter) Alert(a Alert) error {
	_, err := fmt.Fprintf(c.w, "\n🔔 [%s] %s\n   %s\n", a.Tag, a.Title, a.Body)
	return err
}

func (c *ConsoleAlerter) RequestPermission() (bool, error) {
	return true, nil
}
