package cli

import (
	"context"
	"fmt"
	"log"
	"os"
)

// toggleReminder flips the per-medication reminder flag.
func (a *App) toggleReminder(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Medication id", os.Stdout)
	if err != nil {
		return err
	}

	a.store.ToggleReminder(ctx, id)

	if a.store.ReminderSettings().Medications[id] {
		fmt.Println("Reminder enabled.")
	} else {
		fmt.Println("Reminder disabled.")
	}
	return nil
}

// setReminders switches the master reminder toggle. Enabling asks the
// platform for notification permission first.
func (a *App) setReminders(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Reminders on or off?", os.Stdout)
	if err != nil {
		return err
	}

	switch answer {
	case "on":
		if !a.scheduler.RequestPermission(ctx) {
			log.Printf("Notification permission denied, reminders stay silent")
		}
		a.store.SetRemindersEnabled(ctx, true)
		fmt.Println("Reminders enabled for all flagged medications.")
	case "off":
		a.store.SetRemindersEnabled(ctx, false)
		fmt.Println("Reminders disabled.")
	default:
		fmt.Println("Please answer 'on' or 'off'.")
	}
	return nil
}

// listReminders shows the currently armed reminder timers.
func (a *App) listReminders(ctx context.Context) error {
	active := a.scheduler.ActiveReminders()
	if len(active) == 0 {
		fmt.Println("No active reminders.")
		return nil
	}

	for _, r := range active {
		fmt.Printf("%s  %s %s @ %s\n", r.MedicationID, r.Name, r.Dosage, r.Time)
	}
	return nil
}
