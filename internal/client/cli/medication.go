package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/Johnwickx812/MediNutri/internal/client/models"
)

// addMedication interactively collects a medication and adds it to the store.
// The reminder time may be left empty for medications taken as needed.
func (a *App) addMedication(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Medication name", os.Stdout)
	if err != nil {
		return err
	}
	dosage, err := getSimpleText(a.reader, "Dosage (e.g. 500mg)", os.Stdout)
	if err != nil {
		return err
	}
	frequency, err := getSimpleText(a.reader, "Frequency (e.g. daily)", os.Stdout)
	if err != nil {
		return err
	}
	timeHHMM, err := getSimpleText(a.reader, "Reminder time HH:MM (empty for none)", os.Stdout)
	if err != nil {
		return err
	}
	category, err := getSimpleText(a.reader, "Category", os.Stdout)
	if err != nil {
		return err
	}
	notes, err := getSimpleText(a.reader, "Notes (optional)", os.Stdout)
	if err != nil {
		return err
	}

	med, err := a.store.AddMedication(ctx, models.Medication{
		Name:      name,
		Dosage:    dosage,
		Frequency: frequency,
		Time:      timeHHMM,
		Category:  category,
		Notes:     notes,
	})
	if err != nil {
		log.Printf("Could not add medication: %s", err.Error())
		return err
	}

	fmt.Printf("Added %s (%s)\n", med.Name, med.ID)
	return nil
}

func (a *App) removeMedication(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Medication id to remove", os.Stdout)
	if err != nil {
		return err
	}

	a.store.RemoveMedication(ctx, id)
	fmt.Println("Removed.")
	return nil
}

func (a *App) listMedications(ctx context.Context) error {
	meds := a.store.Medications()
	if len(meds) == 0 {
		fmt.Println("No medications yet.")
		return nil
	}

	settings := a.store.ReminderSettings()
	for _, m := range meds {
		marker := " "
		if settings.EffectiveFlag(m.ID) && m.Time != "" {
			marker = "*"
		}
		fmt.Printf("%s %s  %s  %s %s @ %s\n", marker, m.ID, m.Name, m.Dosage, m.Frequency, m.Time)
	}
	return nil
}
