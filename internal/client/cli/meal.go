package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/Johnwickx812/MediNutri/internal/client/models"
)

// addMeal interactively logs one eaten food into a meal slot.
func (a *App) addMeal(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Food name", os.Stdout)
	if err != nil {
		return err
	}
	slot, err := getSimpleText(a.reader, "Meal (breakfast/lunch/dinner/snack)", os.Stdout)
	if err != nil {
		return err
	}
	mealType, err := models.ParseMealType(slot)
	if err != nil {
		log.Printf("Could not add meal: %s", err.Error())
		return err
	}

	calories, err := GetFloat(a.reader, "Calories", os.Stdout)
	if err != nil {
		return err
	}
	protein, err := GetFloat(a.reader, "Protein (g)", os.Stdout)
	if err != nil {
		return err
	}
	carbs, err := GetFloat(a.reader, "Carbs (g)", os.Stdout)
	if err != nil {
		return err
	}
	fat, err := GetFloat(a.reader, "Fat (g)", os.Stdout)
	if err != nil {
		return err
	}

	entry, err := a.store.AddMeal(ctx, models.Food{
		Name:     name,
		Calories: calories,
		Protein:  protein,
		Carbs:    carbs,
		Fat:      fat,
	}, mealType)
	if err != nil {
		log.Printf("Could not add meal: %s", err.Error())
		return err
	}

	fmt.Printf("Logged %s for %s (%s)\n", entry.Food.Name, entry.MealType, entry.ID)
	return nil
}

func (a *App) removeMeal(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Meal entry id to remove", os.Stdout)
	if err != nil {
		return err
	}

	a.store.RemoveMeal(ctx, id)
	fmt.Println("Removed.")
	return nil
}

// today prints the current day's meal log and nutrition totals.
func (a *App) today(ctx context.Context) error {
	meals := a.store.TodaysMeals()
	if len(meals) == 0 {
		fmt.Println("Nothing logged today.")
		return nil
	}

	for _, m := range meals {
		fmt.Printf("%s  %-10s %s  %.0f kcal\n", m.ID, m.MealType, m.Food.Name, m.Food.Calories)
	}
	fmt.Printf("Total: %.0f kcal, %.1f g protein\n", a.store.TodaysCalories(), a.store.TodaysProtein())
	return nil
}

// cleanup prunes meal entries older than the retention window, if any.
func (a *App) cleanup(ctx context.Context) error {
	if !a.store.HasOldData() {
		fmt.Println("Nothing to clean up.")
		return nil
	}

	a.store.ClearOldData(ctx)
	fmt.Println("Old meal entries removed.")
	return nil
}

// sync forces any pending local changes out to the backend immediately.
func (a *App) sync(ctx context.Context) error {
	a.store.FlushSync()
	fmt.Println("Sync triggered.")
	return nil
}