package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
)

func (a *App) getStatus() string {
	s := ""
	if u, ok := a.session.CurrentUser(); ok {
		s = u.Name + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// status summarizes connectivity, identity and the in-memory state.
func (a *App) status(ctx context.Context) error {
	fmt.Printf("Connectivity: %s\n", a.Mode)
	if u, ok := a.session.CurrentUser(); ok {
		fmt.Printf("Logged in as: %s <%s>\n", u.Name, u.Email)
	} else {
		fmt.Println("Not logged in.")
	}
	fmt.Printf("Medications: %d, meal entries: %d, active reminders: %d\n",
		len(a.store.Medications()), len(a.store.MealLog()), len(a.scheduler.ActiveReminders()))
	return nil
}

func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to MediNutri CLI (type 'help' for commands)")

	restored, err := a.session.Restore(ctx)
	if err != nil {
		log.Printf("Session restore failed: %s", err.Error())
	}
	if restored {
		if u, ok := a.session.CurrentUser(); ok {
			log.Printf("Welcome back, %s", u.Name)
		}
	}

	go func() {
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)

	a.store.FlushSync()
}
