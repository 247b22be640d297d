package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	addMedication(ctx context.Context) error
	removeMedication(ctx context.Context) error
	listMedications(ctx context.Context) error
	addMeal(ctx context.Context) error
	removeMeal(ctx context.Context) error
	today(ctx context.Context) error
	toggleReminder(ctx context.Context) error
	setReminders(ctx context.Context) error
	listReminders(ctx context.Context) error
	cleanup(ctx context.Context) error
	sync(ctx context.Context) error
	status(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the MediNutri CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("mn %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: addmed, delmed, meds, addmeal, delmeal, today, remind, reminders, alerts, cleanup, sync, status, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "addmed":
			_ = a.addMedication(ctx)

		case "delmed":
			_ = a.removeMedication(ctx)

		case "meds":
			_ = a.listMedications(ctx)

		case "addmeal":
			_ = a.addMeal(ctx)

		case "delmeal":
			_ = a.removeMeal(ctx)

		case "today":
			_ = a.today(ctx)

		case "remind":
			_ = a.toggleReminder(ctx)

		case "reminders":
			_ = a.setReminders(ctx)

		case "alerts":
			_ = a.listReminders(ctx)

		case "cleanup":
			_ = a.cleanup(ctx)

		case "sync":
			_ = a.sync(ctx)

		case "status":
			_ = a.status(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
