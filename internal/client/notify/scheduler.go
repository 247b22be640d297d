package notify

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Johnwickx812/MediNutri/internal/logging"
)

// ReminderView is the non-owning slice of medication data the scheduler
// tracks per armed reminder.
type ReminderView struct {
	MedicationID string
	Name         string
	Dosage       string
	Time         string
}

// reminder is the per-medication timer state. Generation increases on every
// arm; a firing callback whose generation no longer matches was cancelled or
// replaced in the interim and must not re-arm.
type reminder struct {
	view       ReminderView
	generation uint64
	timer      *time.Timer
}

// Scheduler owns at most one live timer per medication id. Each timer fires
// at the medication's daily time, delivers an alert and immediately re-arms
// itself for the next day.
type Scheduler struct {
	mu         sync.Mutex
	alerter    Alerter
	log        logging.Logger
	permission Permission
	reminders  map[string]*reminder
	generation uint64

	// test seams
	now       func() time.Time
	afterFunc func(d time.Duration, f func()) *time.Timer
}

// NewScheduler builds a scheduler over the given alert surface. A nil
// alerter means the platform has no notification capability: IsSupported
// reports false and every scheduling call becomes a no-op.
func NewScheduler(alerter Alerter, log logging.Logger) *Scheduler {
	return &Scheduler{
		alerter:    alerter,
		log:        log,
		permission: PermissionDefault,
		reminders:  map[string]*reminder{},
		now:        time.Now,
		afterFunc:  time.AfterFunc,
	}
}

func (s *Scheduler) IsSupported() bool {
	return s.alerter != nil
}

// Permission returns the current grant state.
func (s *Scheduler) Permission() Permission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permission
}

// RequestPermission asks the platform once and caches the decision; repeated
// calls return the cached result.
func (s *Scheduler) RequestPermission(ctx context.Context) bool {
	if !s.IsSupported() {
		s.log.Warn(ctx, "notifications are not supported on this platform")
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.permission != PermissionDefault {
		return s.permission == PermissionGranted
	}

	granted, err := s.alerter.RequestPermission()
	if err != nil {
		s.log.Error(ctx, "permission request failed", "error", err)
		return false
	}
	if granted {
		s.permission = PermissionGranted
	} else {
		s.permission = PermissionDenied
	}
	return granted
}

// ScheduleReminder arms (or re-arms) the daily reminder for a medication.
// Any existing timer for the same id is cancelled first, never stacked.
// Without support or a permission grant this is a no-op.
func (s *Scheduler) ScheduleReminder(ctx context.Context, medID, name, dosage, timeHHMM string) {
	if !s.IsSupported() {
		return
	}

	hour, minute, err := ParseHHMM(timeHHMM)
	if err != nil {
		s.log.Warn(ctx, "skipping reminder with unparseable time", "med_id", medID, "time", timeHHMM, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.permission != PermissionGranted {
		return
	}

	s.armLocked(ctx, ReminderView{MedicationID: medID, Name: name, Dosage: dosage, Time: timeHHMM}, hour, minute)
}

// armLocked replaces any existing timer for the medication and arms the next
// occurrence. Caller holds s.mu.
func (s *Scheduler) armLocked(ctx context.Context, view ReminderView, hour, minute int) {
	if existing, ok := s.reminders[view.MedicationID]; ok {
		existing.timer.Stop()
	}

	s.generation++
	gen := s.generation

	now := s.now()
	target := NextOccurrence(now, hour, minute)
	delay := target.Sub(now)

	rem := &reminder{view: view, generation: gen}
	rem.timer = s.afterFunc(delay, func() {
		s.fire(view.MedicationID, gen)
	})
	s.reminders[view.MedicationID] = rem

	s.log.Info(ctx, "reminder armed", "med_id", view.MedicationID, "at", target.Format("15:04"), "in", delay.Round(time.Second).String())
}

// fire delivers the alert for a due reminder and re-arms it for the next
// day. A stale generation means the reminder was cancelled or replaced after
// this timer was set, in which case nothing happens.
func (s *Scheduler) fire(medID string, gen uint64) {
	ctx := context.Background()

	s.mu.Lock()
	rem, ok := s.reminders[medID]
	if !ok || rem.generation != gen {
		s.mu.Unlock()
		return
	}
	view := rem.view

	// Re-arm before alerting so the reminder is self-perpetuating even if
	// the alert surface fails.
	hour, minute, err := ParseHHMM(view.Time)
	if err == nil {
		s.armLocked(ctx, view, hour, minute)
	} else {
		delete(s.reminders, medID)
	}
	s.mu.Unlock()

	alert := Alert{
		Title:              fmt.Sprintf("💊 Time for %s", view.Name),
		Body:               fmt.Sprintf("Take your %s dose now", view.Dosage),
		Tag:                "medication-" + medID,
		RequireInteraction: true,
	}
	if err := s.alerter.Alert(alert); err != nil {
		s.log.Error(ctx, "failed to deliver alert", "med_id", medID, "error", err)
	}
}

// CancelReminder stops and removes the timer for a medication. No-op when
// none exists.
func (s *Scheduler) CancelReminder(medID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rem, ok := s.reminders[medID]; ok {
		rem.timer.Stop()
		delete(s.reminders, medID)
	}
}

// CancelAllReminders sweeps every tracked timer, e.g. when the master
// reminder switch goes off or the user logs out.
func (s *Scheduler) CancelAllReminders() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, rem := range s.reminders {
		rem.timer.Stop()
		delete(s.reminders, id)
	}
}

// ActiveReminders lists the currently armed reminders, ordered by
// medication id.
func (s *Scheduler) ActiveReminders() []ReminderView {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]ReminderView, 0, len(s.reminders))
	for _, rem := range s.reminders {
		views = append(views, rem.view)
	}
	sort.Slice(views, func(i, j int) bool { return views[i].MedicationID < views[j].MedicationID })
	return views
}
