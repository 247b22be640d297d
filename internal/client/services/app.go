// Package services contains the application services of the MediNutri
// client: the state store that owns medications, the meal log and reminder
// settings, and the session service that gates it on user identity.
package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Johnwickx812/MediNutri/internal/client/client"
	"github.com/Johnwickx812/MediNutri/internal/client/models"
	"github.com/Johnwickx812/MediNutri/internal/client/notify"
	"github.com/Johnwickx812/MediNutri/internal/client/repositories/snapshots"
	"github.com/Johnwickx812/MediNutri/internal/common"
	"github.com/Johnwickx812/MediNutri/internal/logging"
)

// RetentionWindow is how long meal history is kept before ClearOldData may
// prune it.
const RetentionWindow = 60 * 24 * time.Hour

const defaultPushTimeout = 10 * time.Second

// AppService is the single in-memory authority for medications, the meal
// log and reminder settings. Every mutation updates memory first, persists
// to the local cache synchronously, and schedules a debounced push to the
// backend. Mutations are optimistic: a failed sync never rolls them back.
type AppService struct {
	mu        sync.Mutex
	log       logging.Logger
	client    client.Client
	repo      snapshots.Repository
	scheduler *notify.Scheduler
	pusher    *Debouncer

	userID      string
	medications []models.Medication
	meals       []models.MealEntry
	reminders   models.ReminderSettings
	// dataLoaded gates pushes until the initial pull has settled, so an
	// empty starting state never overwrites server data.
	dataLoaded bool

	// test seams
	now         func() time.Time
	newID       func() string
	pushTimeout time.Duration
}

func NewAppService(c client.Client, repo snapshots.Repository, scheduler *notify.Scheduler, log logging.Logger, syncDebounce time.Duration) *AppService {
	s := &AppService{
		log:         log,
		client:      c,
		repo:        repo,
		scheduler:   scheduler,
		reminders:   models.NewReminderSettings(),
		now:         time.Now,
		newID:       uuid.NewString,
		pushTimeout: defaultPushTimeout,
	}
	s.pusher = NewDebouncer(syncDebounce, s.pushNow)
	return s
}

// Load activates the store for a user: state is cleared, the local cache is
// applied immediately, then a pull reconciles against the backend. Pushes
// are enabled only after the pull settles, success or failure.
func (s *AppService) Load(ctx context.Context, userID string) {
	s.Reset()

	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()

	snap, err := s.repo.Load(ctx, userID)
	if err != nil {
		s.log.Warn(ctx, "failed to read local cache, starting empty", "user_id", userID, "error", err)
		snap = models.EmptySnapshot()
	}
	s.apply(snap)

	remote, err := s.client.PullData(ctx)
	if err != nil {
		s.log.Warn(ctx, "pull failed, keeping local cache", "user_id", userID, "error", err)
	} else {
		merged := models.Merge(snap, remote)
		s.apply(merged)
		if err := s.repo.Save(ctx, userID, merged); err != nil {
			s.log.Error(ctx, "failed to cache merged snapshot", "user_id", userID, "error", err)
		}
	}

	s.mu.Lock()
	s.dataLoaded = true
	s.mu.Unlock()

	s.syncSchedules(ctx)
}

// Reset clears all in-memory state, drops any pending push and sweeps every
// armed reminder. Used on logout and before loading another user.
func (s *AppService) Reset() {
	s.pusher.Stop()
	s.scheduler.CancelAllReminders()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = ""
	s.medications = nil
	s.meals = nil
	s.reminders = models.NewReminderSettings()
	s.dataLoaded = false
}

func (s *AppService) apply(snap models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.medications = append([]models.Medication{}, snap.Medications...)
	s.meals = append([]models.MealEntry{}, snap.Meals...)
	s.reminders = snap.Reminders.Clone()
}

// snapshotLocked copies the current state. Caller holds s.mu.
func (s *AppService) snapshotLocked() models.Snapshot {
	return models.Snapshot{
		Medications: append([]models.Medication{}, s.medications...),
		Meals:       append([]models.MealEntry{}, s.meals...),
		Reminders:   s.reminders.Clone(),
	}
}

// persist writes the snapshot to the local cache synchronously and arms the
// debounced push. Cache failures degrade to sync-only durability and are
// never surfaced to the caller.
func (s *AppService) persist(ctx context.Context, snap models.Snapshot) {
	if err := s.repo.Save(ctx, s.UserID(), snap); err != nil {
		s.log.Error(ctx, "failed to write local cache", "error", err)
	}
	s.pusher.Trigger()
}

// pushNow sends the latest full snapshot to the backend. Failures are
// logged only: the next successful push carries the accumulated changes.
func (s *AppService) pushNow() {
	s.mu.Lock()
	if !s.dataLoaded || s.userID == "" {
		s.mu.Unlock()
		return
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.pushTimeout)
	defer cancel()

	if err := s.client.PushData(ctx, snap); err != nil {
		s.log.Warn(ctx, "push failed, will retry on next change", "error", err)
	}
}

// FlushSync forces a pending debounced push to run immediately.
func (s *AppService) FlushSync() {
	s.pusher.Flush()
}

// syncSchedules recomputes the scheduler's armed timers to match the
// product of the master switch and per-medication flags: exactly one timer
// per effectively-enabled medication, none otherwise.
func (s *AppService) syncSchedules(ctx context.Context) {
	s.mu.Lock()
	enabled := s.reminders.Enabled
	flags := s.reminders.Clone().Medications
	meds := append([]models.Medication{}, s.medications...)
	s.mu.Unlock()

	if !enabled {
		s.scheduler.CancelAllReminders()
		return
	}

	for _, med := range meds {
		if flags[med.ID] && med.Time != "" {
			s.scheduler.ScheduleReminder(ctx, med.ID, med.Name, med.Dosage, med.Time)
		} else {
			s.scheduler.CancelReminder(med.ID)
		}
	}
}

// AddMedication validates and stores a new medication, assigning a fresh id.
// When the master reminder switch is on, the new medication inherits an
// enabled reminder flag automatically.
func (s *AppService) AddMedication(ctx context.Context, med models.Medication) (models.Medication, error) {
	if strings.TrimSpace(med.Name) == "" {
		return models.Medication{}, common.ErrEmptyName
	}
	if med.Time != "" {
		if _, _, err := notify.ParseHHMM(med.Time); err != nil {
			return models.Medication{}, fmt.Errorf("medication time: %w", err)
		}
	}

	s.mu.Lock()
	med.ID = s.newID()
	s.medications = append(s.medications, med)
	if s.reminders.Enabled {
		s.reminders.Medications[med.ID] = true
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snap)
	s.syncSchedules(ctx)
	return med, nil
}

// RemoveMedication deletes a medication, prunes its reminder flag and
// cancels its timer. An unknown id is a no-op, not an error.
func (s *AppService) RemoveMedication(ctx context.Context, id string) {
	s.mu.Lock()
	kept := s.medications[:0:0]
	removed := false
	for _, m := range s.medications {
		if m.ID == id {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	_, hadFlag := s.reminders.Medications[id]
	if !removed && !hadFlag {
		s.mu.Unlock()
		return
	}
	s.medications = kept
	delete(s.reminders.Medications, id)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.scheduler.CancelReminder(id)
	s.persist(ctx, snap)
}

// AddMeal logs a meal, snapshotting the food by value and stamping the
// entry with the current instant and its local calendar date.
func (s *AppService) AddMeal(ctx context.Context, food models.Food, mealType models.MealType) (models.MealEntry, error) {
	if strings.TrimSpace(food.Name) == "" {
		return models.MealEntry{}, common.ErrEmptyName
	}
	mt, err := models.ParseMealType(string(mealType))
	if err != nil {
		return models.MealEntry{}, err
	}

	s.mu.Lock()
	entry := models.NewMealEntry(s.newID(), food, mt, s.now())
	s.meals = append(s.meals, entry)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snap)
	return entry, nil
}

// RemoveMeal deletes a meal entry by id; absent ids are a no-op.
func (s *AppService) RemoveMeal(ctx context.Context, id string) {
	s.mu.Lock()
	kept := s.meals[:0:0]
	removed := false
	for _, m := range s.meals {
		if m.ID == id {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	if !removed {
		s.mu.Unlock()
		return
	}
	s.meals = kept
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snap)
}

// TodaysMeals returns the entries whose day bucket equals today's local
// calendar date, computed at call time.
func (s *AppService) TodaysMeals() []models.MealEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now().Format(models.DateLayout)
	result := make([]models.MealEntry, 0)
	for _, m := range s.meals {
		if m.Date == today {
			result = append(result, m)
		}
	}
	return result
}

// TodaysCalories sums calories over today's meals.
func (s *AppService) TodaysCalories() float64 {
	var sum float64
	for _, m := range s.TodaysMeals() {
		sum += m.Food.Calories
	}
	return sum
}

// TodaysProtein sums protein over today's meals.
func (s *AppService) TodaysProtein() float64 {
	var sum float64
	for _, m := range s.TodaysMeals() {
		sum += m.Food.Protein
	}
	return sum
}

// ToggleReminder flips the reminder flag for a medication; an absent entry
// counts as false, so the first toggle turns it on. Unknown ids are ignored
// so the flag map only ever holds tracked medications.
func (s *AppService) ToggleReminder(ctx context.Context, medID string) {
	s.mu.Lock()
	known := false
	for _, med := range s.medications {
		if med.ID == medID {
			known = true
			break
		}
	}
	if !known {
		s.mu.Unlock()
		s.log.Warn(ctx, "ignoring reminder toggle for unknown medication", "med_id", medID)
		return
	}
	s.reminders.Medications[medID] = !s.reminders.Medications[medID]
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snap)
	s.syncSchedules(ctx)
}

// SetRemindersEnabled flips the master switch. Turning it on bulk-enables
// the flag for every currently-tracked medication; turning it off leaves
// individual flags untouched and simply gates all firing.
func (s *AppService) SetRemindersEnabled(ctx context.Context, enabled bool) {
	s.mu.Lock()
	if enabled {
		all := make(map[string]bool, len(s.medications))
		for _, med := range s.medications {
			all[med.ID] = true
		}
		s.reminders = models.ReminderSettings{Enabled: true, Medications: all}
	} else {
		s.reminders.Enabled = false
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snap)
	s.syncSchedules(ctx)
}

// HasOldData reports whether any meal entry is older than the retention
// window.
func (s *AppService) HasOldData() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-RetentionWindow).UnixMilli()
	for _, m := range s.meals {
		if m.Timestamp < cutoff {
			return true
		}
	}
	return false
}

// ClearOldData deletes meal entries beyond the retention window. Calling it
// again right away is a no-op.
func (s *AppService) ClearOldData(ctx context.Context) {
	s.mu.Lock()
	cutoff := s.now().Add(-RetentionWindow).UnixMilli()
	kept := s.meals[:0:0]
	for _, m := range s.meals {
		if m.Timestamp >= cutoff {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(s.meals) {
		s.mu.Unlock()
		return
	}
	s.meals = kept
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snap)
}

// Medications returns a copy of the tracked medication list.
func (s *AppService) Medications() []models.Medication {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Medication{}, s.medications...)
}

// MealLog returns a copy of the full meal log.
func (s *AppService) MealLog() []models.MealEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.MealEntry{}, s.meals...)
}

// ReminderSettings returns a copy of the current reminder settings.
func (s *AppService) ReminderSettings() models.ReminderSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reminders.Clone()
}

// UserID returns the id of the user the store is loaded for, or "".
func (s *AppService) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// DataLoaded reports whether the initial pull has settled.
func (s *AppService) DataLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dataLoaded
}
