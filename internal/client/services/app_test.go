package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/Johnwickx812/MediNutri/internal/client/client"
	"github.com/Johnwickx812/MediNutri/internal/client/models"
	"github.com/Johnwickx812/MediNutri/internal/client/notify"
	"github.com/Johnwickx812/MediNutri/internal/client/repositories/snapshots"
	"github.com/Johnwickx812/MediNutri/internal/common"
	"github.com/Johnwickx812/MediNutri/internal/logging"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE snapshots (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);

CREATE TABLE session (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	require.NoError(t, err)
	return db
}

type fakeClient struct {
	client.Client

	mu sync.Mutex

	pull    models.RemoteSnapshot
	pullErr error

	pushErr error
	pushes  []models.Snapshot

	loginToken string
	loginUser  models.User
	loginErr   error

	meUser  models.User
	meErr   error
	meCalls int

	token string
}

func (f *fakeClient) PullData(ctx context.Context) (models.RemoteSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pull, f.pullErr
}

func (f *fakeClient) PushData(ctx context.Context, snap models.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, snap)
	return f.pushErr
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (string, models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginToken, f.loginUser, f.loginErr
}

func (f *fakeClient) Me(ctx context.Context) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++
	return f.meUser, f.meErr
}

func (f *fakeClient) Register(ctx context.Context, name, email, password string) error { return nil }
func (f *fakeClient) Ping(ctx context.Context) error                                   { return nil }
func (f *fakeClient) Close() error                                                     { return nil }

func (f *fakeClient) SetToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeClient) setPushErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushErr = err
}

func (f *fakeClient) pushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pushes)
}

func (f *fakeClient) lastPush() models.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pushes[len(f.pushes)-1]
}

type testApp struct {
	svc       *AppService
	fc        *fakeClient
	repo      *snapshots.SQLiteRepository
	scheduler *notify.Scheduler
	db        *sql.DB
}

func newTestApp(t *testing.T, debounce time.Duration) *testApp {
	t.Helper()

	db := setupDB(t)
	log := logging.NewNopLogger()
	repo := snapshots.NewSQLiteRepository(db, log)
	scheduler := notify.NewScheduler(notify.NewConsoleAlerter(io.Discard), log)
	require.True(t, scheduler.RequestPermission(context.Background()))
	t.Cleanup(scheduler.CancelAllReminders)

	fc := &fakeClient{}
	svc := NewAppService(fc, repo, scheduler, log, debounce)

	counter := 0
	svc.newID = func() string {
		counter++
		return fmt.Sprintf("id-%d", counter)
	}
	return &testApp{svc: svc, fc: fc, repo: repo, scheduler: scheduler, db: db}
}

func TestLoad_RemoteWinsForPresentFields(t *testing.T) {
	a := newTestApp(t, time.Hour)
	ctx := context.Background()

	local := models.EmptySnapshot()
	local.Medications = []models.Medication{{ID: "local", Name: "Old Med"}}
	local.Meals = []models.MealEntry{{ID: "meal", Food: models.Food{Name: "Dal"}, MealType: models.MealDinner, Date: "2026-08-30", Timestamp: 1}}
	require.NoError(t, a.repo.Save(ctx, "u1", local))

	remoteMeds := []models.Medication{{ID: "remote", Name: "Metformin", Time: "08:00"}}
	a.fc.pull = models.RemoteSnapshot{Medications: &remoteMeds}

	a.svc.Load(ctx, "u1")

	require.True(t, a.svc.DataLoaded())
	assert.Equal(t, remoteMeds, a.svc.Medications(), "server truth overwrites cache")
	assert.Len(t, a.svc.MealLog(), 1, "absent remote field keeps local cache")

	// merged snapshot was re-cached
	cached, err := a.repo.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, remoteMeds, cached.Medications)
}

func TestLoad_PullFailureDegradesToCache(t *testing.T) {
	a := newTestApp(t, time.Hour)
	ctx := context.Background()

	local := models.EmptySnapshot()
	local.Medications = []models.Medication{{ID: "m1", Name: "Metformin"}}
	require.NoError(t, a.repo.Save(ctx, "u1", local))
	a.fc.pullErr = client.ErrUnavailable

	a.svc.Load(ctx, "u1")

	assert.Len(t, a.svc.Medications(), 1)
	assert.True(t, a.svc.DataLoaded(), "loaded flag set even when the pull fails")
}

func TestAddMedication_Validation(t *testing.T) {
	a := newTestApp(t, time.Hour)
	ctx := context.Background()
	a.svc.Load(ctx, "u1")

	_, err := a.svc.AddMedication(ctx, models.Medication{Name: "   "})
	assert.ErrorIs(t, err, common.ErrEmptyName)

	_, err = a.svc.AddMedication(ctx, models.Medication{Name: "Metformin", Time: "8am"})
	assert.ErrorIs(t, err, common.ErrInvalidTime)

	assert.Empty(t, a.svc.Medications(), "no partial state change on rejection")
}

func TestAddMedication_InheritsMasterReminderPolicy(t *testing.T) {
	a := newTestApp(t, time.Hour)
	ctx := context.Background()
	a.svc.Load(ctx, "u1")
	a.svc.SetRemindersEnabled(ctx, true)

	med, err := a.svc.AddMedication(ctx, models.Medication{Name: "Metformin", Dosage: "500mg", Time: "08:00"})
	require.NoError(t, err)

	assert.True(t, a.svc.ReminderSettings().Medications[med.ID])
	views := a.scheduler.ActiveReminders()
	require.Len(t, views, 1)
	assert.Equal(t, med.ID, views[0].MedicationID)
}

func TestRemoveMedication_PrunesFlagAndCancelsTimer(t *testing.T) {
	a := newTestApp(t, time.Hour)
	ctx := context.Background()
	a.svc.Load(ctx, "u1")
	a.svc.SetRemindersEnabled(ctx, true)

	m1, err := a.svc.AddMedication(ctx, models.Medication{Name: "Metformin", Time: "08:00"})
	require.NoError(t, err)
	m2, err := a.svc.AddMedication(ctx, models.Medication{Name: "Atorvastatin", Time: "21:00"})
	require.NoError(t, err)
	require.Len(t, a.scheduler.ActiveReminders(), 2)

	a.svc.RemoveMedication(ctx, m1.ID)

	assert.Len(t, a.svc.Medications(), 1)
	assert.NotContains(t, a.svc.ReminderSettings().Medications, m1.ID, "no residual reminder entry")
	views := a.scheduler.ActiveReminders()
	require.Len(t, views, 1)
	assert.Equal(t, m2.ID, views[0].MedicationID)
}

func TestRemoveMedication_UnknownIDIsNoop(t *testing.T) {
	a := newTestApp(t, time.Hour)
	ctx := context.Background()
	a.svc.Load(ctx, "u1")

	a.svc.RemoveMedication(ctx, "ghost")
	assert.Empty(t, a.svc.Medications())
}

func TestAddMeal_TodaysTotals(t *testing.T) {
	a := newTestApp(t, time.Hour)
	ctx := context.Background()
	a.svc.Load(ctx, "u1")
	a.svc.now = func() time.Time {
		return time.Date(2026, time.September, 1, 13, 0, 0, 0, time.Local)
	}

	rice := models.Food{ID: "1", Name: "Rice (cooked)", Calories: 130, Protein: 2.7}
	entry, err := a.svc.AddMeal(ctx, rice, models.MealLunch)
	require.NoError(t, err)

	assert.Equal(t, "2026-09-01", entry.Date)
	assert.Equal(t, rice, entry.Food, "food embedded by value")
	assert.Equal(t, 130.0, a.svc.TodaysCalories())
	assert.Equal(t, 2.7, a.svc.TodaysProtein())
}

func TestAddMeal_Validation(t *testing.T) {
	a := newTestApp(t, time.Hour)
	ctx := context.Background()
	a.svc.Load(ctx, "u1")

	_, err := a.svc.AddMeal(ctx, models.Food{Name: ""}, models.MealLunch)
	assert.ErrorIs(t, err, common.ErrEmptyName)

	_, err = a.svc.AddMeal(ctx, models.Food{Name: "Rice"}, models.MealType("brunch"))
	assert.ErrorIs(t, err, common.ErrInvalidMealType)
}

func TestTodaysMeals_DayBucketNotRollingWindow(t *testing.T) {
	a := newTestApp(t, time.Hour)
	ctx := context.Background()
	a.svc.Load(ctx, "u1")

	now := time.Date(2026, time.August, 31, 23, 59, 0, 0, time.Local)
	a.svc.now = func() time.Time { return now }

	_, err := a.svc.AddMeal(ctx, models.Food{Name: "Dal", Calories: 100}, models.MealDinner)
	require.NoError(t, err)
	require.Len(t, a.svc.TodaysMeals(), 1)

	// 31 minutes later it is another calendar day
	now = time.Date(2026, time.September, 1, 0, 30, 0, 0, time.Local)

	assert.Empty(t, a.svc.TodaysMeals(), "prior-day entries excluded even when under 24h old")
	assert.Equal(t, 0.0, a.svc.TodaysCalories())
}

func TestRemoveMeal(t *testing.T) {
	a := newTestApp(t, time.Hour)
	ctx := context.Background()
	a.svc.Load(ctx, "u1")

	entry, err := a.svc.AddMeal(ctx, models.Food{Name: "Dal"}, models.MealDinner)
	require.NoError(t, err)

	a.svc.RemoveMeal(ctx, "ghost")
	require.Len(t, a.svc.MealLog(), 1)

	a.svc.RemoveMeal(ctx, entry.ID)
	assert.Empty(t, a.svc.MealLog())
}

func TestToggleReminder_FirstToggleTurnsOn(t *testing.T) {
	a := newTestApp(t, time.Hour)
	ctx := context.Background()
	a.svc.Load(ctx, "u1")
	a.svc.SetRemindersEnabled(ctx, true)

	med, err := a.svc.AddMedication(ctx, models.Medication{Name: "Metformin", Time: "08:00"})
	require.NoError(t, err)

	a.svc.ToggleReminder(ctx, med.ID)
	assert.False(t, a.svc.ReminderSettings().Medications[med.ID])
	assert.Empty(t, a.scheduler.ActiveReminders())

	a.svc.ToggleReminder(ctx, med.ID)
	assert.True(t, a.svc.ReminderSettings().Medications[med.ID])
	assert.Len(t, a.scheduler.ActiveReminders(), 1)
}

func TestToggleReminder_UnknownIDIsNoop(t *testing.T) {
	a := newTestApp(t, time.Hour)
	ctx := context.Background()
	a.svc.Load(ctx, "u1")

	a.svc.ToggleReminder(ctx, "no-such-med")

	_, tracked := a.svc.ReminderSettings().Medications["no-such-med"]
	assert.False(t, tracked, "unknown id must not enter the flag map")
	assert.Empty(t, a.scheduler.ActiveReminders())
}

func TestSetRemindersEnabled_BulkEnableAndMasterGate(t *testing.T) {
	a := newTestApp(t, time.Hour)
	ctx := context.Background()
	a.svc.Load(ctx, "u1")

	m1, err := a.svc.AddMedication(ctx, models.Medication{Name: "Metformin", Time: "08:00"})
	require.NoError(t, err)
	m2, err := a.svc.AddMedication(ctx, models.Medication{Name: "Vitamin D", Time: ""})
	require.NoError(t, err)
	require.Empty(t, a.scheduler.ActiveReminders())

	a.svc.SetRemindersEnabled(ctx, true)

	settings := a.svc.ReminderSettings()
	assert.True(t, settings.Medications[m1.ID])
	assert.True(t, settings.Medications[m2.ID])
	assert.Len(t, a.scheduler.ActiveReminders(), 1, "only medications with a time get timers")

	a.svc.SetRemindersEnabled(ctx, false)

	settings = a.svc.ReminderSettings()
	assert.False(t, settings.Enabled)
	assert.True(t, settings.Medications[m1.ID], "individual flags untouched")
	assert.Empty(t, a.scheduler.ActiveReminders(), "master off sweeps all timers")
}

func TestClearOldData_Idempotent(t *testing.T) {
	a := newTestApp(t, time.Hour)
	ctx := context.Background()
	a.svc.Load(ctx, "u1")

	base := time.Date(2026, time.July, 1, 12, 0, 0, 0, time.Local)
	a.svc.now = func() time.Time { return base }
	_, err := a.svc.AddMeal(ctx, models.Food{Name: "Dal", Calories: 100}, models.MealDinner)
	require.NoError(t, err)

	// 61 days later
	a.svc.now = func() time.Time { return base.Add(61 * 24 * time.Hour) }
	_, err = a.svc.AddMeal(ctx, models.Food{Name: "Rice", Calories: 130}, models.MealLunch)
	require.NoError(t, err)

	require.True(t, a.svc.HasOldData())

	a.svc.ClearOldData(ctx)
	assert.Len(t, a.svc.MealLog(), 1, "only entries beyond the window deleted")
	assert.False(t, a.svc.HasOldData())

	a.svc.ClearOldData(ctx)
	assert.Len(t, a.svc.MealLog(), 1, "second call deletes nothing further")
}

func TestPushDebounce_BurstCollapsesToSinglePush(t *testing.T) {
	a := newTestApp(t, 50*time.Millisecond)
	ctx := context.Background()
	a.svc.Load(ctx, "u1")

	for i := 0; i < 3; i++ {
		_, err := a.svc.AddMedication(ctx, models.Medication{Name: fmt.Sprintf("Med %d", i)})
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool { return a.fc.pushCount() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	require.Equal(t, 1, a.fc.pushCount(), "a mutation burst results in exactly one push")
	assert.Len(t, a.fc.lastPush().Medications, 3, "push carries the state after the last mutation")
}

func TestPush_GatedUntilLoaded(t *testing.T) {
	a := newTestApp(t, 20*time.Millisecond)
	ctx := context.Background()

	// mutation before any Load: nothing may reach the backend
	_, _ = a.svc.AddMedication(ctx, models.Medication{Name: "Metformin"})

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, a.fc.pushCount(), "push must wait for the initial pull")
}

func TestPushFailure_NextMutationStillPushes(t *testing.T) {
	a := newTestApp(t, 30*time.Millisecond)
	ctx := context.Background()
	a.svc.Load(ctx, "u1")
	a.fc.setPushErr(client.ErrUnavailable)

	_, err := a.svc.AddMedication(ctx, models.Medication{Name: "Metformin"})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return a.fc.pushCount() == 1 }, time.Second, 10*time.Millisecond)

	a.fc.setPushErr(nil)
	_, err = a.svc.AddMedication(ctx, models.Medication{Name: "Atorvastatin"})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return a.fc.pushCount() == 2 }, time.Second, 10*time.Millisecond)
	assert.Len(t, a.fc.lastPush().Medications, 2, "retry carries the accumulated snapshot")
}

func TestMutation_PersistsToCacheBeforeReturning(t *testing.T) {
	a := newTestApp(t, time.Hour)
	ctx := context.Background()
	a.svc.Load(ctx, "u1")

	med, err := a.svc.AddMedication(ctx, models.Medication{Name: "Metformin"})
	require.NoError(t, err)

	cached, err := a.repo.Load(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, cached.Medications, 1)
	assert.Equal(t, med.ID, cached.Medications[0].ID)
}
