package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Johnwickx812/MediNutri/internal/common"
	"github.com/Johnwickx812/MediNutri/internal/logging"
)

type fakeAlerter struct {
	alerts   []Alert
	grant    bool
	requests int
}

func (f *fakeAlerter) Alert(a Alert) error {
	f.alerts = append(f.alerts, a)
	return nil
}

func (f *fakeAlerter) RequestPermission() (bool, error) {
	f.requests++
	return f.grant, nil
}

type capturedTimer struct {
	delay time.Duration
	fn    func()
}

// newTestScheduler returns a scheduler whose clock is pinned and whose
// timers are captured instead of armed, so tests fire them by hand.
func newTestScheduler(t *testing.T, alerter Alerter, now time.Time) (*Scheduler, *[]capturedTimer) {
	t.Helper()
	captured := &[]capturedTimer{}

	s := NewScheduler(alerter, logging.NewNopLogger())
	s.now = func() time.Time { return now }
	s.afterFunc = func(d time.Duration, f func()) *time.Timer {
		*captured = append(*captured, capturedTimer{delay: d, fn: f})
		// a far-future real timer so Stop() has something to stop
		return time.AfterFunc(1000*time.Hour, func() {})
	}
	return s, captured
}

func TestParseHHMM(t *testing.T) {
	h, m, err := ParseHHMM("08:30")
	require.NoError(t, err)
	assert.Equal(t, 8, h)
	assert.Equal(t, 30, m)

	for _, bad := range []string{"", "8", "24:00", "12:60", "ab:cd", "1:2:3"} {
		_, _, err := ParseHHMM(bad)
		assert.ErrorIs(t, err, common.ErrInvalidTime, "input %q", bad)
	}
}

func TestNextOccurrence(t *testing.T) {
	now := time.Date(2026, time.September, 1, 9, 0, 0, 0, time.Local)

	// time already passed today: tomorrow
	next := NextOccurrence(now, 8, 0)
	assert.Equal(t, time.Date(2026, time.September, 2, 8, 0, 0, 0, time.Local), next)

	// still ahead today
	next = NextOccurrence(now, 21, 30)
	assert.Equal(t, time.Date(2026, time.September, 1, 21, 30, 0, 0, time.Local), next)

	// exactly now rolls to tomorrow
	next = NextOccurrence(now, 9, 0)
	assert.Equal(t, time.Date(2026, time.September, 2, 9, 0, 0, 0, time.Local), next)
}

func TestScheduleReminder_DelayUntilTomorrow(t *testing.T) {
	now := time.Date(2026, time.September, 1, 9, 0, 0, 0, time.Local)
	alerter := &fakeAlerter{grant: true}
	s, captured := newTestScheduler(t, alerter, now)
	require.True(t, s.RequestPermission(context.Background()))

	s.ScheduleReminder(context.Background(), "m1", "Metformin", "500mg", "08:00")

	require.Len(t, *captured, 1)
	assert.Equal(t, 23*time.Hour, (*captured)[0].delay)

	views := s.ActiveReminders()
	require.Len(t, views, 1)
	assert.Equal(t, ReminderView{MedicationID: "m1", Name: "Metformin", Dosage: "500mg", Time: "08:00"}, views[0])
}

func TestScheduleReminder_ReplaceNeverStacks(t *testing.T) {
	now := time.Date(2026, time.September, 1, 9, 0, 0, 0, time.Local)
	alerter := &fakeAlerter{grant: true}
	s, captured := newTestScheduler(t, alerter, now)
	s.RequestPermission(context.Background())

	s.ScheduleReminder(context.Background(), "m1", "Metformin", "500mg", "08:00")
	s.ScheduleReminder(context.Background(), "m1", "Metformin", "500mg", "10:00")

	assert.Len(t, s.ActiveReminders(), 1, "one live timer per medication id")
	assert.Equal(t, "10:00", s.ActiveReminders()[0].Time)

	// the first timer's callback is stale and must do nothing
	require.Len(t, *captured, 2)
	(*captured)[0].fn()
	assert.Empty(t, alerter.alerts)
	assert.Len(t, s.ActiveReminders(), 1)
}

func TestFire_AlertsAndRearmsForNextDay(t *testing.T) {
	now := time.Date(2026, time.September, 1, 7, 0, 0, 0, time.Local)
	alerter := &fakeAlerter{grant: true}
	s, captured := newTestScheduler(t, alerter, now)
	s.RequestPermission(context.Background())

	s.ScheduleReminder(context.Background(), "m1", "Metformin", "500mg", "08:00")
	require.Len(t, *captured, 1)

	(*captured)[0].fn()

	require.Len(t, alerter.alerts, 1)
	assert.Equal(t, "💊 Time for Metformin", alerter.alerts[0].Title)
	assert.Equal(t, "Take your 500mg dose now", alerter.alerts[0].Body)
	assert.Equal(t, "medication-m1", alerter.alerts[0].Tag)
	assert.True(t, alerter.alerts[0].RequireInteraction)

	// exactly one fresh timer was armed for the same medication
	require.Len(t, *captured, 2)
	assert.Len(t, s.ActiveReminders(), 1)
}

func TestFire_AfterCancelDoesNothing(t *testing.T) {
	now := time.Date(2026, time.September, 1, 7, 0, 0, 0, time.Local)
	alerter := &fakeAlerter{grant: true}
	s, captured := newTestScheduler(t, alerter, now)
	s.RequestPermission(context.Background())

	s.ScheduleReminder(context.Background(), "m1", "Metformin", "500mg", "08:00")
	s.CancelReminder("m1")

	(*captured)[0].fn()

	assert.Empty(t, alerter.alerts, "cancelled reminder must not fire")
	assert.Empty(t, s.ActiveReminders())
	assert.Len(t, *captured, 1, "cancelled reminder must not re-arm")
}

func TestCancelReminder_AbsentIsNoop(t *testing.T) {
	s, _ := newTestScheduler(t, &fakeAlerter{grant: true}, time.Now())
	s.CancelReminder("ghost")
}

func TestCancelAllReminders(t *testing.T) {
	alerter := &fakeAlerter{grant: true}
	s, captured := newTestScheduler(t, alerter, time.Date(2026, time.September, 1, 7, 0, 0, 0, time.Local))
	s.RequestPermission(context.Background())

	s.ScheduleReminder(context.Background(), "m1", "Metformin", "500mg", "08:00")
	s.ScheduleReminder(context.Background(), "m2", "Atorvastatin", "10mg", "21:00")
	require.Len(t, s.ActiveReminders(), 2)

	s.CancelAllReminders()

	assert.Empty(t, s.ActiveReminders())
	for _, c := range *captured {
		c.fn()
	}
	assert.Empty(t, alerter.alerts)
}

func TestScheduleReminder_NoopWithoutPermission(t *testing.T) {
	s, captured := newTestScheduler(t, &fakeAlerter{grant: false}, time.Now())

	s.ScheduleReminder(context.Background(), "m1", "Metformin", "500mg", "08:00")
	assert.Empty(t, *captured)
	assert.Empty(t, s.ActiveReminders())
}

func TestRequestPermission_CachesDecision(t *testing.T) {
	alerter := &fakeAlerter{grant: false}
	s, _ := newTestScheduler(t, alerter, time.Now())

	assert.False(t, s.RequestPermission(context.Background()))
	assert.False(t, s.RequestPermission(context.Background()))
	assert.Equal(t, 1, alerter.requests, "platform asked once, decision cached")
	assert.Equal(t, PermissionDenied, s.Permission())
}

func TestUnsupportedPlatform_AllNoops(t *testing.T) {
	s := NewScheduler(nil, logging.NewNopLogger())

	assert.False(t, s.IsSupported())
	assert.False(t, s.RequestPermission(context.Background()))
	s.ScheduleReminder(context.Background(), "m1", "Metformin", "500mg", "08:00")
	assert.Empty(t, s.ActiveReminders())
	s.CancelAllReminders()
}

func TestScheduleReminder_BadTimeIsNoop(t *testing.T) {
	s, captured := newTestScheduler(t, &fakeAlerter{grant: true}, time.Now())
	s.RequestPermission(context.Background())

	s.ScheduleReminder(context.Background(), "m1", "Metformin", "500mg", "25:99")
	assert.Empty(t, *captured)
}
