package tracker

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Set(hh, mm, ss int) {
	c.now = time.Date(c.now.Year(), c.now.Month(), c.now.Day(), hh, mm, ss, 0, time.UTC)
}

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestTracker() (*Tracker, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)}
	return New(WithClock(clock.Now)), clock
}

func TestClockInOut_AliceScenario(t *testing.T) {
	tr, clock := newTestTracker()

	clock.Set(9, 0, 0)
	require.NoError(t, tr.ClockIn("Alice"))
	clock.Set(17, 30, 0)
	rec, err := tr.ClockOut("Alice")
	require.NoError(t, err)

	require.NotNil(t, rec.HoursWorked)
	assert.Equal(t, 8.50, *rec.HoursWorked)
	assert.Equal(t, "Alice", rec.Employee)
	assert.True(t, rec.Closed())

	records := tr.ListRecords("")
	require.Len(t, records, 1)
	assert.Equal(t, 8.50, tr.Summary()["Alice"])
	assert.False(t, tr.IsClockedIn("Alice"))
}

func TestClockIn_TwiceFails(t *testing.T) {
	tr, clock := newTestTracker()

	require.NoError(t, tr.ClockIn("Bob"))
	first := clock.Now()
	clock.Advance(time.Hour)

	err := tr.ClockIn("Bob")
	var already *AlreadyClockedInError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, "Bob", already.Employee)
	assert.True(t, tr.IsClockedIn("Bob"))

	clock.Advance(time.Hour)
	rec, err := tr.ClockOut("Bob")
	require.NoError(t, err)
	assert.Equal(t, first, rec.ClockInAt, "second clock-in must not reset the session start")
	assert.Equal(t, 2.0, *rec.HoursWorked)

	require.NoError(t, tr.ClockIn("Bob"), "clock-in is allowed again after clock-out")
}

func TestClockOut_WithoutSession(t *testing.T) {
	tr, _ := newTestTracker()

	_, err := tr.ClockOut("Carol")
	var none *NoActiveSessionError
	require.ErrorAs(t, err, &none)
	assert.Equal(t, "Carol", none.Employee)
	assert.Empty(t, tr.ListRecords(""))
	assert.Empty(t, tr.Summary())
}

func TestClock_RequiresEmployee(t *testing.T) {
	tr, _ := newTestTracker()

	assert.ErrorIs(t, tr.ClockIn(""), ErrNoEmployeeSelected)
	_, err := tr.ClockOut("")
	assert.ErrorIs(t, err, ErrNoEmployeeSelected)
}

func TestRoundTrip_HoursMatchRoundedElapsed(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tr, clock := newTestTracker()

	for i := 0; i < 200; i++ {
		secs := rng.Int63n(16 * 3600)
		require.NoError(t, tr.ClockIn("Dana"))
		clock.Advance(time.Duration(secs) * time.Second)
		rec, err := tr.ClockOut("Dana")
		require.NoError(t, err)

		want := math.Round(float64(secs)/36) / 100
		assert.Equal(t, want, *rec.HoursWorked, "elapsed %ds", secs)
	}
	assert.Len(t, tr.ListRecords("dana"), 200)
}

func TestSummary_EqualsIndependentSum(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tr, clock := newTestTracker()
	names := []string{"Alice", "Bob", "Carol"}

	for i := 0; i < 60; i++ {
		name := names[rng.Intn(len(names))]
		if tr.IsClockedIn(name) {
			clock.Advance(time.Duration(rng.Int63n(3*3600)) * time.Second)
			_, err := tr.ClockOut(name)
			require.NoError(t, err)
			continue
		}
		require.NoError(t, tr.ClockIn(name))
		clock.Advance(time.Duration(rng.Int63n(600)) * time.Second)
	}

	cents := map[string]int64{}
	for _, rec := range tr.ListRecords("") {
		cents[rec.Employee] += int64(math.Round(*rec.HoursWorked * 100))
	}
	summary := tr.Summary()
	require.Len(t, summary, len(cents))
	for name, c := range cents {
		assert.Equal(t, float64(c)/100, summary[name], name)
	}
}

func TestListRecords_Filter(t *testing.T) {
	tr, clock := newTestTracker()
	for _, name := range []string{"Alice", "alicia", "Bob", "MALICE", "Carol"} {
		require.NoError(t, tr.ClockIn(name))
		clock.Advance(30 * time.Minute)
		_, err := tr.ClockOut(name)
		require.NoError(t, err)
	}

	all := tr.ListRecords("")
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].ClockOutAt.Before(*all[i].ClockOutAt), "insertion order")
	}

	for _, filter := range []string{"ALI", "b", "zzz", "Ice"} {
		got := tr.ListRecords(filter)
		var want []string
		for _, rec := range all {
			if strings.Contains(strings.ToLower(rec.Employee), strings.ToLower(filter)) {
				want = append(want, rec.Employee)
			}
		}
		var names []string
		for _, rec := range got {
			names = append(names, rec.Employee)
		}
		assert.Equal(t, want, names, fmt.Sprintf("filter %q", filter))
	}
}

func TestListRecords_ReturnsCopy(t *testing.T) {
	tr, clock := newTestTracker()
	require.NoError(t, tr.ClockIn("Eve"))
	clock.Advance(time.Hour)
	_, err := tr.ClockOut("Eve")
	require.NoError(t, err)

	got := tr.ListRecords("")
	got[0].Employee = "Mallory"
	assert.Equal(t, "Eve", tr.ListRecords("")[0].Employee)
}

func TestRecords_PointerFieldsAreDetached(t *testing.T) {
	tr, clock := newTestTracker()
	require.NoError(t, tr.ClockIn("Eve"))
	clock.Advance(time.Hour)
	rec, err := tr.ClockOut("Eve")
	require.NoError(t, err)
	wantOut := *rec.ClockOutAt

	*rec.HoursWorked = 99
	*rec.ClockOutAt = time.Time{}
	listed := tr.ListRecords("")
	*listed[0].HoursWorked = 42
	*listed[0].ClockOutAt = time.Time{}

	stored := tr.ListRecords("")[0]
	require.NotNil(t, stored.HoursWorked)
	assert.Equal(t, 1.0, *stored.HoursWorked)
	assert.Equal(t, wantOut, *stored.ClockOutAt)
	assert.Equal(t, map[string]float64{"Eve": 1}, tr.Summary())
}

func TestClockInOut_BlankNameRejected(t *testing.T) {
	tr, _ := newTestTracker()

	assert.ErrorIs(t, tr.ClockIn("   "), ErrNoEmployeeSelected)
	_, err := tr.ClockOut("\t")
	assert.ErrorIs(t, err, ErrNoEmployeeSelected)
	assert.False(t, tr.IsClockedIn("   "))

	require.NoError(t, tr.ClockIn(" Ann "))
	assert.True(t, tr.IsClockedIn("Ann"))
}

func TestAddEmployee(t *testing.T) {
	tr, _ := newTestTracker()

	require.NoError(t, tr.AddEmployee("  Alice "))
	require.NoError(t, tr.AddEmployee("Bob"))
	assert.ErrorIs(t, tr.AddEmployee("Alice"), ErrDuplicateEmployee)
	assert.ErrorIs(t, tr.AddEmployee("   "), ErrEmptyEmployeeName)
	assert.Equal(t, []string{"Alice", "Bob"}, tr.Employees())
}

func TestSummaryRows_FirstClockOutOrder(t *testing.T) {
	tr, clock := newTestTracker()
	for _, name := range []string{"Zed", "Amy", "Zed"} {
		require.NoError(t, tr.ClockIn(name))
		clock.Advance(time.Hour)
		_, err := tr.ClockOut(name)
		require.NoError(t, err)
	}

	assert.Equal(t, []SummaryRow{{"Zed", 2}, {"Amy", 1}}, tr.SummaryRows())
}

func TestWithEmployer_StampsRecords(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
	tr := New(WithClock(clock.Now), WithEmployer("acme"))

	require.NoError(t, tr.ClockIn("Alice"))
	clock.Advance(time.Hour)
	rec, err := tr.ClockOut("Alice")
	require.NoError(t, err)
	assert.Equal(t, "acme", rec.Employer)
}
