// pkg/habits/habits_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: Memory FS
// PURPOSE: Habit CRUD, day marking and streaks on top of storage

package habits_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/arthur-debert/myquest/pkg/filesystem"
	"github.com/arthur-debert/myquest/pkg/habits"
	"github.com/arthur-debert/myquest/pkg/storage"
	"github.com/arthur-debert/myquest/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const habitsPath = "/quest/habits/habits.json"

func newManager(t *testing.T) (*habits.Manager, types.FS) {
	t.Helper()
	fs := filesystem.NewMemory()
	m, err := habits.New(habitsPath, storage.DefaultConfig(), fs)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close(context.Background()) })
	return m, fs
}

func day(s string) habits.Date {
	d, err := habits.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func sample() habits.Habit {
	return habits.Habit{
		Title:     "Read",
		StartDate: day("2024-01-01"),
		WeekStart: habits.Monday,
		Color:     "#3366ff",
	}
}

func TestCreateAndGet(t *testing.T) {
	m, _ := newManager(t)

	id, err := m.Create(sample())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	h, err := m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Read", h.Title)
	assert.Equal(t, "#3366FF", h.Color)
	assert.Equal(t, habits.Monday, h.WeekStart)
	assert.Empty(t, h.CompletedDays)
}

func TestCreateValidates(t *testing.T) {
	m, _ := newManager(t)

	h := sample()
	h.Title = "  "
	_, err := m.Create(h)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	h = sample()
	h.Color = "blue"
	_, err = m.Create(h)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestListIsSortedByTitle(t *testing.T) {
	m, _ := newManager(t)
	for _, title := range []string{"walk", "Meditate", "code"} {
		h := sample()
		h.Title = title
		_, err := m.Create(h)
		require.NoError(t, err)
	}

	entries, err := m.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "code", entries[0].Title)
	assert.Equal(t, "Meditate", entries[1].Title)
	assert.Equal(t, "walk", entries[2].Title)
}

func TestUpdateAndDelete(t *testing.T) {
	m, _ := newManager(t)
	id, err := m.Create(sample())
	require.NoError(t, err)

	h := sample()
	h.Title = "Read more"
	require.NoError(t, m.Update(id, h))
	got, err := m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Read more", got.Title)

	require.NoError(t, m.Delete(id))
	_, err = m.Get(id)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	missing := uuid.New()
	assert.True(t, errors.IsErrorCode(m.Update(missing, sample()), errors.ErrNotFound))
	assert.True(t, errors.IsErrorCode(m.Delete(missing), errors.ErrNotFound))
}

func TestMarkDayKeepsDaysSortedAndUnique(t *testing.T) {
	m, _ := newManager(t)
	id, err := m.Create(sample())
	require.NoError(t, err)

	for _, d := range []string{"2024-03-05", "2024-03-01", "2024-03-03", "2024-03-01"} {
		require.NoError(t, m.MarkDay(id, day(d)))
	}

	h, err := m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []habits.Date{day("2024-03-01"), day("2024-03-03"), day("2024-03-05")}, h.CompletedDays)

	require.NoError(t, m.UnmarkDay(id, day("2024-03-03")))
	require.NoError(t, m.UnmarkDay(id, day("2024-04-01")))
	h, err = m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []habits.Date{day("2024-03-01"), day("2024-03-05")}, h.CompletedDays)

	assert.True(t, errors.IsErrorCode(m.MarkDay(uuid.New(), day("2024-03-01")), errors.ErrNotFound))
}

func TestStreak(t *testing.T) {
	m, _ := newManager(t)
	id, err := m.Create(sample())
	require.NoError(t, err)
	for _, d := range []string{"2024-03-01", "2024-03-03", "2024-03-04", "2024-03-05"} {
		require.NoError(t, m.MarkDay(id, day(d)))
	}

	tests := []struct {
		today string
		want  int
	}{
		{"2024-03-05", 3},
		{"2024-03-06", 3},
		{"2024-03-07", 0},
		{"2024-03-01", 1},
		{"2024-03-02", 1},
	}
	for _, tt := range tests {
		t.Run(tt.today, func(t *testing.T) {
			got, err := m.Streak(id, day(tt.today))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPersistedFormat(t *testing.T) {
	m, fs := newManager(t)
	id, err := m.Create(sample())
	require.NoError(t, err)
	require.NoError(t, m.MarkDay(id, day("2024-03-01")))
	require.NoError(t, m.ForceSave())

	raw, err := fs.ReadFile(habitsPath)
	require.NoError(t, err)

	var doc map[string]map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	stored := doc["habits"][id.String()]
	assert.Equal(t, "Read", stored["title"])
	assert.Equal(t, "2024-01-01", stored["start_date"])
	assert.Equal(t, "Monday", stored["week_start"])
	assert.Equal(t, []interface{}{"2024-03-01"}, stored["completed_days"])
}

func TestReloadSeesPersistedHabits(t *testing.T) {
	fs := filesystem.NewMemory()
	first, err := habits.New(habitsPath, storage.DefaultConfig(), fs)
	require.NoError(t, err)
	id, err := first.Create(sample())
	require.NoError(t, err)
	require.NoError(t, first.Close(context.Background()))

	second, err := habits.New(habitsPath, storage.DefaultConfig(), fs)
	require.NoError(t, err)
	defer second.Close(context.Background())

	h, err := second.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Read", h.Title)
}

func writeHabitsFile(t *testing.T, fs types.FS, id uuid.UUID, days ...string) {
	t.Helper()
	doc := map[string]any{
		"habits": map[string]any{
			id.String(): map[string]any{
				"title":          "Read",
				"start_date":     "2024-01-01",
				"completed_days": days,
				"week_start":     "Monday",
				"color":          "#3366FF",
			},
		},
	}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, fs.MkdirAll("/quest/habits", 0o755))
	require.NoError(t, fs.WriteFile(habitsPath, raw, 0o644))
}

func TestHandEditedDaysAreSortedOnLoad(t *testing.T) {
	fs := filesystem.NewMemory()
	id := uuid.New()
	writeHabitsFile(t, fs, id, "2024-03-03", "2024-03-01", "2024-03-02", "2024-03-01")

	m, err := habits.New(habitsPath, storage.DefaultConfig(), fs)
	require.NoError(t, err)
	defer m.Close(context.Background())

	h, err := m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []habits.Date{day("2024-03-01"), day("2024-03-02"), day("2024-03-03")}, h.CompletedDays)

	streak, err := m.Streak(id, day("2024-03-03"))
	require.NoError(t, err)
	assert.Equal(t, 3, streak)

	require.NoError(t, m.MarkDay(id, day("2024-03-01")))
	h, err = m.Get(id)
	require.NoError(t, err)
	assert.Len(t, h.CompletedDays, 3)
}

func TestReloadSortsHandEditedDays(t *testing.T) {
	m, fs := newManager(t)
	id := uuid.New()
	writeHabitsFile(t, fs, id, "2024-05-02", "2024-05-01")

	require.NoError(t, m.Reload())
	h, err := m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []habits.Date{day("2024-05-01"), day("2024-05-02")}, h.CompletedDays)
}

func TestCompletedToleratesUnsortedDays(t *testing.T) {
	h := habits.Habit{CompletedDays: []habits.Date{day("2024-03-03"), day("2024-03-01")}}
	assert.True(t, h.Completed(day("2024-03-01")))
	assert.True(t, h.Completed(day("2024-03-03")))
	assert.False(t, h.Completed(day("2024-03-02")))
}

func TestUnknownIDLeavesDocumentClean(t *testing.T) {
	m, _ := newManager(t)
	_, err := m.Create(sample())
	require.NoError(t, err)
	before := m.Storage().Status().Revision

	missing := uuid.New()
	assert.True(t, errors.IsErrorCode(m.Delete(missing), errors.ErrNotFound))
	assert.True(t, errors.IsErrorCode(m.MarkDay(missing, day("2024-03-01")), errors.ErrNotFound))
	assert.True(t, errors.IsErrorCode(m.Update(missing, sample()), errors.ErrNotFound))
	assert.Equal(t, before, m.Storage().Status().Revision)
}

func TestWeekStart(t *testing.T) {
	ws, err := habits.ParseWeekStart("wednesday")
	require.NoError(t, err)
	assert.Equal(t, habits.Wednesday, ws)
	assert.Equal(t, time.Wednesday, ws.Weekday())

	_, err = habits.ParseWeekStart("someday")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	// 2024-03-06 is a Wednesday
	wed := day("2024-03-06")
	assert.Equal(t, 0, habits.Wednesday.DaysFromStart(wed))
	assert.Equal(t, 2, habits.Monday.DaysFromStart(wed))
	assert.Equal(t, 3, habits.Sunday.DaysFromStart(wed))
	assert.Equal(t, 4, habits.Saturday.DaysFromStart(wed))
}

func TestDate(t *testing.T) {
	d := day("2024-02-28")
	assert.Equal(t, "2024-02-29", d.AddDays(1).String())
	assert.Equal(t, "2024-03-01", d.AddDays(2).String())
	assert.True(t, d.Before(d.AddDays(1)))
	assert.Equal(t, habits.NewDate(2024, time.March, 1), d.AddDays(2))

	_, err := habits.ParseDate("2024-13-01")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
