package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lousuarez/LourenTask/internal/model"
	"github.com/Lousuarez/LourenTask/internal/workflow"
)

var testStatuses = []model.Status{
	{ID: 1, Name: "Open", Order: 1, Active: true},
	{ID: 2, Name: "In Execution", Order: 2, Active: true},
	{ID: 4, Name: "Done", Order: 4, IsFinal: true, Active: true},
}

func ts(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

func tsp(value string) *time.Time {
	t := ts(value)
	return &t
}

func TestClassifyActiveTasks(t *testing.T) {
	wf := workflow.New(testStatuses)
	c := New(time.UTC)
	now := ts("2026-03-10T15:00:00Z")

	tests := []struct {
		name string
		task model.Task
		want State
	}{
		{
			name: "deadline before today is overdue",
			task: model.Task{StatusID: 1, Deadline: ts("2026-03-09T00:00:00Z")},
			want: Overdue,
		},
		{
			name: "deadline today is due today even late in the day",
			task: model.Task{StatusID: 2, Deadline: ts("2026-03-10T00:00:00Z")},
			want: DueToday,
		},
		{
			name: "deadline tomorrow is on track",
			task: model.Task{StatusID: 1, Deadline: ts("2026-03-11T00:00:00Z")},
			want: OnTrack,
		},
		{
			name: "times within the deadline day are ignored",
			task: model.Task{StatusID: 1, Deadline: ts("2026-03-10T23:59:00Z")},
			want: DueToday,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.task, wf, now))
		})
	}
}

func TestClassifyTerminalTasks(t *testing.T) {
	wf := workflow.New(testStatuses)
	c := New(time.UTC)
	now := ts("2026-03-10T15:00:00Z")

	tests := []struct {
		name string
		task model.Task
		want State
	}{
		{
			name: "finished before deadline is on time",
			task: model.Task{StatusID: 4, Deadline: ts("2026-03-09T00:00:00Z"), FinishedAt: tsp("2026-03-08T18:00:00Z")},
			want: CompletedOnTime,
		},
		{
			name: "finished on the deadline day is on time",
			task: model.Task{StatusID: 4, Deadline: ts("2026-03-09T00:00:00Z"), FinishedAt: tsp("2026-03-09T23:00:00Z")},
			want: CompletedOnTime,
		},
		{
			name: "finished the day after is late",
			task: model.Task{StatusID: 4, Deadline: ts("2026-03-09T00:00:00Z"), FinishedAt: tsp("2026-03-10T01:00:00Z")},
			want: CompletedLate,
		},
		{
			name: "terminal without completion timestamp is not evaluated",
			task: model.Task{StatusID: 4, Deadline: ts("2026-03-01T00:00:00Z")},
			want: NotEvaluated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.task, wf, now))
		})
	}
}

func TestClassifyTerminalIgnoresClock(t *testing.T) {
	// A concluded task keeps its verdict no matter how far "now" moves.
	wf := workflow.New(testStatuses)
	c := New(time.UTC)
	task := model.Task{StatusID: 4, Deadline: ts("2026-03-09T00:00:00Z"), FinishedAt: tsp("2026-03-08T10:00:00Z")}

	assert.Equal(t, CompletedOnTime, c.Classify(task, wf, ts("2026-03-10T00:00:00Z")))
	assert.Equal(t, CompletedOnTime, c.Classify(task, wf, ts("2027-01-01T00:00:00Z")))
}

func TestClassifyTimezoneBoundary(t *testing.T) {
	saoPaulo, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	wf := workflow.New(testStatuses)
	task := model.Task{StatusID: 1, Deadline: ts("2026-03-09T12:00:00Z")}

	// 01:00 UTC on March 10 is still March 9 in Sao Paulo (UTC-3): the
	// deadline day has not passed there yet.
	now := ts("2026-03-10T01:00:00Z")
	assert.Equal(t, Overdue, New(time.UTC).Classify(task, wf, now))
	assert.Equal(t, DueToday, New(saoPaulo).Classify(task, wf, now))
}

func TestClassifyDateOnlyDeadlineWestOfUTC(t *testing.T) {
	// Deadlines are date-only values anchored at midnight UTC, the shape
	// the create handler parses and the date column round-trips. Reading
	// one through a west-of-UTC timezone must not shift its calendar date
	// back a day.
	saoPaulo, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	wf := workflow.New(testStatuses)
	c := New(saoPaulo)

	deadline, err := time.Parse("2006-01-02", "2026-03-09")
	require.NoError(t, err)

	t.Run("finished during the deadline day is on time", func(t *testing.T) {
		finished := time.Date(2026, 3, 9, 18, 0, 0, 0, saoPaulo)
		task := model.Task{StatusID: 4, Deadline: deadline, FinishedAt: &finished}
		assert.Equal(t, CompletedOnTime, c.Classify(task, wf, ts("2026-03-10T15:00:00Z")))
	})

	t.Run("due today throughout the deadline day", func(t *testing.T) {
		task := model.Task{StatusID: 1, Deadline: deadline}
		now := time.Date(2026, 3, 9, 8, 0, 0, 0, saoPaulo)
		assert.Equal(t, DueToday, c.Classify(task, wf, now))
	})

	t.Run("overdue only once the deadline day has passed locally", func(t *testing.T) {
		task := model.Task{StatusID: 1, Deadline: deadline}
		now := time.Date(2026, 3, 10, 0, 30, 0, 0, saoPaulo)
		assert.Equal(t, Overdue, c.Classify(task, wf, now))
	})
}

func TestNewDefaultsToUTC(t *testing.T) {
	c := New(nil)
	assert.Equal(t, time.UTC, c.Location)
}

func TestConcluded(t *testing.T) {
	assert.True(t, CompletedOnTime.Concluded())
	assert.True(t, CompletedLate.Concluded())
	assert.False(t, Overdue.Concluded())
	assert.False(t, NotEvaluated.Concluded())
}

func TestDayTruncation(t *testing.T) {
	c := New(time.UTC)
	got := c.Day(ts("2026-03-10T23:59:59Z"))
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), got)
}
