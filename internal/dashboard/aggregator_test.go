package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lousuarez/LourenTask/internal/model"
	"github.com/Lousuarez/LourenTask/internal/sla"
	"github.com/Lousuarez/LourenTask/internal/workflow"
)

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

func testInput() Input {
	statuses := []model.Status{
		{ID: 1, TenantID: 1, Name: "Open", Order: 1, Active: true},
		{ID: 2, TenantID: 1, Name: "In Execution", Order: 2, Active: true},
		{ID: 3, TenantID: 1, Name: "Paused", Order: 3, Active: true},
		{ID: 4, TenantID: 1, Name: "Done", Order: 4, IsFinal: true, Active: true},
	}

	now := ts("2026-03-10T12:00:00Z")
	tasks := []model.Task{
		// overdue, open
		{ID: 1, StatusID: 1, Deadline: ts("2026-03-08T00:00:00Z"), SectorID: 1, CriticalityID: 1, TaskTypeID: 1, ResponsibleID: 10, CreatedAt: ts("2026-03-01T09:00:00Z")},
		// due today, running
		{ID: 2, StatusID: 2, Deadline: ts("2026-03-10T00:00:00Z"), SectorID: 1, CriticalityID: 2, TaskTypeID: 1, ResponsibleID: 10, CreatedAt: ts("2026-03-09T09:00:00Z")},
		// on track inside the week window, paused
		{ID: 3, StatusID: 3, Deadline: ts("2026-03-14T00:00:00Z"), SectorID: 2, CriticalityID: 1, TaskTypeID: 2, ResponsibleID: 20, CreatedAt: ts("2026-03-09T15:00:00Z")},
		// on track outside the week window
		{ID: 4, StatusID: 1, Deadline: ts("2026-03-25T00:00:00Z"), SectorID: 2, CriticalityID: 1, TaskTypeID: 2, ResponsibleID: 20, CreatedAt: ts("2026-03-10T08:00:00Z")},
		// completed on time
		{ID: 5, StatusID: 4, Deadline: ts("2026-03-09T00:00:00Z"), FinishedAt: tsp("2026-03-09T10:00:00Z"), SectorID: 1, CriticalityID: 2, TaskTypeID: 1, ResponsibleID: 10, CreatedAt: ts("2026-03-02T09:00:00Z")},
		// completed late
		{ID: 6, StatusID: 4, Deadline: ts("2026-03-05T00:00:00Z"), FinishedAt: tsp("2026-03-07T10:00:00Z"), SectorID: 2, CriticalityID: 3, TaskTypeID: 3, ResponsibleID: 30, CreatedAt: ts("2026-02-20T09:00:00Z")},
	}

	return Input{
		Tasks:    tasks,
		Workflow: workflow.New(statuses),
		Sectors: []model.Sector{
			{ID: 1, Name: "Support"},
			{ID: 2, Name: "Infrastructure"},
			{ID: 3, Name: "Unused"},
		},
		Criticalities: []model.Criticality{
			{ID: 3, Name: "High", Level: 3},
			{ID: 1, Name: "Low", Level: 1},
			{ID: 2, Name: "Medium", Level: 2},
		},
		Types: []model.TaskType{
			{ID: 1, Name: "Incident"},
			{ID: 2, Name: "Request"},
			{ID: 3, Name: "Change"},
			{ID: 4, Name: "Unused"},
		},
		Users: []model.User{
			{ID: 10, Name: "Ana"},
			{ID: 20, Name: "Bruno"},
			{ID: 30, Name: "Clara"},
		},
		Classifier: sla.New(time.UTC),
		Now:        now,
		TrendDays:  7,
	}
}

func TestAggregateRoleCounts(t *testing.T) {
	snap := Aggregate(testInput())

	assert.Equal(t, 6, snap.Total)
	assert.Equal(t, 2, snap.OpenCount)
	assert.Equal(t, 1, snap.RunningCount)
	assert.Equal(t, 1, snap.PausedCount)
	assert.Equal(t, 2, snap.ConcludedCount)
	assert.Equal(t, snap.Total,
		snap.OpenCount+snap.RunningCount+snap.PausedCount+snap.ConcludedCount)
}

func TestAggregateSLAPartition(t *testing.T) {
	snap := Aggregate(testInput())

	assert.Equal(t, 1, snap.OverdueCount)
	assert.Equal(t, 1, snap.DueTodayCount)
	assert.Equal(t, 2, snap.OnTrackCount)
	assert.Equal(t, 1, snap.CompletedOnTime)
	assert.Equal(t, 1, snap.CompletedLate)
	assert.Equal(t, 0, snap.NotEvaluatedCount)

	// Every task lands in exactly one SLA bucket.
	assert.Equal(t, snap.Total,
		snap.OverdueCount+snap.DueTodayCount+snap.OnTrackCount+
			snap.CompletedOnTime+snap.CompletedLate+snap.NotEvaluatedCount)
}

func TestAggregateDueThisWeek(t *testing.T) {
	snap := Aggregate(testInput())
	// Only the March 14 deadline falls in (today, today+7]; due-today and
	// distant deadlines are excluded.
	assert.Equal(t, 1, snap.DueThisWeekCount)
}

func TestAggregateEfficiency(t *testing.T) {
	snap := Aggregate(testInput())
	assert.InDelta(t, 0.5, snap.Efficiency(), 0.0001)

	empty := Snapshot{}
	assert.Zero(t, empty.Efficiency())
}

func TestAggregateBySectorDropsEmpty(t *testing.T) {
	snap := Aggregate(testInput())

	require.Len(t, snap.BySector, 2)
	names := []string{snap.BySector[0].Name, snap.BySector[1].Name}
	assert.NotContains(t, names, "Unused")
}

func TestAggregateByCriticalityKeepsZerosOrderedByLevel(t *testing.T) {
	in := testInput()
	in.Criticalities = append(in.Criticalities, model.Criticality{ID: 4, Name: "Critical", Level: 4})
	snap := Aggregate(in)

	require.Len(t, snap.ByCriticality, 4)
	assert.Equal(t, []string{"Low", "Medium", "High", "Critical"}, []string{
		snap.ByCriticality[0].Name,
		snap.ByCriticality[1].Name,
		snap.ByCriticality[2].Name,
		snap.ByCriticality[3].Name,
	})
	assert.Equal(t, 0, snap.ByCriticality[3].Count)
}

func TestAggregateByTypeOrderedByCountDesc(t *testing.T) {
	snap := Aggregate(testInput())

	require.Len(t, snap.ByType, 3)
	assert.Equal(t, "Incident", snap.ByType[0].Name)
	assert.Equal(t, 3, snap.ByType[0].Count)
	for i := 1; i < len(snap.ByType); i++ {
		assert.GreaterOrEqual(t, snap.ByType[i-1].Count, snap.ByType[i].Count)
	}
}

func TestAggregateTopResponsibles(t *testing.T) {
	snap := Aggregate(testInput())

	require.NotEmpty(t, snap.TopResponsibles)
	assert.Equal(t, "Ana", snap.TopResponsibles[0].Name)
	assert.Equal(t, 3, snap.TopResponsibles[0].Count)
	assert.LessOrEqual(t, len(snap.TopResponsibles), 5)
}

func TestAggregateTopResponsiblesCapped(t *testing.T) {
	in := testInput()
	in.Tasks = nil
	for i := uint(1); i <= 8; i++ {
		in.Tasks = append(in.Tasks, model.Task{
			ID: i, StatusID: 1, Deadline: ts("2026-03-20T00:00:00Z"),
			ResponsibleID: i, CreatedAt: ts("2026-03-10T08:00:00Z"),
		})
	}
	snap := Aggregate(in)
	assert.Len(t, snap.TopResponsibles, 5)
}

func TestAggregateCreatedSeries(t *testing.T) {
	snap := Aggregate(testInput())

	require.Len(t, snap.CreatedSeries, 7)
	assert.Equal(t, "2026-03-04", snap.CreatedSeries[0].Date)
	assert.Equal(t, "2026-03-10", snap.CreatedSeries[6].Date)

	byDate := make(map[string]int)
	for _, d := range snap.CreatedSeries {
		byDate[d.Date] = d.Count
	}
	assert.Equal(t, 2, byDate["2026-03-09"])
	assert.Equal(t, 1, byDate["2026-03-10"])
	assert.Equal(t, 0, byDate["2026-03-05"], "days without creations keep a zero bucket")
}

func TestAggregateEmptyInput(t *testing.T) {
	in := testInput()
	in.Tasks = nil
	snap := Aggregate(in)

	assert.Zero(t, snap.Total)
	assert.Empty(t, snap.BySector)
	assert.Empty(t, snap.ByType)
	assert.Empty(t, snap.TopResponsibles)
	assert.Zero(t, snap.Efficiency())
	assert.Len(t, snap.CreatedSeries, 7)
}
