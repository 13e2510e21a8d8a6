// Package dashboard reduces an already tenant- and visibility-scoped task
// list into the aggregate counts and breakdowns the management panel
// shows. Aggregation is a pure reduction recomputed per request; caching
// a snapshot across a tenant-scope change would leak cross-tenant totals.
package dashboard

import (
	"sort"
	"time"

	"github.com/Lousuarez/LourenTask/internal/model"
	"github.com/Lousuarez/LourenTask/internal/sla"
	"github.com/Lousuarez/LourenTask/internal/workflow"
)

// GroupCount is one slice of a breakdown chart
type GroupCount struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DayCount is one bucket of the creation trend series
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Snapshot is the metrics set shown on the dashboard
type Snapshot struct {
	Total          int `json:"total"`
	OpenCount      int `json:"open_count"`
	RunningCount   int `json:"running_count"`
	PausedCount    int `json:"paused_count"`
	ConcludedCount int `json:"concluded_count"`

	OverdueCount      int `json:"overdue_count"`
	DueTodayCount     int `json:"due_today_count"`
	DueThisWeekCount  int `json:"due_this_week_count"`
	OnTrackCount      int `json:"on_track_count"`
	NotEvaluatedCount int `json:"not_evaluated_count"`

	CompletedOnTime int `json:"completed_on_time"`
	CompletedLate   int `json:"completed_late"`

	BySector        []GroupCount `json:"by_sector"`
	ByCriticality   []GroupCount `json:"by_criticality"`
	ByType          []GroupCount `json:"by_type"`
	TopResponsibles []GroupCount `json:"top_responsibles"`
	CreatedSeries   []DayCount   `json:"created_series"`
}

// Efficiency is the on-time share of concluded tasks, zero when nothing
// has concluded yet.
func (s *Snapshot) Efficiency() float64 {
	concluded := s.CompletedOnTime + s.CompletedLate
	if concluded == 0 {
		return 0
	}
	return float64(s.CompletedOnTime) / float64(concluded)
}

// Input carries the scoped task list and the catalogs the breakdowns are
// labeled from.
type Input struct {
	Tasks         []model.Task
	Workflow      *workflow.Workflow
	Sectors       []model.Sector
	Criticalities []model.Criticality
	Types         []model.TaskType
	Users         []model.User
	Classifier    sla.Classifier
	Now           time.Time
	TrendDays     int
}

const topResponsibleLimit = 5

// Aggregate reduces the input into a snapshot
func Aggregate(in Input) Snapshot {
	snap := Snapshot{Total: len(in.Tasks)}

	weekEnd := in.Classifier.Day(in.Now).AddDate(0, 0, 7)

	bySector := make(map[uint]int)
	byCrit := make(map[uint]int)
	byType := make(map[uint]int)
	byResponsible := make(map[uint]int)

	for _, t := range in.Tasks {
		switch in.Workflow.RoleOfID(t.StatusID) {
		case workflow.RoleInitial:
			snap.OpenCount++
		case workflow.RoleRunning:
			snap.RunningCount++
		case workflow.RolePaused:
			snap.PausedCount++
		case workflow.RoleTerminal:
			snap.ConcludedCount++
		}

		state := in.Classifier.Classify(t, in.Workflow, in.Now)
		switch state {
		case sla.Overdue:
			snap.OverdueCount++
		case sla.DueToday:
			snap.DueTodayCount++
		case sla.OnTrack:
			snap.OnTrackCount++
		case sla.CompletedOnTime:
			snap.CompletedOnTime++
		case sla.CompletedLate:
			snap.CompletedLate++
		case sla.NotEvaluated:
			snap.NotEvaluatedCount++
		}

		if !state.Concluded() && state != sla.NotEvaluated {
			deadline := in.Classifier.Date(t.Deadline)
			if deadline.After(in.Classifier.Day(in.Now)) && !deadline.After(weekEnd) {
				snap.DueThisWeekCount++
			}
		}

		bySector[t.SectorID]++
		byCrit[t.CriticalityID]++
		byType[t.TaskTypeID]++
		byResponsible[t.ResponsibleID]++
	}

	// Sectors with no tasks are dropped from the pie
	for _, sec := range in.Sectors {
		if n := bySector[sec.ID]; n > 0 {
			snap.BySector = append(snap.BySector, GroupCount{ID: sec.ID, Name: sec.Name, Count: n})
		}
	}

	// Criticalities keep their zero buckets, ordered by level ascending
	crits := make([]model.Criticality, len(in.Criticalities))
	copy(crits, in.Criticalities)
	sort.Slice(crits, func(i, j int) bool { return crits[i].Level < crits[j].Level })
	for _, c := range crits {
		snap.ByCriticality = append(snap.ByCriticality, GroupCount{ID: c.ID, Name: c.Name, Count: byCrit[c.ID]})
	}

	for _, tt := range in.Types {
		if n := byType[tt.ID]; n > 0 {
			snap.ByType = append(snap.ByType, GroupCount{ID: tt.ID, Name: tt.Name, Count: n})
		}
	}
	sort.Slice(snap.ByType, func(i, j int) bool {
		if snap.ByType[i].Count != snap.ByType[j].Count {
			return snap.ByType[i].Count > snap.ByType[j].Count
		}
		return snap.ByType[i].ID < snap.ByType[j].ID
	})

	snap.TopResponsibles = topResponsibles(byResponsible, in.Users)
	snap.CreatedSeries = createdSeries(in)

	return snap
}

func topResponsibles(counts map[uint]int, users []model.User) []GroupCount {
	names := make(map[uint]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	out := make([]GroupCount, 0, len(counts))
	for id, n := range counts {
		name, ok := names[id]
		if !ok {
			name = "unknown"
		}
		out = append(out, GroupCount{ID: id, Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > topResponsibleLimit {
		out = out[:topResponsibleLimit]
	}
	return out
}

// createdSeries buckets task creation by calendar day over the trailing
// trend window, oldest day first.
func createdSeries(in Input) []DayCount {
	days := in.TrendDays
	if days <= 0 {
		return nil
	}

	today := in.Classifier.Day(in.Now)
	start := today.AddDate(0, 0, -(days - 1))

	counts := make(map[string]int)
	for _, t := range in.Tasks {
		day := in.Classifier.Day(t.CreatedAt)
		if day.Before(start) || day.After(today) {
			continue
		}
		counts[day.Format("2006-01-02")]++
	}

	series := make([]DayCount, 0, days)
	for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		series = append(series, DayCount{Date: key, Count: counts[key]})
	}
	return series
}
