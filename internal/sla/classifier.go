// Package sla computes a task's deadline classification. It is the single
// source of truth for "is this task late": both list badges and dashboard
// counts go through Classify, so the two can never diverge.
package sla

import (
	"time"

	"github.com/Lousuarez/LourenTask/internal/model"
	"github.com/Lousuarez/LourenTask/internal/workflow"
)

// State is the SLA classification of a task
type State string

const (
	Overdue         State = "overdue"
	DueToday        State = "due_today"
	OnTrack         State = "on_track"
	CompletedOnTime State = "completed_on_time"
	CompletedLate   State = "completed_late"
	NotEvaluated    State = "not_evaluated"
)

// Classifier truncates timestamps to calendar days in one canonical
// timezone. All deadline comparisons are on dates, not timestamps, to
// avoid partial-day artifacts.
type Classifier struct {
	Location *time.Location
}

// New returns a classifier anchored to the given timezone. A nil location
// falls back to UTC.
func New(loc *time.Location) Classifier {
	if loc == nil {
		loc = time.UTC
	}
	return Classifier{Location: loc}
}

// Classify evaluates a task against its tenant's workflow, in this
// precedence order: terminal tasks compare completion date to deadline
// date (equal counts as on-time); a terminal task missing its completion
// timestamp is a data anomaly and is not evaluated; non-terminal tasks
// compare deadline date to today.
func (c Classifier) Classify(task model.Task, wf *workflow.Workflow, now time.Time) State {
	deadline := c.date(task.Deadline)

	if wf.RoleOfID(task.StatusID) == workflow.RoleTerminal {
		if task.FinishedAt == nil {
			return NotEvaluated
		}
		if finished := c.day(*task.FinishedAt); !finished.After(deadline) {
			return CompletedOnTime
		}
		return CompletedLate
	}

	today := c.day(now)
	switch {
	case deadline.Before(today):
		return Overdue
	case deadline.Equal(today):
		return DueToday
	default:
		return OnTrack
	}
}

// Concluded reports whether the state is a terminal outcome
func (s State) Concluded() bool {
	return s == CompletedOnTime || s == CompletedLate
}

// day truncates a real instant (now, FinishedAt) to midnight of its
// calendar day in the classifier's timezone.
func (c Classifier) day(t time.Time) time.Time {
	loc := c.loc()
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// date reads a date-only value (the deadline column) in the location it
// carries. Converting it into the classifier's timezone first would shift
// a midnight-anchored date back a day anywhere west of its origin.
func (c Classifier) date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc())
}

func (c Classifier) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// Day exposes the canonical truncation for callers that bucket real
// instants by calendar day (the dashboard trend series).
func (c Classifier) Day(t time.Time) time.Time {
	return c.day(t)
}

// Date exposes the date-only reading for callers comparing deadlines
// (the dashboard week window).
func (c Classifier) Date(t time.Time) time.Time {
	return c.date(t)
}
