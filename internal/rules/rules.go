// Package rules holds the shared project/task computations: priority
// classification, progress percentages, display ranking, and completion
// toggles. Every screen and command uses these instead of carrying its
// own copy of the arithmetic.
package rules

import (
	"math"
	"sort"
	"strings"
	"time"

	"taskdeck/internal/model"
)

// Classification thresholds in days until due.
const (
	highWithinDays   = 7
	mediumWithinDays = 30
)

// Classify derives a project's display priority from its due date and
// important flag, evaluated at now. Important projects are always High.
// Otherwise the fractional number of days until the due date decides:
// within 7 days High, within 30 Medium, beyond that Low.
func Classify(dueDate time.Time, important bool, now time.Time) model.Priority {
	if important {
		return model.PriorityHigh
	}
	daysDiff := dueDate.Sub(now).Hours() / 24
	switch {
	case daysDiff <= highWithinDays:
		return model.PriorityHigh
	case daysDiff <= mediumWithinDays:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

// IsOverdue reports whether the due date has passed. Overdue is a display
// override; the underlying priority from Classify still drives sorting.
func IsOverdue(dueDate time.Time, now time.Time) bool {
	return dueDate.Before(now)
}

// Progress returns the integer completion percentage for completed out of
// total items, rounding half up. Zero total yields zero.
func Progress(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// ProjectProgress computes a project's completion percentage from its
// subtask list.
func ProjectProgress(subtasks []model.Subtask) int {
	completed := 0
	for _, st := range subtasks {
		if st.Completed {
			completed++
		}
	}
	return Progress(completed, len(subtasks))
}

// Rank orders projects for display: important projects first, then by
// derived priority (High before Medium before Low), then by due date with
// the earliest due first. The input slice is not modified.
func Rank(projects []model.Project, now time.Time) []model.Project {
	ranked := make([]model.Project, len(projects))
	copy(ranked, projects)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.IsImportant != b.IsImportant {
			return a.IsImportant
		}
		ar := Classify(a.DueDate, a.IsImportant, now).Rank()
		br := Classify(b.DueDate, b.IsImportant, now).Rank()
		if ar != br {
			return ar > br
		}
		return a.DueDate.Before(b.DueDate)
	})
	return ranked
}

// Partition splits projects into ongoing (progress below 100) and
// completed (progress exactly 100) buckets, computing progress from each
// project's subtask list rather than trusting the stored value.
func Partition(projects []model.Project) (ongoing, completed []model.Project) {
	for _, p := range projects {
		if ProjectProgress(p.Subtasks) == 100 {
			completed = append(completed, p)
		} else {
			ongoing = append(ongoing, p)
		}
	}
	return ongoing, completed
}

// ToggleSubtask returns a copy of subtasks with the completion flag of the
// subtask with the given ID flipped. The second return reports whether the
// ID was found.
func ToggleSubtask(subtasks []model.Subtask, id string) ([]model.Subtask, bool) {
	updated := make([]model.Subtask, len(subtasks))
	copy(updated, subtasks)
	for i := range updated {
		if updated[i].ID == id {
			updated[i].Completed = !updated[i].Completed
			return updated, true
		}
	}
	return updated, false
}

// ToggleTask returns a copy of tasks with the completion flag of the task
// with the given ID flipped.
func ToggleTask(tasks []model.Task, id string) ([]model.Task, bool) {
	updated := make([]model.Task, len(tasks))
	copy(updated, tasks)
	for i := range updated {
		if updated[i].ID == id {
			updated[i].Completed = !updated[i].Completed
			return updated, true
		}
	}
	return updated, false
}

// RemoveTask returns a copy of tasks without the task with the given ID.
func RemoveTask(tasks []model.Task, id string) ([]model.Task, bool) {
	updated := make([]model.Task, 0, len(tasks))
	found := false
	for _, t := range tasks {
		if t.ID == id {
			found = true
			continue
		}
		updated = append(updated, t)
	}
	return updated, found
}

// DisplayNameFromEmail derives a greeting name from the email local
// part: up to three dot- or space-separated words, joined with spaces.
// An empty or unusable email yields "User".
func DisplayNameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	words := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == ' '
	})
	if len(words) > 3 {
		words = words[:3]
	}
	if len(words) == 0 {
		return "User"
	}
	return strings.Join(words, " ")
}

// SortSubtasksForDisplay orders subtasks with incomplete items first,
// preserving relative order within each group.
func SortSubtasksForDisplay(subtasks []model.Subtask) []model.Subtask {
	sorted := make([]model.Subtask, len(subtasks))
	copy(sorted, subtasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return !sorted[i].Completed && sorted[j].Completed
	})
	return sorted
}
