package tasks

import "math"

const (
	// UpcomingWindowDays is the inclusive look-ahead of the upcoming list.
	UpcomingWindowDays = 7
	// SeriesDays is the length of the trailing daily completion series.
	SeriesDays = 7
)

// DayStat is one slot of the daily completion series.
type DayStat struct {
	Date      Date   `json:"date"`
	Label     string `json:"label"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Rate      int    `json:"rate"`
}

// CategoryCount is the pending count of one category.
type CategoryCount struct {
	Category Category `json:"category"`
	Pending  int      `json:"pending"`
}

// Stats is the profile snapshot derived from a collection and a day.
type Stats struct {
	ReferenceDate       Date            `json:"referenceDate"`
	Total               int             `json:"total"`
	CompletedCount      int             `json:"completedCount"`
	PendingCount        int             `json:"pendingCount"`
	Upcoming            []Task          `json:"upcoming"`
	CategoryPending     []CategoryCount `json:"categoryPending"`
	DailySeries         []DayStat       `json:"dailySeries"`
	TodayCompletionRate int             `json:"todayCompletionRate"`
}

// Compute derives Stats for ref. It reads no clock.
func Compute(tasks []Task, ref Date) Stats {
	st := Stats{
		ReferenceDate: ref,
		Total:         len(tasks),
		Upcoming:      []Task{},
	}

	pending := make(map[Category]int)
	for _, t := range tasks {
		if t.Completed {
			st.CompletedCount++
		} else {
			st.PendingCount++
			pending[t.Category.Normalize()]++
		}
		if inWindow(t, ref, UpcomingWindowDays) {
			st.Upcoming = append(st.Upcoming, t)
		}
	}

	for _, c := range Categories() {
		st.CategoryPending = append(st.CategoryPending, CategoryCount{Category: c, Pending: pending[c]})
	}

	st.DailySeries = DailySeries(tasks, ref)
	st.TodayCompletionRate = st.DailySeries[len(st.DailySeries)-1].Rate
	return st
}

// DailySeries returns SeriesDays slots ending on ref, oldest first.
func DailySeries(tasks []Task, ref Date) []DayStat {
	first := ref.AddDays(-(SeriesDays - 1))
	series := make([]DayStat, SeriesDays)
	slot := make(map[Date]int, SeriesDays)
	for i := range series {
		d := first.AddDays(i)
		series[i] = DayStat{Date: d, Label: WeekdayLabel(d)}
		slot[d] = i
	}

	for _, t := range tasks {
		d, ok := t.AnchorDate()
		if !ok {
			continue
		}
		i, ok := slot[d]
		if !ok {
			continue
		}
		series[i].Total++
		if t.Completed {
			series[i].Completed++
		}
	}

	for i := range series {
		series[i].Rate = Rate(series[i].Completed, series[i].Total)
	}
	return series
}

// Rate is the rounded completion percentage, 0 for an empty bucket.
func Rate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// WeekdayLabel is the two-letter English weekday ("Mo", "Tu", ...).
func WeekdayLabel(d Date) string {
	return d.Weekday().String()[:2]
}

func inWindow(t Task, ref Date, days int) bool {
	d, ok := t.AnchorDate()
	if !ok {
		return false
	}
	return !d.Before(ref) && !d.After(ref.AddDays(days))
}

// DueStatus flags tasks whose end date is close or past.
type DueStatus string

const (
	DueNone    DueStatus = "none"
	DueSoon    DueStatus = "due-soon"
	DueOverdue DueStatus = "overdue"
)

// DueStatusOf classifies an open task by its end date relative to today:
// past is overdue, today or tomorrow is due soon.
func DueStatusOf(t Task, today Date) DueStatus {
	if t.Completed || t.EndDate.IsZero() {
		return DueNone
	}
	switch days := today.DaysUntil(t.EndDate); {
	case days < 0:
		return DueOverdue
	case days <= 1:
		return DueSoon
	}
	return DueNone
}
