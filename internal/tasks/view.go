package tasks

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CategoryAll disables category filtering.
const CategoryAll = "all"

// SortKey selects the ordering of a task view.
type SortKey string

const (
	SortDate     SortKey = "date"
	SortPriority SortKey = "priority"
	SortTitle    SortKey = "title"
)

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortDate, SortPriority, SortTitle:
		return k, nil
	case "":
		return SortDate, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// Query describes a derived task view.
type Query struct {
	Category string
	Search   string
	Sort     SortKey
}

// Apply filters by category and search text, then sorts. The input slice
// is never modified.
func Apply(tasks []Task, q Query) []Task {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !matchesCategory(t, q.Category) || !matchesSearch(t, needle) {
			continue
		}
		out = append(out, t)
	}
	Sort(out, q.Sort)
	return out
}

func matchesCategory(t Task, filter string) bool {
	if filter == "" || filter == CategoryAll {
		return true
	}
	return t.Category == Category(filter)
}

func matchesSearch(t Task, needle string) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Title), needle) {
		return true
	}
	return t.Notes != "" && strings.Contains(strings.ToLower(t.Notes), needle)
}

// Sort orders tasks in place, stably. An unknown key leaves the order as is.
func Sort(tasks []Task, key SortKey) {
	switch key {
	case SortDate:
		slices.SortStableFunc(tasks, compareByDate)
	case SortPriority:
		slices.SortStableFunc(tasks, func(a, b Task) int {
			return b.Priority.Weight() - a.Priority.Weight()
		})
	case SortTitle:
		col := collate.New(language.English, collate.IgnoreCase)
		slices.SortStableFunc(tasks, func(a, b Task) int {
			return col.CompareString(a.Title, b.Title)
		})
	}
}

// compareByDate puts dated tasks first, oldest first.
func compareByDate(a, b Task) int {
	da, db := a.sortDate(), b.sortDate()
	switch {
	case da.IsZero() && db.IsZero():
		return 0
	case da.IsZero():
		return 1
	case db.IsZero():
		return -1
	}
	return da.Compare(db)
}
