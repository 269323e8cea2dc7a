package api

import (
	"fmt"

	"focusflow/internal/tasks"
)

// taskInput is the request body of create and update. Enum and date fields
// arrive as raw strings so bad values are rejected instead of defaulted.
type taskInput struct {
	Title     *string `json:"title"`
	Category  *string `json:"category"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
	EndTime   *string `json:"endTime"`
	Notes     *string `json:"notes"`
	Priority  *string `json:"priority"`
	Reminder  *string `json:"reminder"`
	Completed *bool   `json:"completed"`
}

func (in taskInput) patch() (tasks.Patch, error) {
	p := tasks.Patch{
		Title:     in.Title,
		EndTime:   in.EndTime,
		Notes:     in.Notes,
		Reminder:  in.Reminder,
		Completed: in.Completed,
	}
	if in.Category != nil {
		c := tasks.Category(*in.Category)
		if !c.Valid() {
			return p, fmt.Errorf("category %q must be one of work, personal, wishlist", *in.Category)
		}
		p.Category = &c
	}
	if in.Priority != nil {
		pr := tasks.Priority(*in.Priority)
		if !pr.Valid() {
			return p, fmt.Errorf("priority %q must be one of low, medium, high", *in.Priority)
		}
		p.Priority = &pr
	}
	var err error
	if p.StartDate, err = parseDateField("startDate", in.StartDate); err != nil {
		return p, err
	}
	if p.EndDate, err = parseDateField("endDate", in.EndDate); err != nil {
		return p, err
	}
	return p, nil
}

// draft allows a blank category or priority, which take their defaults.
func (in taskInput) draft() (tasks.Draft, error) {
	if in.Category != nil && *in.Category == "" {
		in.Category = nil
	}
	if in.Priority != nil && *in.Priority == "" {
		in.Priority = nil
	}
	p, err := in.patch()
	if err != nil {
		return tasks.Draft{}, err
	}
	return tasks.Draft{
		Title:     deref(p.Title),
		Category:  deref(p.Category),
		StartDate: deref(p.StartDate),
		EndDate:   deref(p.EndDate),
		EndTime:   deref(p.EndTime),
		Notes:     deref(p.Notes),
		Priority:  deref(p.Priority),
		Reminder:  deref(p.Reminder),
	}, nil
}

// parseDateField maps "" to a cleared date.
func parseDateField(name string, s *string) (*tasks.Date, error) {
	if s == nil {
		return nil, nil
	}
	d, err := tasks.ParseDate(*s)
	if err != nil {
		return nil, fmt.Errorf("%s must be YYYY-MM-DD", name)
	}
	return &d, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
