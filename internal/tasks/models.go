package tasks

import "strings"

// Category is one of a closed set. Unknown values are kept as-is on the
// record but count as DefaultCategory in sorting and aggregation.
type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryWishlist Category = "wishlist"

	DefaultCategory = CategoryWork
)

// Categories lists the closed set in display order.
func Categories() []Category {
	return []Category{CategoryWork, CategoryPersonal, CategoryWishlist}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryWishlist:
		return true
	}
	return false
}

func (c Category) Normalize() Category {
	if c.Valid() {
		return c
	}
	return DefaultCategory
}

// Priority is one of low, medium or high.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"

	DefaultPriority = PriorityMedium
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (p Priority) Normalize() Priority {
	if p.Valid() {
		return p
	}
	return DefaultPriority
}

// Weight orders priorities for sorting; unknown values weigh as medium.
func (p Priority) Weight() int {
	switch p.Normalize() {
	case PriorityHigh:
		return 3
	case PriorityLow:
		return 1
	}
	return 2
}

const untitled = "Untitled task"

// Task is the only persisted entity.
type Task struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Category  Category `json:"category"`
	StartDate Date     `json:"startDate"`
	EndDate   Date     `json:"endDate"`
	EndTime   string   `json:"endTime"`
	Notes     string   `json:"notes"`
	Priority  Priority `json:"priority"`
	Reminder  string   `json:"reminder"`
	Completed bool     `json:"completed"`
}

// AnchorDate places a task in date-keyed views: the start date, else the
// end date. ok is false when the task has neither.
func (t Task) AnchorDate() (d Date, ok bool) {
	if !t.StartDate.IsZero() {
		return t.StartDate, true
	}
	if !t.EndDate.IsZero() {
		return t.EndDate, true
	}
	return Date{}, false
}

// sortDate is the key for date ordering: end date first, then start date.
func (t Task) sortDate() Date {
	if !t.EndDate.IsZero() {
		return t.EndDate
	}
	return t.StartDate
}

// Draft carries the user-supplied fields of a new task.
type Draft struct {
	Title     string   `json:"title"`
	Category  Category `json:"category"`
	StartDate Date     `json:"startDate"`
	EndDate   Date     `json:"endDate"`
	EndTime   string   `json:"endTime"`
	Notes     string   `json:"notes"`
	Priority  Priority `json:"priority"`
	Reminder  string   `json:"reminder"`
}

func (d Draft) build(id string) Task {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		title = untitled
	}
	category := d.Category
	if category == "" {
		category = DefaultCategory
	}
	priority := d.Priority
	if priority == "" {
		priority = DefaultPriority
	}
	return Task{
		ID:        id,
		Title:     title,
		Category:  category,
		StartDate: d.StartDate,
		EndDate:   d.EndDate,
		EndTime:   d.EndTime,
		Notes:     strings.TrimSpace(d.Notes),
		Priority:  priority,
		Reminder:  d.Reminder,
	}
}

// Patch is a field-level update; nil fields keep their current value.
type Patch struct {
	Title     *string   `json:"title,omitempty"`
	Category  *Category `json:"category,omitempty"`
	StartDate *Date     `json:"startDate,omitempty"`
	EndDate   *Date     `json:"endDate,omitempty"`
	EndTime   *string   `json:"endTime,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	Priority  *Priority `json:"priority,omitempty"`
	Reminder  *string   `json:"reminder,omitempty"`
	Completed *bool     `json:"completed,omitempty"`
}

func (p Patch) apply(t *Task) {
	if p.Title != nil {
		if title := strings.TrimSpace(*p.Title); title != "" {
			t.Title = title
		}
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.StartDate != nil {
		t.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		t.EndDate = *p.EndDate
	}
	if p.EndTime != nil {
		t.EndTime = *p.EndTime
	}
	if p.Notes != nil {
		t.Notes = strings.TrimSpace(*p.Notes)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Reminder != nil {
		t.Reminder = *p.Reminder
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}
