package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"focusflow/internal/tasks"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	doneStyle    = lipgloss.NewStyle().Faint(true).Strikethrough(true)

	boxChecked   = "☑"
	boxUnchecked = "☐"
)

var categoryStyles = map[tasks.Category]lipgloss.Style{
	tasks.CategoryWork:     lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	tasks.CategoryPersonal: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	tasks.CategoryWishlist: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
}

var priorityMarks = map[tasks.Priority]string{
	tasks.PriorityHigh:   "!!!",
	tasks.PriorityMedium: "!! ",
	tasks.PriorityLow:    "!  ",
}

func ok(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render("✔ "+msg))
}

func panel(w io.Writer, lines []string) {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)
	fmt.Fprintln(w, border.Render(strings.Join(lines, "\n")))
}

func progressBar(done, total, width int) string {
	if total == 0 {
		total = 1
	}
	if width <= 0 {
		width = 28
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// taskLine renders one row of the list view.
func taskLine(t tasks.Task, today tasks.Date) string {
	box := boxUnchecked
	title := t.Title
	if t.Completed {
		box = boxChecked
		title = doneStyle.Render(title)
	}

	cat := t.Category.Normalize()
	parts := []string{
		mutedStyle.Render(shortID(t.ID)),
		box,
		pendingStyle.Render(priorityMarks[t.Priority.Normalize()]),
		title,
		categoryStyles[cat].Render("#" + string(cat)),
	}
	if !t.EndDate.IsZero() {
		due := "due " + t.EndDate.String()
		if t.EndTime != "" {
			due += " " + t.EndTime
		}
		switch tasks.DueStatusOf(t, today) {
		case tasks.DueOverdue:
			due = errorStyle.Render(due + " (overdue)")
		case tasks.DueSoon:
			due = pendingStyle.Render(due + " (soon)")
		default:
			due = mutedStyle.Render(due)
		}
		parts = append(parts, due)
	} else if !t.StartDate.IsZero() {
		parts = append(parts, mutedStyle.Render("on "+t.StartDate.String()))
	}
	return strings.Join(parts, " ")
}
