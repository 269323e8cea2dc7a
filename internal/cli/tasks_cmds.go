package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"focusflow/internal/tasks"
)

// taskFlags are the editable fields shared by add and edit.
type taskFlags struct {
	title    string
	category string
	priority string
	start    string
	due      string
	dueTime  string
	notes    string
	reminder string
}

func (f *taskFlags) register(cmd *cobra.Command, withTitle bool) {
	if withTitle {
		cmd.Flags().StringVar(&f.title, "title", "", "Task title")
	}
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "work, personal or wishlist")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "low, medium or high")
	cmd.Flags().StringVar(&f.start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&f.due, "due", "d", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.dueTime, "time", "", "End time (HH:MM)")
	cmd.Flags().StringVarP(&f.notes, "notes", "n", "", "Notes")
	cmd.Flags().StringVar(&f.reminder, "reminder", "", "Reminder (date-time)")
}

func parseCategory(s string) (tasks.Category, error) {
	c := tasks.Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("invalid category '%s': must be work, personal or wishlist", s)
	}
	return c, nil
}

func parsePriority(s string) (tasks.Priority, error) {
	p := tasks.Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority '%s': must be low, medium or high", s)
	}
	return p, nil
}

func parseDateFlag(name, s string) (tasks.Date, error) {
	d, err := tasks.ParseDate(s)
	if err != nil {
		return tasks.Date{}, fmt.Errorf("invalid --%s %q: use YYYY-MM-DD", name, s)
	}
	return d, nil
}

func newAddCmd(opts *options) *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.ArbitraryArgs,
		RunE: withWorkspace(opts, func(cmd *cobra.Command, args []string, w *workspace) error {
			draft := tasks.Draft{
				Title:    strings.Join(args, " "),
				Notes:    f.notes,
				EndTime:  f.dueTime,
				Reminder: f.reminder,
			}
			var err error
			if f.category != "" {
				if draft.Category, err = parseCategory(f.category); err != nil {
					return err
				}
			}
			if f.priority != "" {
				if draft.Priority, err = parsePriority(f.priority); err != nil {
					return err
				}
			}
			if draft.StartDate, err = parseDateFlag("start", f.start); err != nil {
				return err
			}
			if draft.EndDate, err = parseDateFlag("due", f.due); err != nil {
				return err
			}

			t := w.store.Create(draft)
			ok(opts.out, fmt.Sprintf("Added %s %s", shortID(t.ID), t.Title))
			return nil
		}),
	}
	f.register(cmd, false)
	return cmd
}

func newListCmd(opts *options) *cobra.Command {
	var category, search, sortKey string
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: withWorkspace(opts, func(cmd *cobra.Command, args []string, w *workspace) error {
			key, err := tasks.ParseSortKey(sortKey)
			if err != nil {
				return err
			}
			if category != tasks.CategoryAll {
				c, err := parseCategory(category)
				if err != nil {
					return err
				}
				category = string(c)
			}

			all := w.store.Snapshot()
			view := tasks.Apply(all, tasks.Query{Category: category, Search: search, Sort: key})
			today := tasks.DateOf(opts.now())

			if len(view) == 0 {
				fmt.Fprintln(opts.out, mutedStyle.Render("No tasks."))
			}
			for _, t := range view {
				fmt.Fprintln(opts.out, taskLine(t, today))
			}

			completed := 0
			for _, t := range all {
				if t.Completed {
					completed++
				}
			}
			fmt.Fprintln(opts.out, mutedStyle.Render(fmt.Sprintf("%d shown · %d tasks · %d completed", len(view), len(all), completed)))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&category, "category", "c", tasks.CategoryAll, "all, work, personal or wishlist")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Match title or notes")
	cmd.Flags().StringVar(&sortKey, "sort", string(tasks.SortDate), "date, priority or title")
	return cmd
}

func newDoneCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task between done and open",
		Args:  cobra.ExactArgs(1),
		RunE: withWorkspace(opts, func(cmd *cobra.Command, args []string, w *workspace) error {
			t, err := w.resolve(args[0])
			if err != nil {
				return err
			}
			w.store.ToggleCompletion(t.ID)
			t, _ = w.store.Get(t.ID)
			if t.Completed {
				ok(opts.out, "Completed "+t.Title)
			} else {
				ok(opts.out, "Reopened "+t.Title)
			}
			return nil
		}),
	}
}

func newEditCmd(opts *options) *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: withWorkspace(opts, func(cmd *cobra.Command, args []string, w *workspace) error {
			t, err := w.resolve(args[0])
			if err != nil {
				return err
			}

			var p tasks.Patch
			changed := cmd.Flags().Changed
			if changed("title") {
				p.Title = &f.title
			}
			if changed("category") {
				c, err := parseCategory(f.category)
				if err != nil {
					return err
				}
				p.Category = &c
			}
			if changed("priority") {
				pr, err := parsePriority(f.priority)
				if err != nil {
					return err
				}
				p.Priority = &pr
			}
			if changed("start") {
				d, err := parseDateFlag("start", f.start)
				if err != nil {
					return err
				}
				p.StartDate = &d
			}
			if changed("due") {
				d, err := parseDateFlag("due", f.due)
				if err != nil {
					return err
				}
				p.EndDate = &d
			}
			if changed("time") {
				p.EndTime = &f.dueTime
			}
			if changed("notes") {
				p.Notes = &f.notes
			}
			if changed("reminder") {
				p.Reminder = &f.reminder
			}

			w.store.Update(t.ID, p)
			t, _ = w.store.Get(t.ID)
			ok(opts.out, "Updated "+t.Title)
			return nil
		}),
	}
	f.register(cmd, true)
	return cmd
}

func newMoveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <date>",
		Short: "Move a task to another day",
		Args:  cobra.ExactArgs(2),
		RunE: withWorkspace(opts, func(cmd *cobra.Command, args []string, w *workspace) error {
			t, err := w.resolve(args[0])
			if err != nil {
				return err
			}
			d, err := tasks.ParseDate(args[1])
			if err != nil || d.IsZero() {
				return fmt.Errorf("invalid date %q: use YYYY-MM-DD", args[1])
			}
			w.store.MoveToDate(t.ID, d)
			ok(opts.out, fmt.Sprintf("Moved %s to %s", t.Title, d))
			return nil
		}),
	}
}

func newRemoveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: withWorkspace(opts, func(cmd *cobra.Command, args []string, w *workspace) error {
			t, err := w.resolve(args[0])
			if err != nil {
				return err
			}
			w.store.Delete(t.ID)
			ok(opts.out, "Deleted "+t.Title)
			return nil
		}),
	}
}

func newClearCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all completed tasks",
		Args:  cobra.NoArgs,
		RunE: withWorkspace(opts, func(cmd *cobra.Command, args []string, w *workspace) error {
			n := w.store.ClearCompleted()
			ok(opts.out, fmt.Sprintf("Removed %d completed task(s)", n))
			return nil
		}),
	}
}
