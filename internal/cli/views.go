package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"focusflow/internal/tasks"
)

func newCalendarCmd(opts *options) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show tasks by day (this week by default)",
		Args:  cobra.NoArgs,
		RunE: withWorkspace(opts, func(cmd *cobra.Command, args []string, w *workspace) error {
			today := tasks.DateOf(opts.now())
			start, end := today, today.AddDays(6)
			var err error
			if from != "" {
				if start, err = parseDateFlag("from", from); err != nil {
					return err
				}
			}
			if to != "" {
				if end, err = parseDateFlag("to", to); err != nil {
					return err
				}
			}
			if end.Before(start) {
				return fmt.Errorf("--to %s is before --from %s", end, start)
			}
			if start.DaysUntil(end) > 366 {
				return fmt.Errorf("range is longer than a year")
			}

			idx := tasks.IndexByDate(w.store.Snapshot())
			for d := start; !d.After(end); d = d.AddDays(1) {
				head := fmt.Sprintf("%s %s", tasks.WeekdayLabel(d), d)
				if d == today {
					head = accentStyle.Render(head + " (today)")
				} else {
					head = titleStyle.Render(head)
				}
				day := idx.On(d)
				fmt.Fprintf(opts.out, "%s %s\n", head, mutedStyle.Render(fmt.Sprintf("[%d]", len(day))))
				for _, t := range day {
					fmt.Fprintln(opts.out, "  "+taskLine(t, today))
				}
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&from, "from", "", "First day (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&to, "to", "", "Last day (YYYY-MM-DD, default today+6)")
	return cmd
}

func newStatsCmd(opts *options) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show completion statistics",
		Args:  cobra.NoArgs,
		RunE: withWorkspace(opts, func(cmd *cobra.Command, args []string, w *workspace) error {
			ref := tasks.DateOf(opts.now())
			if date != "" {
				d, err := parseDateFlag("date", date)
				if err != nil {
					return err
				}
				ref = d
			}
			st := tasks.Compute(w.store.Snapshot(), ref)

			lines := []string{
				titleStyle.Render("Profile · " + ref.String()),
				fmt.Sprintf("Total %d   %s   %s",
					st.Total,
					successStyle.Render(fmt.Sprintf("Completed %d", st.CompletedCount)),
					pendingStyle.Render(fmt.Sprintf("Pending %d", st.PendingCount))),
				"",
				titleStyle.Render("Pending by category"),
			}
			for _, c := range st.CategoryPending {
				lines = append(lines, fmt.Sprintf("  %-9s %d", categoryStyles[c.Category].Render(string(c.Category)), c.Pending))
			}

			lines = append(lines, "", titleStyle.Render("Last 7 days"))
			for _, d := range st.DailySeries {
				lines = append(lines, fmt.Sprintf("  %s %s %3d%% %s",
					d.Label, progressBar(d.Completed, d.Total, 20), d.Rate,
					mutedStyle.Render(fmt.Sprintf("%d/%d", d.Completed, d.Total))))
			}
			lines = append(lines, "", fmt.Sprintf("Today's completion: %s", accentStyle.Render(fmt.Sprintf("%d%%", st.TodayCompletionRate))))

			lines = append(lines, "", titleStyle.Render(fmt.Sprintf("Upcoming (%d)", len(st.Upcoming))))
			for _, t := range st.Upcoming {
				lines = append(lines, "  "+taskLine(t, ref))
			}

			panel(opts.out, []string{strings.Join(lines, "\n")})
			return nil
		}),
	}
	cmd.Flags().StringVar(&date, "date", "", "Reference day (YYYY-MM-DD, default today)")
	return cmd
}
