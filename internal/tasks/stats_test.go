package tasks

import (
	"reflect"
	"testing"
)

// 2024-05-15 is a Wednesday.
var refDay = MustDate("2024-05-15")

func TestComputeEmpty(t *testing.T) {
	st := Compute(nil, refDay)

	if st.Total != 0 || st.CompletedCount != 0 || st.PendingCount != 0 {
		t.Errorf("Expected zero counts, got %+v", st)
	}
	if len(st.DailySeries) != SeriesDays {
		t.Fatalf("Expected %d series entries, got %d", SeriesDays, len(st.DailySeries))
	}
	for _, day := range st.DailySeries {
		if day.Total != 0 || day.Completed != 0 || day.Rate != 0 {
			t.Errorf("Expected empty slot, got %+v", day)
		}
	}
	if st.TodayCompletionRate != 0 {
		t.Errorf("Expected 0 today rate, got %d", st.TodayCompletionRate)
	}
	if len(st.CategoryPending) != 3 {
		t.Errorf("Expected one pending count per category, got %v", st.CategoryPending)
	}
}

func TestDailySeriesLabelsAndOrder(t *testing.T) {
	series := DailySeries(nil, refDay)

	labels := make([]string, len(series))
	for i, day := range series {
		labels[i] = day.Label
	}
	want := []string{"Th", "Fr", "Sa", "Su", "Mo", "Tu", "We"}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("Expected labels %v, got %v", want, labels)
	}
	if series[0].Date != MustDate("2024-05-09") || series[6].Date != refDay {
		t.Errorf("Expected window 2024-05-09..2024-05-15, got %s..%s", series[0].Date, series[6].Date)
	}
}

func TestComputeYesterdayDoesNotAffectToday(t *testing.T) {
	tasks := []Task{{ID: "1", EndDate: refDay.AddDays(-1)}}
	st := Compute(tasks, refDay)

	if st.TodayCompletionRate != 0 {
		t.Errorf("Expected today rate 0, got %d", st.TodayCompletionRate)
	}
	today := st.DailySeries[6]
	if today.Total != 0 {
		t.Errorf("Expected nothing in today's slot, got %+v", today)
	}
	yesterday := st.DailySeries[5]
	if yesterday.Total != 1 || yesterday.Completed != 0 || yesterday.Rate != 0 {
		t.Errorf("Expected yesterday {1 0 0}, got %+v", yesterday)
	}
}

func TestComputeTomorrowIsUpcomingNotOverdue(t *testing.T) {
	task := Task{ID: "1", EndDate: refDay.AddDays(1)}
	st := Compute([]Task{task}, refDay)

	if len(st.Upcoming) != 1 || st.Upcoming[0].ID != "1" {
		t.Errorf("Expected task in upcoming window, got %v", ids(st.Upcoming))
	}
	if status := DueStatusOf(task, refDay); status == DueOverdue {
		t.Error("Expected tomorrow's task not to be overdue")
	}
}

func TestComputeUpcomingWindowBounds(t *testing.T) {
	tasks := []Task{
		{ID: "before", StartDate: refDay.AddDays(-1)},
		{ID: "today", StartDate: refDay},
		{ID: "last", EndDate: refDay.AddDays(7)},
		{ID: "after", StartDate: refDay.AddDays(8)},
		{ID: "undated"},
		{ID: "start-wins", StartDate: refDay.AddDays(-3), EndDate: refDay.AddDays(2)},
	}
	st := Compute(tasks, refDay)
	if got := ids(st.Upcoming); !reflect.DeepEqual(got, []string{"today", "last"}) {
		t.Errorf("Expected [today last], got %v", got)
	}
}

func TestComputeCountsAndRates(t *testing.T) {
	tasks := []Task{
		{ID: "1", Category: CategoryWork, StartDate: refDay, Completed: true},
		{ID: "2", Category: CategoryWork, StartDate: refDay},
		{ID: "3", Category: CategoryPersonal, EndDate: refDay, Completed: true},
		{ID: "4", Category: "errands", StartDate: refDay.AddDays(-2), Completed: true},
		{ID: "5", Category: CategoryWishlist},
		{ID: "6", Category: CategoryPersonal, StartDate: refDay.AddDays(-2)},
		{ID: "7", Category: CategoryPersonal, StartDate: refDay.AddDays(-2)},
	}
	st := Compute(tasks, refDay)

	if st.CompletedCount+st.PendingCount != st.Total || st.Total != len(tasks) {
		t.Errorf("Expected completed+pending == total, got %+v", st)
	}
	if st.CompletedCount != 3 || st.PendingCount != 4 {
		t.Errorf("Expected 3 completed and 4 pending, got %d and %d", st.CompletedCount, st.PendingCount)
	}

	want := []CategoryCount{
		{Category: CategoryWork, Pending: 1},
		{Category: CategoryPersonal, Pending: 2},
		{Category: CategoryWishlist, Pending: 1},
	}
	if !reflect.DeepEqual(st.CategoryPending, want) {
		t.Errorf("Expected %v, got %v", want, st.CategoryPending)
	}

	today := st.DailySeries[6]
	if today.Total != 3 || today.Completed != 2 || today.Rate != 67 {
		t.Errorf("Expected today {3 2 67}, got %+v", today)
	}
	if st.TodayCompletionRate != 67 {
		t.Errorf("Expected today rate 67, got %d", st.TodayCompletionRate)
	}
	twoAgo := st.DailySeries[4]
	if twoAgo.Total != 3 || twoAgo.Completed != 1 || twoAgo.Rate != 33 {
		t.Errorf("Expected two days ago {3 1 33}, got %+v", twoAgo)
	}
}

func TestComputeDeterministic(t *testing.T) {
	tasks := sampleTasks()
	a := Compute(tasks, refDay)
	b := Compute(tasks, refDay)
	if !reflect.DeepEqual(a, b) {
		t.Error("Expected identical output for identical input")
	}
}

func TestDueStatusOf(t *testing.T) {
	cases := []struct {
		name string
		task Task
		want DueStatus
	}{
		{"overdue", Task{EndDate: refDay.AddDays(-1)}, DueOverdue},
		{"due today", Task{EndDate: refDay}, DueSoon},
		{"due tomorrow", Task{EndDate: refDay.AddDays(1)}, DueSoon},
		{"later", Task{EndDate: refDay.AddDays(2)}, DueNone},
		{"completed", Task{EndDate: refDay.AddDays(-1), Completed: true}, DueNone},
		{"start date only", Task{StartDate: refDay.AddDays(-5)}, DueNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DueStatusOf(tc.task, refDay); got != tc.want {
				t.Errorf("Expected %s, got %s", tc.want, got)
			}
		})
	}
}
