package tasks

import (
	"reflect"
	"testing"
)

func ids(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func sampleTasks() []Task {
	return []Task{
		{ID: "1", Title: "Quarterly report", Category: CategoryWork, Priority: PriorityHigh, EndDate: MustDate("2024-05-20")},
		{ID: "2", Title: "Dentist", Category: CategoryPersonal, Priority: PriorityLow, Notes: "Bring the insurance CARD"},
		{ID: "3", Title: "New headphones", Category: CategoryWishlist, Priority: PriorityMedium, StartDate: MustDate("2024-05-18")},
		{ID: "4", Title: "Team sync", Category: "meetings", Priority: "urgent", StartDate: MustDate("2024-05-10")},
		{ID: "5", Title: "Groceries", Category: CategoryPersonal, Priority: PriorityHigh},
	}
}

func TestApplyCategoryFilter(t *testing.T) {
	all := sampleTasks()

	for _, c := range Categories() {
		for _, task := range Apply(all, Query{Category: string(c)}) {
			if task.Category != c {
				t.Errorf("Filter %q returned task %s with category %q", c, task.ID, task.Category)
			}
		}
	}
	if got := ids(Apply(all, Query{Category: string(CategoryPersonal)})); !reflect.DeepEqual(got, []string{"2", "5"}) {
		t.Errorf("Expected personal tasks [2 5], got %v", got)
	}

	// Unknown categories are not folded into work.
	if got := ids(Apply(all, Query{Category: string(CategoryWork)})); !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("Expected work tasks [1], got %v", got)
	}
	if got := ids(Apply(all, Query{Category: "meetings"})); !reflect.DeepEqual(got, []string{"4"}) {
		t.Errorf("Expected exact match on stored category, got %v", got)
	}
	if got := Apply(all, Query{Category: CategoryAll}); len(got) != len(all) {
		t.Errorf("Expected all to keep %d tasks, got %d", len(all), len(got))
	}
}

func TestApplySearch(t *testing.T) {
	all := sampleTasks()

	if got := ids(Apply(all, Query{Search: "REPORT"})); !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("Expected title match [1], got %v", got)
	}
	if got := ids(Apply(all, Query{Search: "insurance card"})); !reflect.DeepEqual(got, []string{"2"}) {
		t.Errorf("Expected notes match [2], got %v", got)
	}
	if got := Apply(all, Query{Search: "NonExistent"}); len(got) != 0 {
		t.Errorf("Expected no matches, got %v", ids(got))
	}
	if got := Apply(all, Query{Search: "  "}); len(got) != len(all) {
		t.Errorf("Expected blank search to match all, got %d", len(got))
	}

	both := Apply(all, Query{Category: string(CategoryPersonal), Search: "gro"})
	if got := ids(both); !reflect.DeepEqual(got, []string{"5"}) {
		t.Errorf("Expected category AND search to give [5], got %v", got)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	all := sampleTasks()
	before := ids(all)
	Apply(all, Query{Sort: SortTitle})
	Apply(all, Query{Sort: SortPriority})
	if got := ids(all); !reflect.DeepEqual(got, before) {
		t.Errorf("Expected input order %v to survive, got %v", before, got)
	}
}

func TestSortByDate(t *testing.T) {
	in := []Task{
		{ID: "a", EndDate: MustDate("2024-01-05")},
		{ID: "b"},
		{ID: "c", StartDate: MustDate("2024-01-03")},
		{ID: "d"},
		{ID: "e", StartDate: MustDate("2024-01-10"), EndDate: MustDate("2024-01-01")},
	}
	got := ids(Apply(in, Query{Sort: SortDate}))
	want := []string{"e", "c", "a", "b", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestSortByPriority(t *testing.T) {
	got := Apply(sampleTasks(), Query{Sort: SortPriority})
	if order := ids(got); !reflect.DeepEqual(order, []string{"1", "5", "3", "4", "2"}) {
		t.Errorf("Expected stable priority order [1 5 3 4 2], got %v", order)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Priority.Weight() < got[i].Priority.Weight() {
			t.Errorf("Priority order broken at %d: %s before %s", i, got[i-1].Priority, got[i].Priority)
		}
	}
}

func TestSortByTitle(t *testing.T) {
	in := []Task{
		{ID: "1", Title: "banana"},
		{ID: "2", Title: "Zebra Task"},
		{ID: "3", Title: "Apple Task"},
		{ID: "4", Title: "apple"},
	}
	once := Apply(in, Query{Sort: SortTitle})
	if got := ids(once); !reflect.DeepEqual(got, []string{"4", "3", "1", "2"}) {
		t.Errorf("Expected [4 3 1 2], got %v", got)
	}

	twice := Apply(once, Query{Sort: SortTitle})
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Expected title sort to be idempotent, got %v then %v", ids(once), ids(twice))
	}
}

func TestParseSortKey(t *testing.T) {
	for in, want := range map[string]SortKey{"": SortDate, "Priority": SortPriority, " title ": SortTitle} {
		got, err := ParseSortKey(in)
		if err != nil || got != want {
			t.Errorf("ParseSortKey(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseSortKey("created"); err == nil {
		t.Error("Expected error for unknown sort key")
	}
}
