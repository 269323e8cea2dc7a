package tasks

// DateIndex maps YYYY-MM-DD to the tasks anchored on that day, each bucket
// in collection order.
type DateIndex map[string][]Task

// IndexByDate buckets tasks by anchor date. Dateless tasks are left out.
func IndexByDate(tasks []Task) DateIndex {
	idx := make(DateIndex)
	for _, t := range tasks {
		d, ok := t.AnchorDate()
		if !ok {
			continue
		}
		key := d.String()
		idx[key] = append(idx[key], t)
	}
	return idx
}

// On returns the bucket for d (nil when empty).
func (idx DateIndex) On(d Date) []Task {
	return idx[d.String()]
}

// CountOn is the per-day badge count shown on a calendar tile.
func (idx DateIndex) CountOn(d Date) int {
	return len(idx[d.String()])
}

// Range returns the non-empty buckets for every day in [from, to].
func (idx DateIndex) Range(from, to Date) DateIndex {
	out := make(DateIndex)
	for d := from; !d.After(to); d = d.AddDays(1) {
		if bucket := idx.On(d); len(bucket) > 0 {
			out[d.String()] = bucket
		}
	}
	return out
}
