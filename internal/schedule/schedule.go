// Package schedule holds the pure search routines that decide when a gated
// operation may run against a boolean feasibility mask. Offsets and lengths
// are in whole forecast steps; the functions never look at the clock and are
// safe to call repeatedly with the same inputs.
package schedule

// FirstWindow returns the offset of the first contiguous run of true values
// of length at least n, or found == false when no such run exists before the
// mask ends. An offset of zero means the operation can start immediately;
// callers must not conflate that with the not-found case.
func FirstWindow(mask []bool, n int) (offset int, found bool) {
	if n <= 0 {
		return 0, true
	}
	run := 0
	for i, ok := range mask {
		if !ok {
			run = 0
			continue
		}
		run++
		if run == n {
			return i - n + 1, true
		}
	}
	return 0, false
}

// Fragment is one maximal run consumed while accumulating active time for an
// interruptible operation.
type Fragment struct {
	// Steps is the whole number of time steps the fragment spans.
	Steps int
	// Active reports whether the fragment counts toward the required
	// duration (true) or is a blocked delay (false).
	Active bool
}

// Fragments partitions the mask into maximal same-valued runs and walks them
// in time order until n active steps have accumulated. Blocked runs are
// consumed whole; the final active run is truncated to whatever remains of
// the requirement. When the mask ends before n active steps are available,
// found is false and the returned fragments cover the entire mask examined.
//
// On success the active fragment steps sum to exactly n, and the total of all
// fragment steps equals the number of mask positions consumed.
func Fragments(mask []bool, n int) (fragments []Fragment, found bool) {
	if n <= 0 {
		return nil, true
	}
	remaining := n
	i := 0
	for i < len(mask) {
		value := mask[i]
		length := 0
		for i < len(mask) && mask[i] == value {
			length++
			i++
		}
		if !value {
			fragments = append(fragments, Fragment{Steps: length})
			continue
		}
		if length >= remaining {
			fragments = append(fragments, Fragment{Steps: remaining, Active: true})
			return fragments, true
		}
		fragments = append(fragments, Fragment{Steps: length, Active: true})
		remaining -= length
	}
	return fragments, false
}

// Consumed sums the steps of every fragment in the list.
func Consumed(fragments []Fragment) int {
	total := 0
	for _, f := range fragments {
		total += f.Steps
	}
	return total
}
