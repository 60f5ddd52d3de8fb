package schedule

import "testing"

func TestFirstWindow(t *testing.T) {
	cases := []struct {
		name   string
		mask   []bool
		n      int
		offset int
		found  bool
	}{
		{
			name:   "window after leading block",
			mask:   []bool{false, false, false, false, true, true},
			n:      2,
			offset: 4,
			found:  true,
		},
		{
			name:   "leading run too short",
			mask:   []bool{true, true, false, false, true, true, true},
			n:      3,
			offset: 4,
			found:  true,
		},
		{
			name:   "leading run long enough",
			mask:   []bool{true, true, true, false, true},
			n:      3,
			offset: 0,
			found:  true,
		},
		{
			name:  "no window",
			mask:  []bool{true, false, true, false, true},
			n:     2,
			found: false,
		},
		{
			name:   "all true exactly fits",
			mask:   []bool{true, true, true},
			n:      3,
			offset: 0,
			found:  true,
		},
		{
			name:  "all true but too short",
			mask:  []bool{true, true},
			n:     3,
			found: false,
		},
		{
			name:  "empty mask",
			mask:  nil,
			n:     1,
			found: false,
		},
		{
			name:   "zero length requirement",
			mask:   []bool{false, false},
			n:      0,
			offset: 0,
			found:  true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			offset, found := FirstWindow(tc.mask, tc.n)
			if found != tc.found {
				t.Fatalf("found = %v, want %v", found, tc.found)
			}
			if !found {
				return
			}
			if offset != tc.offset {
				t.Fatalf("offset = %d, want %d", offset, tc.offset)
			}
			for i := offset; i < offset+tc.n; i++ {
				if !tc.mask[i] {
					t.Fatalf("mask[%d] is false inside the returned window", i)
				}
			}
		})
	}
}

func TestFragments(t *testing.T) {
	cases := []struct {
		name  string
		mask  []bool
		n     int
		want  []Fragment
		found bool
	}{
		{
			name:  "blocked then exact active",
			mask:  []bool{false, false, false, true, true},
			n:     2,
			want:  []Fragment{{Steps: 3}, {Steps: 2, Active: true}},
			found: true,
		},
		{
			name:  "exhausted before requirement",
			mask:  []bool{false, false, false, true, true},
			n:     3,
			want:  []Fragment{{Steps: 3}, {Steps: 2, Active: true}},
			found: false,
		},
		{
			name: "interleaved runs",
			mask: []bool{true, true, false, true, true, true, false, true},
			n:    6,
			want: []Fragment{
				{Steps: 2, Active: true},
				{Steps: 1},
				{Steps: 3, Active: true},
				{Steps: 1},
				{Steps: 1, Active: true},
			},
			found: true,
		},
		{
			name:  "final active run truncated",
			mask:  []bool{false, true, true, true, true},
			n:     2,
			want:  []Fragment{{Steps: 1}, {Steps: 2, Active: true}},
			found: true,
		},
		{
			name:  "starts active",
			mask:  []bool{true, true, true},
			n:     3,
			want:  []Fragment{{Steps: 3, Active: true}},
			found: true,
		},
		{
			name:  "empty mask",
			mask:  nil,
			n:     1,
			found: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, found := Fragments(tc.mask, tc.n)
			if found != tc.found {
				t.Fatalf("found = %v, want %v", found, tc.found)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("fragments = %+v, want %+v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("fragment %d = %+v, want %+v", i, got[i], tc.want[i])
				}
			}
			if !found {
				return
			}
			active := 0
			for _, f := range got {
				if f.Active {
					active += f.Steps
				}
			}
			if active != tc.n {
				t.Fatalf("active steps = %d, want exactly %d", active, tc.n)
			}
		})
	}
}

func TestFragmentsConsumedMatchesMaskPrefix(t *testing.T) {
	mask := []bool{false, true, false, false, true, true, true, false, true}
	fragments, found := Fragments(mask, 4)
	if !found {
		t.Fatalf("expected accumulation to succeed")
	}
	// 1 blocked + 1 active + 2 blocked + 3 active = 7 positions consumed.
	if got := Consumed(fragments); got != 7 {
		t.Fatalf("consumed = %d, want 7", got)
	}
}
