package constraint

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func TestActiveSetOverlapping(t *testing.T) {
	type span struct{ left, right int64 }
	spans := []span{{0, 10}, {5, 15}, {20, 30}, {20, 30}, {30, 30}, {-5, 0}}

	var s activeSet
	for i, sp := range spans {
		s.insert(i, sp.left, sp.right)
	}
	if s.size != len(spans) {
		t.Fatalf("size = %d, want %d", s.size, len(spans))
	}

	query := func(lo, hi int64) []int {
		var got []int
		_ = s.overlapping(lo, hi, func(c int) error {
			got = append(got, c)
			return nil
		})
		return got
	}

	tests := []struct {
		lo, hi int64
		want   []int
	}{
		{0, 0, []int{5, 0}},
		{12, 18, []int{1}},
		{25, 40, []int{2, 3, 4}},
		{16, 19, nil},
	}
	for _, tt := range tests {
		if got := query(tt.lo, tt.hi); !slices.Equal(got, tt.want) {
			t.Errorf("overlapping(%d, %d) = %v, want %v", tt.lo, tt.hi, got, tt.want)
		}
	}

	s.remove(2, 20)
	s.remove(2, 20)
	if got, want := query(25, 40), []int{3, 4}; !slices.Equal(got, want) {
		t.Errorf("after remove: overlapping = %v, want %v", got, want)
	}
	if s.size != len(spans)-1 {
		t.Errorf("size = %d, want %d", s.size, len(spans)-1)
	}
}

func TestActiveSetRandomized(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	lefts := make(map[int]int64)
	rights := make(map[int]int64)
	var s activeSet

	for step := range 2000 {
		if len(lefts) > 0 && rng.IntN(3) == 0 {
			for c, l := range lefts {
				s.remove(c, l)
				delete(lefts, c)
				delete(rights, c)
				break
			}
		} else {
			l := rng.Int64N(500)
			r := l + rng.Int64N(50)
			lefts[step], rights[step] = l, r
			s.insert(step, l, r)
		}

		lo := rng.Int64N(550)
		hi := lo + rng.Int64N(30)
		var got, want []int
		_ = s.overlapping(lo, hi, func(c int) error {
			got = append(got, c)
			return nil
		})
		for c, l := range lefts {
			if l <= hi && rights[c] >= lo {
				want = append(want, c)
			}
		}
		slices.Sort(got)
		slices.Sort(want)
		if !slices.Equal(got, want) {
			t.Fatalf("step %d: overlapping(%d, %d) = %v, want %v", step, lo, hi, got, want)
		}
		if s.size != len(lefts) {
			t.Fatalf("step %d: size = %d, want %d", step, s.size, len(lefts))
		}
	}
}
