package core

import "testing"

func TestHasCycleFrom(t *testing.T) {
	tests := []struct {
		name  string
		edges map[int][]int
		root  int
		want  bool
	}{
		{
			name:  "no edges",
			edges: map[int][]int{},
			root:  1,
			want:  false,
		},
		{
			name:  "linear chain",
			edges: map[int][]int{1: {2}, 2: {3}},
			root:  1,
			want:  false,
		},
		{
			name:  "diamond is not a cycle",
			edges: map[int][]int{1: {2, 3}, 2: {4}, 3: {4}},
			root:  1,
			want:  false,
		},
		{
			name:  "self loop",
			edges: map[int][]int{1: {1}},
			root:  1,
			want:  true,
		},
		{
			name:  "two node cycle",
			edges: map[int][]int{1: {2}, 2: {1}},
			root:  1,
			want:  true,
		},
		{
			name:  "deep cycle back to root",
			edges: map[int][]int{1: {2}, 2: {3}, 3: {4}, 4: {1}},
			root:  1,
			want:  true,
		},
		{
			name:  "cycle elsewhere not reachable from root",
			edges: map[int][]int{1: {2}, 3: {4}, 4: {3}},
			root:  1,
			want:  false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := hasCycleFrom(tc.edges, tc.root); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
