package closure

import (
	"errors"
	"slices"
	"testing"
)

// node is a minimal identity-bearing graph object for tests.
type node struct {
	name string
	deps []Dep[*node]
}

func edges(n *node) []Dep[*node] { return n.deps }

func names(order []*node) []string {
	out := make([]string, len(order))
	for i, n := range order {
		out[i] = n.name
	}
	return out
}

func TestClosure(t *testing.T) {
	tests := []struct {
		name  string
		build func() []*node // returns roots
		want  []string
	}{
		{
			name: "SingleNode",
			build: func() []*node {
				return []*node{{name: "a"}}
			},
			want: []string{"a"},
		},
		{
			name: "Chain",
			build: func() []*node {
				a := &node{name: "a"}
				b := &node{name: "b", deps: []Dep[*node]{On(a)}}
				c := &node{name: "c", deps: []Dep[*node]{On(b)}}
				return []*node{c}
			},
			want: []string{"a", "b", "c"},
		},
		{
			name: "DiamondDeclaredOrder",
			build: func() []*node {
				a := &node{name: "a"}
				b := &node{name: "b", deps: []Dep[*node]{On(a)}}
				c := &node{name: "c", deps: []Dep[*node]{On(a)}}
				d := &node{name: "d", deps: []Dep[*node]{On(b), On(c)}}
				return []*node{d}
			},
			want: []string{"a", "b", "c", "d"},
		},
		{
			name: "DiamondReversedEdges",
			build: func() []*node {
				a := &node{name: "a"}
				b := &node{name: "b", deps: []Dep[*node]{On(a)}}
				c := &node{name: "c", deps: []Dep[*node]{On(a)}}
				d := &node{name: "d", deps: []Dep[*node]{On(c), On(b)}}
				return []*node{d}
			},
			want: []string{"a", "c", "b", "d"},
		},
		{
			name: "AggregateFanOut",
			build: func() []*node {
				a := &node{name: "a"}
				b := &node{name: "b"}
				c := &node{name: "c", deps: []Dep[*node]{OnAll(a, b)}}
				return []*node{c}
			},
			want: []string{"a", "b", "c"},
		},
		{
			name: "MultipleRoots",
			build: func() []*node {
				a := &node{name: "a"}
				b := &node{name: "b", deps: []Dep[*node]{On(a)}}
				c := &node{name: "c", deps: []Dep[*node]{On(a)}}
				return []*node{b, c}
			},
			want: []string{"a", "b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(Closure(tt.build(), edges))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Closure = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClosureNoDuplicates(t *testing.T) {
	a := &node{name: "a"}
	b := &node{name: "b", deps: []Dep[*node]{On(a), On(a)}}
	c := &node{name: "c", deps: []Dep[*node]{On(a), On(b), OnAll(a, b)}}

	got := names(Closure([]*node{c}, edges))
	if !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Closure = %v, want [a b c]", got)
	}
}

func TestClosureIdenticalTwinsAreDistinct(t *testing.T) {
	// Two structurally identical nodes are separate objects and must both
	// appear: identity, not attribute equality, keys the visited set.
	t1 := &node{name: "twin"}
	t2 := &node{name: "twin"}
	root := &node{name: "root", deps: []Dep[*node]{On(t1), On(t2)}}

	got := Closure([]*node{root}, edges)
	if len(got) != 3 {
		t.Fatalf("closure has %d nodes, want 3", len(got))
	}
}

func TestClosureCycleTerminates(t *testing.T) {
	a := &node{name: "a"}
	b := &node{name: "b", deps: []Dep[*node]{On(a)}}
	a.deps = []Dep[*node]{On(b)}

	got := Closure([]*node{a}, edges)
	if len(got) != 2 {
		t.Fatalf("closure has %d nodes, want 2", len(got))
	}
}

func TestDetectCycle(t *testing.T) {
	t.Run("Acyclic", func(t *testing.T) {
		a := &node{name: "a"}
		b := &node{name: "b", deps: []Dep[*node]{On(a)}}
		c := &node{name: "c", deps: []Dep[*node]{On(a), On(b)}}
		if err := DetectCycle([]*node{c}, edges); err != nil {
			t.Errorf("DetectCycle = %v, want nil", err)
		}
	})

	t.Run("DirectCycle", func(t *testing.T) {
		a := &node{name: "a"}
		a.deps = []Dep[*node]{On(a)}
		if err := DetectCycle([]*node{a}, edges); !errors.Is(err, ErrCycle) {
			t.Errorf("DetectCycle = %v, want ErrCycle", err)
		}
	})

	t.Run("IndirectCycle", func(t *testing.T) {
		a := &node{name: "a"}
		b := &node{name: "b", deps: []Dep[*node]{On(a)}}
		c := &node{name: "c", deps: []Dep[*node]{On(b)}}
		a.deps = []Dep[*node]{On(c)}
		if err := DetectCycle([]*node{a}, edges); !errors.Is(err, ErrCycle) {
			t.Errorf("DetectCycle = %v, want ErrCycle", err)
		}
	})

	t.Run("CycleThroughAggregate", func(t *testing.T) {
		a := &node{name: "a"}
		b := &node{name: "b", deps: []Dep[*node]{OnAll(a)}}
		a.deps = []Dep[*node]{On(b)}
		if err := DetectCycle([]*node{a}, edges); !errors.Is(err, ErrCycle) {
			t.Errorf("DetectCycle = %v, want ErrCycle", err)
		}
	})
}
