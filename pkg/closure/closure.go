// Package closure computes deterministic topological closures over
// reference-based dependency graphs.
//
// A closure is the full transitive set of dependencies of one or more root
// objects, ordered so that every dependency appears before any object that
// depends on it. Traversal is a depth-first walk with a visited set keyed on
// object identity, so diamond dependencies are deduplicated silently and the
// output order is fully determined by the roots and the declared edge order.
//
// Cyclic graphs terminate (the visited set prevents re-traversal) but the
// topological property is violated for the cycle's members. Use
// [DetectCycle] before building the graph's consumers when acyclicity must
// be enforced.
package closure

import (
	"errors"
	"fmt"
)

// ErrCycle is returned by [DetectCycle] when the dependency graph contains
// a directed cycle.
var ErrCycle = errors.New("dependency graph contains a cycle")

// Dep is one declared dependency edge. An edge either points at a single
// node (Node set, Members nil) or at an aggregate that fans out to several
// nodes (Members set). Aggregate members are resolved in declared order.
type Dep[T comparable] struct {
	Node    T
	Members []T
}

// On returns a direct dependency edge on node.
func On[T comparable](node T) Dep[T] {
	return Dep[T]{Node: node}
}

// OnAll returns an aggregate dependency edge that fans out to members.
func OnAll[T comparable](members ...T) Dep[T] {
	return Dep[T]{Members: members}
}

// targets returns the nodes this edge resolves to, in declared order.
func (d Dep[T]) targets() []T {
	if d.Members != nil {
		return d.Members
	}
	return []T{d.Node}
}

// Closure returns the topological closure of roots: every transitively
// reachable object exactly once, dependencies before dependents. deps yields
// the direct dependency edges of an object in declared order.
//
// Revisiting an object through a diamond is expected and skipped silently.
// A cyclic input terminates but produces an order that is not topological
// for the cycle's members; callers that need acyclicity should run
// [DetectCycle] at graph construction time.
func Closure[T comparable](roots []T, deps func(T) []Dep[T]) []T {
	visited := make(map[T]bool)
	var order []T

	var visit func(n T)
	visit = func(n T) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, d := range deps(n) {
			for _, t := range d.targets() {
				visit(t)
			}
		}
		order = append(order, n)
	}

	for _, r := range roots {
		visit(r)
	}
	return order
}

// DetectCycle reports whether the graph reachable from roots contains a
// directed cycle, using depth-first search with white/gray/black coloring.
// Returns an error wrapping ErrCycle that names one representative cycle,
// nil otherwise.
func DetectCycle[T comparable](roots []T, deps func(T) []Dep[T]) error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[T]int)
	var stack, cycle []T

	var dfs func(n T) bool
	dfs = func(n T) bool {
		color[n] = gray
		stack = append(stack, n)
		for _, d := range deps(n) {
			for _, t := range d.targets() {
				switch color[t] {
				case white:
					if dfs(t) {
						return true
					}
				case gray:
					// The gray node is on the stack; everything from its
					// first occurrence onward forms the cycle.
					for i, s := range stack {
						if s == t {
							cycle = append(cycle, stack[i:]...)
							break
						}
					}
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = black
		return false
	}

	for _, r := range roots {
		if color[r] == white && dfs(r) {
			return fmt.Errorf("%w: %v", ErrCycle, cycle)
		}
	}
	return nil
}
