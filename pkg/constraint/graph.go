package constraint

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnknownNode is returned by [Graph.AddEdge] when an endpoint is
	// outside [0, NodeCount).
	ErrUnknownNode = errors.New("unknown node")

	// ErrSelfLoop is returned by [Graph.AddEdge] when From equals To.
	ErrSelfLoop = errors.New("self loop")

	// ErrContradictoryEdge is returned by [Graph.AddEdge] when the reverse
	// edge already exists. Two pins cannot each lie below the other.
	ErrContradictoryEdge = errors.New("contradictory edge")

	// ErrGraphHasCycle is returned by [Graph.Validate] and [Graph.TopoOrder]
	// when a directed cycle exists.
	ErrGraphHasCycle = errors.New("constraint graph contains a cycle")
)

// Edge is an ordering constraint: From must lie at or below To.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (e Edge) String() string { return fmt.Sprintf("%d->%d", e.From, e.To) }

// Graph is a directed graph over pins 0..n-1. The zero value is an empty
// graph with no nodes; use [New].
type Graph struct {
	labels   []string
	edges    []Edge
	outgoing [][]int
	incoming [][]int
	index    map[Edge]struct{}
}

// New returns a graph with n nodes and no edges.
func New(n int) *Graph {
	return &Graph{
		labels:   make([]string, n),
		outgoing: make([][]int, n),
		incoming: make([][]int, n),
		index:    make(map[Edge]struct{}),
	}
}

// SetLabel attaches a display name to node i. Out of range IDs are ignored.
func (g *Graph) SetLabel(i int, label string) {
	if i >= 0 && i < len(g.labels) {
		g.labels[i] = label
	}
}

// Label returns the display name of node i, or its decimal ID when unset.
func (g *Graph) Label(i int) string {
	if i >= 0 && i < len(g.labels) && g.labels[i] != "" {
		return g.labels[i]
	}
	return fmt.Sprint(i)
}

// AddEdge adds from → to. Adding an existing edge is a no-op.
func (g *Graph) AddEdge(from, to int) error {
	n := len(g.outgoing)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: %d->%d", ErrUnknownNode, from, to)
	}
	if from == to {
		return fmt.Errorf("%w: %s", ErrSelfLoop, g.Label(from))
	}
	e := Edge{From: from, To: to}
	if _, ok := g.index[e]; ok {
		return nil
	}
	if _, ok := g.index[Edge{From: to, To: from}]; ok {
		return fmt.Errorf("%w: %s->%s", ErrContradictoryEdge, g.Label(from), g.Label(to))
	}
	g.index[e] = struct{}{}
	g.edges = append(g.edges, e)
	g.outgoing[from] = append(g.outgoing[from], to)
	g.incoming[to] = append(g.incoming[to], from)
	return nil
}

// HasEdge reports whether from → to exists.
func (g *Graph) HasEdge(from, to int) bool {
	_, ok := g.index[Edge{From: from, To: to}]
	return ok
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.outgoing) }

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Children returns the nodes that must lie at or above i.
func (g *Graph) Children(i int) []int { return g.outgoing[i] }

// Parents returns the nodes that must lie at or below i.
func (g *Graph) Parents(i int) []int { return g.incoming[i] }

// Validate returns an error wrapping ErrGraphHasCycle if the graph is not
// acyclic. The message names the nodes on the first cycle found.
//
// Cycle detection runs in O(N+E) time using depth-first search.
func (g *Graph) Validate() error {
	if cycle := g.FindCycle(); cycle != nil {
		names := make([]string, len(cycle))
		for i, id := range cycle {
			names[i] = g.Label(id)
		}
		return fmt.Errorf("%w: %v", ErrGraphHasCycle, names)
	}
	return nil
}

// FindCycle returns the nodes of one directed cycle in path order, or nil if
// the graph is acyclic. Nodes are explored in ascending ID order so the
// result is deterministic.
func (g *Graph) FindCycle() []int {
	const (
		white = iota
		gray
		black
	)

	n := len(g.outgoing)
	color := make([]int, n)
	parent := make([]int, n)
	var cycle []int

	var dfs func(id int) bool
	dfs = func(id int) bool {
		color[id] = gray
		for _, child := range g.outgoing[id] {
			switch color[child] {
			case white:
				parent[child] = id
				if dfs(child) {
					return true
				}
			case gray:
				cycle = []int{child}
				for v := id; v != child; v = parent[v] {
					cycle = append(cycle, v)
				}
				slices.Reverse(cycle[1:])
				return true
			}
		}
		color[id] = black
		return false
	}

	for id := range n {
		if color[id] == white && dfs(id) {
			return cycle
		}
	}
	return nil
}

// Levels assigns each node its longest-path depth from a source (a node
// with no parents sits at level 0). It uses Kahn's algorithm and returns
// ErrGraphHasCycle if some nodes never become ready.
func (g *Graph) Levels() ([]int, error) {
	_, levels, err := g.kahn()
	return levels, err
}

// TopoOrder returns the nodes in a bottom-to-top order consistent with every
// edge. The order is deterministic for a given edge insertion order.
func (g *Graph) TopoOrder() ([]int, error) {
	order, _, err := g.kahn()
	return order, err
}

func (g *Graph) kahn() ([]int, []int, error) {
	n := len(g.outgoing)
	inDegree := make([]int, n)
	levels := make([]int, n)
	queue := make([]int, 0, n)

	for id := range n {
		inDegree[id] = len(g.incoming[id])
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]int, 0, n)
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		order = append(order, curr)

		for _, child := range g.outgoing[curr] {
			if lvl := levels[curr] + 1; lvl > levels[child] {
				levels[child] = lvl
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if len(order) != n {
		return nil, nil, ErrGraphHasCycle
	}
	return order, levels, nil
}
