package analysis

import "fmt"

// Graph is a directed graph over a comparable key type, used for both the
// validator's DFS cycle check (section 4.1.4) and the evaluator's Kahn's-
// algorithm topological planner (section 4.2.2) — the two components share
// this type so "a cycle" means the same thing in both places.
type Graph[K comparable] struct {
	order []K
	seen  map[K]bool
	edges map[K][]K
}

func NewGraph[K comparable]() *Graph[K] {
	return &Graph[K]{seen: map[K]bool{}, edges: map[K][]K{}}
}

// AddNode registers a node with no edges, so isolated nodes still appear in
// topological order and in Nodes().
func (g *Graph[K]) AddNode(n K) {
	if !g.seen[n] {
		g.seen[n] = true
		g.order = append(g.order, n)
	}
}

// AddEdge records a directed edge from → to; TopoSort places from before to.
// BuildRuleGraph adds edges from a dependency to the rule that references it.
func (g *Graph[K]) AddEdge(from, to K) {
	g.AddNode(from)
	g.AddNode(to)
	g.edges[from] = append(g.edges[from], to)
}

func (g *Graph[K]) Nodes() []K { return g.order }

func (g *Graph[K]) Edges(n K) []K { return g.edges[n] }

// CycleError reports the first cycle found, as a sequence of nodes.
type CycleError[K any] struct {
	Path []K
}

func (e *CycleError[K]) Error() string {
	return fmt.Sprintf("cyclic dependency: %v", e.Path)
}

const (
	white = 0
	gray  = 1
	black = 2
)

// DetectCycle runs a DFS-based cycle check (section 4.1.4), bounded by
// maxDepth recursion (section 5: "the validator's DFS for cycle detection
// is bounded by the same depth of the rule graph"). Returns the first cycle
// found, naming the path from the cycle's entry point back to itself.
func (g *Graph[K]) DetectCycle(maxDepth int) *CycleError[K] {
	color := make(map[K]int, len(g.order))
	var path []K
	var cycle []K

	var visit func(n K, depth int) bool
	visit = func(n K, depth int) bool {
		if depth > maxDepth {
			// Depth-bounded: treat as non-cyclic at the cutoff; a
			// genuinely pathological graph will still be caught by the
			// evaluator's own depth limit at evaluation time.
			return false
		}
		color[n] = gray
		path = append(path, n)
		for _, m := range g.edges[n] {
			switch color[m] {
			case white:
				if visit(m, depth+1) {
					return true
				}
			case gray:
				start := 0
				for i, p := range path {
					if p == m {
						start = i
						break
					}
				}
				cycle = append(append([]K{}, path[start:]...), m)
				return true
			}
		}
		path = path[:len(path)-1]
		color[n] = black
		return false
	}

	for _, n := range g.order {
		if color[n] == white {
			if visit(n, 0) {
				return &CycleError[K]{Path: cycle}
			}
		}
	}
	return nil
}

// TopoSort runs Kahn's algorithm (section 4.2.2). The order of ties is the
// insertion order of AddNode/AddEdge, for deterministic scheduling. Returns
// an error if a cycle remains (should not happen after validation).
func (g *Graph[K]) TopoSort() ([]K, error) {
	inDegree := make(map[K]int, len(g.order))
	for _, n := range g.order {
		inDegree[n] = 0
	}
	for _, n := range g.order {
		for _, m := range g.edges[n] {
			inDegree[m]++
		}
	}

	var queue []K
	for _, n := range g.order {
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	var result []K
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		result = append(result, n)
		for _, m := range g.edges[n] {
			inDegree[m]--
			if inDegree[m] == 0 {
				queue = append(queue, m)
			}
		}
	}

	if len(result) != len(g.order) {
		return nil, fmt.Errorf("analysis: graph has a cycle, cannot topologically sort")
	}
	return result, nil
}
