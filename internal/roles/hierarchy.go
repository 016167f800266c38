package roles

import "sort"

// InheritedRoles returns every role reachable from role through inheritance edges,
// not including role itself. The result is computed once when the catalog is built.
func (c *Catalog) InheritedRoles(role PlatformRole) ([]PlatformRole, error) {
	inh, ok := c.inherited[role]
	if !ok {
		return nil, &UnknownRoleError{Code: role.String()}
	}
	return append([]PlatformRole(nil), inh...), nil
}

// Inherits reports whether role holds everything ancestor holds.
func (c *Catalog) Inherits(role, ancestor PlatformRole) (bool, error) {
	inh, ok := c.inherited[role]
	if !ok {
		return false, &UnknownRoleError{Code: role.String()}
	}
	if _, ok := c.platform[ancestor]; !ok {
		return false, &UnknownRoleError{Code: ancestor.String()}
	}
	for _, r := range inh {
		if r == ancestor {
			return true, nil
		}
	}
	return false, nil
}

// reachable walks inheritance edges breadth-first from start's direct parents.
// The visited set keeps the walk finite even on a graph findCycle would reject.
func reachable(graph map[PlatformRole]PlatformRoleMetadata, start PlatformRole) []PlatformRole {
	visited := map[PlatformRole]bool{start: true}
	queue := append([]PlatformRole(nil), graph[start].InheritsFrom...)
	var out []PlatformRole
	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]
		if visited[r] {
			continue
		}
		visited[r] = true
		out = append(out, r)
		queue = append(queue, graph[r].InheritsFrom...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// findCycle returns one inheritance cycle as a path that starts and ends on the
// same role, or nil if the graph is acyclic.
func findCycle(graph map[PlatformRole]PlatformRoleMetadata) []PlatformRole {
	const (
		white = iota
		grey
		black
	)
	color := make(map[PlatformRole]int, len(graph))
	var stack []PlatformRole
	var cycle []PlatformRole

	var visit func(r PlatformRole) bool
	visit = func(r PlatformRole) bool {
		color[r] = grey
		stack = append(stack, r)
		for _, parent := range graph[r].InheritsFrom {
			switch color[parent] {
			case grey:
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i] == parent {
						cycle = append(append([]PlatformRole(nil), stack[i:]...), parent)
						return true
					}
				}
			case white:
				if visit(parent) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[r] = black
		return false
	}

	// Deterministic start order so the reported cycle is stable.
	starts := make([]PlatformRole, 0, len(graph))
	for r := range graph {
		starts = append(starts, r)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].String() < starts[j].String() })
	for _, r := range starts {
		if color[r] == white && visit(r) {
			return cycle
		}
	}
	return nil
}
