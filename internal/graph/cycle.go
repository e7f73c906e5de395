package graph

// findCycle extracts one cycle path as kit ids, in dependency order,
// closed on its first id. The DFS walks canonical indices with sorted
// adjacency, so the same graph always yields the same witness.
func (g *Graph) findCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make([]int, len(g.kits))
	parent := make([]int, len(g.kits))
	for i := range parent {
		parent[i] = -1
	}

	var cycle []int

	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		for _, v := range g.outgoing[u] {
			if color[v] == white {
				parent[v] = u
				if dfs(v) {
					return true
				}
				continue
			}
			if color[v] == gray {
				// Back-edge u -> v closes a cycle. Walk parents from u
				// back to v to reconstruct it.
				cycle = append(cycle, v)
				cur := u
				for cur != -1 && cur != v {
					cycle = append(cycle, cur)
					cur = parent[cur]
				}
				cycle = append(cycle, v)
				return true
			}
		}
		color[u] = black
		return false
	}

	for i := 0; i < len(g.kits); i++ {
		if color[i] != white {
			continue
		}
		if dfs(i) {
			break
		}
	}

	if len(cycle) == 0 {
		return nil
	}

	// The parent walk collected the cycle back to front; reverse into
	// dependency order.
	out := make([]string, 0, len(cycle))
	for i := len(cycle) - 1; i >= 0; i-- {
		out = append(out, g.kits[cycle[i]].ID)
	}
	return out
}

// reaches reports whether `to` is reachable from `from` over the current
// adjacency. Used to test whether a candidate soft edge would close a
// cycle before committing it.
func (g *Graph) reaches(from, to int) bool {
	if from == to {
		return true
	}
	seen := make([]bool, len(g.kits))
	stack := []int{from}
	seen[from] = true
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, m := range g.outgoing[n] {
			if m == to {
				return true
			}
			if !seen[m] {
				seen[m] = true
				stack = append(stack, m)
			}
		}
	}
	return false
}
