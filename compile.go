// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

// compile culls passes and resources nothing depends on and computes where
// each resource's lifetime starts and ends.
//
// Culling is reference counting over the producer/consumer graph: a pass
// counts the resources it writes, a resource counts the passes reading it
// plus one if it is preserved.
// Resources nobody reads seed a stack; popping one releases a reference on
// each producer, and a producer dropping to zero is dead unless preserved,
// which in turn releases the resources it reads.
func (g *Graph) compile() {
	for i := range g.passes {
		g.passes[i].refCount = len(g.passes[i].writes)
	}
	for i := range g.resources {
		r := &g.resources[i]
		r.refCount = len(r.consumers)
		if r.preserved {
			r.refCount++
		}
	}

	var unused []int
	for i := range g.resources {
		if g.resources[i].refCount == 0 {
			unused = append(unused, i)
		}
	}

	for len(unused) > 0 {
		r := unused[len(unused)-1]
		unused = unused[:len(unused)-1]

		for _, pi := range g.resources[r].producers {
			p := &g.passes[pi]
			p.refCount--
			if p.refCount > 0 || p.preserved {
				continue
			}
			unused = g.releaseReads(p, unused)
		}
	}

	g.computeLifetimes()
}

func (g *Graph) releaseReads(p *passNode, unused []int) []int {
	for _, rd := range p.reads {
		res := &g.resources[rd.resource]
		res.refCount--
		if res.refCount == 0 {
			unused = append(unused, rd.resource)
		}
	}
	return unused
}

// computeLifetimes assigns each resource node the first active pass that
// uses it (where it is registered and, if needed, realized) and each
// entry the last active pass using any of its handles (where it is
// released). Nodes used by no active pass are never realized.
func (g *Graph) computeLifetimes() {
	entryRelease := make([]int, len(g.entries))
	entryOwner := make([]int, len(g.entries))
	for i := range entryRelease {
		entryRelease[i] = noPass
		entryOwner[i] = noPass
	}

	for i := range g.resources {
		res := &g.resources[i]
		first, last := noPass, noPass
		use := func(p int) {
			if !g.passes[p].active() {
				return
			}
			if first == noPass || p < first {
				first = p
			}
			last = max(last, p)
		}
		use(res.creator)
		for _, p := range res.producers {
			use(p)
		}
		for _, p := range res.consumers {
			use(p)
		}
		res.firstUse, res.release = first, last
		if first == noPass {
			continue
		}

		g.passes[first].realizes = append(g.passes[first].realizes, i)
		// The owner is the node whose use ends the entry's lifetime; on a
		// tie the later handle of an alias group wins.
		if last >= entryRelease[res.entry] {
			entryRelease[res.entry] = last
			entryOwner[res.entry] = i
		}
	}

	for e, p := range entryRelease {
		if p == noPass {
			continue
		}
		owner := entryOwner[e]
		g.passes[p].deletes = append(g.passes[p].deletes, owner)
	}
}

// checkCycles runs a depth-first search over pass -> written resource ->
// consuming pass edges. Every write of a pass is followed before the pass
// leaves the recursion stack; reaching a pass still on the stack is a cycle.
func (g *Graph) checkCycles() error {
	visited := make([]bool, len(g.passes))
	onStack := make([]bool, len(g.passes))
	var stack []int

	var visit func(p int) []int
	visit = func(p int) []int {
		visited[p] = true
		onStack[p] = true
		stack = append(stack, p)

		for _, w := range g.passes[p].writes {
			for _, c := range g.resources[w.resource].consumers {
				if onStack[c] {
					return g.cyclePath(stack, c)
				}
				if !visited[c] {
					if cycle := visit(c); cycle != nil {
						return cycle
					}
				}
			}
		}

		stack = stack[:len(stack)-1]
		onStack[p] = false
		return nil
	}

	for p := range g.passes {
		if visited[p] {
			continue
		}
		if cycle := visit(p); cycle != nil {
			names := make([]string, 0, len(cycle)+1)
			for _, pi := range cycle {
				names = append(names, g.passes[pi].name)
			}
			names = append(names, g.passes[cycle[0]].name)
			return &CycleError{Passes: names}
		}
	}
	return nil
}

// cyclePath returns the suffix of stack starting at pass start.
func (g *Graph) cyclePath(stack []int, start int) []int {
	for i, p := range stack {
		if p == start {
			return append([]int(nil), stack[i:]...)
		}
	}
	return []int{start}
}
