// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import "fmt"

// Graph is a compiled frame: passes in declaration order, the resources
// they use and which of them survived culling. It is executed once and
// then dropped; all pass and resource nodes live in its slices and are
// addressed by index.
type Graph struct {
	session   uint64
	label     string
	passes    []passNode
	resources []resourceNode
	entries   []resourceEntry
	executed  bool
}

// lookup maps a handle to its resource index.
func (g *Graph) lookup(h ResourceHandle) (int, error) {
	if !h.Valid() {
		return 0, ErrInvalidHandle
	}
	if h.session != g.session {
		return 0, ErrForeignHandle
	}
	idx := int(h.index)
	if idx >= len(g.resources) || g.resources[idx].kind != h.kind {
		return 0, ErrInvalidHandle
	}
	return idx, nil
}

func (g *Graph) handle(idx int) ResourceHandle {
	return ResourceHandle{session: g.session, index: uint32(idx), kind: g.resources[idx].kind}
}

// Label returns the label given with WithLabel.
func (g *Graph) Label() string { return g.label }

// Execute runs every active pass in declaration order. For each pass it
// realizes the resources first used there, records the barriers its reads
// and then its writes need, runs its task and finally releases resources
// whose lifetime ends at the pass.
//
// Execute stops at the first realization or task error and returns it;
// transient resources realized so far are recycled before returning.
// A Graph can be executed only once.
func (g *Graph) Execute(ctx *Context, alloc *Allocator) (err error) {
	if g.executed {
		return ErrGraphConsumed
	}
	if ctx == nil || ctx.Recorder == nil {
		return ErrInvalidContext
	}
	if alloc == nil {
		return ErrNilAllocator
	}
	g.executed = true

	reg := &Registry{graph: g, visible: make([]bool, len(g.resources))}
	defer func() {
		reg.graph = nil
		if n := g.releaseAll(alloc); n > 0 && err == nil {
			Logger().Warn("framegraph: transient resources outlived their last pass",
				"graph", g.label, "count", n)
		}
	}()

	for i := range g.passes {
		pass := &g.passes[i]
		if !pass.active() {
			continue
		}

		for _, r := range pass.realizes {
			e := &g.entries[g.resources[r].entry]
			if !e.realized {
				if err := e.create(alloc); err != nil {
					return fmt.Errorf("framegraph: pass %q: %w", pass.name, err)
				}
				if !e.imported {
					Logger().Debug("framegraph: realize", "pass", pass.name, "resource", e.label)
				}
			}
			reg.visible[r] = true
		}

		for _, rd := range pass.reads {
			g.entries[g.resources[rd.resource].entry].preRead(ctx, pass.Pass, rd.op)
		}
		for _, wr := range pass.writes {
			g.entries[g.resources[wr.resource].entry].preWrite(ctx, pass.Pass, wr.op)
		}

		if pass.task != nil {
			Logger().Debug("framegraph: run pass", "pass", pass.name)
			reg.pass = pass
			err := pass.task.Execute(reg, ctx)
			reg.pass = nil
			if err != nil {
				return fmt.Errorf("framegraph: pass %q: %w", pass.name, err)
			}
		}

		for _, r := range pass.deletes {
			e := &g.entries[g.resources[r].entry]
			if e.destroy(alloc) {
				Logger().Debug("framegraph: release", "pass", pass.name, "resource", e.label)
			}
		}
	}
	return nil
}

// releaseAll recycles every transient entry still realized.
func (g *Graph) releaseAll(alloc *Allocator) int {
	n := 0
	for i := range g.entries {
		e := &g.entries[i]
		if e.destroy(alloc) {
			n++
		}
	}
	return n
}

// PassInfo describes one compiled pass.
type PassInfo struct {
	Name      string
	Kind      PassKind
	Index     int
	Active    bool
	Preserved bool
	RefCount  int
	Reads     []ResourceHandle
	Writes    []ResourceHandle
	Creates   []ResourceHandle
	Deletes   []ResourceHandle
}

// ResourceInfo describes one compiled resource.
type ResourceInfo struct {
	Handle    ResourceHandle
	Label     string
	Imported  bool
	Alias     bool
	Preserved bool
	Creator   int
	LastPass  int
	RefCount  int
	// FirstUse and Release are the first and last active pass using the
	// resource, -1 when it is culled.
	FirstUse int
	Release  int
}

// Culled reports whether no active pass uses the resource.
func (r ResourceInfo) Culled() bool { return r.FirstUse < 0 }

// GraphStats summarizes culling results.
type GraphStats struct {
	Passes        int
	ActivePasses  int
	Resources     int
	LiveResources int
}

// Passes describes all declared passes in declaration order.
func (g *Graph) Passes() []PassInfo {
	out := make([]PassInfo, len(g.passes))
	for i := range g.passes {
		p := &g.passes[i]
		info := PassInfo{
			Name:      p.name,
			Kind:      p.kind,
			Index:     i,
			Active:    p.active(),
			Preserved: p.preserved,
			RefCount:  p.refCount,
		}
		for _, rd := range p.reads {
			info.Reads = append(info.Reads, g.handle(rd.resource))
		}
		for _, wr := range p.writes {
			info.Writes = append(info.Writes, g.handle(wr.resource))
		}
		for _, r := range p.creates {
			info.Creates = append(info.Creates, g.handle(r))
		}
		for _, r := range p.deletes {
			info.Deletes = append(info.Deletes, g.handle(r))
		}
		out[i] = info
	}
	return out
}

// Resources describes all declared resources in declaration order.
func (g *Graph) Resources() []ResourceInfo {
	out := make([]ResourceInfo, len(g.resources))
	for i := range g.resources {
		r := &g.resources[i]
		out[i] = ResourceInfo{
			Handle:    g.handle(i),
			Label:     r.label,
			Imported:  r.imported,
			Alias:     r.alias,
			Preserved: r.preserved,
			Creator:   r.creator,
			LastPass:  r.lastPass,
			RefCount:  r.refCount,
			FirstUse:  r.firstUse,
			Release:   r.release,
		}
	}
	return out
}

// PassActive reports whether a pass named name survived culling.
func (g *Graph) PassActive(name string) bool {
	for i := range g.passes {
		if g.passes[i].name == name {
			return g.passes[i].active()
		}
	}
	return false
}

// Stats summarizes the compiled graph.
func (g *Graph) Stats() GraphStats {
	st := GraphStats{Passes: len(g.passes), Resources: len(g.resources)}
	for i := range g.passes {
		if g.passes[i].active() {
			st.ActivePasses++
		}
	}
	for i := range g.resources {
		if g.resources[i].firstUse != noPass {
			st.LiveResources++
		}
	}
	return st
}
