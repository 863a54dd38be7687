// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import "github.com/gogpu/gputypes"

// resourceEntry is the concrete side of a resource: a closed variant over
// texture and buffer, transient or imported. Aliased handles share one entry.
type resourceEntry struct {
	kind     ResourceKind
	imported bool
	label    string

	textureDesc TextureDescriptor
	bufferDesc  BufferDescriptor

	texture Texture
	buffer  Buffer

	realized bool
	state    TransitionState
}

// create realizes a transient entry from the allocator and resets its
// state. Imported entries already hold their object and keep their state.
func (e *resourceEntry) create(alloc *Allocator) error {
	if e.imported {
		e.realized = true
		return nil
	}
	switch e.kind {
	case KindTexture:
		tex, err := alloc.AllocateTexture(e.textureDesc)
		if err != nil {
			return &AllocationError{Label: e.label, Kind: e.kind, Err: err}
		}
		e.texture = tex
	case KindBuffer:
		buf, err := alloc.AllocateBuffer(e.bufferDesc)
		if err != nil {
			return &AllocationError{Label: e.label, Kind: e.kind, Err: err}
		}
		e.buffer = buf
	}
	e.realized = true
	e.state = UndefinedState()
	return nil
}

// destroy returns a transient entry's object to the allocator and reports
// whether it did. Imported entries are never released by the graph.
func (e *resourceEntry) destroy(alloc *Allocator) bool {
	if e.imported || !e.realized {
		return false
	}
	switch e.kind {
	case KindTexture:
		alloc.RecycleTexture(e.textureDesc, e.texture)
		e.texture = Texture{}
	case KindBuffer:
		alloc.RecycleBuffer(e.bufferDesc, e.buffer)
		e.buffer = Buffer{}
	}
	e.realized = false
	return true
}

// preRead records at most one barrier moving the entry into the state op
// requires. It reports whether a barrier was recorded.
func (e *resourceEntry) preRead(ctx *Context, pass *Pass, op ReadOp) bool {
	target, ok := op.targetState()
	if !ok {
		return false
	}
	return e.transition(ctx, pass, target)
}

// preWrite is preRead for write ops. Rendering into a depth/stencil format
// targets the depth/stencil attachment state.
func (e *resourceEntry) preWrite(ctx *Context, pass *Pass, op WriteOp) bool {
	target, ok := op.targetState(e.kind == KindTexture && IsDepthStencilFormat(e.format()))
	if !ok {
		return false
	}
	return e.transition(ctx, pass, target)
}

func (e *resourceEntry) transition(ctx *Context, pass *Pass, target TransitionState) bool {
	if e.state == target {
		return false
	}
	b := Barrier{
		Kind:   e.kind,
		Label:  e.label,
		Pass:   pass.name,
		Before: e.state,
		After:  target,
	}
	switch e.kind {
	case KindTexture:
		b.Texture = e.texture
		b.MipLevelCount = max(e.texture.MipLevelCount, 1)
		b.ArrayLayers = max(e.texture.ArrayLayers, 1)
	case KindBuffer:
		b.Buffer = e.buffer
	}
	ctx.Recorder.ResourceBarrier(b)
	Logger().Debug("framegraph: barrier",
		"pass", pass.name, "resource", e.label, "before", e.state, "after", target)
	e.state = target
	return true
}

func (e *resourceEntry) format() gputypes.TextureFormat {
	if e.imported {
		return e.texture.Format
	}
	return e.textureDesc.Format
}

// resourceNode is the graph side of a resource: who produces it, who
// consumes it, and where its lifetime starts and ends.
type resourceNode struct {
	label     string
	kind      ResourceKind
	entry     int
	imported  bool
	alias     bool
	preserved bool

	producers []int
	consumers []int

	// creator is the pass that declared the resource, lastPass the highest
	// pass index that reads or writes it (or creator when untouched).
	creator  int
	lastPass int
	refCount int

	// Filled by compile: first and last active pass using the resource,
	// -1 when no active pass uses it.
	firstUse int
	release  int
}
