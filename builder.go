// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// BuilderOption configures a Builder.
type BuilderOption func(*builderOptions)

type builderOptions struct {
	label      string
	cycleCheck bool
}

func defaultBuilderOptions() builderOptions {
	return builderOptions{
		label:      "frame",
		cycleCheck: true,
	}
}

// WithLabel names the graph in logs and errors.
func WithLabel(label string) BuilderOption {
	return func(o *builderOptions) {
		o.label = label
	}
}

// WithCycleCheck enables or disables the dependency cycle check run by
// Build. It is enabled by default.
func WithCycleCheck(enabled bool) BuilderOption {
	return func(o *builderOptions) {
		o.cycleCheck = enabled
	}
}

const noPass = -1

// Builder declares one frame's passes and resources.
//
// Declarations apply to the current pass, which is the pass most recently
// added. Authoring mistakes (invalid or foreign handles, declarations
// before any pass, ops that do not fit the resource) do not panic: the
// first one is kept and returned by Build.
//
// A Builder is single-use. Build consumes it; any later call records
// ErrBuilderConsumed and a second Build returns it.
type Builder struct {
	opts    builderOptions
	graph   *Graph
	current int
	err     error
	built   bool
}

// NewBuilder starts a new frame declaration.
func NewBuilder(opts ...BuilderOption) *Builder {
	o := defaultBuilderOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Builder{
		opts:    o,
		graph:   &Graph{session: nextSession(), label: o.label},
		current: noPass,
	}
}

// Err returns the first authoring error recorded so far.
func (b *Builder) Err() error { return b.err }

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Builder) usable() bool {
	if b.built {
		b.fail(ErrBuilderConsumed)
		return false
	}
	return true
}

// AddPass appends a render pass and makes it the current pass.
func (b *Builder) AddPass(name string) *Pass { return b.addPass(name, PassRender) }

// AddRenderPass is AddPass.
func (b *Builder) AddRenderPass(name string) *Pass { return b.addPass(name, PassRender) }

// AddComputePass appends a compute pass and makes it the current pass.
func (b *Builder) AddComputePass(name string) *Pass { return b.addPass(name, PassCompute) }

// AddTransferPass appends a copy/transfer pass and makes it the current pass.
func (b *Builder) AddTransferPass(name string) *Pass { return b.addPass(name, PassTransfer) }

func (b *Builder) addPass(name string, kind PassKind) *Pass {
	if !b.usable() {
		return &Pass{name: name, kind: kind, index: noPass}
	}
	idx := len(b.graph.passes)
	p := &Pass{name: name, kind: kind, index: idx}
	b.graph.passes = append(b.graph.passes, passNode{Pass: p})
	b.current = idx
	return p
}

// CreateTexture declares a transient texture created by the current pass.
// It is realized from the allocator when a pass using it runs.
func (b *Builder) CreateTexture(label string, desc TextureDescriptor) ResourceHandle {
	return b.addResource(resourceEntry{
		kind:        KindTexture,
		label:       label,
		textureDesc: desc.normalized(),
		state:       UndefinedState(),
	}, "CreateTexture")
}

// CreateBuffer declares a transient buffer created by the current pass.
func (b *Builder) CreateBuffer(label string, desc BufferDescriptor) ResourceHandle {
	return b.addResource(resourceEntry{
		kind:       KindBuffer,
		label:      label,
		bufferDesc: desc,
		state:      UndefinedState(),
	}, "CreateBuffer")
}

// ImportTexture declares an externally owned texture, such as a swapchain
// image, currently in state. The graph never destroys it.
func (b *Builder) ImportTexture(label string, tex Texture, state TransitionState) ResourceHandle {
	return b.addResource(resourceEntry{
		kind:     KindTexture,
		imported: true,
		label:    label,
		texture:  tex,
		state:    state,
	}, "ImportTexture")
}

// ImportBuffer declares an externally owned buffer currently in state.
func (b *Builder) ImportBuffer(label string, buf Buffer, state TransitionState) ResourceHandle {
	return b.addResource(resourceEntry{
		kind:     KindBuffer,
		imported: true,
		label:    label,
		buffer:   buf,
		state:    state,
	}, "ImportBuffer")
}

func (b *Builder) addResource(entry resourceEntry, op string) ResourceHandle {
	if !b.usable() {
		return InvalidHandle
	}
	if b.current == noPass {
		b.fail(fmt.Errorf("%s %q: %w", op, entry.label, ErrNoCurrentPass))
		return InvalidHandle
	}
	g := b.graph
	g.entries = append(g.entries, entry)
	return b.addNode(len(g.entries)-1, entry.label, entry.kind, entry.imported, false)
}

func (b *Builder) addNode(entry int, label string, kind ResourceKind, imported, alias bool) ResourceHandle {
	g := b.graph
	idx := len(g.resources)
	g.resources = append(g.resources, resourceNode{
		label:    label,
		kind:     kind,
		entry:    entry,
		imported: imported,
		alias:    alias,
		creator:  b.current,
		lastPass: b.current,
		firstUse: noPass,
		release:  noPass,
	})
	pass := &g.passes[b.current]
	pass.creates = append(pass.creates, idx)
	return ResourceHandle{session: g.session, index: uint32(idx), kind: kind}
}

// Alias declares a new handle that shares h's underlying object.
//
// A pass cannot read and write the same handle without forming a cycle;
// reading h and writing Alias(h) expresses an in-place update instead.
// The object is realized once and released after the last active pass
// using any handle of the group.
func (b *Builder) Alias(h ResourceHandle) ResourceHandle {
	if !b.usable() {
		return InvalidHandle
	}
	if b.current == noPass {
		b.fail(fmt.Errorf("Alias %s: %w", h, ErrNoCurrentPass))
		return InvalidHandle
	}
	idx, ok := b.resolve(h, "Alias")
	if !ok {
		return InvalidHandle
	}
	src := b.graph.resources[idx]
	return b.addNode(src.entry, src.label, src.kind, src.imported, true)
}

// PreserveResource marks h as a frame output. Passes writing it are kept
// even when no pass reads it.
func (b *Builder) PreserveResource(h ResourceHandle) ResourceHandle {
	if !b.usable() {
		return InvalidHandle
	}
	idx, ok := b.resolve(h, "PreserveResource")
	if !ok {
		return InvalidHandle
	}
	b.graph.resources[idx].preserved = true
	return h
}

// resolve maps a handle to its resource index, recording an error when the
// handle is invalid, foreign, or out of range.
func (b *Builder) resolve(h ResourceHandle, op string) (int, bool) {
	idx, err := b.graph.lookup(h)
	if err != nil {
		b.fail(fmt.Errorf("%s %s: %w", op, h, err))
		return 0, false
	}
	return idx, true
}

func (b *Builder) access(h ResourceHandle, op string) (int, bool) {
	if !b.usable() {
		return 0, false
	}
	if b.current == noPass {
		b.fail(fmt.Errorf("%s %s: %w", op, h, ErrNoCurrentPass))
		return 0, false
	}
	return b.resolve(h, op)
}

// Read records that the current pass reads h with op and returns h, or
// InvalidHandle if the access is rejected.
func (b *Builder) Read(h ResourceHandle, op ReadOp) ResourceHandle {
	if !b.read(h, op) {
		return InvalidHandle
	}
	return h
}

func (b *Builder) read(h ResourceHandle, op ReadOp) bool {
	idx, ok := b.access(h, "Read")
	if !ok {
		return false
	}
	res := &b.graph.resources[idx]
	if op == ReadPresent && res.kind != KindTexture {
		b.fail(fmt.Errorf("Read %s %q with %s: %w", h, res.label, op, ErrInvalidOp))
		return false
	}
	pass := &b.graph.passes[b.current]
	pass.reads = append(pass.reads, readAccess{resource: idx, op: op})
	res.consumers = append(res.consumers, b.current)
	res.lastPass = max(res.lastPass, b.current)
	return true
}

// Write records that the current pass writes h with op and returns h, or
// InvalidHandle if the access is rejected.
func (b *Builder) Write(h ResourceHandle, op WriteOp) ResourceHandle {
	if !b.write(h, op) {
		return InvalidHandle
	}
	return h
}

func (b *Builder) write(h ResourceHandle, op WriteOp) bool {
	idx, ok := b.access(h, "Write")
	if !ok {
		return false
	}
	res := &b.graph.resources[idx]
	if op == WriteRender && res.kind != KindTexture {
		b.fail(fmt.Errorf("Write %s %q with %s: %w", h, res.label, op, ErrInvalidOp))
		return false
	}
	pass := &b.graph.passes[b.current]
	pass.writes = append(pass.writes, writeAccess{resource: idx, op: op})
	res.producers = append(res.producers, b.current)
	res.lastPass = max(res.lastPass, b.current)
	return true
}

// Sample is Read(h, ReadSample).
func (b *Builder) Sample(h ResourceHandle) ResourceHandle { return b.Read(h, ReadSample) }

// Present is Read(h, ReadPresent).
func (b *Builder) Present(h ResourceHandle) ResourceHandle { return b.Read(h, ReadPresent) }

// Render is Write(h, WriteRender).
func (b *Builder) Render(h ResourceHandle) ResourceHandle { return b.Write(h, WriteRender) }

// ColorAttachment renders into h and records how the current pass loads,
// stores and clears it. The pass task reads it back with
// Registry.Attachments.
func (b *Builder) ColorAttachment(h ResourceHandle, load gputypes.LoadOp, store gputypes.StoreOp, clear gputypes.Color) ResourceHandle {
	return b.attach(h, Attachment{
		Type:       AttachmentColor,
		Resource:   h,
		LoadOp:     load,
		StoreOp:    store,
		ClearColor: clear,
	})
}

// DepthStencilAttachment renders into the depth/stencil texture h.
func (b *Builder) DepthStencilAttachment(h ResourceHandle, load gputypes.LoadOp, store gputypes.StoreOp, depth float32, stencil uint32) ResourceHandle {
	return b.attach(h, Attachment{
		Type:         AttachmentDepthStencil,
		Resource:     h,
		LoadOp:       load,
		StoreOp:      store,
		ClearDepth:   depth,
		ClearStencil: stencil,
	})
}

func (b *Builder) attach(h ResourceHandle, a Attachment) ResourceHandle {
	if !b.write(h, WriteRender) {
		return InvalidHandle
	}
	pass := &b.graph.passes[b.current]
	pass.attachments = append(pass.attachments, a)
	return h
}

// EnableAsyncCompute is reserved for scheduling compute passes on a
// separate queue. It is not supported and always returns
// ErrAsyncComputeUnsupported; passes keep running in declaration order.
func (b *Builder) EnableAsyncCompute() error {
	return ErrAsyncComputeUnsupported
}

// Build validates and compiles the declared frame into an immutable Graph.
// It returns the first authoring error, or a *CycleError when passes
// depend on each other in a loop. The Builder cannot be used afterwards.
func (b *Builder) Build() (*Graph, error) {
	if b.built {
		return nil, ErrBuilderConsumed
	}
	b.built = true
	g := b.graph
	b.graph = nil

	if b.err != nil {
		return nil, fmt.Errorf("framegraph: build %q: %w", g.label, b.err)
	}
	if b.opts.cycleCheck {
		if err := g.checkCycles(); err != nil {
			return nil, err
		}
	}
	g.compile()

	st := g.Stats()
	Logger().Debug("framegraph: compiled",
		"graph", g.label,
		"passes", st.Passes, "active", st.ActivePasses,
		"resources", st.Resources, "live", st.LiveResources)
	return g, nil
}
