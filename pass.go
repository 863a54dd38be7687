// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// PassKind tags what kind of GPU work a pass records.
type PassKind uint8

const (
	PassRender PassKind = iota
	PassCompute
	PassTransfer
)

func (k PassKind) String() string {
	switch k {
	case PassRender:
		return "render"
	case PassCompute:
		return "compute"
	case PassTransfer:
		return "transfer"
	default:
		return fmt.Sprintf("PassKind(%d)", uint8(k))
	}
}

// Task is the deferred work of a pass. It runs during Graph.Execute, after
// the pass's resources are realized and transitioned, and may only look up
// resources through reg.
type Task interface {
	Execute(reg *Registry, ctx *Context) error
}

// TaskFunc adapts an ordinary function to the Task interface.
type TaskFunc func(reg *Registry, ctx *Context) error

// Execute calls f(reg, ctx).
func (f TaskFunc) Execute(reg *Registry, ctx *Context) error { return f(reg, ctx) }

// Pass is a named unit of GPU work declared on a Builder.
type Pass struct {
	name      string
	kind      PassKind
	index     int
	preserved bool
	task      Task
}

// Name returns the pass name.
func (p *Pass) Name() string { return p.name }

// Kind returns the pass kind.
func (p *Pass) Kind() PassKind { return p.kind }

// Index returns the declaration index, or -1 for a pass that was never
// added to a graph (declared on a consumed Builder).
func (p *Pass) Index() int { return p.index }

// Preserve keeps the pass from being culled even when nothing consumes its
// outputs. Terminal passes such as presentation need this.
func (p *Pass) Preserve() *Pass {
	p.preserved = true
	return p
}

// Preserved reports whether Preserve was called.
func (p *Pass) Preserved() bool { return p.preserved }

// Execute sets the task run when the pass executes. A pass without a task
// still transitions its resources.
func (p *Pass) Execute(t Task) *Pass {
	p.task = t
	return p
}

// ExecuteFunc is Execute with a plain function.
func (p *Pass) ExecuteFunc(fn func(reg *Registry, ctx *Context) error) *Pass {
	if fn == nil {
		p.task = nil
		return p
	}
	return p.Execute(TaskFunc(fn))
}

// AttachmentType distinguishes color from depth/stencil attachments.
type AttachmentType uint8

const (
	AttachmentColor AttachmentType = iota
	AttachmentDepthStencil
)

// Attachment is the render-target configuration recorded with
// Builder.ColorAttachment or Builder.DepthStencilAttachment.
type Attachment struct {
	Type         AttachmentType
	Resource     ResourceHandle
	LoadOp       gputypes.LoadOp
	StoreOp      gputypes.StoreOp
	ClearColor   gputypes.Color
	ClearDepth   float32
	ClearStencil uint32
}

type readAccess struct {
	resource int
	op       ReadOp
}

type writeAccess struct {
	resource int
	op       WriteOp
}

// passNode is the graph side of a pass.
type passNode struct {
	*Pass

	reads       []readAccess
	writes      []writeAccess
	creates     []int
	deletes     []int
	attachments []Attachment

	// realizes lists resources first used by this pass once culling is
	// done; it equals creates unless a resource's creator was culled.
	realizes []int
	refCount int
}

// active reports whether the pass survives culling.
func (n *passNode) active() bool { return n.refCount != 0 || n.preserved }
