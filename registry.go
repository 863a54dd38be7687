// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

// Registry resolves resource handles to realized objects while a Graph
// executes. A task sees the resources realized at or before its pass;
// lookups return nil for anything else, including handles from another
// graph. The registry is invalid once Execute returns.
type Registry struct {
	graph   *Graph
	visible []bool
	pass    *passNode
}

func (r *Registry) entry(h ResourceHandle, kind ResourceKind) *resourceEntry {
	if r == nil || r.graph == nil || h.kind != kind {
		return nil
	}
	idx, err := r.graph.lookup(h)
	if err != nil || !r.visible[idx] {
		return nil
	}
	e := &r.graph.entries[r.graph.resources[idx].entry]
	if !e.realized {
		return nil
	}
	return e
}

// Texture returns the texture behind h, or nil if h is not a visible
// texture of this execution. The result is a copy.
func (r *Registry) Texture(h ResourceHandle) *Texture {
	e := r.entry(h, KindTexture)
	if e == nil {
		return nil
	}
	tex := e.texture
	return &tex
}

// Buffer returns the buffer behind h, or nil if h is not a visible buffer
// of this execution. The result is a copy.
func (r *Registry) Buffer(h ResourceHandle) *Buffer {
	e := r.entry(h, KindBuffer)
	if e == nil {
		return nil
	}
	buf := e.buffer
	return &buf
}

// State returns the tracked transition state of h. ok is false when h is
// not visible.
func (r *Registry) State(h ResourceHandle) (state TransitionState, ok bool) {
	e := r.entry(h, h.kind)
	if e == nil {
		return TransitionState{}, false
	}
	return e.state, true
}

// Pass returns the name of the pass whose task is running.
func (r *Registry) Pass() string {
	if r == nil || r.pass == nil {
		return ""
	}
	return r.pass.name
}

// AttachmentInfo is an Attachment with its realized texture.
type AttachmentInfo struct {
	Attachment
	Texture Texture
}

// Attachments returns the render targets the running pass declared with
// Builder.ColorAttachment and Builder.DepthStencilAttachment, in
// declaration order.
func (r *Registry) Attachments() []AttachmentInfo {
	if r == nil || r.pass == nil {
		return nil
	}
	out := make([]AttachmentInfo, 0, len(r.pass.attachments))
	for _, a := range r.pass.attachments {
		info := AttachmentInfo{Attachment: a}
		if tex := r.Texture(a.Resource); tex != nil {
			info.Texture = *tex
		}
		out = append(out, info)
	}
	return out
}
