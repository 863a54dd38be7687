// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import "fmt"

// AllocatorOption configures an Allocator.
type AllocatorOption func(*allocatorOptions)

type allocatorOptions struct {
	maxFreePerDescriptor int
}

// WithMaxFreePerDescriptor sets how many free objects Trim keeps per
// descriptor. The default is 0: Trim destroys every free object.
func WithMaxFreePerDescriptor(n int) AllocatorOption {
	return func(o *allocatorOptions) {
		if n >= 0 {
			o.maxFreePerDescriptor = n
		}
	}
}

// AllocatorStats is a snapshot of allocator activity since creation.
type AllocatorStats struct {
	// Created counts device creations.
	Created int
	// Reused counts allocations served from a free pooled object.
	Reused int
	// Recycled counts objects returned to the pool.
	Recycled int
	// Destroyed counts device destructions by Trim and Destroy.
	Destroyed int
	// InUse and Free count pooled objects right now.
	InUse int
	Free  int
}

type poolEntry[T comparable] struct {
	object T
	used   bool
}

// pool keeps, per descriptor, the objects created for it and whether
// each one is handed out.
type pool[D comparable, T comparable] struct {
	buckets map[D][]poolEntry[T]
}

func (p *pool[D, T]) acquire(desc D) (T, bool) {
	entries := p.buckets[desc]
	for i := range entries {
		if !entries[i].used {
			entries[i].used = true
			return entries[i].object, true
		}
	}
	var zero T
	return zero, false
}

func (p *pool[D, T]) add(desc D, object T) {
	if p.buckets == nil {
		p.buckets = make(map[D][]poolEntry[T])
	}
	p.buckets[desc] = append(p.buckets[desc], poolEntry[T]{object: object, used: true})
}

func (p *pool[D, T]) release(desc D, object T) bool {
	entries := p.buckets[desc]
	for i := range entries {
		if entries[i].object == object && entries[i].used {
			entries[i].used = false
			return true
		}
	}
	return false
}

// drain removes free entries beyond keep per bucket and hands them to fn.
func (p *pool[D, T]) drain(keep int, fn func(T)) int {
	n := 0
	for desc, entries := range p.buckets {
		kept := entries[:0]
		free := 0
		for _, e := range entries {
			if !e.used {
				free++
				if free > keep {
					fn(e.object)
					n++
					continue
				}
			}
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			delete(p.buckets, desc)
		} else {
			p.buckets[desc] = kept
		}
	}
	return n
}

func (p *pool[D, T]) count() (inUse, free int) {
	for _, entries := range p.buckets {
		for _, e := range entries {
			if e.used {
				inUse++
			} else {
				free++
			}
		}
	}
	return inUse, free
}

// Allocator pools concrete GPU objects keyed by descriptor and reuses freed
// objects of matching shape across frames.
//
// An Allocator lives for the whole process and is shared by every frame's
// Graph. It has no internal locking: all calls must come from the single
// render thread. No aliasing between different descriptors is attempted.
type Allocator struct {
	device   Device
	opts     allocatorOptions
	textures pool[TextureDescriptor, Texture]
	buffers  pool[BufferDescriptor, Buffer]

	created   int
	reused    int
	recycled  int
	destroyed int
}

// NewAllocator creates an allocator that realizes objects on device.
func NewAllocator(device Device, opts ...AllocatorOption) *Allocator {
	var o allocatorOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Allocator{device: device, opts: o}
}

// AllocateTexture returns a free pooled texture matching desc, or creates
// a new texture and its default view on the device.
func (a *Allocator) AllocateTexture(desc TextureDescriptor) (Texture, error) {
	desc = desc.normalized()
	if tex, ok := a.textures.acquire(desc); ok {
		a.reused++
		return tex, nil
	}

	label := fmt.Sprintf("framegraph_texture_%dx%d", desc.Width, desc.Height)
	id, err := a.device.CreateTexture(&desc, label)
	if err != nil {
		return Texture{}, fmt.Errorf("create texture: %w", err)
	}
	view, err := a.device.CreateTextureView(id, label+"_view")
	if err != nil {
		a.device.DestroyTexture(id)
		return Texture{}, fmt.Errorf("create texture view: %w", err)
	}

	tex := Texture{
		ID:            id,
		View:          view,
		Format:        desc.Format,
		Width:         desc.Width,
		Height:        desc.Height,
		MipLevelCount: desc.MipLevelCount,
		ArrayLayers:   desc.DepthOrArrayLayers,
	}
	a.textures.add(desc, tex)
	a.created++
	Logger().Debug("framegraph: texture created",
		"width", desc.Width, "height", desc.Height, "format", desc.Format)
	return tex, nil
}

// RecycleTexture marks tex free for the next AllocateTexture with an equal
// descriptor. The device object is kept. It reports whether tex was found.
func (a *Allocator) RecycleTexture(desc TextureDescriptor, tex Texture) bool {
	if !a.textures.release(desc.normalized(), tex) {
		return false
	}
	a.recycled++
	return true
}

// AllocateBuffer returns a free pooled buffer matching desc, or creates one.
func (a *Allocator) AllocateBuffer(desc BufferDescriptor) (Buffer, error) {
	if buf, ok := a.buffers.acquire(desc); ok {
		a.reused++
		return buf, nil
	}

	id, err := a.device.CreateBuffer(&desc, fmt.Sprintf("framegraph_buffer_%d", desc.Size))
	if err != nil {
		return Buffer{}, fmt.Errorf("create buffer: %w", err)
	}
	buf := Buffer{ID: id, Size: desc.Size}
	a.buffers.add(desc, buf)
	a.created++
	Logger().Debug("framegraph: buffer created", "size", desc.Size)
	return buf, nil
}

// RecycleBuffer marks buf free for reuse. It reports whether buf was found.
func (a *Allocator) RecycleBuffer(desc BufferDescriptor, buf Buffer) bool {
	if !a.buffers.release(desc, buf) {
		return false
	}
	a.recycled++
	return true
}

// Trim destroys free pooled objects, keeping at most the configured number
// per descriptor. Objects in use are never touched.
func (a *Allocator) Trim() int {
	n := a.textures.drain(a.opts.maxFreePerDescriptor, a.destroyTexture)
	n += a.buffers.drain(a.opts.maxFreePerDescriptor, a.destroyBuffer)
	if n > 0 {
		Logger().Info("framegraph: allocator trimmed", "destroyed", n)
	}
	return n
}

// Destroy destroys every pooled object, including those still marked in use.
// The allocator is empty afterwards and may be reused.
func (a *Allocator) Destroy() {
	for _, entries := range a.textures.buckets {
		for _, e := range entries {
			a.destroyTexture(e.object)
		}
	}
	for _, entries := range a.buffers.buckets {
		for _, e := range entries {
			a.destroyBuffer(e.object)
		}
	}
	a.textures.buckets = nil
	a.buffers.buckets = nil
}

// Stats returns a snapshot of allocator counters.
func (a *Allocator) Stats() AllocatorStats {
	tu, tf := a.textures.count()
	bu, bf := a.buffers.count()
	return AllocatorStats{
		Created:   a.created,
		Reused:    a.reused,
		Recycled:  a.recycled,
		Destroyed: a.destroyed,
		InUse:     tu + bu,
		Free:      tf + bf,
	}
}

func (a *Allocator) destroyTexture(tex Texture) {
	if tex.View != InvalidID {
		a.device.DestroyTextureView(tex.View)
	}
	a.device.DestroyTexture(tex.ID)
	a.destroyed++
}

func (a *Allocator) destroyBuffer(buf Buffer) {
	a.device.DestroyBuffer(buf.ID)
	a.destroyed++
}
