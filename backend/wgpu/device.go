// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

var (
	// ErrNilDevice is returned when New gets a nil HAL device or queue.
	ErrNilDevice = errors.New("wgpu: nil HAL device or queue")

	// ErrNoHAL is returned when a device provider does not expose HAL objects.
	ErrNoHAL = errors.New("wgpu: provider does not expose HAL types")

	// ErrUnknownTexture is returned when an ID does not name a live texture.
	ErrUnknownTexture = errors.New("wgpu: unknown texture")
)

// Device implements framegraph.Device on top of a gogpu/wgpu HAL device.
//
// It hands out opaque framegraph IDs and keeps the mapping to HAL objects.
// Textures registered with ImportTexture are tracked the same way but are
// never destroyed by the Device.
//
// Device is safe for concurrent use; all maps are guarded by a mutex.
type Device struct {
	mu     sync.RWMutex
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat

	// ID generation; zero is framegraph.InvalidID.
	nextID atomic.Uint64

	textures map[framegraph.TextureID]hal.Texture
	views    map[framegraph.TextureViewID]hal.TextureView
	buffers  map[framegraph.BufferID]hal.Buffer
	imported map[framegraph.TextureID]bool
	extViews map[framegraph.TextureViewID]bool

	// release tears down what the Device opened itself (OpenNoop).
	release func()
}

// New wraps an existing HAL device and queue. The caller keeps ownership
// of both; Destroy only releases objects created through the Device.
func New(device hal.Device, queue hal.Queue) (*Device, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	return &Device{
		device:   device,
		queue:    queue,
		format:   gputypes.TextureFormatBGRA8Unorm,
		textures: make(map[framegraph.TextureID]hal.Texture),
		views:    make(map[framegraph.TextureViewID]hal.TextureView),
		buffers:  make(map[framegraph.BufferID]hal.Buffer),
		imported: make(map[framegraph.TextureID]bool),
		extViews: make(map[framegraph.TextureViewID]bool),
	}, nil
}

// FromProvider shares the device of a gpucontext.DeviceProvider such as a
// gogpu window. The provider must implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func FromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	d, err := New(device, queue)
	if err != nil {
		return nil, err
	}
	if f := provider.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		d.format = f
	}
	return d, nil
}

// OpenNoop opens a device on the noop HAL backend. Nothing reaches a GPU;
// it is meant for tests, tools and headless dry runs. Destroy closes the
// device and its instance.
func OpenNoop() (*Device, error) {
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("wgpu: create noop instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, errors.New("wgpu: noop backend has no adapter")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open noop device: %w", err)
	}
	d, err := New(openDev.Device, openDev.Queue)
	if err != nil {
		instance.Destroy()
		return nil, err
	}
	d.release = func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return d, nil
}

func (d *Device) newID() uint64 {
	return d.nextID.Add(1)
}

// HAL returns the wrapped HAL device.
func (d *Device) HAL() hal.Device { return d.device }

// Queue returns the wrapped HAL queue.
func (d *Device) Queue() hal.Queue { return d.queue }

// SurfaceFormat returns the presentation format: the provider's surface
// format, or BGRA8Unorm when there is none.
func (d *Device) SurfaceFormat() gputypes.TextureFormat { return d.format }

// CreateTexture implements framegraph.Device.
func (d *Device) CreateTexture(desc *framegraph.TextureDescriptor, label string) (framegraph.TextureID, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return framegraph.InvalidID, fmt.Errorf("wgpu: texture %q: dimensions must be positive", label)
	}
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: max(desc.DepthOrArrayLayers, 1),
		},
		MipLevelCount: max(desc.MipLevelCount, 1),
		SampleCount:   max(desc.SampleCount, 1),
		Dimension:     desc.Dimension,
		Format:        desc.Format,
		Usage:         desc.Usage,
	})
	if err != nil {
		return framegraph.InvalidID, fmt.Errorf("wgpu: create texture %q: %w", label, err)
	}

	id := framegraph.TextureID(d.newID())
	d.mu.Lock()
	d.textures[id] = tex
	d.mu.Unlock()
	return id, nil
}

// CreateTextureView implements framegraph.Device.
func (d *Device) CreateTextureView(texture framegraph.TextureID, label string) (framegraph.TextureViewID, error) {
	d.mu.RLock()
	tex, ok := d.textures[texture]
	d.mu.RUnlock()
	if !ok {
		return framegraph.InvalidID, fmt.Errorf("%w %d", ErrUnknownTexture, texture)
	}

	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: label})
	if err != nil {
		return framegraph.InvalidID, fmt.Errorf("wgpu: create texture view %q: %w", label, err)
	}

	id := framegraph.TextureViewID(d.newID())
	d.mu.Lock()
	d.views[id] = view
	d.mu.Unlock()
	return id, nil
}

// DestroyTextureView implements framegraph.Device.
func (d *Device) DestroyTextureView(id framegraph.TextureViewID) {
	d.mu.Lock()
	view, ok := d.views[id]
	external := d.extViews[id]
	delete(d.views, id)
	delete(d.extViews, id)
	d.mu.Unlock()

	if !ok {
		framegraph.Logger().Warn("wgpu: destroy of unknown texture view", "id", uint64(id))
		return
	}
	if !external {
		d.device.DestroyTextureView(view)
	}
}

// DestroyTexture implements framegraph.Device. Imported textures are only
// forgotten, never destroyed.
func (d *Device) DestroyTexture(id framegraph.TextureID) {
	d.mu.Lock()
	tex, ok := d.textures[id]
	external := d.imported[id]
	delete(d.textures, id)
	delete(d.imported, id)
	d.mu.Unlock()

	if !ok {
		framegraph.Logger().Warn("wgpu: destroy of unknown texture", "id", uint64(id))
		return
	}
	if !external {
		d.device.DestroyTexture(tex)
	}
}

// CreateBuffer implements framegraph.Device.
func (d *Device) CreateBuffer(desc *framegraph.BufferDescriptor, label string) (framegraph.BufferID, error) {
	if desc.Size == 0 {
		return framegraph.InvalidID, fmt.Errorf("wgpu: buffer %q: size must be positive", label)
	}
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  desc.Size,
		Usage: desc.Usage,
	})
	if err != nil {
		return framegraph.InvalidID, fmt.Errorf("wgpu: create buffer %q: %w", label, err)
	}

	id := framegraph.BufferID(d.newID())
	d.mu.Lock()
	d.buffers[id] = buf
	d.mu.Unlock()
	return id, nil
}

// DestroyBuffer implements framegraph.Device.
func (d *Device) DestroyBuffer(id framegraph.BufferID) {
	d.mu.Lock()
	buf, ok := d.buffers[id]
	delete(d.buffers, id)
	d.mu.Unlock()

	if !ok {
		framegraph.Logger().Warn("wgpu: destroy of unknown buffer", "id", uint64(id))
		return
	}
	d.device.DestroyBuffer(buf)
}

// ImportTexture registers an externally owned texture, typically the
// current swapchain image, and returns the framegraph.Texture to pass to
// Builder.ImportTexture. view may be nil.
func (d *Device) ImportTexture(tex hal.Texture, view hal.TextureView, format gputypes.TextureFormat, width, height uint32) framegraph.Texture {
	id := framegraph.TextureID(d.newID())
	out := framegraph.Texture{
		ID:            id,
		Format:        format,
		Width:         width,
		Height:        height,
		MipLevelCount: 1,
		ArrayLayers:   1,
	}

	d.mu.Lock()
	d.textures[id] = tex
	d.imported[id] = true
	if view != nil {
		out.View = framegraph.TextureViewID(d.newID())
		d.views[out.View] = view
		d.extViews[out.View] = true
	}
	d.mu.Unlock()
	return out
}

// Forget drops the mapping of an imported texture without destroying it.
// Call it once the frame that imported tex has been submitted.
func (d *Device) Forget(tex framegraph.Texture) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.imported[tex.ID] {
		return
	}
	delete(d.textures, tex.ID)
	delete(d.imported, tex.ID)
	if d.extViews[tex.View] {
		delete(d.views, tex.View)
		delete(d.extViews, tex.View)
	}
}

// HalTexture returns the HAL texture behind id.
func (d *Device) HalTexture(id framegraph.TextureID) (hal.Texture, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	tex, ok := d.textures[id]
	return tex, ok
}

// HalTextureView returns the HAL view behind id.
func (d *Device) HalTextureView(id framegraph.TextureViewID) (hal.TextureView, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	view, ok := d.views[id]
	return view, ok
}

// HalBuffer returns the HAL buffer behind id.
func (d *Device) HalBuffer(id framegraph.BufferID) (hal.Buffer, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	buf, ok := d.buffers[id]
	return buf, ok
}

// Live reports how many textures, views and buffers the Device tracks.
func (d *Device) Live() (textures, views, buffers int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.textures), len(d.views), len(d.buffers)
}

// Destroy releases every object created through the Device and, for
// OpenNoop devices, the device itself. Destroy the framegraph.Allocator
// first so it does not hold IDs of destroyed objects.
func (d *Device) Destroy() {
	d.mu.Lock()
	views, textures, buffers := d.views, d.textures, d.buffers
	imported, extViews := d.imported, d.extViews
	d.views = make(map[framegraph.TextureViewID]hal.TextureView)
	d.textures = make(map[framegraph.TextureID]hal.Texture)
	d.buffers = make(map[framegraph.BufferID]hal.Buffer)
	d.imported = make(map[framegraph.TextureID]bool)
	d.extViews = make(map[framegraph.TextureViewID]bool)
	d.mu.Unlock()

	n := 0
	for id, view := range views {
		if extViews[id] {
			continue
		}
		d.device.DestroyTextureView(view)
		n++
	}
	for id, tex := range textures {
		if imported[id] {
			continue
		}
		d.device.DestroyTexture(tex)
		n++
	}
	for _, buf := range buffers {
		d.device.DestroyBuffer(buf)
		n++
	}
	if n > 0 {
		framegraph.Logger().Debug("wgpu: device destroyed leftover objects", "count", n)
	}

	if d.release != nil {
		d.release()
		d.release = nil
	}
}

var _ framegraph.Device = (*Device)(nil)
