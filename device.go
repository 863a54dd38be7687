// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import "github.com/gogpu/gputypes"

// Opaque device object IDs. Each Device implementation maintains the
// mapping between IDs and its backend objects. Zero is never a valid ID.
type (
	TextureID     uint64
	TextureViewID uint64
	BufferID      uint64
)

// InvalidID is the zero value, representing an invalid/null device object.
const InvalidID = 0

// Texture is a realized texture together with its default view.
type Texture struct {
	ID            TextureID
	View          TextureViewID
	Format        gputypes.TextureFormat
	Width         uint32
	Height        uint32
	MipLevelCount uint32
	ArrayLayers   uint32
}

// Buffer is a realized buffer.
type Buffer struct {
	ID   BufferID
	Size uint64
}

// Device creates and destroys the concrete objects behind transient
// resources. It is injected into the Allocator; framegraph never looks up
// a process-wide device.
type Device interface {
	CreateTexture(desc *TextureDescriptor, label string) (TextureID, error)
	CreateTextureView(texture TextureID, label string) (TextureViewID, error)
	DestroyTextureView(view TextureViewID)
	DestroyTexture(texture TextureID)

	CreateBuffer(desc *BufferDescriptor, label string) (BufferID, error)
	DestroyBuffer(buffer BufferID)
}

// CommandRecorder receives the barriers emitted before each pass.
type CommandRecorder interface {
	ResourceBarrier(b Barrier)
}

// Surface describes the presentation target of the frame.
type Surface struct {
	Format gputypes.TextureFormat
	Width  uint32
	Height uint32
}

// Context bundles what a graph execution needs from the caller and what
// pass tasks receive: the device, the surface and the active recorder.
type Context struct {
	Device   Device
	Surface  Surface
	Recorder CommandRecorder
}
