// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DefaultSubmitTimeout bounds the fence wait in Recorder.Submit.
const DefaultSubmitTimeout = 5 * time.Second

// ErrRecorderFinished is returned when a Recorder is used after Finish,
// Submit or Discard.
var ErrRecorderFinished = errors.New("wgpu: recorder already finished")

// RecorderStats counts what a Recorder did with the barriers it received.
type RecorderStats struct {
	// Recorded barriers became a TransitionTextures call.
	Recorded int
	// Elided barriers needed no HAL command: buffer transitions, present
	// transitions and transitions between states of equal texture usage.
	Elided int
	// Unknown barriers named a texture the Device does not track.
	Unknown int
}

// Recorder implements framegraph.CommandRecorder on a HAL command encoder.
// One Recorder records one frame; pass tasks reach the encoder through
// Encoder to record their own render and compute passes.
type Recorder struct {
	dev     *Device
	label   string
	encoder hal.CommandEncoder
	done    bool
	stats   RecorderStats
}

// NewRecorder creates a command encoder and begins encoding.
func (d *Device) NewRecorder(label string) (*Recorder, error) {
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: label,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	return &Recorder{dev: d, label: label, encoder: encoder}, nil
}

// Encoder returns the HAL encoder being recorded.
func (r *Recorder) Encoder() hal.CommandEncoder { return r.encoder }

// Stats returns barrier counters.
func (r *Recorder) Stats() RecorderStats { return r.stats }

// textureUsage maps a barrier layout to the WebGPU usage the HAL derives
// the native layout from. Undefined and present have no usage bit.
func textureUsage(layout framegraph.BarrierLayout) gputypes.TextureUsage {
	switch layout {
	case framegraph.LayoutShaderResource:
		return gputypes.TextureUsageTextureBinding
	case framegraph.LayoutUnorderedAccess:
		return gputypes.TextureUsageStorageBinding
	case framegraph.LayoutRenderTarget, framegraph.LayoutDepthStencilWrite:
		return gputypes.TextureUsageRenderAttachment
	case framegraph.LayoutCopySource:
		return gputypes.TextureUsageCopySrc
	case framegraph.LayoutCopyDest:
		return gputypes.TextureUsageCopyDst
	default:
		return 0
	}
}

// ResourceBarrier implements framegraph.CommandRecorder.
//
// The HAL tracks buffer hazards itself, so buffer barriers are only
// counted. Presentation is handled by the surface.
func (r *Recorder) ResourceBarrier(b framegraph.Barrier) {
	if r.done {
		framegraph.Logger().Warn("wgpu: barrier after recorder finished",
			"recorder", r.label, "resource", b.Label)
		return
	}
	if b.Kind != framegraph.KindTexture {
		r.stats.Elided++
		framegraph.Logger().Debug("wgpu: buffer barrier elided",
			"pass", b.Pass, "resource", b.Label)
		return
	}

	oldUsage, newUsage := textureUsage(b.Before.Layout), textureUsage(b.After.Layout)
	if newUsage == 0 || oldUsage == newUsage {
		r.stats.Elided++
		return
	}
	tex, ok := r.dev.HalTexture(b.Texture.ID)
	if !ok {
		r.stats.Unknown++
		framegraph.Logger().Warn("wgpu: barrier for unknown texture",
			"pass", b.Pass, "resource", b.Label, "id", uint64(b.Texture.ID))
		return
	}

	r.encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: oldUsage,
			NewUsage: newUsage,
		},
	}})
	r.stats.Recorded++
}

// Finish ends encoding and returns the command buffer. The caller submits
// it and frees it with the HAL device.
func (r *Recorder) Finish() (hal.CommandBuffer, error) {
	if r.done {
		return nil, ErrRecorderFinished
	}
	r.done = true
	cmdBuf, err := r.encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("wgpu: end encoding: %w", err)
	}
	return cmdBuf, nil
}

// Discard abandons the recording, for example after Graph.Execute failed.
func (r *Recorder) Discard() {
	if r.done {
		return
	}
	r.done = true
	r.encoder.DiscardEncoding()
}

// Submit finishes the recording, submits it and waits for the GPU for at
// most timeout (DefaultSubmitTimeout when zero).
func (r *Recorder) Submit(timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultSubmitTimeout
	}
	cmdBuf, err := r.Finish()
	if err != nil {
		return err
	}
	device := r.dev.device
	defer device.FreeCommandBuffer(cmdBuf)

	fence, err := device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create fence: %w", err)
	}
	defer device.DestroyFence(fence)

	if err := r.dev.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	ok, err := device.Wait(fence, 1, timeout)
	if err != nil {
		return fmt.Errorf("wgpu: wait for GPU: %w", err)
	}
	if !ok {
		return fmt.Errorf("wgpu: GPU timeout after %v", timeout)
	}
	framegraph.Logger().Debug("wgpu: frame submitted",
		"recorder", r.label, "barriers", r.stats.Recorded, "elided", r.stats.Elided)
	return nil
}

var _ framegraph.CommandRecorder = (*Recorder)(nil)
