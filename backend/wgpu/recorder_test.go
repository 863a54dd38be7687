// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"testing"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/gputypes"
)

func TestTextureUsage(t *testing.T) {
	tests := []struct {
		layout framegraph.BarrierLayout
		want   gputypes.TextureUsage
	}{
		{framegraph.LayoutUndefined, 0},
		{framegraph.LayoutPresent, 0},
		{framegraph.LayoutShaderResource, gputypes.TextureUsageTextureBinding},
		{framegraph.LayoutUnorderedAccess, gputypes.TextureUsageStorageBinding},
		{framegraph.LayoutRenderTarget, gputypes.TextureUsageRenderAttachment},
		{framegraph.LayoutDepthStencilWrite, gputypes.TextureUsageRenderAttachment},
		{framegraph.LayoutCopySource, gputypes.TextureUsageCopySrc},
		{framegraph.LayoutCopyDest, gputypes.TextureUsageCopyDst},
	}
	for _, tt := range tests {
		if got := textureUsage(tt.layout); got != tt.want {
			t.Errorf("textureUsage(%v) = %v, want %v", tt.layout, got, tt.want)
		}
	}
}

func TestRecorderBarriers(t *testing.T) {
	d := openNoop(t)
	id, err := d.CreateTexture(colorDesc(), "color")
	if err != nil {
		t.Fatalf("CreateTexture() = %v", err)
	}
	defer d.DestroyTexture(id)

	rec, err := d.NewRecorder("barriers")
	if err != nil {
		t.Fatalf("NewRecorder() = %v", err)
	}
	defer rec.Discard()

	tex := framegraph.Texture{ID: id}
	rec.ResourceBarrier(framegraph.Barrier{Kind: framegraph.KindTexture, Texture: tex,
		Before: framegraph.UndefinedState(), After: framegraph.ColorAttachmentState()})
	rec.ResourceBarrier(framegraph.Barrier{Kind: framegraph.KindTexture, Texture: tex,
		Before: framegraph.ColorAttachmentState(), After: framegraph.ShaderResourceState(framegraph.SyncAllShading)})
	rec.ResourceBarrier(framegraph.Barrier{Kind: framegraph.KindTexture, Texture: tex,
		Before: framegraph.ShaderResourceState(framegraph.SyncAllShading),
		After:  framegraph.ShaderResourceState(framegraph.SyncPixelShading)})
	rec.ResourceBarrier(framegraph.Barrier{Kind: framegraph.KindTexture, Texture: tex,
		Before: framegraph.ShaderResourceState(framegraph.SyncPixelShading), After: framegraph.PresentSrcState()})
	rec.ResourceBarrier(framegraph.Barrier{Kind: framegraph.KindBuffer,
		After: framegraph.UnorderedAccessState(framegraph.SyncAll)})
	rec.ResourceBarrier(framegraph.Barrier{Kind: framegraph.KindTexture, Texture: framegraph.Texture{ID: 9999},
		After: framegraph.ColorAttachmentState()})

	want := RecorderStats{Recorded: 2, Elided: 3, Unknown: 1}
	if got := rec.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestRecorderFinishTwice(t *testing.T) {
	d := openNoop(t)
	rec, err := d.NewRecorder("finish")
	if err != nil {
		t.Fatalf("NewRecorder() = %v", err)
	}
	cmdBuf, err := rec.Finish()
	if err != nil {
		t.Fatalf("Finish() = %v", err)
	}
	d.HAL().FreeCommandBuffer(cmdBuf)

	if _, err := rec.Finish(); !errors.Is(err, ErrRecorderFinished) {
		t.Errorf("second Finish() = %v, want ErrRecorderFinished", err)
	}
	if err := rec.Submit(0); !errors.Is(err, ErrRecorderFinished) {
		t.Errorf("Submit after Finish = %v, want ErrRecorderFinished", err)
	}
	// Barriers after finishing are dropped.
	rec.ResourceBarrier(framegraph.Barrier{Kind: framegraph.KindBuffer})
	if rec.Stats() != (RecorderStats{}) {
		t.Errorf("Stats() = %+v after finish", rec.Stats())
	}
}

// TestExecuteFrame runs a deferred-shading shaped frame through the
// allocator and the noop HAL.
func TestExecuteFrame(t *testing.T) {
	d := openNoop(t)
	alloc := framegraph.NewAllocator(d)
	defer alloc.Destroy()

	const w, h = 64, 32
	for frame := range 3 {
		b := framegraph.NewBuilder(framegraph.WithLabel("frame"))

		b.AddPass("gbuffer")
		albedo := b.CreateTexture("albedo", framegraph.Texture2D(w, h, gputypes.TextureFormatRGBA8Unorm,
			gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageTextureBinding))
		depth := b.CreateTexture("depth", framegraph.Texture2D(w, h, gputypes.TextureFormatDepth24PlusStencil8,
			gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageTextureBinding))
		b.ColorAttachment(albedo, gputypes.LoadOpClear, gputypes.StoreOpStore, gputypes.Color{A: 1})
		b.DepthStencilAttachment(depth, gputypes.LoadOpClear, gputypes.StoreOpDiscard, 1, 0)

		var sawEncoder bool
		b.AddPass("lighting").Preserve().ExecuteFunc(func(reg *framegraph.Registry, ctx *framegraph.Context) error {
			rec, ok := ctx.Recorder.(*Recorder)
			sawEncoder = ok && rec.Encoder() != nil
			if reg.Texture(albedo) == nil || reg.Texture(depth) == nil {
				return errors.New("gbuffer not visible")
			}
			return nil
		})
		b.Sample(albedo)
		b.Sample(depth)

		g, err := b.Build()
		if err != nil {
			t.Fatalf("frame %d: Build() = %v", frame, err)
		}
		rec, err := d.NewRecorder("frame")
		if err != nil {
			t.Fatalf("frame %d: NewRecorder() = %v", frame, err)
		}
		if err := g.Execute(&framegraph.Context{Device: d, Recorder: rec}, alloc); err != nil {
			rec.Discard()
			t.Fatalf("frame %d: Execute() = %v", frame, err)
		}
		if err := rec.Submit(0); err != nil {
			t.Fatalf("frame %d: Submit() = %v", frame, err)
		}
		if !sawEncoder {
			t.Errorf("frame %d: task did not see the HAL encoder", frame)
		}
		if st := rec.Stats(); st.Recorded != 4 || st.Unknown != 0 {
			t.Errorf("frame %d: recorder stats = %+v", frame, st)
		}
	}

	st := alloc.Stats()
	if st.Created != 2 || st.Reused != 4 || st.InUse != 0 {
		t.Errorf("allocator stats = %+v, want 2 created and reused twice each", st)
	}
	if tex, views, _ := d.Live(); tex != 2 || views != 2 {
		t.Errorf("Live() = %d textures %d views, want the pooled pair", tex, views)
	}
}
