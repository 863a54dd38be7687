// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package framegraph provides a per-frame render dependency graph for the
// gogpu stack.
//
// # Overview
//
// Rendering code declares passes and the resources each pass reads or
// writes on a [Builder]. [Builder.Build] compiles the declaration into an
// immutable [Graph]:
//
//   - passes whose outputs nobody consumes are culled, unless preserved
//   - a dependency cycle among passes is rejected with a [*CycleError]
//   - each resource gets the first and last active pass that uses it
//
// [Graph.Execute] then runs the active passes in declaration order,
// realizing transient resources from an [Allocator] just before their first
// use, recording the minimal set of state-transition barriers before each
// pass, and recycling transients right after their last use.
//
// # Quick Start
//
//	alloc := framegraph.NewAllocator(device)
//
//	b := framegraph.NewBuilder()
//	b.AddPass("scene")
//	color := b.CreateTexture("color", framegraph.Texture2D(w, h,
//	    gputypes.TextureFormatRGBA8Unorm,
//	    gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageTextureBinding))
//	b.Render(color)
//
//	post := b.AddPass("post").ExecuteFunc(func(reg *framegraph.Registry, ctx *framegraph.Context) error {
//	    src := reg.Texture(color)
//	    // record draw commands sampling src
//	    return nil
//	})
//	post.Preserve()
//	backbuffer := b.ImportTexture("backbuffer", swapchainTex, framegraph.UndefinedState())
//	b.Sample(color)
//	b.Render(backbuffer)
//
//	g, err := b.Build()
//	if err != nil {
//	    return err
//	}
//	return g.Execute(&framegraph.Context{Device: device, Recorder: recorder}, alloc)
//
// # Lifetimes
//
// A Builder and its Graph describe one frame and are used once. The
// Allocator lives for the whole process and pools device objects by
// descriptor across frames. Imported resources are never destroyed.
//
// # Threading
//
// Nothing in this package is safe for concurrent use. One render thread
// builds, executes and owns the Allocator.
//
// # Device integration
//
// The graph talks to the GPU only through the [Device] and
// [CommandRecorder] interfaces, which are injected by the caller. Package
// backend/wgpu implements both on top of gogpu/wgpu's HAL.
package framegraph
