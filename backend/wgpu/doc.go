// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu connects framegraph to gogpu/wgpu's hardware abstraction
// layer.
//
// [Device] implements framegraph.Device over a hal.Device and keeps the
// mapping from framegraph IDs to HAL textures, views and buffers.
// [Recorder] implements framegraph.CommandRecorder over a hal.CommandEncoder
// and turns texture barriers into TransitionTextures calls.
//
// A typical frame:
//
//	dev, _ := wgpu.FromProvider(provider)
//	alloc := framegraph.NewAllocator(dev)
//
//	rec, _ := dev.NewRecorder("frame")
//	g, _ := builder.Build()
//	if err := g.Execute(&framegraph.Context{Device: dev, Recorder: rec}, alloc); err != nil {
//	    rec.Discard()
//	    return err
//	}
//	return rec.Submit(0)
//
// [OpenNoop] opens a device on the noop backend for tests and headless
// tools.
package wgpu
