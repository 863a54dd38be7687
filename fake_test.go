// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/gogpu/gputypes"
)

var errDeviceFailure = errors.New("fake device failure")

// fakeDevice is an in-memory Device that counts every call.
type fakeDevice struct {
	nextID uint64

	textures map[TextureID]TextureDescriptor
	views    map[TextureViewID]TextureID
	buffers  map[BufferID]BufferDescriptor

	createdTextures   int
	destroyedTextures int
	createdViews      int
	destroyedViews    int
	createdBuffers    int
	destroyedBuffers  int

	failTextures bool
	failViews    bool
	failBuffers  bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		textures: make(map[TextureID]TextureDescriptor),
		views:    make(map[TextureViewID]TextureID),
		buffers:  make(map[BufferID]BufferDescriptor),
	}
}

func (d *fakeDevice) id() uint64 {
	d.nextID++
	return d.nextID
}

func (d *fakeDevice) CreateTexture(desc *TextureDescriptor, _ string) (TextureID, error) {
	if d.failTextures {
		return InvalidID, errDeviceFailure
	}
	id := TextureID(d.id())
	d.textures[id] = *desc
	d.createdTextures++
	return id, nil
}

func (d *fakeDevice) CreateTextureView(tex TextureID, _ string) (TextureViewID, error) {
	if d.failViews {
		return InvalidID, errDeviceFailure
	}
	if _, ok := d.textures[tex]; !ok {
		return InvalidID, fmt.Errorf("unknown texture %d", tex)
	}
	id := TextureViewID(d.id())
	d.views[id] = tex
	d.createdViews++
	return id, nil
}

func (d *fakeDevice) DestroyTextureView(view TextureViewID) {
	delete(d.views, view)
	d.destroyedViews++
}

func (d *fakeDevice) DestroyTexture(tex TextureID) {
	delete(d.textures, tex)
	d.destroyedTextures++
}

func (d *fakeDevice) CreateBuffer(desc *BufferDescriptor, _ string) (BufferID, error) {
	if d.failBuffers {
		return InvalidID, errDeviceFailure
	}
	id := BufferID(d.id())
	d.buffers[id] = *desc
	d.createdBuffers++
	return id, nil
}

func (d *fakeDevice) DestroyBuffer(buf BufferID) {
	delete(d.buffers, buf)
	d.destroyedBuffers++
}

// fakeRecorder collects emitted barriers.
type fakeRecorder struct {
	barriers []Barrier
}

func (r *fakeRecorder) ResourceBarrier(b Barrier) {
	r.barriers = append(r.barriers, b)
}

// eventHandler is a slog.Handler recording the debug events emitted while a
// graph executes as short strings such as "barrier T render-target".
type eventHandler struct {
	mu     sync.Mutex
	events []string
}

func (h *eventHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *eventHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]string)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.String()
		return true
	})

	var ev string
	switch r.Message {
	case "framegraph: realize":
		ev = "realize " + attrs["resource"]
	case "framegraph: release":
		ev = "release " + attrs["resource"]
	case "framegraph: run pass":
		ev = "run " + attrs["pass"]
	case "framegraph: barrier":
		ev = "barrier " + attrs["resource"] + " " + attrs["after"]
	default:
		return nil
	}
	h.mu.Lock()
	h.events = append(h.events, ev)
	h.mu.Unlock()
	return nil
}

func (h *eventHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *eventHandler) WithGroup(string) slog.Handler      { return h }

// captureEvents routes the package logger into an eventHandler for the
// duration of the test.
func captureEvents(t *testing.T) *eventHandler {
	t.Helper()
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	h := &eventHandler{}
	SetLogger(slog.New(h))
	return h
}

func colorDesc(w, h uint32) TextureDescriptor {
	return Texture2D(w, h, gputypes.TextureFormatRGBA8Unorm,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageTextureBinding)
}

func mustBuild(t *testing.T, b *Builder) *Graph {
	t.Helper()
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	return g
}
