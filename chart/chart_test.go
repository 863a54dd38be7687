// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package chart

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/font/basicfont"
)

func testGraph(t *testing.T) *framegraph.Graph {
	t.Helper()
	desc := framegraph.Texture2D(8, 8, gputypes.TextureFormatRGBA8Unorm,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageTextureBinding)

	b := framegraph.NewBuilder()
	b.AddPass("gbuffer")
	gb := b.Render(b.CreateTexture("gbuffer", desc))
	b.AddPass("debug")
	b.Sample(gb)
	b.Render(b.CreateTexture("debug", desc))
	b.AddPass("lighting").Preserve()
	b.Sample(gb)
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	return g
}

func TestRenderLayout(t *testing.T) {
	g := testGraph(t)
	opts := &Options{CellWidth: 40, RowHeight: 16, Face: basicfont.Face7x13}

	img, err := Render(g, opts)
	if err != nil {
		t.Fatalf("Render() = %v", err)
	}
	b := img.Bounds()
	if b.Dy() != 3*16+padding {
		t.Errorf("height = %d, want header + 2 rows", b.Dy())
	}
	labelWidth := 7*len("gbuffer") + 2*padding
	if b.Dx() != labelWidth+3*40+padding {
		t.Errorf("width = %d", b.Dx())
	}

	// gbuffer lives from pass 0 to pass 2: the bar covers the middle of
	// the debug column.
	x := labelWidth + 40 + 20
	y := 16 + 8
	if got := img.RGBAAt(x, y); got != colorTexture {
		t.Errorf("pixel in gbuffer bar = %v, want %v", got, colorTexture)
	}
	// The culled debug texture is only outlined.
	if got := img.RGBAAt(x, 2*16+8); got == colorTexture {
		t.Errorf("culled resource drawn as live bar")
	}
}

func TestRenderScale(t *testing.T) {
	g := testGraph(t)
	one, err := Render(g, &Options{Face: basicfont.Face7x13})
	if err != nil {
		t.Fatalf("Render() = %v", err)
	}
	two, err := Render(g, &Options{Face: basicfont.Face7x13, Scale: 2})
	if err != nil {
		t.Fatalf("Render(scale 2) = %v", err)
	}
	if two.Bounds().Dx() != 2*one.Bounds().Dx() || two.Bounds().Dy() != 2*one.Bounds().Dy() {
		t.Errorf("scaled size = %v, base %v", two.Bounds(), one.Bounds())
	}
}

func TestRenderDefaultFace(t *testing.T) {
	img, err := Render(testGraph(t), nil)
	if err != nil {
		t.Fatalf("Render() = %v", err)
	}
	if img.Bounds().Empty() {
		t.Error("empty chart")
	}
	if got := img.At(0, img.Bounds().Dy()-1); got != color.Color(colorBackground) {
		t.Errorf("corner = %v, want background", got)
	}
}

func TestRenderNilGraph(t *testing.T) {
	if _, err := Render(nil, nil); !errors.Is(err, ErrNilGraph) {
		t.Errorf("Render(nil) = %v, want ErrNilGraph", err)
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, testGraph(t), nil); err != nil {
		t.Fatalf("WritePNG() = %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Errorf("output is not a PNG: %v", err)
	}

	path := filepath.Join(t.TempDir(), "lifetimes.png")
	if err := SavePNG(path, testGraph(t), nil); err != nil {
		t.Errorf("SavePNG() = %v", err)
	}
}

func TestClip(t *testing.T) {
	face := basicfont.Face7x13
	if got := clip(face, "short", 100); got != "short" {
		t.Errorf("clip() = %q", got)
	}
	got := clip(face, "a-very-long-pass-name", 50)
	if len(got) == 0 || got == "a-very-long-pass-name" {
		t.Errorf("clip() = %q, want shortened", got)
	}
}
