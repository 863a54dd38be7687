// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package chart draws the resource lifetimes of a compiled framegraph.Graph
// as an image: one column per pass, one row per resource, a bar from the
// pass that realizes a resource to the pass that releases it.
package chart

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"sync"

	"github.com/gogpu/framegraph"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrNilGraph is returned when Render gets a nil graph.
var ErrNilGraph = errors.New("chart: nil graph")

// Options controls the chart layout. The zero value selects defaults.
type Options struct {
	// CellWidth is the width of one pass column in pixels.
	CellWidth int
	// RowHeight is the height of one resource row in pixels.
	RowHeight int
	// Scale enlarges the finished chart by an integer factor.
	Scale int
	// Face overrides the label font.
	Face font.Face
}

const (
	defaultCellWidth = 72
	defaultRowHeight = 20
	padding          = 6
)

var (
	colorBackground = color.RGBA{R: 0xfa, G: 0xfa, B: 0xfa, A: 0xff}
	colorGrid       = color.RGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}
	colorText       = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
	colorCulled     = color.RGBA{R: 0xb0, G: 0xb0, B: 0xb0, A: 0xff}
	colorTexture    = color.RGBA{R: 0x3b, G: 0x82, B: 0xc4, A: 0xff}
	colorBuffer     = color.RGBA{R: 0xe0, G: 0x8a, B: 0x2c, A: 0xff}
	colorImported   = color.RGBA{R: 0x4c, G: 0xa6, B: 0x5a, A: 0xff}
	colorWrite      = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}
)

var (
	faceOnce    sync.Once
	defaultFace font.Face
)

// labelFace returns Go Regular at 11pt, or the 7x13 bitmap face if the
// embedded font cannot be parsed.
func labelFace() font.Face {
	faceOnce.Do(func() {
		defaultFace = basicfont.Face7x13
		parsed, err := opentype.Parse(goregular.TTF)
		if err != nil {
			framegraph.Logger().Warn("chart: falling back to basic font", "err", err)
			return
		}
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    11,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			framegraph.Logger().Warn("chart: falling back to basic font", "err", err)
			return
		}
		defaultFace = face
	})
	return defaultFace
}

// Render draws g's passes and resource lifetimes.
//
// Active passes are labeled in the header, culled ones in gray. Each
// resource row shows a bar over its lifetime colored by kind (imported
// resources green, buffers orange, textures blue) and a mark in every pass
// that writes it. Culled resources are drawn as a gray outline between
// their creator and their last declared use.
func Render(g *framegraph.Graph, opts *Options) (*image.RGBA, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.CellWidth <= 0 {
		o.CellWidth = defaultCellWidth
	}
	if o.RowHeight <= 0 {
		o.RowHeight = defaultRowHeight
	}
	face := o.Face
	if face == nil {
		face = labelFace()
	}

	passes := g.Passes()
	resources := g.Resources()

	labelWidth := 0
	for _, r := range resources {
		labelWidth = max(labelWidth, font.MeasureString(face, r.Label).Ceil())
	}
	labelWidth += 2 * padding

	width := labelWidth + len(passes)*o.CellWidth + padding
	height := (len(resources)+1)*o.RowHeight + padding
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill(img, img.Bounds(), colorBackground)

	c := &canvas{img: img, face: face, opts: o, left: labelWidth}
	c.header(passes)
	writers := writersByResource(passes, len(resources))
	for i, r := range resources {
		c.row(i+1, r, writers[i])
	}

	if o.Scale > 1 {
		scaled := image.NewRGBA(image.Rect(0, 0, width*o.Scale, height*o.Scale))
		xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		img = scaled
	}
	return img, nil
}

// WritePNG renders g and encodes it as PNG to w.
func WritePNG(w io.Writer, g *framegraph.Graph, opts *Options) error {
	img, err := Render(g, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// SavePNG renders g into the PNG file path.
func SavePNG(path string, g *framegraph.Graph, opts *Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	return WritePNG(f, g, opts)
}

func writersByResource(passes []framegraph.PassInfo, n int) [][]int {
	out := make([][]int, n)
	for _, p := range passes {
		for _, h := range p.Writes {
			out[h.Index()] = append(out[h.Index()], p.Index)
		}
	}
	return out
}

type canvas struct {
	img  *image.RGBA
	face font.Face
	opts Options
	left int
}

func (c *canvas) cell(pass, row int) image.Rectangle {
	x := c.left + pass*c.opts.CellWidth
	y := row * c.opts.RowHeight
	return image.Rect(x, y, x+c.opts.CellWidth, y+c.opts.RowHeight)
}

func (c *canvas) text(s string, x, y int, col color.Color) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: c.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// baseline returns the text baseline for a row.
func (c *canvas) baseline(row int) int {
	m := c.face.Metrics()
	top := row * c.opts.RowHeight
	return top + (c.opts.RowHeight+m.Ascent.Ceil()-m.Descent.Ceil())/2
}

func (c *canvas) header(passes []framegraph.PassInfo) {
	for _, p := range passes {
		r := c.cell(p.Index, 0)
		col := colorText
		if !p.Active {
			col = colorCulled
		}
		label := p.Name
		if p.Preserved {
			label += "*"
		}
		c.text(clip(c.face, label, c.opts.CellWidth-4), r.Min.X+2, c.baseline(0), col)
		fill(c.img, image.Rect(r.Min.X, 0, r.Min.X+1, c.img.Bounds().Dy()), colorGrid)
	}
	fill(c.img, image.Rect(0, c.opts.RowHeight-1, c.img.Bounds().Dx(), c.opts.RowHeight), colorGrid)
}

func (c *canvas) row(row int, r framegraph.ResourceInfo, writers []int) {
	c.text(r.Label, padding, c.baseline(row), colorText)

	inset := c.opts.RowHeight / 4
	if r.Culled() {
		first, last := c.cell(r.Creator, row), c.cell(max(r.LastPass, r.Creator), row)
		outline(c.img, image.Rect(first.Min.X+2, first.Min.Y+inset, last.Max.X-2, last.Max.Y-inset), colorCulled)
		return
	}

	col := colorTexture
	switch {
	case r.Imported:
		col = colorImported
	case r.Handle.Kind() == framegraph.KindBuffer:
		col = colorBuffer
	}
	first, last := c.cell(r.FirstUse, row), c.cell(r.Release, row)
	fill(c.img, image.Rect(first.Min.X+2, first.Min.Y+inset, last.Max.X-2, last.Max.Y-inset), col)

	for _, p := range writers {
		if p < r.FirstUse || p > r.Release {
			continue
		}
		cell := c.cell(p, row)
		cx := (cell.Min.X + cell.Max.X) / 2
		fill(c.img, image.Rect(cx-2, cell.Min.Y+inset+2, cx+2, cell.Max.Y-inset-2), colorWrite)
	}
}

// clip shortens s with an ellipsis until it fits in width pixels.
func clip(face font.Face, s string, width int) string {
	if font.MeasureString(face, s).Ceil() <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		t := string(runes) + "…"
		if font.MeasureString(face, t).Ceil() <= width {
			return t
		}
	}
	return ""
}

func fill(img *image.RGBA, r image.Rectangle, col color.Color) {
	xdraw.Draw(img, r, image.NewUniform(col), image.Point{}, xdraw.Src)
}

func outline(img *image.RGBA, r image.Rectangle, col color.Color) {
	fill(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), col)
	fill(img, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), col)
	fill(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), col)
	fill(img, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), col)
}
