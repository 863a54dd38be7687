// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import "github.com/gogpu/gputypes"

// TextureDescriptor is the structural key of a transient texture.
// It is comparable, so two descriptors with equal fields share one
// allocator bucket.
type TextureDescriptor struct {
	Width              uint32
	Height             uint32
	DepthOrArrayLayers uint32
	MipLevelCount      uint32
	SampleCount        uint32
	Dimension          gputypes.TextureDimension
	Format             gputypes.TextureFormat
	Usage              gputypes.TextureUsage
}

// Texture2D returns a single-sample, single-mip 2D texture descriptor.
func Texture2D(width, height uint32, format gputypes.TextureFormat, usage gputypes.TextureUsage) TextureDescriptor {
	return TextureDescriptor{
		Width:              width,
		Height:             height,
		DepthOrArrayLayers: 1,
		MipLevelCount:      1,
		SampleCount:        1,
		Dimension:          gputypes.TextureDimension2D,
		Format:             format,
		Usage:              usage,
	}
}

// normalized replaces zero counts with 1 so that descriptors differing only
// in omitted counts land in the same bucket.
func (d TextureDescriptor) normalized() TextureDescriptor {
	if d.DepthOrArrayLayers == 0 {
		d.DepthOrArrayLayers = 1
	}
	if d.MipLevelCount == 0 {
		d.MipLevelCount = 1
	}
	if d.SampleCount == 0 {
		d.SampleCount = 1
	}
	return d
}

// BufferDescriptor is the structural key of a transient buffer.
type BufferDescriptor struct {
	Size  uint64
	Usage gputypes.BufferUsage
}

// IsDepthStencilFormat reports whether f has a depth or stencil aspect.
// Rendering into such a texture uses the depth/stencil attachment state.
func IsDepthStencilFormat(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatStencil8,
		gputypes.TextureFormatDepth16Unorm,
		gputypes.TextureFormatDepth24Plus,
		gputypes.TextureFormatDepth24PlusStencil8,
		gputypes.TextureFormatDepth32Float,
		gputypes.TextureFormatDepth32FloatStencil8:
		return true
	default:
		return false
	}
}
