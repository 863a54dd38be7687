// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import "fmt"

// BarrierLayout is the backend-neutral image layout of a resource.
type BarrierLayout uint8

const (
	LayoutUndefined BarrierLayout = iota
	LayoutShaderResource
	LayoutUnorderedAccess
	LayoutPresent
	LayoutRenderTarget
	LayoutDepthStencilWrite
	LayoutCopySource
	LayoutCopyDest
)

var layoutNames = [...]string{
	LayoutUndefined:         "undefined",
	LayoutShaderResource:    "shader-resource",
	LayoutUnorderedAccess:   "unordered-access",
	LayoutPresent:           "present",
	LayoutRenderTarget:      "render-target",
	LayoutDepthStencilWrite: "depth-stencil-write",
	LayoutCopySource:        "copy-source",
	LayoutCopyDest:          "copy-dest",
}

func (l BarrierLayout) String() string {
	if int(l) < len(layoutNames) {
		return layoutNames[l]
	}
	return fmt.Sprintf("BarrierLayout(%d)", uint8(l))
}

// BarrierSync is the pipeline scope that must complete before or may start
// after a transition.
type BarrierSync uint8

const (
	SyncNone BarrierSync = iota
	SyncAll
	SyncAllShading
	SyncVertexShading
	SyncPixelShading
	SyncComputeShading
	SyncRenderTarget
	SyncDepthStencil
	SyncCopy
)

var syncNames = [...]string{
	SyncNone:           "none",
	SyncAll:            "all",
	SyncAllShading:     "all-shading",
	SyncVertexShading:  "vertex-shading",
	SyncPixelShading:   "pixel-shading",
	SyncComputeShading: "compute-shading",
	SyncRenderTarget:   "render-target",
	SyncDepthStencil:   "depth-stencil",
	SyncCopy:           "copy",
}

func (s BarrierSync) String() string {
	if int(s) < len(syncNames) {
		return syncNames[s]
	}
	return fmt.Sprintf("BarrierSync(%d)", uint8(s))
}

// BarrierAccess is the kind of memory access allowed in a state.
type BarrierAccess uint8

const (
	AccessNone BarrierAccess = iota
	AccessShaderResource
	AccessUnorderedAccess
	AccessRenderTarget
	AccessDepthStencilWrite
	AccessCopySource
	AccessCopyDest
)

var accessNames = [...]string{
	AccessNone:              "none",
	AccessShaderResource:    "shader-resource",
	AccessUnorderedAccess:   "unordered-access",
	AccessRenderTarget:      "render-target",
	AccessDepthStencilWrite: "depth-stencil-write",
	AccessCopySource:        "copy-source",
	AccessCopyDest:          "copy-dest",
}

func (a BarrierAccess) String() string {
	if int(a) < len(accessNames) {
		return accessNames[a]
	}
	return fmt.Sprintf("BarrierAccess(%d)", uint8(a))
}

// TransitionState describes how a resource may currently be accessed.
// Two uses need a barrier between them exactly when their states differ.
type TransitionState struct {
	Layout BarrierLayout
	Sync   BarrierSync
	Access BarrierAccess
}

func (s TransitionState) String() string {
	return fmt.Sprintf("{%s %s %s}", s.Layout, s.Sync, s.Access)
}

// UndefinedState is the state of a freshly realized resource.
func UndefinedState() TransitionState {
	return TransitionState{Layout: LayoutUndefined, Sync: SyncNone, Access: AccessNone}
}

// ShaderResourceState is the state for sampled/read-only shader access.
func ShaderResourceState(sync BarrierSync) TransitionState {
	return TransitionState{Layout: LayoutShaderResource, Sync: sync, Access: AccessShaderResource}
}

// UnorderedAccessState is the state for storage (read/write) shader access.
func UnorderedAccessState(sync BarrierSync) TransitionState {
	return TransitionState{Layout: LayoutUnorderedAccess, Sync: sync, Access: AccessUnorderedAccess}
}

// PresentSrcState is the state a swapchain image must be in to be presented.
func PresentSrcState() TransitionState {
	return TransitionState{Layout: LayoutPresent, Sync: SyncNone, Access: AccessNone}
}

// ColorAttachmentState is the state for rendering into a color target.
func ColorAttachmentState() TransitionState {
	return TransitionState{Layout: LayoutRenderTarget, Sync: SyncRenderTarget, Access: AccessRenderTarget}
}

// DepthStencilAttachmentState is the state for depth/stencil testing and writes.
func DepthStencilAttachmentState() TransitionState {
	return TransitionState{Layout: LayoutDepthStencilWrite, Sync: SyncDepthStencil, Access: AccessDepthStencilWrite}
}

// CopySrcState is the state for reading in a copy.
func CopySrcState() TransitionState {
	return TransitionState{Layout: LayoutCopySource, Sync: SyncCopy, Access: AccessCopySource}
}

// CopyDstState is the state for writing in a copy.
func CopyDstState() TransitionState {
	return TransitionState{Layout: LayoutCopyDest, Sync: SyncCopy, Access: AccessCopyDest}
}

// ReadOp is the intended GPU usage of a read access.
type ReadOp uint8

const (
	// ReadNop declares a dependency without any state change.
	ReadNop ReadOp = iota
	// ReadPlain is a storage (unordered access) read.
	ReadPlain
	// ReadSample is a sampled/shader-resource read.
	ReadSample
	// ReadPresent hands a texture to the presentation engine.
	ReadPresent
)

func (op ReadOp) String() string {
	switch op {
	case ReadNop:
		return "nop"
	case ReadPlain:
		return "read"
	case ReadSample:
		return "sample"
	case ReadPresent:
		return "present"
	default:
		return fmt.Sprintf("ReadOp(%d)", uint8(op))
	}
}

// targetState returns the state a read op requires. ok is false for ReadNop.
func (op ReadOp) targetState() (state TransitionState, ok bool) {
	switch op {
	case ReadPlain:
		return UnorderedAccessState(SyncAll), true
	case ReadSample:
		return ShaderResourceState(SyncAllShading), true
	case ReadPresent:
		return PresentSrcState(), true
	default:
		return TransitionState{}, false
	}
}

// WriteOp is the intended GPU usage of a write access.
type WriteOp uint8

const (
	// WriteNop declares a dependency without any state change.
	WriteNop WriteOp = iota
	// WritePlain is a storage (unordered access) write.
	WritePlain
	// WriteRender uses the texture as a color or depth/stencil attachment.
	WriteRender
)

func (op WriteOp) String() string {
	switch op {
	case WriteNop:
		return "nop"
	case WritePlain:
		return "write"
	case WriteRender:
		return "render"
	default:
		return fmt.Sprintf("WriteOp(%d)", uint8(op))
	}
}

// targetState returns the state a write op requires. depthStencil selects
// the depth/stencil attachment state for WriteRender. ok is false for WriteNop.
func (op WriteOp) targetState(depthStencil bool) (state TransitionState, ok bool) {
	switch op {
	case WritePlain:
		return UnorderedAccessState(SyncAll), true
	case WriteRender:
		if depthStencil {
			return DepthStencilAttachmentState(), true
		}
		return ColorAttachmentState(), true
	default:
		return TransitionState{}, false
	}
}

// Barrier is one state transition recorded before a pass runs.
// For textures the subresource range always covers the whole resource.
type Barrier struct {
	Kind    ResourceKind
	Label   string
	Pass    string
	Texture Texture
	Buffer  Buffer
	Before  TransitionState
	After   TransitionState

	BaseMipLevel   uint32
	MipLevelCount  uint32
	BaseArrayLayer uint32
	ArrayLayers    uint32
}
