// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"fmt"
	"sync/atomic"
)

// ResourceKind tags a handle as a texture or a buffer.
type ResourceKind uint8

const (
	// KindTexture identifies texture resources.
	KindTexture ResourceKind = iota + 1

	// KindBuffer identifies buffer resources.
	KindBuffer
)

func (k ResourceKind) String() string {
	switch k {
	case KindTexture:
		return "texture"
	case KindBuffer:
		return "buffer"
	default:
		return fmt.Sprintf("ResourceKind(%d)", uint8(k))
	}
}

// ResourceHandle is an opaque reference to a resource declared on a Builder.
//
// Handles are dense indices assigned in declaration order and never reused
// within one Builder. Each Builder gets its own session number, so a handle
// used against a different Builder, Graph or Registry is detected.
// The zero value is InvalidHandle.
type ResourceHandle struct {
	session uint64
	index   uint32
	kind    ResourceKind
}

// InvalidHandle is the sentinel returned when a declaration fails.
var InvalidHandle ResourceHandle

// Valid reports whether h was issued by a Builder.
func (h ResourceHandle) Valid() bool { return h.session != 0 && h.kind != 0 }

// Kind returns the resource kind the handle refers to.
func (h ResourceHandle) Kind() ResourceKind { return h.kind }

// Index returns the dense resource index within its graph.
func (h ResourceHandle) Index() int { return int(h.index) }

func (h ResourceHandle) String() string {
	if !h.Valid() {
		return "invalid"
	}
	return fmt.Sprintf("%s#%d", h.kind, h.index)
}

var sessionCounter atomic.Uint64

func nextSession() uint64 { return sessionCounter.Add(1) }
