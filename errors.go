// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"errors"
	"fmt"
	"strings"
)

// Authoring and execution errors.
var (
	// ErrInvalidHandle is recorded when a handle is the zero value or out of range.
	ErrInvalidHandle = errors.New("framegraph: invalid resource handle")

	// ErrForeignHandle is recorded when a handle issued by another Builder is used.
	ErrForeignHandle = errors.New("framegraph: resource handle belongs to another graph")

	// ErrNoCurrentPass is recorded when resources are declared before any pass.
	ErrNoCurrentPass = errors.New("framegraph: no current pass")

	// ErrInvalidOp is recorded when an access is not valid for the resource kind,
	// for example rendering into a buffer.
	ErrInvalidOp = errors.New("framegraph: operation not valid for resource")

	// ErrBuilderConsumed is returned when a Builder is used after Build.
	ErrBuilderConsumed = errors.New("framegraph: builder already built")

	// ErrGraphConsumed is returned when a Graph is executed twice.
	ErrGraphConsumed = errors.New("framegraph: graph already executed")

	// ErrInvalidContext is returned when Execute gets a nil context or recorder.
	ErrInvalidContext = errors.New("framegraph: execution context requires a command recorder")

	// ErrNilAllocator is returned when Execute gets a nil allocator.
	ErrNilAllocator = errors.New("framegraph: nil allocator")

	// ErrAsyncComputeUnsupported is returned by Builder.EnableAsyncCompute.
	ErrAsyncComputeUnsupported = errors.New("framegraph: async compute is not supported")

	// ErrCycle matches every *CycleError.
	ErrCycle = errors.New("framegraph: dependency cycle")

	// ErrAllocation matches every *AllocationError.
	ErrAllocation = errors.New("framegraph: resource allocation failed")
)

// CycleError reports a dependency cycle among declared passes.
// Passes lists the pass names along the cycle, first pass repeated at the end.
type CycleError struct {
	Passes []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("framegraph: dependency cycle: %s", strings.Join(e.Passes, " -> "))
}

// Is makes errors.Is(err, ErrCycle) hold.
func (e *CycleError) Is(target error) bool { return target == ErrCycle }

// AllocationError wraps a device failure while realizing a transient resource.
type AllocationError struct {
	Label string
	Kind  ResourceKind
	Err   error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("framegraph: allocate %s %q: %v", e.Kind, e.Label, e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrAllocation) hold.
func (e *AllocationError) Is(target error) bool { return target == ErrAllocation }
