// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the edge-triggered readiness loop: descriptors
// are registered with an opaque context, and Wait hands each ready
// descriptor's context and event mask to a single dispatch callback.
// Callbacks must drain a descriptor to would-block, or Yield it, before
// returning; the loop does not signal the same edge twice.
package reactor
