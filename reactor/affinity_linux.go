//go:build linux
// +build linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor - Linux-specific CPU affinity for the loop goroutine.

package reactor

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/momentics/ccio/api"
)

// PinToCPU locks the calling goroutine to its OS thread and binds that
// thread to cpu. Call it from the goroutine that drives the Loop.
func PinToCPU(cpu int) error {
	if cpu < 0 || cpu >= runtime.NumCPU() {
		return fmt.Errorf("%w: cpu %d", api.ErrInvalidArgument, cpu)
	}
	runtime.LockOSThread()
	var set unix.CPUSet
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		runtime.UnlockOSThread()
		return api.AsIOError("sched_setaffinity", err)
	}
	return nil
}
