//go:build !linux
// +build !linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package reactor

import "github.com/momentics/ccio/api"

// PinToCPU is not available on this platform.
func PinToCPU(int) error { return api.ErrNotSupported }
