// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp implements non-blocking TCP connections driven by an
// edge-triggered event loop, and the pool they are borrowed from.
//
// Transfers never block and never retry beyond EINTR. Their outcome is one
// of api.StatusOK, StatusEOF, StatusAgain or StatusError, and the
// connection's readiness flag is updated to match.
package tcp
