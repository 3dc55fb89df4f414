// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package pipe implements a pipe(2) channel so a stream can run over a
// pipe exactly as over a TCP connection.
package pipe
