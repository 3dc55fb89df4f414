// Package transport
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Syscall boundary for every channel variant. Reads and writes are issued on
// non-blocking descriptors; EINTR is absorbed here and never surfaces, every
// other errno is classified exactly once into an *api.IOError and the
// transfer outcome is folded into an Outcome the channels apply verbatim.
package transport
