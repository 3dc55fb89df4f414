// Package control
// Author: momentics <momentics@gmail.com>
//
// Observability, configuration and debug introspection for ccio.
//
// Provides:
//   - Counter and Gauge metrics grouped into per-resource families and a
//     MetricsRegistry that an external collector polls
//   - The line-oriented Options loader consumed at process startup
//   - logrus logger construction keyed by verbosity level
//   - Debug probes for pools and platform limits
//
// Core packages only increment metrics and take plain values from Options;
// they never read configuration at runtime.
package control
