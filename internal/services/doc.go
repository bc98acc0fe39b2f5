// Package services defines shared utilities consumed by the external tool
// adapters the pipeline drives.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper so every adapter failure
//     carries step and operation context and can be classified later.
//   - The Executor abstraction over subprocess execution with bounded
//     timeouts and captured output, making adapters testable without the
//     real toolchain installed.
//
// Use these helpers when wiring new adapters so failure handling stays
// uniform across the pipeline.
package services
