// Package services defines shared utilities consumed by the pipeline stages
// and the external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, stage names, and subtitle
//     indices for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the fatal IO, fatal external-tool, and configuration buckets the
//     CLI turns into exit codes.
//   - A captured-output error type so failed subprocesses surface their
//     stdout/stderr for diagnosis.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
