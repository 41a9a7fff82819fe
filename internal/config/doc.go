// Package config loads, normalizes, and validates cuesplice configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads .env files, and honours environment
// fallbacks for the external binaries (CUESPLICE_FFMPEG, CUESPLICE_FFPROBE,
// CUESPLICE_PYTHON). Detection and reconcile knobs are exposed as one
// explicit Tuning value so the pipeline never reads package-level constants.
package config
