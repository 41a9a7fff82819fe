// Package language normalizes the transcript language handed to the
// forced aligner, which expects ISO 639-3 codes.
package language
