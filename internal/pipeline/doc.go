// Package pipeline wires the stages together: forced alignment, caption
// change detection, subtitle reconciliation and splicing of replacement
// scenes into output variations.
//
// A Pipeline owns no global state. Stage collaborators (aligner, frame
// source, prober, renderer, registry) are injected through Options so tests
// can run the whole flow without ffmpeg or python.
package pipeline
