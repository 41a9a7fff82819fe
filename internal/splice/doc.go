// Package splice builds and renders the output timeline: host video cut at
// subtitle boundaries with selected segments swapped for replacement
// footage.
//
// Planning is pure. Clips are descriptions (source window, loop flag,
// target duration, frame geometry) and nothing is decoded until a Renderer
// turns a Timeline into a file. Every planned segment lasts exactly its
// target duration: shorter sources loop and longer ones are trimmed.
package splice
