// Package textutil holds the text helpers behind cue search and project
// naming: case-folded token fingerprints compared by cosine similarity with
// optional IDF weighting, and filesystem-safe project tokens.
package textutil
