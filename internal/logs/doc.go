// Package logs reads the cuesplice log file for the "cuesplice logs"
// command: the last N lines, then optionally every line appended after them
// until the context ends.
package logs
