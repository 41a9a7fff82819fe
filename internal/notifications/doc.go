// Package notifications posts pipeline run notices to an ntfy topic.
//
// NewService returns a no-op publisher when no topic is configured, so
// callers publish unconditionally.
package notifications
