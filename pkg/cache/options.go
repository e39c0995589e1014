package cache

import "time"

// EntryOption is a function type that can be used to configure an `Entry`.
type EntryOption func(*Entry)

// ApplyEntryOptions applies the given options to the given entry.
func ApplyEntryOptions(entry *Entry, options ...EntryOption) {
	for _, option := range options {
		option(entry)
	}
}

// WithTTL sets the absolute expiry deadline of the entry relative to now.
// Non-positive durations leave the entry without a deadline of its own, so the
// store applies its default retention window.
func WithTTL(ttl time.Duration) EntryOption {
	return func(entry *Entry) {
		if ttl > 0 {
			entry.ExpireAt = time.Now().Add(ttl)
		}
	}
}

// WithExternalID links the entry to an external identifier, enabling
// invalidation by id rather than by key digest.
func WithExternalID(id string) EntryOption {
	return func(entry *Entry) {
		entry.ExternalID = id
	}
}
