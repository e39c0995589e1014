// Package sentinel provides standardized error definitions for the credcache system.
// This package centralizes all error values used across the cache components so that
// every externally visible failure mode maps to exactly one sentinel, resolved at
// construction time rather than by per-call string inspection.
//
// All errors are created using the ewrap package to provide enhanced error
// wrapping and context capabilities.
package sentinel

import (
	"github.com/hyp3rd/ewrap"
)

var (
	// ErrInvalidKey is returned when an invalid key is used to access an entry in the cache.
	// An invalid key is a key that is either empty or consists only of whitespace characters.
	ErrInvalidKey = ewrap.New("invalid key")

	// ErrNilValue is returned when a nil value is attempted to be set in the cache.
	ErrNilValue = ewrap.New("nil value")

	// ErrNilClient is returned when a nil client is passed to a distributed tier.
	ErrNilClient = ewrap.New("nil client")

	// ErrInvalidExpiration is returned when a negative expiration is passed to a cache entry.
	ErrInvalidExpiration = ewrap.New("expiration cannot be negative")

	// ErrInvalidCapacity is returned when an invalid capacity is passed to the cache.
	ErrInvalidCapacity = ewrap.New("capacity cannot be negative")

	// ErrInvalidShardCount is returned when the shard count is not a positive number.
	ErrInvalidShardCount = ewrap.New("shard count must be positive")

	// ErrPolicyNotFound is returned when an eviction policy is not registered.
	ErrPolicyNotFound = ewrap.New("eviction policy not found")

	// ErrSerializerNotFound is returned when a serializer is not found.
	ErrSerializerNotFound = ewrap.New("serializer not found")

	// ErrParamCannotBeEmpty is returned when a parameter cannot be empty.
	ErrParamCannotBeEmpty = ewrap.New("param cannot be empty")

	// ErrInvalidSize is returned when an entry size cannot be computed.
	ErrInvalidSize = ewrap.New("invalid size")

	// ErrMgmtHTTPShutdownTimeout is returned when the management HTTP server fails to shutdown before context deadline.
	ErrMgmtHTTPShutdownTimeout = ewrap.New("management http shutdown timeout")
)
