// Package cache defines the entry type held by the local store and shipped to
// distributed tiers. An entry carries an opaque credential-attribute payload
// keyed by a digest; the raw credential is never part of an entry.
package cache

import (
	"bytes"
	"encoding"
	"strings"
	"sync"
	"time"

	"github.com/ugorji/go/codec"

	"github.com/hyp3rd/credcache/internal/sentinel"
)

const bytesPerKB = 1024

// Global pools and codec handle for zero-alloc SetSize.
// These are intentionally package-scoped to amortize allocations across calls.
//
//nolint:gochecknoglobals
var cborHandle = &codec.CborHandle{}

//nolint:gochecknoglobals
var bufPool = sync.Pool{ // *bytes.Buffer
	New: func() any { return new(bytes.Buffer) },
}

// EntryPool manages Entry object pools for memory efficiency.
type EntryPool struct {
	pool sync.Pool
}

// NewEntryPool creates a new EntryPool.
func NewEntryPool() *EntryPool {
	return &EntryPool{
		pool: sync.Pool{New: func() any { return &Entry{} }},
	}
}

// Get retrieves an Entry from the pool.
func (p *EntryPool) Get() *Entry {
	if v, ok := p.pool.Get().(*Entry); ok {
		return v
	}

	return &Entry{}
}

// Put returns an Entry to the pool.
func (p *EntryPool) Put(entry *Entry) {
	if entry == nil {
		return
	}
	// Zero to avoid retaining references across pool reuses
	*entry = Entry{}
	p.pool.Put(entry)
}

// Entry is a single cached credential-lookup result. It is owned by exactly
// one shard of the local store for its entire lifetime.
type Entry struct {
	Key         string    // digest identifying the credential
	Value       any       // opaque attribute payload
	ExternalID  string    // external identifier for id-based invalidation, may be empty
	CreatedAt   time.Time // creation time
	LastAccess  time.Time // last access time
	ExpireAt    time.Time // absolute expiry deadline; zero means no expiry
	Size        int64     // size in bytes
	AccessCount uint32    // number of times the entry has been accessed
}

// ExternalIdentifier is implemented by payloads that carry an external
// identifier. Setting such a value links the id in the identity index.
type ExternalIdentifier interface {
	ExternalID() string
}

// Touch updates last access time and increments access count.
func (e *Entry) Touch() {
	e.LastAccess = time.Now()
	e.AccessCount++
}

// Expired reports whether the entry is past its absolute expiry deadline.
func (e *Entry) Expired() bool {
	return !e.ExpireAt.IsZero() && time.Now().After(e.ExpireAt)
}

// TTL returns the remaining time before the entry expires. Zero is returned
// for entries without a deadline and for already-expired entries.
func (e *Entry) TTL() time.Duration {
	if e.ExpireAt.IsZero() {
		return 0
	}

	remaining := time.Until(e.ExpireAt)
	if remaining < 0 {
		return 0
	}

	return remaining
}

// SizeMB returns the size of the Entry in megabytes.
func (e *Entry) SizeMB() float64 { return float64(e.Size) / (bytesPerKB * bytesPerKB) }

// SizeKB returns the size of the Entry in kilobytes.
func (e *Entry) SizeKB() float64 { return float64(e.Size) / bytesPerKB }

// Valid returns an error if the entry is invalid, nil otherwise.
func (e *Entry) Valid() error {
	if strings.TrimSpace(e.Key) == "" {
		return sentinel.ErrInvalidKey
	}

	if e.Value == nil {
		return sentinel.ErrNilValue
	}

	return nil
}

// Sizer allows custom values to report their encoded size without serialization.
type Sizer interface{ SizeBytes() int }

// SetSize computes and sets Size using fast paths and a pooled encoder/buffer.
func (e *Entry) SetSize() error {
	// Fast paths for common types
	switch val := e.Value.(type) {
	case []byte:
		e.Size = int64(len(val))

		return nil

	case string:
		e.Size = int64(len(val))

		return nil

	case encoding.BinaryMarshaler:
		b, err := val.MarshalBinary()
		if err != nil {
			return sentinel.ErrInvalidSize
		}

		e.Size = int64(len(b))

		return nil

	case Sizer:
		e.Size = int64(val.SizeBytes())

		return nil
	}

	// Fallback to CBOR encoding into a pooled bytes.Buffer
	bufAny := bufPool.Get()

	buf, ok := bufAny.(*bytes.Buffer)
	if !ok {
		// extremely unlikely; create a new buffer
		buf = new(bytes.Buffer)
	}

	buf.Reset()

	// Avoid retaining huge buffers in the pool
	const maxKeepCap = 1 << 20 // 1 MiB

	defer func() {
		if buf.Cap() > maxKeepCap {
			// let GC reclaim a too-large buffer
			return
		}

		buf.Reset()
		bufPool.Put(buf)
	}()

	enc := codec.NewEncoder(buf, cborHandle)

	err := enc.Encode(e.Value)
	if err != nil {
		return sentinel.ErrInvalidSize
	}

	e.Size = int64(buf.Len())

	return nil
}
