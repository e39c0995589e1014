package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/longbridgeapp/assert"

	"github.com/hyp3rd/credcache/internal/sentinel"
)

func TestEntry_Valid(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		wantErr error
	}{
		{name: "valid entry", entry: Entry{Key: "k", Value: "v"}},
		{name: "empty key", entry: Entry{Key: "", Value: "v"}, wantErr: sentinel.ErrInvalidKey},
		{name: "blank key", entry: Entry{Key: "   ", Value: "v"}, wantErr: sentinel.ErrInvalidKey},
		{name: "nil value", entry: Entry{Key: "k", Value: nil}, wantErr: sentinel.ErrNilValue},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.entry.Valid()
			if test.wantErr == nil {
				assert.Nil(t, err)

				return
			}

			assert.True(t, errors.Is(err, test.wantErr))
		})
	}
}

func TestEntry_Expired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		entry   Entry
		expired bool
	}{
		{name: "no deadline never expires", entry: Entry{Key: "k", Value: "v"}, expired: false},
		{name: "future deadline", entry: Entry{Key: "k", Value: "v", ExpireAt: now.Add(time.Hour)}, expired: false},
		{name: "past deadline", entry: Entry{Key: "k", Value: "v", ExpireAt: now.Add(-time.Second)}, expired: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expired, test.entry.Expired())
		})
	}
}

func TestEntry_Touch(t *testing.T) {
	entry := Entry{Key: "k", Value: "v", LastAccess: time.Now().Add(-time.Minute)}

	before := entry.LastAccess
	entry.Touch()

	assert.True(t, entry.LastAccess.After(before))
	assert.Equal(t, uint32(1), entry.AccessCount)

	entry.Touch()
	assert.Equal(t, uint32(2), entry.AccessCount)
}

func TestEntry_TTL(t *testing.T) {
	entry := Entry{Key: "k", Value: "v"}
	assert.Equal(t, time.Duration(0), entry.TTL())

	entry.ExpireAt = time.Now().Add(time.Hour)
	remaining := entry.TTL()
	assert.True(t, remaining > 59*time.Minute)
	assert.True(t, remaining <= time.Hour)

	entry.ExpireAt = time.Now().Add(-time.Hour)
	assert.Equal(t, time.Duration(0), entry.TTL())
}

func TestEntry_SetSize(t *testing.T) {
	tests := []struct {
		name         string
		value        any
		expectedSize int64
	}{
		{name: "byte slice", value: []byte("12345"), expectedSize: 5},
		{name: "string", value: "1234567890", expectedSize: 10},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			entry := Entry{Key: "k", Value: test.value}

			err := entry.SetSize()
			assert.Nil(t, err)
			assert.Equal(t, test.expectedSize, entry.Size)
		})
	}
}

func TestEntry_SetSizeStruct(t *testing.T) {
	entry := Entry{Key: "k", Value: struct {
		Name string
		Age  int
	}{Name: "alice", Age: 42}}

	err := entry.SetSize()
	assert.Nil(t, err)
	assert.True(t, entry.Size > 0)
}

func TestApplyEntryOptions(t *testing.T) {
	entry := &Entry{Key: "k", Value: "v"}

	ApplyEntryOptions(entry, WithTTL(time.Hour), WithExternalID("user-1"))

	assert.Equal(t, "user-1", entry.ExternalID)
	assert.False(t, entry.ExpireAt.IsZero())
	assert.True(t, entry.TTL() > 59*time.Minute)

	// non-positive ttl leaves the deadline unset
	fresh := &Entry{Key: "k", Value: "v"}
	ApplyEntryOptions(fresh, WithTTL(0))
	assert.True(t, fresh.ExpireAt.IsZero())
}

func TestEntryPool(t *testing.T) {
	pool := NewEntryPool()

	entry := pool.Get()
	entry.Key = "k"
	entry.Value = "v"
	entry.AccessCount = 3

	pool.Put(entry)

	recycled := pool.Get()
	assert.Equal(t, "", recycled.Key)
	assert.Nil(t, recycled.Value)
	assert.Equal(t, uint32(0), recycled.AccessCount)
}
