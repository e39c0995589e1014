// Package serializer converts cached credential records to and from byte
// slices for the distributed tiers. Two codecs are built in: msgpack, the
// compact default the Redis tier uses, and a JSON fallback for stores or
// debugging sessions that want the payload readable.
package serializer

import (
	"github.com/goccy/go-json"

	"github.com/hyp3rd/ewrap"
)

// DefaultJSONSerializer encodes entries as JSON. Slower and larger on the
// wire than msgpack, but the stored payload stays human readable.
type DefaultJSONSerializer struct{}

// Marshal encodes the value into a byte slice.
func (*DefaultJSONSerializer) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(&v)
	if err != nil {
		return nil, ewrap.Wrap(err, "failed to marshal json")
	}

	return data, nil
}

// Unmarshal decodes the byte slice into the value.
func (*DefaultJSONSerializer) Unmarshal(data []byte, v any) error {
	err := json.Unmarshal(data, &v)
	if err != nil {
		return ewrap.Wrap(err, "failed to unmarshal json")
	}

	return nil
}
