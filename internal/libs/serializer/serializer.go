package serializer

import (
	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/credcache/internal/sentinel"
)

// ISerializer encodes and decodes the payloads shipped to distributed tiers.
type ISerializer interface {
	// Marshal encodes the value into a byte slice.
	Marshal(v any) ([]byte, error)
	// Unmarshal decodes the byte slice into the value.
	Unmarshal(data []byte, v any) error
}

// Registry maps codec names to serializer constructors. Tiers resolve their
// codec by name so an embedding service can swap encodings without touching
// the tier implementation.
type Registry struct {
	serializers map[string]func() ISerializer
}

// NewSerializerRegistry returns a registry with the built-in codecs
// pre-registered: "default" (JSON) and "msgpack".
func NewSerializerRegistry() *Registry {
	return &Registry{
		serializers: map[string]func() ISerializer{
			"default": func() ISerializer { return &DefaultJSONSerializer{} },
			"msgpack": func() ISerializer { return &MsgpackSerializer{} },
		},
	}
}

// Register adds a serializer constructor under the given name, replacing any
// previous registration.
func (r *Registry) Register(serializerType string, createFunc func() ISerializer) {
	r.serializers[serializerType] = createFunc
}

// New instantiates the serializer registered under serializerType.
func (r *Registry) New(serializerType string) (ISerializer, error) {
	if serializerType == "" {
		return nil, ewrap.Wrap(sentinel.ErrParamCannotBeEmpty, "serializerType")
	}

	createFunc, ok := r.serializers[serializerType]
	if !ok {
		return nil, ewrap.Wrap(sentinel.ErrSerializerNotFound, serializerType)
	}

	return createFunc(), nil
}

// New resolves serializerType against a fresh registry holding only the
// built-in codecs.
func New(serializerType string) (ISerializer, error) {
	return NewSerializerRegistry().New(serializerType)
}
