package serializer

import (
	"errors"
	"testing"

	"github.com/longbridgeapp/assert"

	"github.com/hyp3rd/credcache/internal/sentinel"
)

func TestRegistry_New(t *testing.T) {
	tests := []struct {
		name           string
		serializerType string
		expectedErr    error
	}{
		{name: "default json", serializerType: "default"},
		{name: "msgpack", serializerType: "msgpack"},
		{name: "empty type", serializerType: "", expectedErr: sentinel.ErrParamCannotBeEmpty},
		{name: "unknown type", serializerType: "xml", expectedErr: sentinel.ErrSerializerNotFound},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s, err := New(test.serializerType)
			if test.expectedErr != nil {
				assert.True(t, errors.Is(err, test.expectedErr))

				return
			}

			assert.Nil(t, err)
			assert.True(t, s != nil)
		})
	}
}

func TestSerializers_RoundTrip(t *testing.T) {
	type payload struct {
		Key   string
		Value string
		Count int
	}

	for _, serializerType := range []string{"default", "msgpack"} {
		t.Run(serializerType, func(t *testing.T) {
			s, err := New(serializerType)
			assert.Nil(t, err)

			in := payload{Key: "token", Value: "principal", Count: 3}

			data, err := s.Marshal(in)
			assert.Nil(t, err)
			assert.True(t, len(data) > 0)

			var out payload

			err = s.Unmarshal(data, &out)
			assert.Nil(t, err)
			assert.Equal(t, in, out)
		})
	}
}
