package prefhook

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	t.Run("serialized list", func(t *testing.T) {
		def := notificationsHook()["enabled_notifications"]

		raw, err := Encode(def, []string{"email", "sms"})
		require.NoError(t, err)
		assert.Equal(t, `["email","sms"]`, raw)

		value, err := Decode(def, raw)
		require.NoError(t, err)
		assert.Equal(t, []any{"email", "sms"}, value)

		_, err = Decode(def, "email,sms")
		assert.ErrorIs(t, err, ErrInvalidValue)

		_, err = Encode(def, make(chan int))
		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("scalar kinds follow the default", func(t *testing.T) {
		boolDef := Definition{Title: "Enabled", DefaultValue: true}
		raw, err := Encode(boolDef, false)
		require.NoError(t, err)
		assert.Equal(t, "false", raw)
		value, err := Decode(boolDef, raw)
		require.NoError(t, err)
		assert.Equal(t, false, value)
		_, err = Decode(boolDef, "maybe")
		assert.ErrorIs(t, err, ErrInvalidValue)

		intDef := Definition{Title: "Volume", DefaultValue: 50}
		raw, err = Encode(intDef, 75)
		require.NoError(t, err)
		assert.Equal(t, "75", raw)
		value, err = Decode(intDef, raw)
		require.NoError(t, err)
		assert.Equal(t, 75, value)
		_, err = Decode(intDef, "loud")
		assert.ErrorIs(t, err, ErrInvalidValue)

		floatDef := Definition{Title: "Ratio", DefaultValue: 0.5}
		raw, err = Encode(floatDef, 1.25)
		require.NoError(t, err)
		assert.Equal(t, "1.25", raw)
		value, err = Decode(floatDef, raw)
		require.NoError(t, err)
		assert.Equal(t, 1.25, value)

		stringDef := Definition{Title: "Signature"}
		value, err = Decode(stringDef, "-- sent from my desk")
		require.NoError(t, err)
		assert.Equal(t, "-- sent from my desk", value)
	})

	t.Run("serialized numbers decode as int", func(t *testing.T) {
		def := Definition{Title: "Limits", Serialize: true}
		value, err := Decode(def, `{"daily":5,"ratio":0.5}`)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"daily": 5, "ratio": 0.5}, value)

		_, err = Decode(def, `[1] [2]`)
		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("integer width follows the default", func(t *testing.T) {
		tests := []struct {
			name    string
			def     any
			raw     string
			want    any
			wantErr bool
		}{
			{"int8", int8(1), "-12", int8(-12), false},
			{"int8 overflow", int8(1), "300", nil, true},
			{"int32", int32(1), "70000", int32(70000), false},
			{"int64", int64(1), "9000000000", int64(9000000000), false},
			{"uint", uint(1), "7", uint(7), false},
			{"uint negative", uint(1), "-1", nil, true},
			{"uint8 overflow", uint8(1), "256", nil, true},
			{"uint16", uint16(1), "65535", uint16(65535), false},
			{"float32", float32(1), "0.25", float32(0.25), false},
			{"json integer", json.Number("10"), "42", 42, false},
			{"json float", json.Number("0.5"), "0.75", 0.75, false},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				value, err := Decode(Definition{Title: "Count", DefaultValue: tt.def}, tt.raw)
				if tt.wantErr {
					assert.ErrorIs(t, err, ErrInvalidValue)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tt.want, value)
			})
		}
	})

	t.Run("composite without serialize", func(t *testing.T) {
		_, err := Encode(Definition{Title: "Channels"}, []string{"email"})
		assert.ErrorIs(t, err, ErrInvalidValue)
	})
}

func TestResolve(t *testing.T) {
	def := notificationsHook()["enabled_notifications"]

	value, err := Resolve(def, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"email"}, value)

	stored := `["twitter"]`
	value, err = Resolve(def, &stored)
	require.NoError(t, err)
	assert.Equal(t, []any{"twitter"}, value)
}
