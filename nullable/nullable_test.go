package nullable

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstantScanTakesWallClockAsUTC(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	want := time.Date(2024, 2, 29, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		src  any
	}{
		{"time in other zone", time.Date(2024, 2, 29, 10, 30, 0, 0, seoul)},
		{"time in utc", want},
		{"text", "2024-02-29 10:30:00"},
		{"bytes with T", []byte("2024-02-29T10:30:00")},
		{"offset ignored", "2024-02-29T10:30:00+09:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Instant
			require.NoError(t, n.Scan(tt.src))
			require.True(t, n.Valid)
			assert.True(t, want.Equal(n.Instant.Time), "got %s", n.Instant.Time)
		})
	}
}

func TestInstantNull(t *testing.T) {
	n := InstantOf(time.Now())
	require.NoError(t, n.Scan(nil))
	assert.True(t, n.IsNil())
	assert.True(t, n.ForceValue().IsZero())
	v, err := n.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	assert.Error(t, n.Scan(42))
	assert.Error(t, n.Scan("yesterday"))
}

func TestInstantValueIsUTCWallClock(t *testing.T) {
	n := InstantOf(time.Date(2024, 1, 1, 9, 0, 0, 0, time.FixedZone("", 9*60*60)))
	v, err := n.Value()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), v)
}

func TestInstantJSON(t *testing.T) {
	type event struct {
		At   Instant `json:"at"`
		Seen Instant `json:"seen"`
	}
	in := event{At: InstantOf(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"2024-01-01T00:00:00Z","seen":null}`, string(data))

	var out event
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, out.At.Valid)
	assert.True(t, in.At.Instant.Equal(out.At.Instant.Time))
	assert.True(t, out.Seen.IsNil())
}

func TestString(t *testing.T) {
	var n String
	require.NoError(t, n.Scan("abc"))
	assert.Equal(t, "abc", n.ForceValue())
	require.NotNil(t, n.Ptr())

	data, err := json.Marshal(StringFromPtr(nil))
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	require.NoError(t, json.Unmarshal([]byte(`"x"`), &n))
	assert.Equal(t, StringOf("x"), n)
	require.NoError(t, json.Unmarshal([]byte(`null`), &n))
	assert.True(t, n.IsNil())
	assert.Nil(t, n.Ptr())
}

func TestUUID(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	var n UUID
	require.NoError(t, n.Scan(id.String()))
	assert.Equal(t, id, n.ForceValue())
	assert.Equal(t, UUIDOf(id), n)

	require.NoError(t, n.Scan(nil))
	assert.True(t, n.IsNil())
	assert.Equal(t, uuid.Nil, n.ForceValue())
}

type color string

func (c color) EnumName() string { return string(c) }

const (
	red   color = "RED"
	green color = "GREEN"
)

type size int

func (s size) EnumName() string { return [...]string{"S", "M", "L"}[s] }

func TestEnum(t *testing.T) {
	RegisterEnum(red, green)

	var n Enum[color]
	require.NoError(t, n.Scan([]byte("GREEN")))
	assert.Equal(t, EnumOf(green), n)
	v, err := n.Value()
	require.NoError(t, err)
	assert.Equal(t, "GREEN", v)

	assert.Error(t, n.Scan("BLUE"))
	assert.True(t, n.IsNil())

	require.NoError(t, json.Unmarshal([]byte(`"RED"`), &n))
	assert.Equal(t, red, n.V)
	data, err := json.Marshal(n)
	require.NoError(t, err)
	assert.Equal(t, `"RED"`, string(data))
}

func TestEnumNotRegistered(t *testing.T) {
	var n Enum[size]
	err := n.Scan("M")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}
