package bounded

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type cap4 struct{}

func (cap4) Cap() int { return 4 }

type cap2 struct{}

func (cap2) Cap() int { return 2 }

func TestStringSet(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "empty", in: ""},
		{name: "below capacity", in: "ab"},
		{name: "at capacity", in: "abcd"},
		{name: "over capacity", in: "abcde", wantErr: true},
		// four runes, eight bytes
		{name: "multibyte over capacity", in: "éééé", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewString[cap4](tt.in)
			if tt.wantErr {
				var ce *CapacityError
				require.ErrorAs(t, err, &ce)
				assert.Equal(t, 4, ce.Capacity)
				assert.Equal(t, len(tt.in), ce.Length)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.in, s.String())
			assert.Equal(t, len(tt.in), s.Len())
			assert.Equal(t, 4, s.Cap())
		})
	}
}

func TestStringSetKeepsOldValueOnOverflow(t *testing.T) {
	s := MustString[cap4]("ok")
	require.Error(t, s.Set("too long"))
	assert.Equal(t, "ok", s.String())
}

func TestMustStringPanics(t *testing.T) {
	assert.Panics(t, func() { MustString[cap2]("abc") })
}

func TestStringUnmarshalJSON(t *testing.T) {
	var s String[cap4]
	require.NoError(t, json.Unmarshal([]byte(`"a\"b"`), &s))
	assert.Equal(t, `a"b`, s.String())

	// escapes count after decoding
	require.NoError(t, json.Unmarshal([]byte(`"\u0041BCD"`), &s))
	assert.Equal(t, "ABCD", s.String())

	var ce *CapacityError
	require.ErrorAs(t, json.Unmarshal([]byte(`"abcde"`), &s), &ce)
	require.Error(t, json.Unmarshal([]byte(`null`), &s))
	require.Error(t, json.Unmarshal([]byte(`12`), &s))
}

func TestStringMarshal(t *testing.T) {
	s := MustString[cap4]("hi")
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `"hi"`, string(b))

	y, err := yaml.Marshal(map[string]String[cap4]{"k": s})
	require.NoError(t, err)
	assert.Equal(t, "k: hi\n", string(y))
}

func TestVecPush(t *testing.T) {
	var v Vec[int, cap2]
	require.NoError(t, v.Push(1))
	require.NoError(t, v.Push(2))
	err := v.Push(3)
	var ce *CapacityError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 2, ce.Capacity)
	assert.Equal(t, 3, ce.Length)
	assert.Equal(t, []int{1, 2}, v.Items())
	assert.Equal(t, 2, v.Len())
	assert.Equal(t, 2, v.Cap())
	assert.Equal(t, 2, v.At(1))
}

func TestVecItemsIsCopy(t *testing.T) {
	v, err := NewVec[int, cap2](7, 8)
	require.NoError(t, err)
	items := v.Items()
	items[0] = 100
	assert.Equal(t, 7, v.At(0))
}

func TestVecEach(t *testing.T) {
	v, err := NewVec[string, cap4]("a", "b", "c")
	require.NoError(t, err)
	var seen []string
	v.Each(func(i int, x string) bool {
		seen = append(seen, x)
		return i < 1
	})
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestNewVecOverflow(t *testing.T) {
	_, err := NewVec[int, cap2](1, 2, 3)
	require.Error(t, err)
}

func TestVecUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{name: "empty", in: `[]`},
		{name: "ordered", in: `["b","a"]`, want: []string{"b", "a"}},
		{name: "too many", in: `["a","b","c"]`, wantErr: true},
		{name: "element too long", in: `["abcde"]`, wantErr: true},
		{name: "null", in: `null`, wantErr: true},
		{name: "null element", in: `[null]`, wantErr: true},
		{name: "not an array", in: `{}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Vec[String[cap4], cap2]
			err := json.Unmarshal([]byte(tt.in), &v)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			var got []string
			v.Each(func(_ int, s String[cap4]) bool {
				got = append(got, s.String())
				return true
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVecMarshalEmpty(t *testing.T) {
	var v Vec[int, cap2]
	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(b))
}

func TestVecRoundTrip(t *testing.T) {
	condition := func(a, b uint16) bool {
		v, err := NewVec[uint16, cap2](a, b)
		require.NoError(t, err)
		data, err := json.Marshal(v)
		require.NoError(t, err)
		var out Vec[uint16, cap2]
		require.NoError(t, json.Unmarshal(data, &out))
		return assert.ObjectsAreEqual(v.Items(), out.Items())
	}
	require.NoError(t, quick.Check(condition, &quick.Config{}))
}

func TestCapacityErrorMessage(t *testing.T) {
	err := error(&CapacityError{Capacity: 8, Length: 9})
	assert.True(t, strings.Contains(err.Error(), "exceeds capacity 8"))
	var ce *CapacityError
	assert.True(t, errors.As(err, &ce))
}
