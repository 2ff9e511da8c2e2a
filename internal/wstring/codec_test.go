package wstring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	samples := [][]byte{
		[]byte(""),
		[]byte("a"),
		[]byte("hello, world!"),
		{0x00, 0x01, 0xff, 0x7f},
	}
	for _, base := range []Base{Base16, Base32, Base64, Base64URL} {
		for _, s := range samples {
			encoded, err := Encode(base, s)
			require.NoError(t, err)
			decoded, err := Decode(base, encoded)
			require.NoError(t, err)
			assert.Equal(t, s, decoded, "base=%s sample=%x", base, s)
		}
	}
}

func TestCodecUnknownBase(t *testing.T) {
	_, err := Encode(Base("99"), []byte("x"))
	assert.Error(t, err)
}

func TestSplitShell(t *testing.T) {
	items, err := SplitShell(`foo "bar baz" 'single quote' esc\ ape`)
	require := require.New(t)
	require.NoError(err)
	assert.Equal(t, []string{"foo", "bar baz", "single quote", "esc ape"}, items)
}

func TestSplitCollapseSeps(t *testing.T) {
	out := Split("a,,b,c", ",", SplitFlags{CollapseSeps: true})
	assert.Equal(t, []string{"a", "b", "c"}, out)
}

func TestSplitMaxItems(t *testing.T) {
	out := Split("a,b,c,d", ",", SplitFlags{MaxItems: 2})
	assert.Equal(t, []string{"a", "b"}, out)
}
