package wstring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferAppendGrows(t *testing.T) {
	b := New()
	for i := 0; i < 100; i++ {
		b.AppendString("x")
	}
	assert.Equal(t, 100, b.Len())
	assert.GreaterOrEqual(t, cap(b.data), b.Len()+1)
}

func TestBufferFreezeIsIndependent(t *testing.T) {
	b := NewFromString("hello")
	frozen := b.Freeze()
	b.AppendString(" world")
	assert.Equal(t, "hello", string(frozen))
	assert.Equal(t, "hello world", b.String())
}

func TestBufferReset(t *testing.T) {
	b := NewFromString("abc")
	b.Reset()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, "", b.String())
}
